package page_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"leetdoist/internal/log"
	"leetdoist/internal/page"
	"leetdoist/internal/problem"
	"leetdoist/internal/relay"
)

var fastPoll = problem.PollConfig{Attempts: 2, Interval: time.Millisecond}

func serve(t *testing.T, src problem.Source) *relay.Relay {
	t.Helper()
	r := relay.New(nil)
	stop, err := page.NewHandler(src, fastPoll, nil).Serve(r)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(stop)
	return r
}

func TestGetProblemData(t *testing.T) {
	src := problem.NewStaticSource(`<div data-cy="question-title">1. Two Sum</div>`, "https://leetcode.com/problems/two-sum/description/#top")
	resp := relay.GetProblemData(context.Background(), serve(t, src))
	if !resp.OK || resp.Data == nil {
		t.Fatalf("response = %+v", resp)
	}
	want := problem.Data{Title: "1. Two Sum", URL: "https://leetcode.com/problems/two-sum/description/"}
	if *resp.Data != want {
		t.Errorf("data = %+v", *resp.Data)
	}
}

func TestGetProblemDataNotProblemPage(t *testing.T) {
	src := problem.NewStaticSource(`<h1>Explore</h1>`, "https://leetcode.com/explore/")
	resp := relay.GetProblemData(context.Background(), serve(t, src))
	if resp.OK || resp.Error != relay.KindNotProblemPage {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Message != "Open a LeetCode problem to create a task." {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestGetProblemDataTimeout(t *testing.T) {
	src := problem.NewStaticSource(`<body></body>`, "https://leetcode.com/problems/two-sum/")
	resp := relay.GetProblemData(context.Background(), serve(t, src))
	if resp.OK || resp.Error != relay.KindExtractionTimeout {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Message != "Still loading the problem. Try again in a moment." {
		t.Errorf("message = %q", resp.Message)
	}
}

type brokenSource struct{}

func (brokenSource) URL(ctx context.Context) (string, error) {
	return "", errors.New("target closed")
}

func (brokenSource) Snapshot(ctx context.Context) (problem.Document, error) {
	return nil, errors.New("target closed")
}

func TestGetProblemDataBrokenPage(t *testing.T) {
	resp := relay.GetProblemData(context.Background(), serve(t, brokenSource{}))
	if resp.OK || resp.Error != relay.KindPageError {
		t.Fatalf("response = %+v, want page error", resp)
	}
	if !strings.Contains(resp.Message, "target closed") {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestRetrieveCancelled(t *testing.T) {
	src := problem.NewStaticSource(`<body></body>`, "https://leetcode.com/problems/two-sum/")
	h := page.NewHandler(src, problem.PollConfig{Attempts: 3, Interval: time.Hour}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	resp := h.Retrieve(ctx)
	if resp.OK || resp.Error != relay.KindCancelled {
		t.Fatalf("response = %+v, want cancelled", resp)
	}
}

// flakySource fails the first snapshots, then serves the page.
type flakySource struct {
	fails int
	calls int
}

func (s *flakySource) URL(ctx context.Context) (string, error) {
	return "https://leetcode.com/problems/two-sum/", nil
}

func (s *flakySource) Snapshot(ctx context.Context) (problem.Document, error) {
	s.calls++
	if s.calls <= s.fails {
		return nil, fmt.Errorf("snapshot %d: execution context destroyed", s.calls)
	}
	return problem.ParseHTML(`<h1>1. Two Sum</h1>`, "https://leetcode.com/problems/two-sum/")
}

type debugRecorder struct {
	log.Logger
	mu    sync.Mutex
	lines []string
}

func (r *debugRecorder) Debugf(ctx context.Context, template string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(template, args...))
}

func TestRetrieveLogsEverySnapshotFailure(t *testing.T) {
	rec := &debugRecorder{Logger: log.NewNop()}
	src := &flakySource{fails: 2}
	h := page.NewHandler(src, problem.PollConfig{Attempts: 4, Interval: time.Millisecond}, rec)

	resp := h.Retrieve(context.Background())
	if !resp.OK {
		t.Fatalf("response = %+v", resp)
	}

	var failures []string
	for _, l := range rec.lines {
		if strings.Contains(l, "snapshot failed") {
			failures = append(failures, l)
		}
	}
	if len(failures) != 2 {
		t.Fatalf("logged %d snapshot failures, want 2: %q", len(failures), rec.lines)
	}
	if !strings.Contains(failures[0], "snapshot 1") || !strings.Contains(failures[1], "snapshot 2") {
		t.Errorf("failures = %q", failures)
	}
}

func TestPageIgnoresOtherMessages(t *testing.T) {
	r := serve(t, problem.NewStaticSource("", "https://leetcode.com/problems/x/"))
	err := r.Send(context.Background(), relay.Page, relay.CreateTaskRequest{Type: relay.TypeCreateTask}, nil)
	if !errors.Is(err, relay.ErrNoReceiver) {
		t.Errorf("error = %v, want ErrNoReceiver", err)
	}
}
