package relay_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"leetdoist/internal/due"
	"leetdoist/internal/problem"
	"leetdoist/internal/relay"
)

type echoRequest struct {
	Type string `json:"type"`
	N    int    `json:"n"`
}

type echoResponse struct {
	N int `json:"n"`
}

func echoHandler(ctx context.Context, msg relay.Message) (any, bool) {
	if msg.Type != "echo" {
		return nil, false
	}
	var req echoRequest
	if err := msg.Decode(&req); err != nil {
		return nil, false
	}
	return echoResponse{N: req.N * 2}, true
}

func TestSendNoListener(t *testing.T) {
	r := relay.New(nil)
	err := r.Send(context.Background(), relay.Page, echoRequest{Type: "echo"}, nil)
	if !errors.Is(err, relay.ErrNoReceiver) {
		t.Fatalf("error = %v, want ErrNoReceiver", err)
	}
}

func TestSendRoundTrip(t *testing.T) {
	r := relay.New(nil)
	stop, err := r.Listen(relay.Page, echoHandler)
	if err != nil {
		t.Fatal(err)
	}
	defer stop()

	var resp echoResponse
	if err := r.Send(context.Background(), relay.Page, echoRequest{Type: "echo", N: 21}, &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.N != 42 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSendUnhandledType(t *testing.T) {
	r := relay.New(nil)
	stop, _ := r.Listen(relay.Page, echoHandler)
	defer stop()

	err := r.Send(context.Background(), relay.Page, echoRequest{Type: "other"}, nil)
	if !errors.Is(err, relay.ErrNoReceiver) {
		t.Fatalf("error = %v, want ErrNoReceiver", err)
	}
}

func TestSendRequiresType(t *testing.T) {
	r := relay.New(nil)
	if err := r.Send(context.Background(), relay.Page, struct{}{}, nil); err == nil {
		t.Fatal("expected error for untyped request")
	}
}

func TestListenTwice(t *testing.T) {
	r := relay.New(nil)
	stop, _ := r.Listen(relay.Background, echoHandler)
	defer stop()
	if _, err := r.Listen(relay.Background, echoHandler); !errors.Is(err, relay.ErrAlreadyListening) {
		t.Fatalf("error = %v, want ErrAlreadyListening", err)
	}
}

func TestStoppedListener(t *testing.T) {
	r := relay.New(nil)
	stop, _ := r.Listen(relay.Page, echoHandler)
	stop()
	stop()

	err := r.Send(context.Background(), relay.Page, echoRequest{Type: "echo"}, nil)
	if !errors.Is(err, relay.ErrNoReceiver) {
		t.Fatalf("error = %v, want ErrNoReceiver", err)
	}

	// The target can be listened on again.
	stop, err = r.Listen(relay.Page, echoHandler)
	if err != nil {
		t.Fatal(err)
	}
	stop()
}

func TestStopWhileWaiting(t *testing.T) {
	r := relay.New(nil)
	started := make(chan struct{})
	release := make(chan struct{})
	stop, _ := r.Listen(relay.Page, func(ctx context.Context, msg relay.Message) (any, bool) {
		close(started)
		<-release
		return echoResponse{}, true
	})
	defer close(release)

	errc := make(chan error, 1)
	go func() {
		errc <- r.Send(context.Background(), relay.Page, echoRequest{Type: "echo"}, nil)
	}()

	<-started
	stop()

	select {
	case err := <-errc:
		if !errors.Is(err, relay.ErrNoReceiver) {
			t.Fatalf("error = %v, want ErrNoReceiver", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Send hung after listener stopped")
	}
}

func TestSendContextTimeout(t *testing.T) {
	r := relay.New(nil)
	release := make(chan struct{})
	defer close(release)
	stop, _ := r.Listen(relay.Page, func(ctx context.Context, msg relay.Message) (any, bool) {
		<-release
		return nil, true
	})
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.Send(ctx, relay.Page, echoRequest{Type: "echo"}, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want DeadlineExceeded", err)
	}
}

func TestHandlerPanic(t *testing.T) {
	r := relay.New(nil)
	stop, _ := r.Listen(relay.Page, func(ctx context.Context, msg relay.Message) (any, bool) {
		panic("boom")
	})
	defer stop()

	err := r.Send(context.Background(), relay.Page, echoRequest{Type: "echo"}, nil)
	if !errors.Is(err, relay.ErrHandlerFailed) {
		t.Fatalf("error = %v, want ErrHandlerFailed", err)
	}

	// The listener survives.
	err = r.Send(context.Background(), relay.Page, echoRequest{Type: "echo"}, nil)
	if !errors.Is(err, relay.ErrHandlerFailed) {
		t.Fatalf("second error = %v", err)
	}
}

func TestConcurrentSendsGetOwnResponse(t *testing.T) {
	r := relay.New(nil)
	stop, _ := r.Listen(relay.Background, echoHandler)
	defer stop()

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			var resp echoResponse
			if err := r.Send(context.Background(), relay.Background, echoRequest{Type: "echo", N: n}, &resp); err != nil {
				errs <- err
				return
			}
			if resp.N != n*2 {
				errs <- fmt.Errorf("request %d got %d", n, resp.N)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestTypedHelpersUnreachable(t *testing.T) {
	r := relay.New(nil)

	pd := relay.GetProblemData(context.Background(), r)
	if pd.OK || pd.Error != relay.KindUnreachable || pd.Message == "" {
		t.Errorf("GetProblemData = %+v", pd)
	}

	ct := relay.CreateTask(context.Background(), r, relay.NewCreateTaskRequest("t", "u", due.Selection{Kind: due.KindRelative, Value: "tomorrow"}))
	if ct.OK || ct.Error != relay.KindUnreachable {
		t.Errorf("CreateTask = %+v", ct)
	}
}

func TestTypedHelpersRoundTrip(t *testing.T) {
	r := relay.New(nil)
	var got relay.CreateTaskRequest
	stopBg, _ := r.Listen(relay.Background, func(ctx context.Context, msg relay.Message) (any, bool) {
		if msg.Type != relay.TypeCreateTask {
			return nil, false
		}
		if err := msg.Decode(&got); err != nil {
			return relay.CreateTaskResponse{OK: false, Message: err.Error()}, true
		}
		return relay.CreateTaskResponse{OK: true}, true
	})
	defer stopBg()
	stopPage, _ := r.Listen(relay.Page, func(ctx context.Context, msg relay.Message) (any, bool) {
		if msg.Type != relay.TypeGetProblemData {
			return nil, false
		}
		return relay.GetProblemDataResponse{OK: true, Data: &problem.Data{Title: "Two Sum", URL: "https://leetcode.com/problems/two-sum/"}}, true
	})
	defer stopPage()

	pd := relay.GetProblemData(context.Background(), r)
	if !pd.OK || pd.Data == nil || pd.Data.Title != "Two Sum" {
		t.Fatalf("GetProblemData = %+v", pd)
	}

	sel := due.Selection{Kind: due.KindDate, Value: "2024-03-15"}
	ct := relay.CreateTask(context.Background(), r, relay.CreateTaskRequest{Title: pd.Data.Title, URL: pd.Data.URL, Due: sel})
	if !ct.OK {
		t.Fatalf("CreateTask = %+v", ct)
	}
	if got.Type != relay.TypeCreateTask || got.Title != "Two Sum" || got.Due != sel {
		t.Errorf("background received %+v", got)
	}
}
