// Package problem extracts the problem title and canonical URL from a
// rendered problem page.
package problem

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNotProblemPage    = errors.New("not a problem page")
	ErrExtractionTimeout = errors.New("problem not found on page")
)

// Data is what the popup shows and what becomes the task.
type Data struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Document is the read-only view of a page the extractor needs.
type Document interface {
	// Text returns the text content of the first element matching selector.
	Text(selector string) string
	// Attr returns an attribute of the first element matching selector.
	Attr(selector, name string) (string, bool)
	// Title returns the document title.
	Title() string
	// URL returns the page address.
	URL() string
}

// Source yields fresh snapshots of a page that may still be rendering.
type Source interface {
	URL(ctx context.Context) (string, error)
	Snapshot(ctx context.Context) (Document, error)
}

// titleSelectors are tried in order before the meta and document titles.
var titleSelectors = []string{
	`div[data-cy="question-title"]`,
	`h1[data-cy="challenge-editor-title"]`,
	`div[data-key="description-title"]`,
	`div.text-title-large`,
	`h1`,
}

var (
	problemPagePattern = regexp.MustCompile(`leetcode\.com/problems/`)
	siteSuffix         = regexp.MustCompile(`\s*-\s*LeetCode\s*$`)
	whitespace         = regexp.MustCompile(`\s+`)
)

// IsProblemPage reports whether url points at a single problem.
func IsProblemPage(url string) bool {
	return problemPagePattern.MatchString(url)
}

// CleanURL drops the fragment of url.
func CleanURL(url string) string {
	if i := strings.IndexByte(url, '#'); i >= 0 {
		return url[:i]
	}
	return url
}

// CleanTitle collapses whitespace and strips a trailing " - LeetCode".
func CleanTitle(s string) string {
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.TrimSpace(siteSuffix.ReplaceAllString(s, ""))
}

// ExtractTitle walks the selector chain, then og:title, then the document title.
func ExtractTitle(doc Document) string {
	for _, sel := range titleSelectors {
		if title := CleanTitle(doc.Text(sel)); title != "" {
			return title
		}
	}
	if og, ok := doc.Attr(`meta[property="og:title"]`, "content"); ok {
		if title := CleanTitle(og); title != "" {
			return title
		}
	}
	return CleanTitle(doc.Title())
}

// Extract returns the problem data of doc, or false if no title is present yet.
func Extract(doc Document) (Data, bool) {
	title := ExtractTitle(doc)
	if title == "" {
		return Data{}, false
	}
	return Data{Title: title, URL: CleanURL(doc.URL())}, true
}

// PollConfig bounds Poll.
type PollConfig struct {
	Attempts int
	Interval time.Duration
}

// DefaultPollConfig gives a freshly opened page about 1.5s to render its title.
var DefaultPollConfig = PollConfig{Attempts: 6, Interval: 250 * time.Millisecond}

// Poll extracts problem data from src, retrying while the page renders.
// It returns ErrNotProblemPage without polling when src is not a problem
// page and ErrExtractionTimeout once all attempts are spent.
func Poll(ctx context.Context, src Source, cfg PollConfig) (Data, error) {
	url, err := src.URL(ctx)
	if err != nil {
		return Data{}, fmt.Errorf("failed to read page url: %w", err)
	}
	if !IsProblemPage(url) {
		return Data{}, fmt.Errorf("%w: %s", ErrNotProblemPage, url)
	}

	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if err := sleep(ctx, cfg.Interval); err != nil {
				return Data{}, err
			}
		}

		doc, err := src.Snapshot(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return Data{}, ctx.Err()
			}
			lastErr = err
			continue
		}
		if data, ok := Extract(doc); ok {
			return data, nil
		}
	}

	if lastErr != nil {
		return Data{}, fmt.Errorf("%w after %d attempts: %v", ErrExtractionTimeout, attempts, lastErr)
	}
	return Data{}, fmt.Errorf("%w after %d attempts", ErrExtractionTimeout, attempts)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
