package scraper

import (
	"context"
	"time"

	"leetdoist/internal/problem"
)

// Scraper opens problem pages of one site.
type Scraper interface {
	Name() string
	// Matches reports whether target belongs to this site.
	Matches(target string) bool
	Open(ctx context.Context, target string, opts Options) (Page, error)
}

// Page is an open, still rendering page. Close releases the browser.
type Page interface {
	problem.Source
	Close() error
}

// Content is a result that can be printed in every output format.
type Content interface {
	ToHTML() (string, error)
	ToText() (string, error)
	ToMarkdown() (string, error)
	ToJSON() ([]byte, error)
	ToCSV() (string, error)
}

type Options struct {
	Timeout    time.Duration
	ShowUI     bool
	ProxyURL   string // --proxy flag or LEETDOIST_PROXY env var
	BrowserBin string // browser.bin config key
}
