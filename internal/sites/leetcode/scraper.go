package leetcode

import (
	"context"
	"fmt"
	"strings"

	"leetdoist/internal/browser"
	"leetdoist/internal/scraper"
)

func init() {
	scraper.Register(&LeetCodeScraper{})
}

// LeetCodeScraper opens leetcode.com problem pages in a browser.
type LeetCodeScraper struct{}

func (s *LeetCodeScraper) Name() string { return "leetcode" }

func (s *LeetCodeScraper) Matches(target string) bool {
	return strings.Contains(strings.ToLower(target), "leetcode.com")
}

// Open launches a browser and loads target. The returned page owns the
// browser; closing it shuts the browser down.
func (s *LeetCodeScraper) Open(ctx context.Context, target string, opts scraper.Options) (scraper.Page, error) {
	if target == "" {
		return nil, fmt.Errorf("problem URL is required")
	}

	b, err := browser.New(browser.Config{
		ProxyURL: opts.ProxyURL,
		Headless: !opts.ShowUI,
		Bin:      opts.BrowserBin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	client := NewClient(b)
	if err := client.Open(ctx, target, opts.Timeout); err != nil {
		client.Close()
		b.Close()
		return nil, err
	}
	return &livePage{Client: client, browser: b}, nil
}

type livePage struct {
	*Client
	browser *browser.Browser
}

func (p *livePage) Close() error {
	p.Client.Close()
	return p.browser.Close()
}
