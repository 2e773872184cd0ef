package leetcode

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"leetdoist/internal/browser"
	"leetdoist/internal/problem"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// evalTimeout bounds a single snapshot of the live page.
const evalTimeout = 10 * time.Second

// Client is a live LeetCode tab. It implements problem.Source.
type Client struct {
	browser *browser.Browser
	page    *rod.Page
}

// NewClient creates a new Client instance.
func NewClient(b *browser.Browser) *Client {
	return &Client{browser: b}
}

// Open navigates a new tab to target and waits for the document to load.
// The problem content itself is rendered later by the site's scripts.
func (c *Client) Open(ctx context.Context, target string, timeout time.Duration) error {
	page, err := c.browser.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}
	c.page = page

	_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent})
	_, _ = page.EvalOnNewDocument(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`)

	if err := page.Context(ctx).Timeout(timeout).Navigate(target); err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}
	return nil
}

// Close closes the tab.
func (c *Client) Close() {
	if c.page != nil {
		c.page.Close()
	}
}

// URL returns the current address of the tab.
func (c *Client) URL(ctx context.Context) (string, error) {
	if c.page == nil {
		return "", fmt.Errorf("page not open")
	}
	res, err := c.page.Context(ctx).Timeout(evalTimeout).Eval(`() => window.location.href`)
	if err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return res.Value.Str(), nil
}

// Snapshot serializes the current DOM. Each call sees whatever the page has
// rendered so far.
func (c *Client) Snapshot(ctx context.Context) (problem.Document, error) {
	if c.page == nil {
		return nil, fmt.Errorf("page not open")
	}
	res, err := c.page.Context(ctx).Timeout(evalTimeout).Eval(`() => ({
		href: window.location.href,
		html: document.documentElement.outerHTML,
	})`)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot page: %w", err)
	}

	var snap struct {
		Href string `json:"href"`
		HTML string `json:"html"`
	}
	raw, _ := res.Value.MarshalJSON()
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return problem.ParseHTML(snap.HTML, snap.Href)
}
