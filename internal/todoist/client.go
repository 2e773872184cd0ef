// Package todoist is a minimal client for the Todoist REST task endpoint.
package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"leetdoist/internal/due"

	"github.com/google/uuid"
)

// DefaultEndpoint is the Todoist REST v2 task-creation endpoint.
const DefaultEndpoint = "https://api.todoist.com/rest/v2/tasks"

// noBody replaces an error response body that could not be read.
const noBody = "<no response body>"

// APIError is a non-2xx answer from Todoist.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Todoist API responded with %d: %s", e.Status, e.Body)
}

// Payload is the body of POST /rest/v2/tasks. At most one due field is set.
type Payload struct {
	Content     string `json:"content"`
	Description string `json:"description"`
	DueString   string `json:"due_string,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

// BuildPayload maps a problem and its due selection to a task body.
func BuildPayload(title, url string, sel due.Selection) Payload {
	p := Payload{Content: title, Description: url}
	switch sel.Kind {
	case due.KindRelative:
		p.DueString = sel.Value
	case due.KindDate:
		p.DueDate = sel.Value
	}
	return p
}

// Client posts tasks to Todoist.
type Client struct {
	endpoint     string
	httpClient   *http.Client
	newRequestID func() string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRequestID replaces the X-Request-Id generator.
func WithRequestID(fn func() string) Option {
	return func(c *Client) { c.newRequestID = fn }
}

// NewClient creates a client for endpoint, or DefaultEndpoint if empty.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:     endpoint,
		httpClient:   &http.Client{},
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateTask creates one task. It does not retry. A non-2xx status is
// returned as *APIError, anything failing before a response as a wrapped
// transport error.
func (c *Client) CreateTask(ctx context.Context, token string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build create task request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", c.newRequestID())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call todoist create task API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: readBody(resp.Body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func readBody(r io.Reader) string {
	raw, err := io.ReadAll(r)
	if err != nil {
		return noBody
	}
	return string(raw)
}
