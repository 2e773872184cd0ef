// Package background is the privileged context: it owns the credential
// store and the Todoist client and answers task-creation requests.
package background

import (
	"context"
	"errors"
	"strings"

	"leetdoist/internal/due"
	"leetdoist/internal/log"
	"leetdoist/internal/relay"
	"leetdoist/internal/store"
	"leetdoist/internal/todoist"
)

// TaskClient is the part of todoist.Client the creator needs.
type TaskClient interface {
	CreateTask(ctx context.Context, token string, payload todoist.Payload) error
}

// Outcome is the classified result of one CreateTask call.
type Outcome struct {
	OK      bool
	Kind    relay.ErrorKind
	Message string
}

// Response converts the outcome to its relay message.
func (o Outcome) Response() relay.CreateTaskResponse {
	return relay.CreateTaskResponse{OK: o.OK, Error: o.Kind, Message: o.Message}
}

// Creator turns problem data into a Todoist task.
type Creator struct {
	store  store.Store
	client TaskClient
	log    log.Logger
}

// NewCreator wires a Creator.
func NewCreator(st store.Store, client TaskClient, l log.Logger) *Creator {
	if l == nil {
		l = log.NewNop()
	}
	return &Creator{store: st, client: client, log: l}
}

// CreateTask reads the stored token and posts the task. Without a token it
// returns KindMissingToken and makes no request; an unreadable store gives
// KindStorageError.
func (c *Creator) CreateTask(ctx context.Context, title, url string, sel due.Selection) Outcome {
	token, ok, err := c.store.Get(ctx, store.TokenKey)
	if err != nil {
		c.log.Errorf(ctx, "background: failed to read token: %v", err)
		return Outcome{Kind: relay.KindStorageError, Message: "Unable to read Todoist API token: " + err.Error()}
	}
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return Outcome{Kind: relay.KindMissingToken, Message: "Todoist API token not set."}
	}

	payload := todoist.BuildPayload(title, url, sel)
	if err := c.client.CreateTask(ctx, token, payload); err != nil {
		var apiErr *todoist.APIError
		if errors.As(err, &apiErr) {
			c.log.Warnf(ctx, "background: todoist rejected task %q: %v", title, apiErr)
			return Outcome{Kind: relay.KindRemoteError, Message: apiErr.Error()}
		}
		c.log.Errorf(ctx, "background: failed to create Todoist task: %v", err)
		return Outcome{Kind: relay.KindTransportError, Message: err.Error()}
	}

	c.log.Infof(ctx, "background: created task %q due %s", title, sel.Value)
	return Outcome{OK: true}
}

// Handle answers createTodoistTask messages.
func (c *Creator) Handle(ctx context.Context, msg relay.Message) (any, bool) {
	if msg.Type != relay.TypeCreateTask {
		return nil, false
	}
	var req relay.CreateTaskRequest
	if err := msg.Decode(&req); err != nil {
		return relay.CreateTaskResponse{OK: false, Error: relay.KindTransportError, Message: "malformed request: " + err.Error()}, true
	}
	if err := req.Due.Validate(); err != nil {
		return relay.CreateTaskResponse{OK: false, Error: relay.KindInvalidDue, Message: err.Error()}, true
	}
	return c.CreateTask(ctx, req.Title, req.URL, req.Due).Response(), true
}

// Serve registers the creator as the background listener.
func (c *Creator) Serve(r *relay.Relay) (stop func(), err error) {
	return r.Listen(relay.Background, c.Handle)
}
