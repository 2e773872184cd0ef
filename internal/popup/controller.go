// Package popup is the UI surface: it asks the page context for the problem,
// collects a due date and asks the background context to create the task.
package popup

import (
	"context"
	"errors"
	"sync/atomic"

	"leetdoist/internal/due"
	"leetdoist/internal/log"
	"leetdoist/internal/options"
	"leetdoist/internal/problem"
	"leetdoist/internal/relay"
)

// ErrBusy is returned by Submit while another submit is in flight.
var ErrBusy = errors.New("a task is already being created")

// Status is the line shown under the form. The zero value clears it.
type Status = options.Status

const (
	msgPickDue       = "Please pick when you want Todoist to remind you."
	msgCreated       = "Task created in Todoist!"
	msgMissingToken  = "Add your Todoist API token first: leetdoist token set <token>"
	msgCreateFailed  = "Unable to create the task. Try again."
	msgOpenProblem   = "Open a LeetCode problem page and try again."
	msgNoProblemHere = "Unable to find a LeetCode problem on this tab."
)

// Controller holds the popup logic independent of how it is drawn.
type Controller struct {
	relay *relay.Relay
	busy  atomic.Bool
	log   log.Logger
}

// NewController returns a Controller talking through r.
func NewController(r *relay.Relay, l log.Logger) *Controller {
	if l == nil {
		l = log.NewNop()
	}
	return &Controller{relay: r, log: l}
}

// LoadProblem asks the page context for the problem. On failure the returned
// Status carries the message for the error view.
func (c *Controller) LoadProblem(ctx context.Context) (problem.Data, Status, bool) {
	resp := relay.GetProblemData(ctx, c.relay)
	if resp.OK && resp.Data != nil {
		return *resp.Data, Status{}, true
	}

	c.log.Infof(ctx, "popup: problem unavailable (%s): %s", resp.Error, resp.Message)
	msg := resp.Message
	switch {
	case resp.Error == relay.KindUnreachable:
		msg = msgOpenProblem
	case msg == "":
		msg = msgNoProblemHere
	}
	return problem.Data{}, Status{Text: msg, Tone: options.ToneError}, false
}

// Busy reports whether a submit is in flight.
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// Submit resolves the due option and creates the task. Only one submit may
// run at a time; a concurrent call returns ErrBusy.
func (c *Controller) Submit(ctx context.Context, p problem.Data, option, customDate string) (Status, error) {
	sel, err := due.Resolve(option, customDate)
	if err != nil {
		return Status{Text: msgPickDue, Tone: options.ToneError}, nil
	}

	if !c.busy.CompareAndSwap(false, true) {
		return Status{}, ErrBusy
	}
	defer c.busy.Store(false)

	resp := relay.CreateTask(ctx, c.relay, relay.NewCreateTaskRequest(p.Title, p.URL, sel))
	return TaskStatus(resp), nil
}

// TaskStatus maps a createTodoistTask response to the status line.
func TaskStatus(resp relay.CreateTaskResponse) Status {
	switch {
	case resp.OK:
		return Status{Text: msgCreated, Tone: options.ToneSuccess}
	case resp.Error == relay.KindMissingToken:
		return Status{Text: msgMissingToken, Tone: options.ToneError}
	case resp.Message != "":
		return Status{Text: resp.Message, Tone: options.ToneError}
	default:
		return Status{Text: msgCreateFailed, Tone: options.ToneError}
	}
}
