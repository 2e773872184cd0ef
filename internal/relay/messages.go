package relay

import (
	"context"
	"errors"

	"leetdoist/internal/due"
	"leetdoist/internal/problem"
)

// Message types.
const (
	TypeGetProblemData = "getProblemData"
	TypeCreateTask     = "createTodoistTask"
)

// ErrorKind classifies a failed response.
type ErrorKind string

const (
	KindMissingToken      ErrorKind = "missing_token"
	KindRemoteError       ErrorKind = "todoist_error"
	KindTransportError    ErrorKind = "network_error"
	KindNotProblemPage    ErrorKind = "not_a_problem_page"
	KindExtractionTimeout ErrorKind = "extraction_timeout"
	KindInvalidDue        ErrorKind = "invalid_due_selection"
	KindUnreachable       ErrorKind = "relay_unreachable"
	KindStorageError      ErrorKind = "storage_error"
	KindPageError         ErrorKind = "page_error"
	KindCancelled         ErrorKind = "cancelled"
)

type GetProblemDataRequest struct {
	Type string `json:"type"`
}

type GetProblemDataResponse struct {
	OK      bool          `json:"ok"`
	Data    *problem.Data `json:"data,omitempty"`
	Error   ErrorKind     `json:"error,omitempty"`
	Message string        `json:"message,omitempty"`
}

type CreateTaskRequest struct {
	Type  string        `json:"type"`
	Title string        `json:"title"`
	URL   string        `json:"url"`
	Due   due.Selection `json:"due"`
}

type CreateTaskResponse struct {
	OK      bool      `json:"ok"`
	Error   ErrorKind `json:"error,omitempty"`
	Message string    `json:"message,omitempty"`
}

// NewCreateTaskRequest fills in the message type.
func NewCreateTaskRequest(title, url string, sel due.Selection) CreateTaskRequest {
	return CreateTaskRequest{Type: TypeCreateTask, Title: title, URL: url, Due: sel}
}

// GetProblemData asks the page context for the current problem. Relay
// failures come back as a response with KindUnreachable.
func GetProblemData(ctx context.Context, r *Relay) GetProblemDataResponse {
	var resp GetProblemDataResponse
	if err := r.Send(ctx, Page, GetProblemDataRequest{Type: TypeGetProblemData}, &resp); err != nil {
		return GetProblemDataResponse{OK: false, Error: KindUnreachable, Message: unreachableMessage(err)}
	}
	return resp
}

// CreateTask asks the background context to create a task. Relay failures
// come back as a response with KindUnreachable.
func CreateTask(ctx context.Context, r *Relay, req CreateTaskRequest) CreateTaskResponse {
	req.Type = TypeCreateTask
	var resp CreateTaskResponse
	if err := r.Send(ctx, Background, req, &resp); err != nil {
		return CreateTaskResponse{OK: false, Error: KindUnreachable, Message: unreachableMessage(err)}
	}
	return resp
}

func unreachableMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoReceiver):
		return "Could not reach the receiving context: " + err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out waiting for a response."
	case errors.Is(err, context.Canceled):
		return "Request cancelled."
	default:
		return err.Error()
	}
}
