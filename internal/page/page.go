// Package page is the page context: it reads problem data out of the
// rendered page on request.
package page

import (
	"context"
	"errors"

	"leetdoist/internal/log"
	"leetdoist/internal/problem"
	"leetdoist/internal/relay"
)

const (
	msgNotProblemPage = "Open a LeetCode problem to create a task."
	msgStillLoading   = "Still loading the problem. Try again in a moment."
	msgUnreadable     = "Unable to read the problem right now."
	msgCancelled      = "Stopped reading the problem before the page finished loading."
)

// Handler answers getProblemData for one page.
type Handler struct {
	src problem.Source
	cfg problem.PollConfig
	log log.Logger
}

// NewHandler returns a Handler polling src with cfg.
func NewHandler(src problem.Source, cfg problem.PollConfig, l log.Logger) *Handler {
	if l == nil {
		l = log.NewNop()
	}
	return &Handler{src: src, cfg: cfg, log: l}
}

// Retrieve runs the extractor and classifies the result.
func (h *Handler) Retrieve(ctx context.Context) relay.GetProblemDataResponse {
	data, err := problem.Poll(ctx, loggedSource{Source: h.src, log: h.log}, h.cfg)
	switch {
	case err == nil:
		h.log.Debugf(ctx, "page: found %q at %s", data.Title, data.URL)
		return relay.GetProblemDataResponse{OK: true, Data: &data}
	case errors.Is(err, problem.ErrNotProblemPage):
		return relay.GetProblemDataResponse{Error: relay.KindNotProblemPage, Message: msgNotProblemPage}
	case errors.Is(err, problem.ErrExtractionTimeout):
		h.log.Infof(ctx, "page: %v", err)
		return relay.GetProblemDataResponse{Error: relay.KindExtractionTimeout, Message: msgStillLoading}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.log.Infof(ctx, "page: %v", err)
		return relay.GetProblemDataResponse{Error: relay.KindCancelled, Message: msgCancelled}
	default:
		h.log.Warnf(ctx, "page: %v", err)
		return relay.GetProblemDataResponse{Error: relay.KindPageError, Message: msgUnreadable + " " + err.Error()}
	}
}

// loggedSource reports every failed snapshot; Poll keeps only the last one.
type loggedSource struct {
	problem.Source
	log log.Logger
}

func (s loggedSource) Snapshot(ctx context.Context) (problem.Document, error) {
	doc, err := s.Source.Snapshot(ctx)
	if err != nil {
		s.log.Debugf(ctx, "page: snapshot failed: %v", err)
	}
	return doc, err
}

// Handle answers getProblemData messages.
func (h *Handler) Handle(ctx context.Context, msg relay.Message) (any, bool) {
	if msg.Type != relay.TypeGetProblemData {
		return nil, false
	}
	return h.Retrieve(ctx), true
}

// Serve registers h as the page listener.
func (h *Handler) Serve(r *relay.Relay) (stop func(), err error) {
	return r.Listen(relay.Page, h.Handle)
}
