// Package relay connects the isolated execution contexts (page, background,
// UI surface) with one-request-one-response JSON messaging.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"leetdoist/internal/log"
)

// Target names a context that can receive messages.
type Target string

const (
	Page       Target = "page"
	Background Target = "background"
)

var (
	// ErrNoReceiver means no listener in the target context took the message.
	ErrNoReceiver = errors.New("receiving end does not exist")
	// ErrAlreadyListening is returned when a target already has its responder.
	ErrAlreadyListening = errors.New("target already has a listener")
	// ErrHandlerFailed means the listener crashed before responding.
	ErrHandlerFailed = errors.New("listener failed before responding")
)

// Message is a request as seen by a listener.
type Message struct {
	Type string
	Data json.RawMessage
}

// Decode unmarshals the message body into v.
func (m Message) Decode(v any) error {
	return json.Unmarshal(m.Data, v)
}

// Handler answers a message. It returns false when it does not handle msg.Type.
type Handler func(ctx context.Context, msg Message) (resp any, handled bool)

type reply struct {
	data []byte
	err  error
}

type envelope struct {
	ctx   context.Context
	msg   Message
	reply chan reply
}

type listener struct {
	target  Target
	handler Handler
	inbox   chan envelope
	done    chan struct{}
	once    sync.Once
}

// Relay routes messages to at most one listener per target.
type Relay struct {
	mu        sync.RWMutex
	listeners map[Target]*listener
	log       log.Logger
}

// New returns a relay with no listeners.
func New(l log.Logger) *Relay {
	if l == nil {
		l = log.NewNop()
	}
	return &Relay{
		listeners: map[Target]*listener{},
		log:       l,
	}
}

// Listen installs h as the responder of target. Messages are handled one at
// a time in the listener's own goroutine. The returned stop function removes
// the listener; pending and later sends fail with ErrNoReceiver.
func (r *Relay) Listen(target Target, h Handler) (stop func(), err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listeners[target]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyListening, target)
	}

	l := &listener{
		target:  target,
		handler: h,
		inbox:   make(chan envelope),
		done:    make(chan struct{}),
	}
	r.listeners[target] = l
	go r.loop(l)

	return func() { r.stop(l) }, nil
}

func (r *Relay) stop(l *listener) {
	l.once.Do(func() {
		r.mu.Lock()
		if r.listeners[l.target] == l {
			delete(r.listeners, l.target)
		}
		r.mu.Unlock()
		close(l.done)
	})
}

func (r *Relay) loop(l *listener) {
	for {
		select {
		case <-l.done:
			return
		case env := <-l.inbox:
			env.reply <- r.serve(l, env)
		}
	}
}

func (r *Relay) serve(l *listener, env envelope) (rep reply) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Errorf(env.ctx, "relay: %s listener panicked on %s: %v", l.target, env.msg.Type, p)
			rep = reply{err: fmt.Errorf("%w: %v", ErrHandlerFailed, p)}
		}
	}()

	resp, handled := l.handler(env.ctx, env.msg)
	if !handled {
		return reply{err: fmt.Errorf("%w: %s does not handle %q", ErrNoReceiver, l.target, env.msg.Type)}
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return reply{err: fmt.Errorf("failed to encode %s response: %w", env.msg.Type, err)}
	}
	return reply{data: data}
}

// Send delivers req to target and decodes the single response into resp.
// req must marshal to a JSON object with a "type" field.
func (r *Relay) Send(ctx context.Context, target Target, req, resp any) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil || head.Type == "" {
		return fmt.Errorf("request has no message type")
	}

	r.mu.RLock()
	l, ok := r.listeners[target]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: no listener for %s", ErrNoReceiver, target)
	}

	env := envelope{
		ctx:   ctx,
		msg:   Message{Type: head.Type, Data: data},
		reply: make(chan reply, 1),
	}

	select {
	case l.inbox <- env:
	case <-l.done:
		return fmt.Errorf("%w: %s listener stopped", ErrNoReceiver, target)
	case <-ctx.Done():
		return ctx.Err()
	}

	r.log.Debugf(ctx, "relay: %s -> %s", head.Type, target)

	select {
	case rep := <-env.reply:
		if rep.err != nil {
			return rep.err
		}
		if resp == nil {
			return nil
		}
		if err := json.Unmarshal(rep.data, resp); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", head.Type, err)
		}
		return nil
	case <-l.done:
		return fmt.Errorf("%w: %s listener stopped", ErrNoReceiver, target)
	case <-ctx.Done():
		return ctx.Err()
	}
}
