// Package messaging implements the in-process event bus that connects the
// growth engine to its event handlers. Suitable for the single-process
// deployment model: publishing is synchronous and happens after the
// mutation that produced the event has been committed.
package messaging

import (
	"context"
	"errors"
	"sync"

	"github.com/jayai/growth-hub/internal/domain/shared"
	"github.com/jayai/growth-hub/pkg/logger"
)

// ErrBusClosed is returned when publishing or subscribing on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// Handler processes one domain event. Handler failures are logged and never
// propagate to the publisher: the mutation that produced the event has
// already been committed.
type Handler interface {
	// Name identifies the handler in logs.
	Name() string

	// Handle processes the event.
	Handle(ctx context.Context, event shared.Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc struct {
	HandlerName string
	Fn          func(ctx context.Context, event shared.Event) error
}

func (h HandlerFunc) Name() string { return h.HandlerName }

func (h HandlerFunc) Handle(ctx context.Context, event shared.Event) error {
	return h.Fn(ctx, event)
}

// EventBus dispatches domain events to subscribed handlers, in subscription
// order, on the publisher's goroutine.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[shared.EventType][]Handler
	closed   bool
	log      *logger.Logger
}

// NewEventBus creates an empty event bus.
func NewEventBus(log *logger.Logger) *EventBus {
	if log == nil {
		log = logger.Default()
	}
	return &EventBus{
		handlers: make(map[shared.EventType][]Handler),
		log:      log.With(logger.Component("eventbus")),
	}
}

// Subscribe registers a handler for the given event types.
func (b *EventBus) Subscribe(handler Handler, types ...shared.EventType) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	for _, t := range types {
		b.handlers[t] = append(b.handlers[t], handler)
	}
	return nil
}

// Publish delivers the event to every handler subscribed to its type.
// Handler errors are logged and swallowed.
func (b *EventBus) Publish(ctx context.Context, event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	handlers := make([]Handler, len(b.handlers[event.EventType()]))
	copy(handlers, b.handlers[event.EventType()])
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, event); err != nil {
			b.log.Error("event handler failed",
				logger.String("handler", h.Name()),
				logger.String("event_type", string(event.EventType())),
				logger.UserID(event.UserID()),
				logger.Err(err),
			)
		}
	}
	return nil
}

// Close stops the bus; further publishes and subscribes fail.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}
