package event

import (
	"context"
	"sync"
)

// Handler consumes one event. Handlers must not block: the bus delivers
// synchronously so that in-process subscribers (narration) observe events in
// the order the workflow produced them.
type Handler func(Event)

// Bus is the in-process Publisher used for local subscribers. It implements
// Publisher so the workflow engine does not care whether events go to NATS, to
// the narration adapter, or both (via Fanout).
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	closed   bool
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all subsequent events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers the event to every subscriber in registration order.
// A closed bus drops events silently.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}
	for _, h := range b.handlers {
		h(e)
	}
	return nil
}

// Close stops delivery. Safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
