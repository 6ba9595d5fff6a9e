package event

import "context"

// Publisher delivers workflow events to a sink. Implementations must be safe
// for concurrent use and must not block on slow consumers.
type Publisher interface {
	// Publish delivers one event. Errors are advisory: callers log them and move
	// on, they never fail the operation that produced the event.
	Publish(ctx context.Context, e Event) error

	// Close releases any resources held by the publisher.
	Close() error
}

// noop is the Publisher used when no sink is configured.
type noop struct{}

// Noop returns a Publisher that discards every event.
func Noop() Publisher { return &noop{} }

func (n *noop) Publish(ctx context.Context, e Event) error { return nil }
func (n *noop) Close() error                               { return nil }

// fanout delivers each event to every wrapped publisher.
type fanout struct {
	publishers []Publisher
}

// Fanout combines publishers, e.g. the in-process bus for narration plus the
// NATS publisher for notification senders. Publish delivers to all of them and
// returns the first error, after every publisher has been attempted.
func Fanout(publishers ...Publisher) Publisher {
	return &fanout{publishers: publishers}
}

func (f *fanout) Publish(ctx context.Context, e Event) error {
	var firstErr error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *fanout) Close() error {
	var firstErr error
	for _, p := range f.publishers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
