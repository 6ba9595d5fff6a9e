// Package narration turns workflow events into spoken announcements. It is a
// best-effort side channel: nothing in the signing core blocks on narration,
// and a failing speaker is logged and forgotten.
package narration

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Priority orders queued announcements. Higher priorities are spoken first;
// equal priorities keep arrival order.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	}
	return "unknown"
}

// Announcement is one utterance waiting to be spoken.
type Announcement struct {
	Text     string
	Priority Priority

	// Interrupt: cancel whatever is currently being spoken and flush the
	// queue before enqueueing this announcement
	Interrupt bool
}

// Speaker produces the actual audio (or any other narration sink). Speak
// blocks until the utterance finishes or ctx is cancelled.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// SpeakerFunc adapts a function to the Speaker interface.
type SpeakerFunc func(ctx context.Context, text string) error

func (f SpeakerFunc) Speak(ctx context.Context, text string) error { return f(ctx, text) }

// Announcer serializes announcements through a single Speaker. Announcements
// form a priority queue, not a FIFO, and an interrupt announcement cancels the
// in-flight utterance and drops everything queued behind it.
type Announcer struct {
	speaker Speaker
	logger  *slog.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []Announcement
	speaking context.CancelFunc
	closed   bool
	done     chan struct{}
}

// New starts an announcer speaking through the given sink.
func New(speaker Speaker, logger *slog.Logger) *Announcer {
	a := &Announcer{
		speaker: speaker,
		logger:  logger,
		done:    make(chan struct{}),
	}
	a.cond = sync.NewCond(&a.mu)
	go a.loop()
	return a
}

// Announce enqueues an utterance. Never blocks on speech.
func (a *Announcer) Announce(text string, priority Priority, interrupt bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || text == "" {
		return
	}
	if interrupt {
		a.queue = a.queue[:0]
		if a.speaking != nil {
			a.speaking()
		}
	}

	// keep the queue sorted: before the first strictly lower priority entry,
	// after everything of the same priority
	at := len(a.queue)
	for i := range a.queue {
		if a.queue[i].Priority < priority {
			at = i
			break
		}
	}
	a.queue = slices.Insert(a.queue, at, Announcement{Text: text, Priority: priority, Interrupt: interrupt})
	a.cond.Signal()
}

// QueueDepth reports how many announcements are waiting (not counting one
// currently being spoken).
func (a *Announcer) QueueDepth() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

// Close cancels the in-flight utterance, drops the queue and waits for the
// speech loop to exit. Safe to call more than once.
func (a *Announcer) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return
	}
	a.closed = true
	a.queue = nil
	if a.speaking != nil {
		a.speaking()
	}
	a.cond.Broadcast()
	a.mu.Unlock()
	<-a.done
}

func (a *Announcer) loop() {
	defer close(a.done)
	for {
		a.mu.Lock()
		for len(a.queue) == 0 && !a.closed {
			a.cond.Wait()
		}
		if a.closed {
			a.mu.Unlock()
			return
		}
		next := a.queue[0]
		a.queue = a.queue[1:]

		ctx, cancel := context.WithCancel(context.Background())
		a.speaking = cancel
		a.mu.Unlock()

		err := a.speaker.Speak(ctx, next.Text)

		a.mu.Lock()
		a.speaking = nil
		a.mu.Unlock()
		cancel()

		if err != nil && ctx.Err() == nil {
			a.logger.Debug("narration sink failed",
				slog.String("text", next.Text),
				slog.String("priority", next.Priority.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}
