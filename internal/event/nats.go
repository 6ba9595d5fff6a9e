package event

// nats.go publishes workflow events to NATS JetStream. This is the seam to the
// notification/email sender: delivery is best-effort and a missing or
// unreachable NATS server degrades to the noop publisher rather than failing
// the service.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	streamName     = "QUILLSIGN_EVENTS"
	subjectPattern = "quillsign.events.*"
	envelopeSchema = "1.0.0"
)

// natsPub is the NATS JetStream implementation of Publisher.
type natsPub struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

// NewNATSPublisher connects to the given NATS URL and ensures the event stream
// exists. If url is empty, or the connection or stream setup fails, it logs a
// warning and returns the noop publisher: event delivery is never a reason to
// refuse to start.
func NewNATSPublisher(url string, logger *slog.Logger) Publisher {
	if url == "" {
		return Noop()
	}

	nc, err := nats.Connect(url)
	if err != nil {
		logger.Warn("NATS connect failed, events disabled", slog.String("error", err.Error()))
		return Noop()
	}

	js, err := nc.JetStream()
	if err != nil {
		logger.Warn("NATS JetStream unavailable, events disabled", slog.String("error", err.Error()))
		nc.Close()
		return Noop()
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPattern},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Discard:   nats.DiscardOld,
		Storage:   nats.FileStorage,
	})
	if err != nil {
		logger.Warn("NATS stream setup failed, events disabled", slog.String("error", err.Error()))
		nc.Close()
		return Noop()
	}

	return &natsPub{nc: nc, js: js}
}

// Envelope wraps every published event with delivery metadata.
type Envelope struct {
	Type          Kind      `json:"type"`
	Version       string    `json:"version"`
	OccurredAt    time.Time `json:"occurredAt"`
	CorrelationID string    `json:"correlationId"`
	Payload       Event     `json:"payload"`
}

func (p *natsPub) Publish(ctx context.Context, e Event) error {
	envelope := Envelope{
		Type:          e.Kind,
		Version:       envelopeSchema,
		OccurredAt:    e.OccurredAt,
		CorrelationID: uuid.New().String(),
		Payload:       e,
	}

	b, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := fmt.Sprintf("quillsign.events.%s", e.Kind)
	if _, err := p.js.Publish(subject, b); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", e.Kind, err)
	}
	return nil
}

func (p *natsPub) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}
