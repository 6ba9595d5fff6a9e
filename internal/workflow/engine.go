// Package workflow drives documents through the signing lifecycle. The engine
// holds no document state of its own: every operation takes a document,
// transitions a clone, and returns the next state. On error the input document
// is untouched; transitions never partially apply.
//
// Successful transitions emit semantic events (document sent, signer advanced,
// field filled, ...) to an event.Publisher. Emission is fire-and-forget: sink
// failures are logged and discarded, never surfaced to the caller.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillsign/quillsign/internal/event"
	"github.com/quillsign/quillsign/internal/metrics"
	"github.com/quillsign/quillsign/internal/sign"
)

// Engine applies workflow transitions and emits the resulting events.
type Engine struct {
	publisher event.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// New creates an engine publishing to the given sink.
func New(publisher event.Publisher, logger *slog.Logger) *Engine {
	return &Engine{
		publisher: publisher,
		logger:    logger,
		metrics:   metrics.New(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Send moves a draft document into the signing workflow.
//
// With parallel signing order every signer transitions pending → sent at once.
// With sequential order only the first signer by rank is activated; the rest
// stay pending until their predecessor completes.
func (e *Engine) Send(ctx context.Context, doc *sign.Document) (*sign.Document, error) {
	if doc.Status != sign.DocumentStatusDraft {
		return nil, sign.NewStateConflictError(fmt.Sprintf("document %s is %s, only drafts can be sent", doc.ID, doc.Status))
	}
	if len(doc.Signers) == 0 {
		return nil, sign.NewValidationError("document has no signers to send to")
	}
	// an imported draft may carry signer statuses Send never produced; refusing
	// here keeps sequential mode from ending up with two active signers
	for i := range doc.Signers {
		if doc.Signers[i].Status != sign.SignerStatusPending {
			return nil, sign.NewStateConflictError(fmt.Sprintf("signer %s is already %s, every signer of a draft must be pending", doc.Signers[i].ID, doc.Signers[i].Status))
		}
	}

	next := doc.Clone()
	next.Status = sign.DocumentStatusSent

	var activated []*sign.Signer
	switch next.SigningOrder {
	case sign.SigningOrderParallel:
		for i := range next.Signers {
			if next.Signers[i].Status == sign.SignerStatusPending {
				next.Signers[i].Status = sign.SignerStatusSent
				activated = append(activated, &next.Signers[i])
			}
		}
	default:
		if first := nextPendingSigner(next); first != nil {
			first.Status = sign.SignerStatusSent
			activated = append(activated, first)
		}
	}

	e.emit(ctx, event.Event{
		Kind:          event.KindDocumentSent,
		DocumentID:    next.ID,
		DocumentTitle: next.Title,
	})
	for _, signer := range activated {
		e.emit(ctx, event.Event{
			Kind:          event.KindSignerAdvanced,
			DocumentID:    next.ID,
			DocumentTitle: next.Title,
			SignerID:      signer.ID,
			SignerName:    signer.Name,
		})
	}
	return next, nil
}

// FillField records a value on one field on behalf of a signer. An empty
// actingSignerID means the document owner is filling in preview, which is only
// allowed for unassigned fields.
//
// Filling never changes the document's status. Repeating a fill with the same
// value is a no-op: the same document comes back and no event is emitted.
func (e *Engine) FillField(ctx context.Context, doc *sign.Document, fieldID, actingSignerID string, value *sign.FieldValue) (*sign.Document, error) {
	if doc.Status.IsTerminal() {
		return nil, sign.NewStateConflictError(fmt.Sprintf("document %s is %s and can no longer be filled", doc.ID, doc.Status))
	}

	field := doc.FieldByID(fieldID)
	if field == nil {
		return nil, sign.NewNotFoundError(fmt.Sprintf("field %s not found on document %s", fieldID, doc.ID))
	}

	if actingSignerID == "" {
		if field.SignerID != "" {
			return nil, sign.NewAuthorizationError(fmt.Sprintf("field %s is assigned to signer %s and cannot be filled by the owner", fieldID, field.SignerID))
		}
	} else {
		signer := doc.SignerByID(actingSignerID)
		if signer == nil {
			return nil, sign.NewNotFoundError(fmt.Sprintf("signer %s not found on document %s", actingSignerID, doc.ID))
		}
		if field.SignerID != "" && field.SignerID != actingSignerID {
			return nil, sign.NewAuthorizationError(fmt.Sprintf("field %s is assigned to signer %s, not %s", fieldID, field.SignerID, actingSignerID))
		}
		if doc.Status != sign.DocumentStatusDraft && signer.Status != sign.SignerStatusSent {
			return nil, sign.NewAuthorizationError(fmt.Sprintf("signer %s is %s and may not act yet", actingSignerID, signer.Status))
		}
	}

	if err := field.ValidateValue(value); err != nil {
		return nil, err
	}

	if field.Value.Equal(value) {
		return doc.Clone(), nil
	}

	next := doc.Clone()
	next.FieldByID(fieldID).Value = value.Clone()

	e.emit(ctx, event.Event{
		Kind:          event.KindFieldFilled,
		DocumentID:    next.ID,
		DocumentTitle: next.Title,
		SignerID:      actingSignerID,
		FieldID:       fieldID,
		FieldLabel:    field.Label,
	})
	return next, nil
}

// RecordSignerCompletion marks a signer as finished. The signer must be active
// (sent) and every required field assigned to them, plus every unassigned
// required field, must be filled.
//
// In sequential mode the next pending signer is then activated; when no signer
// remains and the completion predicate holds, the document completes.
func (e *Engine) RecordSignerCompletion(ctx context.Context, doc *sign.Document, signerID string) (*sign.Document, error) {
	signer := doc.SignerByID(signerID)
	if signer == nil {
		return nil, sign.NewNotFoundError(fmt.Sprintf("signer %s not found on document %s", signerID, doc.ID))
	}

	switch signer.Status {
	case sign.SignerStatusSent:
		// the only status completion is valid from
	case sign.SignerStatusPending:
		return nil, sign.NewAuthorizationError(fmt.Sprintf("signer %s has not been activated yet", signerID))
	default:
		return nil, sign.NewStateConflictError(fmt.Sprintf("signer %s is already %s", signerID, signer.Status))
	}

	if !doc.RequiredFieldsFilled(signerID) {
		return nil, sign.NewValidationError(fmt.Sprintf("signer %s still has unfilled required fields", signerID))
	}

	next := doc.Clone()
	completed := next.SignerByID(signerID)
	completed.Status = sign.SignerStatusSigned
	signedAt := e.now()
	completed.SignedAt = &signedAt

	e.emit(ctx, event.Event{
		Kind:          event.KindSignerCompleted,
		DocumentID:    next.ID,
		DocumentTitle: next.Title,
		SignerID:      completed.ID,
		SignerName:    completed.Name,
	})

	if next.SigningOrder == sign.SigningOrderSequential {
		if upcoming := nextPendingSigner(next); upcoming != nil {
			upcoming.Status = sign.SignerStatusSent
			e.emit(ctx, event.Event{
				Kind:          event.KindSignerAdvanced,
				DocumentID:    next.ID,
				DocumentTitle: next.Title,
				SignerID:      upcoming.ID,
				SignerName:    upcoming.Name,
			})
			return next, nil
		}
	}

	if next.CompletionSatisfied() {
		next.Status = sign.DocumentStatusCompleted
		completedAt := e.now()
		next.CompletedAt = &completedAt
		e.emit(ctx, event.Event{
			Kind:          event.KindDocumentCompleted,
			DocumentID:    next.ID,
			DocumentTitle: next.Title,
		})
	}
	return next, nil
}

// Decline records a signer's refusal. A declining signer permanently blocks
// completion, so the document moves to declined as well.
func (e *Engine) Decline(ctx context.Context, doc *sign.Document, signerID, reason string) (*sign.Document, error) {
	signer := doc.SignerByID(signerID)
	if signer == nil {
		return nil, sign.NewNotFoundError(fmt.Sprintf("signer %s not found on document %s", signerID, doc.ID))
	}
	if signer.Status.IsTerminal() {
		return nil, sign.NewStateConflictError(fmt.Sprintf("signer %s is already %s", signerID, signer.Status))
	}
	if doc.Status.IsTerminal() {
		return nil, sign.NewStateConflictError(fmt.Sprintf("document %s is already %s", doc.ID, doc.Status))
	}

	next := doc.Clone()
	next.SignerByID(signerID).Status = sign.SignerStatusDeclined
	next.Status = sign.DocumentStatusDeclined

	e.emit(ctx, event.Event{
		Kind:          event.KindSignerDeclined,
		DocumentID:    next.ID,
		DocumentTitle: next.Title,
		SignerID:      signerID,
		SignerName:    signer.Name,
		Reason:        reason,
	})
	e.emit(ctx, event.Event{
		Kind:          event.KindDocumentDeclined,
		DocumentID:    next.ID,
		DocumentTitle: next.Title,
		Reason:        reason,
	})
	return next, nil
}

// Void withdraws a document from circulation. Valid from any non-terminal status.
func (e *Engine) Void(ctx context.Context, doc *sign.Document, reason string) (*sign.Document, error) {
	if doc.Status.IsTerminal() {
		return nil, sign.NewStateConflictError(fmt.Sprintf("document %s is already %s", doc.ID, doc.Status))
	}

	next := doc.Clone()
	next.Status = sign.DocumentStatusVoided
	e.emit(ctx, event.Event{
		Kind:          event.KindDocumentVoided,
		DocumentID:    next.ID,
		DocumentTitle: next.Title,
		Reason:        reason,
	})
	return next, nil
}

// Expire marks a document past its deadline. The engine never expires a
// document on its own; an external scheduler checks expiresAt and calls this.
func (e *Engine) Expire(ctx context.Context, doc *sign.Document) (*sign.Document, error) {
	if doc.Status.IsTerminal() {
		return nil, sign.NewStateConflictError(fmt.Sprintf("document %s is already %s", doc.ID, doc.Status))
	}

	next := doc.Clone()
	next.Status = sign.DocumentStatusExpired
	e.emit(ctx, event.Event{
		Kind:          event.KindDocumentExpired,
		DocumentID:    next.ID,
		DocumentTitle: next.Title,
	})
	return next, nil
}

// Progress summarises required-field completion for progress bars and for the
// completion predicate.
type Progress struct {

	// Completed: required fields carrying a non-empty value
	Completed int `json:"completed"`

	// Required: total required fields on the document
	Required int `json:"required"`
}

// Progress counts filled vs. total required fields. Read-only.
func (e *Engine) Progress(doc *sign.Document) Progress {
	var p Progress
	for i := range doc.Fields {
		if !doc.Fields[i].Required {
			continue
		}
		p.Required++
		if !doc.Fields[i].Value.IsEmpty() {
			p.Completed++
		}
	}
	return p
}

// nextPendingSigner picks the pending signer with the lowest (order, id) pair.
// Sorting by id second makes the choice deterministic even when two signers
// share an order value, so sequential mode never activates more than one
// signer at a time.
func nextPendingSigner(doc *sign.Document) *sign.Signer {
	var best *sign.Signer
	for i := range doc.Signers {
		s := &doc.Signers[i]
		if s.Status != sign.SignerStatusPending {
			continue
		}
		if best == nil || s.Order < best.Order || (s.Order == best.Order && s.ID < best.ID) {
			best = s
		}
	}
	return best
}

// emit publishes one event, stamping the time. Failures are logged and dropped.
func (e *Engine) emit(ctx context.Context, ev event.Event) {
	ev.OccurredAt = e.now()
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.metrics.EventPublishTotal.WithLabelValues(string(ev.Kind), "error").Inc()
		e.logger.Warn("event publish failed",
			slog.String("kind", string(ev.Kind)),
			slog.String("document_id", ev.DocumentID),
			slog.String("error", err.Error()),
		)
		return
	}
	e.metrics.EventPublishTotal.WithLabelValues(string(ev.Kind), "ok").Inc()
}
