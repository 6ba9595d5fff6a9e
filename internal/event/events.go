// Package event carries the semantic events the workflow engine emits and the
// publishers that deliver them to external collaborators (narration,
// notification/email senders).
//
// Publishing is fire-and-forget: the engine never blocks on a sink and a
// publish failure is logged and discarded, never surfaced as a workflow error.
package event

import "time"

// Kind identifies the semantic event type.
type Kind string

const (
	// KindDocumentSent: a draft document entered the signing workflow.
	KindDocumentSent Kind = "document.sent"

	// KindSignerAdvanced: the workflow moved on to a new active signer
	// (sequential mode) or activated a signer (parallel mode). Notification
	// senders use this to tell the signer it is their turn.
	KindSignerAdvanced Kind = "signer.advanced"

	// KindFieldFilled: a signer filled a field.
	KindFieldFilled Kind = "field.filled"

	// KindSignerCompleted: a signer finished all of their required fields.
	KindSignerCompleted Kind = "signer.completed"

	// KindSignerDeclined: a signer declined to sign.
	KindSignerDeclined Kind = "signer.declined"

	// KindDocumentCompleted: every signer signed; the document is done.
	KindDocumentCompleted Kind = "document.completed"

	// KindDocumentDeclined: the document can no longer complete.
	KindDocumentDeclined Kind = "document.declined"

	// KindDocumentVoided: the owner withdrew the document.
	KindDocumentVoided Kind = "document.voided"

	// KindDocumentExpired: an external scheduler expired the document.
	KindDocumentExpired Kind = "document.expired"

	// KindReminderSent: a reminder notification went out to a signer. The core
	// never emits this kind; the external reminder scheduler publishes it on
	// the same bus and the narrator announces it like any other event.
	KindReminderSent Kind = "reminder.sent"
)

// Event is one semantic workflow event. Only the members relevant to the kind
// are populated; the rest are zero.
type Event struct {

	// Kind: the event type (always set)
	Kind Kind `json:"kind"`

	// DocumentID: the document the event concerns (always set)
	DocumentID string `json:"documentId"`

	// DocumentTitle: display title, so sinks need not look the document up
	DocumentTitle string `json:"documentTitle,omitempty"`

	// SignerID / SignerName: the signer involved, for signer-scoped events
	SignerID   string `json:"signerId,omitempty"`
	SignerName string `json:"signerName,omitempty"`

	// FieldID / FieldLabel: the field involved, for field-scoped events
	FieldID    string `json:"fieldId,omitempty"`
	FieldLabel string `json:"fieldLabel,omitempty"`

	// Reason: free text, e.g. a decline reason
	Reason string `json:"reason,omitempty"`

	// OccurredAt: when the event happened
	OccurredAt time.Time `json:"occurredAt"`
}
