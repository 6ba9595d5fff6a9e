package sign

import (
	"fmt"
	"net/mail"
	"slices"
	"time"
)

// SignerStatus tracks a signer's progress through the workflow.
// The normal flow is pending → sent → signed; declined and bounced are terminal
// failure states.
type SignerStatus string

const (
	SignerStatusPending  SignerStatus = "pending"
	SignerStatusSent     SignerStatus = "sent"
	SignerStatusSigned   SignerStatus = "signed"
	SignerStatusDeclined SignerStatus = "declined"
	SignerStatusBounced  SignerStatus = "bounced"
)

var validSignerStatusTransitions = map[SignerStatus][]SignerStatus{
	SignerStatusPending:  {SignerStatusSent, SignerStatusDeclined, SignerStatusBounced},
	SignerStatusSent:     {SignerStatusSigned, SignerStatusDeclined, SignerStatusBounced},
	SignerStatusSigned:   {}, // terminal state
	SignerStatusDeclined: {}, // terminal state
	SignerStatusBounced:  {}, // terminal state
}

// IsValidSignerStatusTransition checks if a transition from currentStatus to
// nextStatus is allowed.
func IsValidSignerStatusTransition(currentStatus, nextStatus SignerStatus) bool {
	validTransitions, ok := validSignerStatusTransitions[currentStatus]
	if !ok {
		return false
	}
	return slices.Contains(validTransitions, nextStatus)
}

// IsTerminal reports whether the signer status is absorbing.
func (s SignerStatus) IsTerminal() bool {
	transitions, ok := validSignerStatusTransitions[s]
	return ok && len(transitions) == 0
}

// Signer represents a named participant in a document's signing workflow.
type Signer struct {

	// ID: unique signer identifier. Signer ids are globally unique, not just
	// unique within their document.
	ID string `json:"id"`

	// Name: display name of the participant (required)
	Name string `json:"name"`

	// Email: contact address, validated as a conventional email shape (required)
	Email string `json:"email"`

	// Role: free-form participant role, e.g. "signer", "approver", "cc"
	Role string `json:"role,omitempty"`

	// Status: current workflow status (pending on creation)
	Status SignerStatus `json:"status"`

	// Order: signing position, unique within a document. Only consulted when the
	// document's signing order is sequential.
	Order int `json:"order"`

	// SignedAt: set exactly once, on the transition to signed
	SignedAt *time.Time `json:"signedAt,omitempty"`

	// ReminderCount: number of reminder notifications sent to this signer.
	// Maintained by the external reminder scheduler, not by the core.
	ReminderCount int `json:"reminderCount,omitempty"`

	// LastReminderAt: when the most recent reminder was sent. Maintained by the
	// external reminder scheduler, not by the core.
	LastReminderAt *time.Time `json:"lastReminderAt,omitempty"`

	// AuthRequirement: optional per-signer authentication requirement tag,
	// consumed by external collaborators (e.g. "sms", "id-check")
	AuthRequirement string `json:"authRequirement,omitempty"`
}

// ValidateStructure checks that all required signer attributes are present and
// well formed.
func (s *Signer) ValidateStructure() error {
	if s.Name == "" {
		return NewValidationError("signer name is required")
	}
	if s.Email == "" {
		return NewValidationError("signer email is required")
	}
	if _, err := mail.ParseAddress(s.Email); err != nil {
		return WrapValidationError(err, fmt.Sprintf("invalid signer email %q", s.Email))
	}
	return nil
}

// Clone returns a deep copy of the signer.
func (s *Signer) Clone() Signer {
	out := *s
	if s.SignedAt != nil {
		t := *s.SignedAt
		out.SignedAt = &t
	}
	if s.LastReminderAt != nil {
		t := *s.LastReminderAt
		out.LastReminderAt = &t
	}
	return out
}
