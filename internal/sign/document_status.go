package sign

import "slices"

// DocumentStatus is the lifecycle stage of a document. Transitions are checked
// against validDocumentStatusTransitions so that terminal statuses are absorbing.
type DocumentStatus string

const (
	DocumentStatusDraft      DocumentStatus = "draft"
	DocumentStatusSent       DocumentStatus = "sent"
	DocumentStatusInProgress DocumentStatus = "in_progress"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusDeclined   DocumentStatus = "declined"
	DocumentStatusExpired    DocumentStatus = "expired"
	DocumentStatusVoided     DocumentStatus = "voided"
)

// declined/expired/voided are reachable from any non-terminal status;
// completed is only reachable once every signer has signed.
var validDocumentStatusTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusDraft:      {DocumentStatusSent, DocumentStatusDeclined, DocumentStatusExpired, DocumentStatusVoided},
	DocumentStatusSent:       {DocumentStatusInProgress, DocumentStatusCompleted, DocumentStatusDeclined, DocumentStatusExpired, DocumentStatusVoided},
	DocumentStatusInProgress: {DocumentStatusCompleted, DocumentStatusDeclined, DocumentStatusExpired, DocumentStatusVoided},
	DocumentStatusCompleted:  {}, // terminal state
	DocumentStatusDeclined:   {}, // terminal state
	DocumentStatusExpired:    {}, // terminal state
	DocumentStatusVoided:     {}, // terminal state
}

// IsValidDocumentStatusTransition checks if a transition from currentStatus to
// nextStatus is allowed.
//
// Returns true if the transition is allowed, false otherwise.
func IsValidDocumentStatusTransition(currentStatus, nextStatus DocumentStatus) bool {
	validTransitions, ok := validDocumentStatusTransitions[currentStatus]
	if !ok {
		return false
	}
	return slices.Contains(validTransitions, nextStatus)
}

// IsTerminal reports whether the status is absorbing: once a document reaches a
// terminal status no operation may change its status again.
func (s DocumentStatus) IsTerminal() bool {
	transitions, ok := validDocumentStatusTransitions[s]
	return ok && len(transitions) == 0
}

// IsValidDocumentStatus reports whether s is a member of the status enumeration.
func IsValidDocumentStatus(s DocumentStatus) bool {
	_, ok := validDocumentStatusTransitions[s]
	return ok
}

// SigningOrder governs workflow fan-out when a document is sent.
type SigningOrder string

const (
	// SigningOrderSequential activates one signer at a time, in rank order.
	SigningOrderSequential SigningOrder = "sequential"

	// SigningOrderParallel activates every signer simultaneously.
	SigningOrderParallel SigningOrder = "parallel"
)

// IsValidSigningOrder reports whether o is a member of the signing-order enumeration.
func IsValidSigningOrder(o SigningOrder) bool {
	return o == SigningOrderSequential || o == SigningOrderParallel
}
