package sign

import "testing"

func TestDocumentStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    DocumentStatus
		to      DocumentStatus
		allowed bool
	}{
		{"draft to sent", DocumentStatusDraft, DocumentStatusSent, true},
		{"draft to voided", DocumentStatusDraft, DocumentStatusVoided, true},
		{"draft to completed", DocumentStatusDraft, DocumentStatusCompleted, false},
		{"sent to in_progress", DocumentStatusSent, DocumentStatusInProgress, true},
		{"sent to completed", DocumentStatusSent, DocumentStatusCompleted, true},
		{"sent to draft", DocumentStatusSent, DocumentStatusDraft, false},
		{"in_progress to declined", DocumentStatusInProgress, DocumentStatusDeclined, true},
		{"completed is absorbing", DocumentStatusCompleted, DocumentStatusVoided, false},
		{"declined is absorbing", DocumentStatusDeclined, DocumentStatusSent, false},
		{"expired is absorbing", DocumentStatusExpired, DocumentStatusDraft, false},
		{"voided is absorbing", DocumentStatusVoided, DocumentStatusCompleted, false},
		{"unknown status", DocumentStatus("bogus"), DocumentStatusSent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidDocumentStatusTransition(tt.from, tt.to); got != tt.allowed {
				t.Errorf("IsValidDocumentStatusTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestDocumentStatusIsTerminal(t *testing.T) {
	terminal := []DocumentStatus{DocumentStatusCompleted, DocumentStatusDeclined, DocumentStatusExpired, DocumentStatusVoided}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	active := []DocumentStatus{DocumentStatusDraft, DocumentStatusSent, DocumentStatusInProgress}
	for _, s := range active {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestSignerStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    SignerStatus
		to      SignerStatus
		allowed bool
	}{
		{"pending to sent", SignerStatusPending, SignerStatusSent, true},
		{"pending to signed", SignerStatusPending, SignerStatusSigned, false},
		{"sent to signed", SignerStatusSent, SignerStatusSigned, true},
		{"sent to declined", SignerStatusSent, SignerStatusDeclined, true},
		{"signed is absorbing", SignerStatusSigned, SignerStatusSent, false},
		{"declined is absorbing", SignerStatusDeclined, SignerStatusSent, false},
		{"bounced is absorbing", SignerStatusBounced, SignerStatusSent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidSignerStatusTransition(tt.from, tt.to); got != tt.allowed {
				t.Errorf("IsValidSignerStatusTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}
