package narration

import (
	"fmt"

	"github.com/quillsign/quillsign/internal/event"
)

// Narrator renders workflow events into speech and hands them to an Announcer.
// It implements event.Handler, so wiring is one Subscribe call on the bus.
type Narrator struct {
	announcer *Announcer
}

// NewNarrator creates a narrator speaking through the given announcer.
func NewNarrator(a *Announcer) *Narrator {
	return &Narrator{announcer: a}
}

// Handle maps one event to an announcement. Unknown kinds stay silent.
func (n *Narrator) Handle(e event.Event) {
	text, priority, interrupt := phrase(e)
	if text == "" {
		return
	}
	n.announcer.Announce(text, priority, interrupt)
}

// phrase decides what an event sounds like. Terminal outcomes interrupt:
// hearing that a document was declined matters more than any queued
// field-by-field chatter.
func phrase(e event.Event) (string, Priority, bool) {
	title := e.DocumentTitle
	if title == "" {
		title = "the document"
	}

	switch e.Kind {
	case event.KindDocumentSent:
		return fmt.Sprintf("%s was sent for signing.", title), PriorityNormal, false
	case event.KindSignerAdvanced:
		return fmt.Sprintf("It is now %s's turn to sign %s.", e.SignerName, title), PriorityNormal, false
	case event.KindFieldFilled:
		label := e.FieldLabel
		if label == "" {
			label = "A field"
		}
		return fmt.Sprintf("%s was filled.", label), PriorityLow, false
	case event.KindSignerCompleted:
		return fmt.Sprintf("%s finished signing %s.", e.SignerName, title), PriorityNormal, false
	case event.KindSignerDeclined:
		return fmt.Sprintf("%s declined to sign %s.", e.SignerName, title), PriorityNormal, false
	case event.KindDocumentCompleted:
		return fmt.Sprintf("%s is fully signed.", title), PriorityHigh, true
	case event.KindDocumentDeclined:
		return fmt.Sprintf("%s was declined.", title), PriorityHigh, true
	case event.KindDocumentVoided:
		return fmt.Sprintf("%s was voided.", title), PriorityHigh, true
	case event.KindDocumentExpired:
		return fmt.Sprintf("%s expired before signing finished.", title), PriorityHigh, true
	case event.KindReminderSent:
		return fmt.Sprintf("A reminder was sent for %s.", title), PriorityLow, false
	}
	return "", PriorityLow, false
}
