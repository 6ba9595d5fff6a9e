package sign

import (
	"slices"
	"time"
)

// DocumentSettings are cross-cutting configuration values consumed by external
// collaborators (reminder/notification senders, branding). They carry no
// internal logic.
type DocumentSettings struct {

	// ReminderEveryDays: days between automatic reminders; 0 disables them
	ReminderEveryDays int `json:"reminderEveryDays,omitempty"`

	// RequireAllPagesViewed: security flag enforced by the viewer layer
	RequireAllPagesViewed bool `json:"requireAllPagesViewed,omitempty"`

	// BrandingColor: hex color applied to the signing UI
	BrandingColor string `json:"brandingColor,omitempty"`

	// AuditTrailEnabled: whether external collaborators record an audit trail
	AuditTrailEnabled bool `json:"auditTrailEnabled,omitempty"`
}

// Document is the aggregate root: an uploaded source file plus the fields
// placed on its pages and the signers working through them. Fields and signers
// are owned by their document and have no independent lifetime.
type Document struct {

	// ID: unique document identifier
	ID string `json:"id"`

	// Title: display title (required)
	Title string `json:"title"`

	// Content: the opaque encoded source file payload. The model is
	// format-agnostic; the viewer's loader decides how to render it.
	Content []byte `json:"content,omitempty"`

	// ContentType: declared mime type of Content, a hint for the viewer's loader
	ContentType string `json:"contentType,omitempty"`

	// FileName: declared name of the uploaded file
	FileName string `json:"fileName,omitempty"`

	// Status: lifecycle stage; draft on creation
	Status DocumentStatus `json:"status"`

	// Fields: interactive fields, in insertion order. Order is irrelevant to
	// workflow semantics but stable for rendering and hit-test tie-breaks.
	Fields []Field `json:"fields"`

	// Signers: participants. Order in this list matters when SigningOrder is
	// sequential.
	Signers []Signer `json:"signers"`

	// SigningOrder: sequential or parallel fan-out when the document is sent
	SigningOrder SigningOrder `json:"signingOrder"`

	// Folder: folder the document is filed under
	Folder string `json:"folder,omitempty"`

	// Tags: free-form labels used for filtering and search
	Tags []string `json:"tags,omitempty"`

	// CreatedAt: when the document was created
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt: bumped on every mutation
	UpdatedAt time.Time `json:"updatedAt"`

	// CompletedAt: set when the document reaches completed
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// ExpiresAt: deadline checked by an external scheduler; the core never
	// auto-expires a document on its own
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`

	// Settings: configuration consumed by external collaborators
	Settings DocumentSettings `json:"settings,omitempty"`
}

// FieldByID returns the field with the given id, or nil if absent.
func (d *Document) FieldByID(fieldID string) *Field {
	for i := range d.Fields {
		if d.Fields[i].ID == fieldID {
			return &d.Fields[i]
		}
	}
	return nil
}

// SignerByID returns the signer with the given id, or nil if absent.
func (d *Document) SignerByID(signerID string) *Signer {
	for i := range d.Signers {
		if d.Signers[i].ID == signerID {
			return &d.Signers[i]
		}
	}
	return nil
}

// FieldsForSigner returns the fields assigned to the given signer. This is a
// query-time join on Field.SignerID; signers hold no back-pointers to fields.
// When includeUnassigned is true, unassigned fields are returned too, since any
// signer may fill them.
func (d *Document) FieldsForSigner(signerID string, includeUnassigned bool) []*Field {
	var out []*Field
	for i := range d.Fields {
		f := &d.Fields[i]
		if f.SignerID == signerID || (includeUnassigned && f.SignerID == "") {
			out = append(out, f)
		}
	}
	return out
}

// RequiredFieldsFilled reports whether every required field assigned to the
// signer (and every unassigned required field) carries a non-empty value.
func (d *Document) RequiredFieldsFilled(signerID string) bool {
	for _, f := range d.FieldsForSigner(signerID, true) {
		if f.Required && f.Value.IsEmpty() {
			return false
		}
	}
	return true
}

// CompletionSatisfied evaluates the completion predicate: every signer has
// signed and every required field is filled. A declined or bounced signer makes
// the predicate permanently false.
func (d *Document) CompletionSatisfied() bool {
	for i := range d.Signers {
		if d.Signers[i].Status != SignerStatusSigned {
			return false
		}
	}
	for i := range d.Fields {
		if d.Fields[i].Required && d.Fields[i].Value.IsEmpty() {
			return false
		}
	}
	return true
}

// ValidateStructure checks that the document aggregate is well formed,
// including every owned field and signer.
func (d *Document) ValidateStructure() error {
	if d.Title == "" {
		return NewValidationError("document title is required")
	}
	if !IsValidDocumentStatus(d.Status) {
		return NewValidationError("unknown document status " + string(d.Status))
	}
	if !IsValidSigningOrder(d.SigningOrder) {
		return NewValidationError("unknown signing order " + string(d.SigningOrder))
	}
	signerIDs := make(map[string]bool, len(d.Signers))
	for i := range d.Signers {
		if err := d.Signers[i].ValidateStructure(); err != nil {
			return WrapValidationError(err, "signer "+d.Signers[i].ID)
		}
		signerIDs[d.Signers[i].ID] = true
	}
	for i := range d.Fields {
		f := &d.Fields[i]
		if err := f.ValidateStructure(); err != nil {
			return WrapValidationError(err, "field "+f.ID)
		}
		if f.SignerID != "" && !signerIDs[f.SignerID] {
			return NewValidationError("field " + f.ID + " is assigned to unknown signer " + f.SignerID)
		}
	}

	// status coherence: the workflow never activates a signer before the
	// document is sent, and sequential mode keeps at most one signer active
	if d.Status == DocumentStatusDraft {
		for i := range d.Signers {
			if d.Signers[i].Status != SignerStatusPending {
				return NewValidationError("draft document has non-pending signer " + d.Signers[i].ID)
			}
		}
	}
	if d.SigningOrder == SigningOrderSequential {
		active := 0
		for i := range d.Signers {
			if d.Signers[i].Status == SignerStatusSent {
				active++
			}
		}
		if active > 1 {
			return NewValidationError("sequential document has more than one active signer")
		}
	}
	return nil
}

// Clone returns a deep copy of the document. The workflow engine transitions
// clones so that a failed operation leaves the caller's document untouched.
func (d *Document) Clone() *Document {
	out := *d
	if d.Content != nil {
		out.Content = slices.Clone(d.Content)
	}
	out.Fields = make([]Field, len(d.Fields))
	for i := range d.Fields {
		out.Fields[i] = d.Fields[i].Clone()
	}
	out.Signers = make([]Signer, len(d.Signers))
	for i := range d.Signers {
		out.Signers[i] = d.Signers[i].Clone()
	}
	if d.Tags != nil {
		out.Tags = slices.Clone(d.Tags)
	}
	if d.CompletedAt != nil {
		t := *d.CompletedAt
		out.CompletedAt = &t
	}
	if d.ExpiresAt != nil {
		t := *d.ExpiresAt
		out.ExpiresAt = &t
	}
	return &out
}
