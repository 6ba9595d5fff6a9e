// Package store provides the in-memory document store. It is the single
// authority over Document instances: every mutation goes through it so that
// updatedAt stamps and structural invariants stay consistent.
//
// State is volatile by design (the product keeps everything in memory);
// callers wanting durability use sign.ExportDocument. The store is safe for
// concurrent use and hands out deep copies, so callers can never alias or
// mutate its internal state directly.
package store

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quillsign/quillsign/internal/sign"
)

// Store is the in-memory collection of documents.
type Store struct {
	mu        sync.RWMutex
	documents map[string]*sign.Document

	// signerDocs maps signer id to owning document id. Signer ids are globally
	// unique, so UpdateSigner can locate its document without a scan.
	signerDocs map[string]string

	now func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		documents:  make(map[string]*sign.Document),
		signerDocs: make(map[string]string),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create builds a new draft document with the given title and raw content.
// New documents start with no fields or signers and a sequential signing order.
// Create never fails.
func (s *Store) Create(title string, content []byte, contentType, fileName string) *sign.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	doc := &sign.Document{
		ID:           uuid.New().String(),
		Title:        title,
		Content:      slices.Clone(content),
		ContentType:  contentType,
		FileName:     fileName,
		Status:       sign.DocumentStatusDraft,
		Fields:       []sign.Field{},
		Signers:      []sign.Signer{},
		SigningOrder: sign.SigningOrderSequential,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.documents[doc.ID] = doc
	return doc.Clone()
}

// Get returns a copy of the document with the given id.
func (s *Store) Get(id string) (*sign.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.documents[id]
	if !exists {
		return nil, sign.NewNotFoundError(fmt.Sprintf("document %s not found", id))
	}
	return doc.Clone(), nil
}

// List returns copies of all documents, newest first.
func (s *Store) List() []*sign.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(d *sign.Document) bool { return true })
}

// DocumentUpdate carries the partial changes Update merges into a document.
// Nil members are left untouched.
type DocumentUpdate struct {
	Title        *string
	Folder       *string
	Tags         *[]string
	SigningOrder *sign.SigningOrder
	ExpiresAt    *time.Time
	Settings     *sign.DocumentSettings
}

// Update merges the given changes into the document and bumps updatedAt.
func (s *Store) Update(id string, changes DocumentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, exists := s.documents[id]
	if !exists {
		return sign.NewNotFoundError(fmt.Sprintf("document %s not found", id))
	}

	if changes.Title != nil {
		if *changes.Title == "" {
			return sign.NewValidationError("document title cannot be empty")
		}
		doc.Title = *changes.Title
	}
	if changes.SigningOrder != nil {
		if !sign.IsValidSigningOrder(*changes.SigningOrder) {
			return sign.NewValidationError(fmt.Sprintf("unknown signing order %q", *changes.SigningOrder))
		}
		// flipping the order mid-flight would strand signers activated under
		// the old mode
		if *changes.SigningOrder != doc.SigningOrder && doc.Status != sign.DocumentStatusDraft {
			return sign.NewStateConflictError(fmt.Sprintf("signing order of document %s can only change while it is a draft", doc.ID))
		}
		doc.SigningOrder = *changes.SigningOrder
	}
	if changes.Folder != nil {
		doc.Folder = *changes.Folder
	}
	if changes.Tags != nil {
		doc.Tags = slices.Clone(*changes.Tags)
	}
	if changes.ExpiresAt != nil {
		t := *changes.ExpiresAt
		doc.ExpiresAt = &t
	}
	if changes.Settings != nil {
		doc.Settings = *changes.Settings
	}
	doc.UpdatedAt = s.now()
	return nil
}

// Delete removes the document and everything it owns. Deleting an absent id is
// a no-op: delete is idempotent.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, exists := s.documents[id]
	if !exists {
		return
	}
	for i := range doc.Signers {
		delete(s.signerDocs, doc.Signers[i].ID)
	}
	delete(s.documents, id)
}

// Duplicate creates a new draft from an existing document: same content and
// field layout under fresh ids, signers reset to pending with signedAt cleared.
// Field values are not carried over; the copy starts unfilled, as any
// author-created field does.
func (s *Store) Duplicate(id string) (*sign.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, exists := s.documents[id]
	if !exists {
		return nil, sign.NewNotFoundError(fmt.Sprintf("document %s not found", id))
	}

	now := s.now()
	dup := src.Clone()
	dup.ID = uuid.New().String()
	dup.Title = src.Title + " (copy)"
	dup.Status = sign.DocumentStatusDraft
	dup.CreatedAt = now
	dup.UpdatedAt = now
	dup.CompletedAt = nil

	// fresh signer ids, statuses reset; remember the mapping so field
	// assignments can follow
	signerIDs := make(map[string]string, len(dup.Signers))
	for i := range dup.Signers {
		oldID := dup.Signers[i].ID
		dup.Signers[i].ID = uuid.New().String()
		dup.Signers[i].Status = sign.SignerStatusPending
		dup.Signers[i].SignedAt = nil
		dup.Signers[i].ReminderCount = 0
		dup.Signers[i].LastReminderAt = nil
		signerIDs[oldID] = dup.Signers[i].ID
	}
	for i := range dup.Fields {
		dup.Fields[i].ID = uuid.New().String()
		dup.Fields[i].Value = nil
		if mapped, ok := signerIDs[dup.Fields[i].SignerID]; ok {
			dup.Fields[i].SignerID = mapped
		}
	}

	s.documents[dup.ID] = dup
	for i := range dup.Signers {
		s.signerDocs[dup.Signers[i].ID] = dup.ID
	}
	return dup.Clone(), nil
}

// Adopt inserts an externally produced document, typically a verified import.
// Statuses, values and timestamps are preserved, but the document, its signers
// and its fields all get fresh ids so an import can never collide with what is
// already stored. Field assignments follow the signer id remapping.
func (s *Store) Adopt(doc *sign.Document) *sign.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	adopted := doc.Clone()
	adopted.ID = uuid.New().String()
	adopted.UpdatedAt = s.now()

	signerIDs := make(map[string]string, len(adopted.Signers))
	for i := range adopted.Signers {
		oldID := adopted.Signers[i].ID
		adopted.Signers[i].ID = uuid.New().String()
		signerIDs[oldID] = adopted.Signers[i].ID
	}
	for i := range adopted.Fields {
		adopted.Fields[i].ID = uuid.New().String()
		if mapped, ok := signerIDs[adopted.Fields[i].SignerID]; ok {
			adopted.Fields[i].SignerID = mapped
		}
	}

	s.documents[adopted.ID] = adopted
	for i := range adopted.Signers {
		s.signerDocs[adopted.Signers[i].ID] = adopted.ID
	}
	return adopted.Clone()
}

// editable rejects structural mutations on documents in a terminal status. A
// completed, declined, expired or voided document is a frozen record: growing
// or shrinking its fields and signers would invalidate the state it settled in.
func editable(doc *sign.Document) error {
	if doc.Status.IsTerminal() {
		return sign.NewStateConflictError(fmt.Sprintf("document %s is %s and can no longer be edited", doc.ID, doc.Status))
	}
	return nil
}

// AddField validates and appends a field to the document, assigning it a fresh
// id. Returns the new field's id.
func (s *Store) AddField(documentID string, field sign.Field) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, exists := s.documents[documentID]
	if !exists {
		return "", sign.NewNotFoundError(fmt.Sprintf("document %s not found", documentID))
	}
	if err := editable(doc); err != nil {
		return "", err
	}
	if err := field.ValidateStructure(); err != nil {
		return "", err
	}
	if field.SignerID != "" && doc.SignerByID(field.SignerID) == nil {
		return "", sign.NewValidationError(fmt.Sprintf("signer %s is not on document %s", field.SignerID, documentID))
	}

	field.ID = uuid.New().String()
	field.Value = nil // fields always start unfilled
	doc.Fields = append(doc.Fields, field)
	doc.UpdatedAt = s.now()
	return field.ID, nil
}

// FieldUpdate carries the partial changes UpdateField merges into a field.
// Nil members are left untouched.
type FieldUpdate struct {
	Geometry   *sign.Geometry
	SignerID   *string
	Required   *bool
	Label      *string
	Tooltip    *string
	Validation *sign.ValidationRule
	Options    *[]string
}

// UpdateField merges changes into one field and re-stamps the parent
// document's updatedAt.
func (s *Store) UpdateField(documentID, fieldID string, changes FieldUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, exists := s.documents[documentID]
	if !exists {
		return sign.NewNotFoundError(fmt.Sprintf("document %s not found", documentID))
	}
	if err := editable(doc); err != nil {
		return err
	}
	field := doc.FieldByID(fieldID)
	if field == nil {
		return sign.NewNotFoundError(fmt.Sprintf("field %s not found on document %s", fieldID, documentID))
	}

	updated := field.Clone()
	if changes.Geometry != nil {
		updated.Geometry = *changes.Geometry
	}
	if changes.SignerID != nil {
		if *changes.SignerID != "" && doc.SignerByID(*changes.SignerID) == nil {
			return sign.NewValidationError(fmt.Sprintf("signer %s is not on document %s", *changes.SignerID, documentID))
		}
		updated.SignerID = *changes.SignerID
	}
	if changes.Required != nil {
		updated.Required = *changes.Required
	}
	if changes.Label != nil {
		updated.Label = *changes.Label
	}
	if changes.Tooltip != nil {
		updated.Tooltip = *changes.Tooltip
	}
	if changes.Validation != nil {
		v := *changes.Validation
		updated.Validation = &v
	}
	if changes.Options != nil {
		updated.Options = slices.Clone(*changes.Options)
	}
	if err := updated.ValidateStructure(); err != nil {
		return err
	}

	*field = updated
	doc.UpdatedAt = s.now()
	return nil
}

// DeleteField removes a field from the document.
func (s *Store) DeleteField(documentID, fieldID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, exists := s.documents[documentID]
	if !exists {
		return sign.NewNotFoundError(fmt.Sprintf("document %s not found", documentID))
	}
	if err := editable(doc); err != nil {
		return err
	}
	for i := range doc.Fields {
		if doc.Fields[i].ID == fieldID {
			doc.Fields = slices.Delete(doc.Fields, i, i+1)
			doc.UpdatedAt = s.now()
			return nil
		}
	}
	return sign.NewNotFoundError(fmt.Sprintf("field %s not found on document %s", fieldID, documentID))
}

// AddSigner validates and appends a signer. The new signer starts pending and
// is placed after every existing signer, keeping orders unique even after
// removals. Returns the new signer's id.
func (s *Store) AddSigner(documentID string, signer sign.Signer) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, exists := s.documents[documentID]
	if !exists {
		return "", sign.NewNotFoundError(fmt.Sprintf("document %s not found", documentID))
	}
	if err := editable(doc); err != nil {
		return "", err
	}
	if err := signer.ValidateStructure(); err != nil {
		return "", err
	}

	maxOrder := 0
	for i := range doc.Signers {
		if doc.Signers[i].Order > maxOrder {
			maxOrder = doc.Signers[i].Order
		}
	}

	signer.ID = uuid.New().String()
	signer.Status = sign.SignerStatusPending
	signer.Order = maxOrder + 1
	signer.SignedAt = nil
	doc.Signers = append(doc.Signers, signer)
	doc.UpdatedAt = s.now()

	s.signerDocs[signer.ID] = doc.ID
	return signer.ID, nil
}

// SignerUpdate carries the partial changes UpdateSigner merges into a signer.
// Nil members are left untouched.
type SignerUpdate struct {
	Name            *string
	Email           *string
	Role            *string
	AuthRequirement *string
}

// UpdateSigner locates the signer by its globally unique id and merges changes.
func (s *Store) UpdateSigner(signerID string, changes SignerUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docID, exists := s.signerDocs[signerID]
	if !exists {
		return sign.NewNotFoundError(fmt.Sprintf("signer %s not found", signerID))
	}
	doc := s.documents[docID]
	if err := editable(doc); err != nil {
		return err
	}
	signer := doc.SignerByID(signerID)
	if signer == nil {
		return sign.NewNotFoundError(fmt.Sprintf("signer %s not found", signerID))
	}

	updated := signer.Clone()
	if changes.Name != nil {
		updated.Name = *changes.Name
	}
	if changes.Email != nil {
		updated.Email = *changes.Email
	}
	if changes.Role != nil {
		updated.Role = *changes.Role
	}
	if changes.AuthRequirement != nil {
		updated.AuthRequirement = *changes.AuthRequirement
	}
	if err := updated.ValidateStructure(); err != nil {
		return err
	}

	*signer = updated
	doc.UpdatedAt = s.now()
	return nil
}

// RemoveSigner deletes the signer from the document and cascades deletion of
// the fields exclusively assigned to it. Unassigned fields are untouched.
func (s *Store) RemoveSigner(documentID, signerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, exists := s.documents[documentID]
	if !exists {
		return sign.NewNotFoundError(fmt.Sprintf("document %s not found", documentID))
	}
	if err := editable(doc); err != nil {
		return err
	}

	idx := -1
	for i := range doc.Signers {
		if doc.Signers[i].ID == signerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return sign.NewNotFoundError(fmt.Sprintf("signer %s not found on document %s", signerID, documentID))
	}

	doc.Signers = slices.Delete(doc.Signers, idx, idx+1)
	doc.Fields = slices.DeleteFunc(doc.Fields, func(f sign.Field) bool {
		return f.SignerID == signerID
	})
	delete(s.signerDocs, signerID)
	doc.UpdatedAt = s.now()
	return nil
}

// Replace swaps in a new state for an existing document, bumping updatedAt.
// The workflow engine transitions a copy of a document; the caller applies the
// result back through Replace so all mutation stays inside the store.
func (s *Store) Replace(doc *sign.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.documents[doc.ID]
	if !exists {
		return sign.NewNotFoundError(fmt.Sprintf("document %s not found", doc.ID))
	}

	replacement := doc.Clone()
	replacement.CreatedAt = current.CreatedAt
	replacement.UpdatedAt = s.now()

	for i := range current.Signers {
		delete(s.signerDocs, current.Signers[i].ID)
	}
	s.documents[doc.ID] = replacement
	for i := range replacement.Signers {
		s.signerDocs[replacement.Signers[i].ID] = doc.ID
	}
	return nil
}

// ListByFolder returns copies of the documents filed under the given folder.
func (s *Store) ListByFolder(folder string) []*sign.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(d *sign.Document) bool { return d.Folder == folder })
}

// ListByTag returns copies of the documents carrying the given tag.
func (s *Store) ListByTag(tag string) []*sign.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(d *sign.Document) bool { return slices.Contains(d.Tags, tag) })
}

// ListByStatus returns copies of the documents in the given status.
func (s *Store) ListByStatus(status sign.DocumentStatus) []*sign.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(d *sign.Document) bool { return d.Status == status })
}

// Search returns copies of the documents matching the query: case-insensitive
// substring match across title, signer names, signer emails and tags, with OR
// semantics across those attributes.
func (s *Store) Search(query string) []*sign.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	return s.collect(func(d *sign.Document) bool {
		if strings.Contains(strings.ToLower(d.Title), q) {
			return true
		}
		for i := range d.Signers {
			if strings.Contains(strings.ToLower(d.Signers[i].Name), q) ||
				strings.Contains(strings.ToLower(d.Signers[i].Email), q) {
				return true
			}
		}
		for _, tag := range d.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	})
}

// collect gathers document copies matching the predicate, newest first.
// Callers must hold at least a read lock.
func (s *Store) collect(match func(*sign.Document) bool) []*sign.Document {
	out := make([]*sign.Document, 0)
	for _, doc := range s.documents {
		if match(doc) {
			out = append(out, doc.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *sign.Document) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(a.ID, b.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return out
}
