package store

import (
	"errors"
	"testing"
	"time"

	"github.com/quillsign/quillsign/internal/sign"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	// deterministic but advancing clock so updatedAt ordering is observable
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func addSigner(t *testing.T, s *Store, docID, name, email string) string {
	t.Helper()
	id, err := s.AddSigner(docID, sign.Signer{Name: name, Email: email, Role: "signer"})
	if err != nil {
		t.Fatalf("AddSigner(%s) failed: %v", name, err)
	}
	return id
}

func addField(t *testing.T, s *Store, docID string, field sign.Field) string {
	t.Helper()
	id, err := s.AddField(docID, field)
	if err != nil {
		t.Fatalf("AddField failed: %v", err)
	}
	return id
}

func signatureField(signerID string, required bool) sign.Field {
	return sign.Field{
		Kind:     sign.FieldKindSignature,
		SignerID: signerID,
		Required: required,
		Geometry: sign.Geometry{Page: 1, X: 10, Y: 80, Width: 25, Height: 5},
	}
}

func expectCode(t *testing.T, err error, code sign.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var signErr *sign.SignError
	if !errors.As(err, &signErr) {
		t.Fatalf("expected *sign.SignError, got %T: %v", err, err)
	}
	if signErr.Code() != code {
		t.Fatalf("error code = %s, want %s (%v)", signErr.Code(), code, err)
	}
}

func TestCreateDefaults(t *testing.T) {
	s := newTestStore(t)

	doc := s.Create("NDA", []byte("%PDF-1.7"), "application/pdf", "nda.pdf")

	if doc.Status != sign.DocumentStatusDraft {
		t.Errorf("status = %s, want draft", doc.Status)
	}
	if doc.SigningOrder != sign.SigningOrderSequential {
		t.Errorf("signing order = %s, want sequential", doc.SigningOrder)
	}
	if len(doc.Fields) != 0 || len(doc.Signers) != 0 {
		t.Error("new document should have no fields or signers")
	}
	if doc.CreatedAt.IsZero() || !doc.UpdatedAt.Equal(doc.CreatedAt) {
		t.Error("timestamps should be set and equal on creation")
	}
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("NDA", nil, "", "")

	copy1, err := s.Get(doc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	copy1.Title = "mutated"

	copy2, err := s.Get(doc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if copy2.Title != "NDA" {
		t.Error("mutating a returned copy leaked into the store")
	}
}

func TestGetUnknownDocument(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get("missing")
	expectCode(t, err, sign.ErrCodeNotFound)
}

func TestUpdateMergesPartialChanges(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("NDA", nil, "", "")

	title := "Mutual NDA"
	order := sign.SigningOrderParallel
	if err := s.Update(doc.ID, DocumentUpdate{Title: &title, SigningOrder: &order}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := s.Get(doc.ID)
	if got.Title != "Mutual NDA" || got.SigningOrder != sign.SigningOrderParallel {
		t.Errorf("partial update not applied: %s/%s", got.Title, got.SigningOrder)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Error("updatedAt should be bumped on mutation")
	}
}

func TestUpdateRejectsEmptyTitle(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("NDA", nil, "", "")

	empty := ""
	err := s.Update(doc.ID, DocumentUpdate{Title: &empty})
	expectCode(t, err, sign.ErrCodeValidation)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("NDA", nil, "", "")
	addSigner(t, s, doc.ID, "Ada Lovelace", "ada@example.com")

	s.Delete(doc.ID)
	s.Delete(doc.ID) // second delete is a no-op

	if _, err := s.Get(doc.ID); err == nil {
		t.Error("document still present after delete")
	}
}

func TestAddSignerAssignsOrderAndStatus(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("NDA", nil, "", "")

	addSigner(t, s, doc.ID, "Ada Lovelace", "ada@example.com")
	addSigner(t, s, doc.ID, "Grace Hopper", "grace@example.com")

	got, _ := s.Get(doc.ID)
	if len(got.Signers) != 2 {
		t.Fatalf("expected 2 signers, got %d", len(got.Signers))
	}
	if got.Signers[0].Order != 1 || got.Signers[1].Order != 2 {
		t.Errorf("orders = %d,%d, want 1,2", got.Signers[0].Order, got.Signers[1].Order)
	}
	for _, signer := range got.Signers {
		if signer.Status != sign.SignerStatusPending {
			t.Errorf("signer %s status = %s, want pending", signer.Name, signer.Status)
		}
	}
}

func TestAddSignerOrdersStayUniqueAfterRemoval(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("NDA", nil, "", "")

	adaID := addSigner(t, s, doc.ID, "Ada Lovelace", "ada@example.com")
	addSigner(t, s, doc.ID, "Grace Hopper", "grace@example.com")
	addSigner(t, s, doc.ID, "Edsger Dijkstra", "edsger@example.com")

	if err := s.RemoveSigner(doc.ID, adaID); err != nil {
		t.Fatalf("RemoveSigner failed: %v", err)
	}
	addSigner(t, s, doc.ID, "Donald Knuth", "don@example.com")

	got, _ := s.Get(doc.ID)
	seen := make(map[int]string, len(got.Signers))
	for _, signer := range got.Signers {
		if other, dup := seen[signer.Order]; dup {
			t.Errorf("order %d shared by %s and %s", signer.Order, other, signer.Name)
		}
		seen[signer.Order] = signer.Name
	}
	if got.SignerByID(got.Signers[len(got.Signers)-1].ID).Order != 4 {
		t.Errorf("new signer order = %d, want 4 (after the highest existing order)",
			got.Signers[len(got.Signers)-1].Order)
	}
}

func TestStructuralEditsRejectedOnTerminalDocuments(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("NDA", nil, "", "")
	signerID := addSigner(t, s, doc.ID, "Ada Lovelace", "ada@example.com")
	fieldID := addField(t, s, doc.ID, signatureField(signerID, true))

	// settle the document via the engine's write-back path
	settled, _ := s.Get(doc.ID)
	settled.Status = sign.DocumentStatusCompleted
	settled.Signers[0].Status = sign.SignerStatusSigned
	settled.Fields[0].Value = sign.SignatureValue([]byte("ink"))
	if err := s.Replace(settled); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	_, err := s.AddField(doc.ID, signatureField("", false))
	expectCode(t, err, sign.ErrCodeStateConflict)

	_, err = s.AddSigner(doc.ID, sign.Signer{Name: "Grace", Email: "grace@example.com"})
	expectCode(t, err, sign.ErrCodeStateConflict)

	required := false
	expectCode(t, s.UpdateField(doc.ID, fieldID, FieldUpdate{Required: &required}), sign.ErrCodeStateConflict)
	expectCode(t, s.DeleteField(doc.ID, fieldID), sign.ErrCodeStateConflict)

	name := "Someone Else"
	expectCode(t, s.UpdateSigner(signerID, SignerUpdate{Name: &name}), sign.ErrCodeStateConflict)
	expectCode(t, s.RemoveSigner(doc.ID, signerID), sign.ErrCodeStateConflict)

	// the completion predicate still holds on the stored document
	got, _ := s.Get(doc.ID)
	if !got.CompletionSatisfied() {
		t.Error("a rejected edit must not have touched the completed document")
	}

	// filing metadata stays editable: archiving a finished document is fine
	folder := "archive"
	if err := s.Update(doc.ID, DocumentUpdate{Folder: &folder}); err != nil {
		t.Errorf("folder update on a completed document failed: %v", err)
	}
}

func TestSigningOrderLockedAfterSend(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("NDA", nil, "", "")
	addSigner(t, s, doc.ID, "Ada Lovelace", "ada@example.com")

	sent, _ := s.Get(doc.ID)
	sent.Status = sign.DocumentStatusSent
	sent.Signers[0].Status = sign.SignerStatusSent
	if err := s.Replace(sent); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	parallel := sign.SigningOrderParallel
	expectCode(t, s.Update(doc.ID, DocumentUpdate{SigningOrder: &parallel}), sign.ErrCodeStateConflict)

	// restating the current order is not a change and passes
	sequential := sign.SigningOrderSequential
	if err := s.Update(doc.ID, DocumentUpdate{SigningOrder: &sequential}); err != nil {
		t.Errorf("no-op signing order update failed: %v", err)
	}
}

func TestAddSignerRejectsBadEmail(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("NDA", nil, "", "")

	_, err := s.AddSigner(doc.ID, sign.Signer{Name: "Ada", Email: "nope"})
	expectCode(t, err, sign.ErrCodeValidation)
}

func TestUpdateSignerByGlobalID(t *testing.T) {
	s := newTestStore(t)
	docA := s.Create("NDA", nil, "", "")
	docB := s.Create("Lease", nil, "", "")
	addSigner(t, s, docA.ID, "Ada Lovelace", "ada@example.com")
	signerID := addSigner(t, s, docB.ID, "Grace Hopper", "grace@example.com")

	role := "approver"
	if err := s.UpdateSigner(signerID, SignerUpdate{Role: &role}); err != nil {
		t.Fatalf("UpdateSigner failed: %v", err)
	}

	got, _ := s.Get(docB.ID)
	if got.SignerByID(signerID).Role != "approver" {
		t.Error("signer update did not land on the right document")
	}
}

func TestAddFieldValidatesGeometryAndAssignment(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("NDA", nil, "", "")
	signerID := addSigner(t, s, doc.ID, "Ada Lovelace", "ada@example.com")

	// out-of-range geometry is rejected, not clamped
	bad := signatureField(signerID, true)
	bad.Geometry.X = 95
	_, err := s.AddField(doc.ID, bad)
	expectCode(t, err, sign.ErrCodeValidation)

	// assignment to a signer from another document is rejected
	other := s.Create("Lease", nil, "", "")
	_, err = s.AddField(other.ID, signatureField(signerID, true))
	expectCode(t, err, sign.ErrCodeValidation)

	if _, err := s.AddField(doc.ID, signatureField(signerID, true)); err != nil {
		t.Fatalf("valid field rejected: %v", err)
	}
}

func TestUpdateFieldRestampsDocument(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("NDA", nil, "", "")
	fieldID := addField(t, s, doc.ID, signatureField("", true))

	before, _ := s.Get(doc.ID)
	geometry := sign.Geometry{Page: 1, X: 40, Y: 40, Width: 20, Height: 10}
	if err := s.UpdateField(doc.ID, fieldID, FieldUpdate{Geometry: &geometry}); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}

	after, _ := s.Get(doc.ID)
	if after.FieldByID(fieldID).Geometry.X != 40 {
		t.Error("geometry change not applied")
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Error("field update must re-stamp the parent document's updatedAt")
	}
}

func TestRemoveSignerCascadesExclusiveFields(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("NDA", nil, "", "")
	adaID := addSigner(t, s, doc.ID, "Ada Lovelace", "ada@example.com")
	graceID := addSigner(t, s, doc.ID, "Grace Hopper", "grace@example.com")

	adaField := addField(t, s, doc.ID, signatureField(adaID, true))
	graceField := addField(t, s, doc.ID, signatureField(graceID, true))
	sharedField := addField(t, s, doc.ID, signatureField("", false))

	if err := s.RemoveSigner(doc.ID, adaID); err != nil {
		t.Fatalf("RemoveSigner failed: %v", err)
	}

	got, _ := s.Get(doc.ID)
	if got.FieldByID(adaField) != nil {
		t.Error("field exclusively assigned to the removed signer should be deleted")
	}
	if got.FieldByID(graceField) == nil || got.FieldByID(sharedField) == nil {
		t.Error("other signers' fields and unassigned fields must survive the cascade")
	}

	// the removed signer id is gone globally too
	role := "approver"
	err := s.UpdateSigner(adaID, SignerUpdate{Role: &role})
	expectCode(t, err, sign.ErrCodeNotFound)
}

func TestDuplicate(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("NDA", []byte("%PDF-1.7"), "application/pdf", "nda.pdf")
	adaID := addSigner(t, s, doc.ID, "Ada Lovelace", "ada@example.com")
	fieldID := addField(t, s, doc.ID, signatureField(adaID, true))

	dup, err := s.Duplicate(doc.ID)
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}

	src, _ := s.Get(doc.ID)
	if len(dup.Fields) != len(src.Fields) || len(dup.Signers) != len(src.Signers) {
		t.Fatalf("duplicate collections mismatch: %d/%d fields, %d/%d signers",
			len(dup.Fields), len(src.Fields), len(dup.Signers), len(src.Signers))
	}
	if dup.ID == src.ID {
		t.Error("duplicate must get a fresh document id")
	}
	if dup.Title != "NDA (copy)" {
		t.Errorf("title = %q, want suffixed copy", dup.Title)
	}
	if dup.Fields[0].ID == fieldID {
		t.Error("duplicate fields must get fresh ids")
	}
	if dup.Signers[0].ID == adaID {
		t.Error("duplicate signers must get fresh ids")
	}
	if dup.Signers[0].Status != sign.SignerStatusPending || dup.Signers[0].SignedAt != nil {
		t.Error("duplicate signers must reset to pending")
	}
	if dup.Fields[0].SignerID != dup.Signers[0].ID {
		t.Error("field assignment must follow the remapped signer id")
	}
}

func TestAdoptRemapsIDsAndKeepsState(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("Signed elsewhere", nil, "", "")
	adaID := addSigner(t, s, doc.ID, "Ada Lovelace", "ada@example.com")
	addField(t, s, doc.ID, signatureField(adaID, true))

	src, _ := s.Get(doc.ID)
	src.Status = sign.DocumentStatusSent
	src.Signers[0].Status = sign.SignerStatusSent
	src.Fields[0].Value = sign.SignatureValue([]byte("ink"))

	adopted := s.Adopt(src)

	if adopted.ID == src.ID {
		t.Error("adopted document must get a fresh id")
	}
	if adopted.Signers[0].ID == adaID {
		t.Error("adopted signers must get fresh ids")
	}
	if adopted.Fields[0].SignerID != adopted.Signers[0].ID {
		t.Error("field assignment must follow the remapped signer id")
	}
	if adopted.Status != sign.DocumentStatusSent || adopted.Signers[0].Status != sign.SignerStatusSent {
		t.Error("adopt must preserve document and signer statuses")
	}
	if adopted.Fields[0].Value.IsEmpty() {
		t.Error("adopt must preserve filled values")
	}

	// the adopted signer id must resolve back to the adopted document
	if err := s.UpdateSigner(adopted.Signers[0].ID, SignerUpdate{}); err != nil {
		t.Errorf("adopted signer is not indexed: %v", err)
	}
}

func TestDuplicateUnknownDocument(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Duplicate("missing")
	expectCode(t, err, sign.ErrCodeNotFound)
}

func TestQueries(t *testing.T) {
	s := newTestStore(t)

	nda := s.Create("Mutual NDA", nil, "", "")
	lease := s.Create("Office lease", nil, "", "")
	addSigner(t, s, lease.ID, "Grace Hopper", "grace@navy.example.com")

	folder := "legal"
	tags := []string{"urgent", "q1"}
	if err := s.Update(nda.ID, DocumentUpdate{Folder: &folder, Tags: &tags}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if got := s.ListByFolder("legal"); len(got) != 1 || got[0].ID != nda.ID {
		t.Errorf("ListByFolder returned %d documents", len(got))
	}
	if got := s.ListByTag("urgent"); len(got) != 1 || got[0].ID != nda.ID {
		t.Errorf("ListByTag returned %d documents", len(got))
	}
	if got := s.ListByStatus(sign.DocumentStatusDraft); len(got) != 2 {
		t.Errorf("ListByStatus(draft) returned %d documents, want 2", len(got))
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"title match is case-insensitive", "mutual", []string{nda.ID}},
		{"signer name match", "hopper", []string{lease.ID}},
		{"signer email match", "navy", []string{lease.ID}},
		{"tag match", "q1", []string{nda.ID}},
		{"no match", "zebra", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Search(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) returned %d documents, want %d", tt.query, len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("Search(%q)[%d] = %s, want %s", tt.query, i, got[i].ID, id)
				}
			}
		})
	}
}

func TestReplaceKeepsCreatedAtAndReindexesSigners(t *testing.T) {
	s := newTestStore(t)
	doc := s.Create("NDA", nil, "", "")
	signerID := addSigner(t, s, doc.ID, "Ada Lovelace", "ada@example.com")

	current, _ := s.Get(doc.ID)
	current.SignerByID(signerID).Status = sign.SignerStatusSent
	current.Status = sign.DocumentStatusSent

	if err := s.Replace(current); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	got, _ := s.Get(doc.ID)
	if got.Status != sign.DocumentStatusSent {
		t.Error("replaced state not visible")
	}
	if !got.CreatedAt.Equal(doc.CreatedAt) {
		t.Error("Replace must preserve createdAt")
	}
	if !got.UpdatedAt.After(doc.UpdatedAt) {
		t.Error("Replace must bump updatedAt")
	}

	// signer is still resolvable through the global index
	role := "approver"
	if err := s.UpdateSigner(signerID, SignerUpdate{Role: &role}); err != nil {
		t.Errorf("signer lost from global index after Replace: %v", err)
	}
}
