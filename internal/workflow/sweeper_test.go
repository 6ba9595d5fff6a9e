package workflow

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/quillsign/quillsign/internal/sign"
	"github.com/quillsign/quillsign/internal/store"
)

func TestSweepExpiresOverdueDocuments(t *testing.T) {
	documents := store.New()
	engine, rec := newTestEngine()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	overdue := documents.Create("overdue", nil, "", "")
	if err := documents.Update(overdue.ID, store.DocumentUpdate{ExpiresAt: &past}); err != nil {
		t.Fatalf("failed to set deadline: %v", err)
	}
	pending := documents.Create("not yet due", nil, "", "")
	if err := documents.Update(pending.ID, store.DocumentUpdate{ExpiresAt: &future}); err != nil {
		t.Fatalf("failed to set deadline: %v", err)
	}
	open := documents.Create("no deadline", nil, "", "")

	sweeper := NewSweeper(documents, engine, time.Minute, slog.New(slog.DiscardHandler))
	sweeper.sweep(context.Background())

	got, err := documents.Get(overdue.ID)
	if err != nil {
		t.Fatalf("failed to load document: %v", err)
	}
	if got.Status != sign.DocumentStatusExpired {
		t.Errorf("overdue document status = %q, want %q", got.Status, sign.DocumentStatusExpired)
	}

	for _, id := range []string{pending.ID, open.ID} {
		got, err := documents.Get(id)
		if err != nil {
			t.Fatalf("failed to load document: %v", err)
		}
		if got.Status != sign.DocumentStatusDraft {
			t.Errorf("document %s status = %q, want draft", id, got.Status)
		}
	}

	if kinds := rec.kinds(); len(kinds) != 1 || kinds[0] != "document.expired" {
		t.Errorf("events = %v, want [document.expired]", kinds)
	}
}

func TestSweepLeavesTerminalDocumentsAlone(t *testing.T) {
	documents := store.New()
	engine, rec := newTestEngine()

	past := time.Now().Add(-time.Hour)
	doc := documents.Create("already voided", nil, "", "")
	if err := documents.Update(doc.ID, store.DocumentUpdate{ExpiresAt: &past}); err != nil {
		t.Fatalf("failed to set deadline: %v", err)
	}

	voided, err := engine.Void(context.Background(), mustGet(t, documents, doc.ID), "superseded")
	if err != nil {
		t.Fatalf("failed to void document: %v", err)
	}
	if err := documents.Replace(voided); err != nil {
		t.Fatalf("failed to store voided document: %v", err)
	}

	sweeper := NewSweeper(documents, engine, time.Minute, slog.New(slog.DiscardHandler))
	sweeper.sweep(context.Background())

	got := mustGet(t, documents, doc.ID)
	if got.Status != sign.DocumentStatusVoided {
		t.Errorf("document status = %q, want voided", got.Status)
	}
	for _, kind := range rec.kinds() {
		if kind == "document.expired" {
			t.Error("sweep expired a terminal document")
		}
	}
}

func TestSweeperRunReturnsWhenDisabled(t *testing.T) {
	engine, _ := newTestEngine()
	sweeper := NewSweeper(store.New(), engine, 0, slog.New(slog.DiscardHandler))

	done := make(chan struct{})
	go func() {
		sweeper.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return for a disabled sweeper")
	}
}

func mustGet(t *testing.T, documents *store.Store, id string) *sign.Document {
	t.Helper()
	doc, err := documents.Get(id)
	if err != nil {
		t.Fatalf("failed to load document %s: %v", id, err)
	}
	return doc
}
