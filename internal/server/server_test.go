package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quillsign/quillsign/internal/config"
	"github.com/quillsign/quillsign/internal/event"
	"github.com/quillsign/quillsign/internal/sign"
	"github.com/quillsign/quillsign/internal/store"
	"github.com/quillsign/quillsign/internal/workflow"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.ServerEnvironment{
		Environment:           "test",
		Host:                  "127.0.0.1",
		Port:                  8080,
		ServerShutdownTimeout: time.Second,
		ReadTimeout:           time.Second,
		WriteTimeout:          time.Second,
		IdleTimeout:           time.Second,
		MaxUploadBytes:        1 << 20,
		// rate limiting off so tests can hammer the router
		RateLimitRPS: 0,
	}

	testLogger := slog.New(slog.DiscardHandler)
	engine := workflow.New(event.Noop(), testLogger)

	srv, err := NewServer(cfg, testLogger, store.New(), engine, event.Noop())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func decodeDocument(t *testing.T, rr *httptest.ResponseRecorder) *sign.Document {
	t.Helper()
	var doc sign.Document
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to decode document: %v (body: %s)", err, rr.Body.String())
	}
	return &doc
}

func createDocument(t *testing.T, srv *Server, title string) *sign.Document {
	t.Helper()
	rr := doJSON(t, srv, "POST", "/v1/documents", map[string]any{
		"title":       title,
		"content":     []byte("%PDF-1.7 test"),
		"contentType": "application/pdf",
		"fileName":    "test.pdf",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rr.Code, rr.Body.String())
	}
	return decodeDocument(t, rr)
}

func addSigner(t *testing.T, srv *Server, documentID, name, email string) *sign.Signer {
	t.Helper()
	rr := doJSON(t, srv, "POST", "/v1/documents/"+documentID+"/signers", map[string]string{
		"name":  name,
		"email": email,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add signer returned %d: %s", rr.Code, rr.Body.String())
	}
	var signer sign.Signer
	if err := json.Unmarshal(rr.Body.Bytes(), &signer); err != nil {
		t.Fatalf("failed to decode signer: %v", err)
	}
	return &signer
}

func addSignatureField(t *testing.T, srv *Server, documentID, signerID string) *sign.Field {
	t.Helper()
	rr := doJSON(t, srv, "POST", "/v1/documents/"+documentID+"/fields", map[string]any{
		"kind":     "signature",
		"geometry": map[string]any{"page": 1, "x": 10, "y": 10, "width": 20, "height": 5},
		"signerId": signerID,
		"required": true,
		"label":    "Sign here",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add field returned %d: %s", rr.Code, rr.Body.String())
	}
	var field sign.Field
	if err := json.Unmarshal(rr.Body.Bytes(), &field); err != nil {
		t.Fatalf("failed to decode field: %v", err)
	}
	return &field
}

func fillSignature(t *testing.T, srv *Server, documentID, fieldID, signerID string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, srv, "POST", fmt.Sprintf("/v1/documents/%s/fields/%s/value", documentID, fieldID), map[string]any{
		"signerId": signerID,
		"value":    map[string]any{"kind": "signature", "signature": []byte("ink")},
	})
}

func TestFullSequentialSigningFlow(t *testing.T) {
	srv := newTestServer(t)

	doc := createDocument(t, srv, "Consulting Agreement")
	if doc.Status != sign.DocumentStatusDraft {
		t.Fatalf("new document status = %s, want draft", doc.Status)
	}

	alice := addSigner(t, srv, doc.ID, "Alice", "alice@example.com")
	bob := addSigner(t, srv, doc.ID, "Bob", "bob@example.com")
	fieldAlice := addSignatureField(t, srv, doc.ID, alice.ID)
	fieldBob := addSignatureField(t, srv, doc.ID, bob.ID)

	// send: alice active, bob pending
	rr := doJSON(t, srv, "POST", "/v1/documents/"+doc.ID+"/send", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("send returned %d: %s", rr.Code, rr.Body.String())
	}
	sent := decodeDocument(t, rr)
	if sent.Status != sign.DocumentStatusSent {
		t.Errorf("status after send = %s, want sent", sent.Status)
	}
	if got := sent.SignerByID(alice.ID).Status; got != sign.SignerStatusSent {
		t.Errorf("alice = %s, want sent", got)
	}
	if got := sent.SignerByID(bob.ID).Status; got != sign.SignerStatusPending {
		t.Errorf("bob = %s, want pending", got)
	}

	// alice fills and completes; bob becomes active
	if rr := fillSignature(t, srv, doc.ID, fieldAlice.ID, alice.ID); rr.Code != http.StatusOK {
		t.Fatalf("fill returned %d: %s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, srv, "POST", fmt.Sprintf("/v1/documents/%s/signers/%s/complete", doc.ID, alice.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("complete returned %d: %s", rr.Code, rr.Body.String())
	}
	after := decodeDocument(t, rr)
	if got := after.SignerByID(bob.ID).Status; got != sign.SignerStatusSent {
		t.Errorf("bob after alice completes = %s, want sent", got)
	}
	if after.Status != sign.DocumentStatusSent {
		t.Errorf("document = %s, want sent", after.Status)
	}

	// bob finishes; document completes
	if rr := fillSignature(t, srv, doc.ID, fieldBob.ID, bob.ID); rr.Code != http.StatusOK {
		t.Fatalf("fill returned %d: %s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, srv, "POST", fmt.Sprintf("/v1/documents/%s/signers/%s/complete", doc.ID, bob.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("complete returned %d: %s", rr.Code, rr.Body.String())
	}
	done := decodeDocument(t, rr)
	if done.Status != sign.DocumentStatusCompleted {
		t.Errorf("final status = %s, want completed", done.Status)
	}
	if done.CompletedAt == nil {
		t.Error("completedAt not set")
	}
}

func TestErrorStatusMapping(t *testing.T) {
	srv := newTestServer(t)

	doc := createDocument(t, srv, "Error Cases")
	alice := addSigner(t, srv, doc.ID, "Alice", "alice@example.com")
	bob := addSigner(t, srv, doc.ID, "Bob", "bob@example.com")
	fieldAlice := addSignatureField(t, srv, doc.ID, alice.ID)

	tests := []struct {
		name     string
		run      func() *httptest.ResponseRecorder
		wantCode int
	}{
		{
			name:     "unknown document is 404",
			run:      func() *httptest.ResponseRecorder { return doJSON(t, srv, "GET", "/v1/documents/nope", nil) },
			wantCode: http.StatusNotFound,
		},
		{
			name: "create without title is 400",
			run: func() *httptest.ResponseRecorder {
				return doJSON(t, srv, "POST", "/v1/documents", map[string]string{"fileName": "x.pdf"})
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "out of bounds geometry is 400",
			run: func() *httptest.ResponseRecorder {
				return doJSON(t, srv, "POST", "/v1/documents/"+doc.ID+"/fields", map[string]any{
					"kind":     "text",
					"geometry": map[string]any{"page": 1, "x": 95, "y": 10, "width": 20, "height": 5},
				})
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "complete before send is 403",
			run: func() *httptest.ResponseRecorder {
				return doJSON(t, srv, "POST", fmt.Sprintf("/v1/documents/%s/signers/%s/complete", doc.ID, alice.ID), nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "send succeeds",
			run: func() *httptest.ResponseRecorder {
				return doJSON(t, srv, "POST", "/v1/documents/"+doc.ID+"/send", nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name: "second send is 409",
			run: func() *httptest.ResponseRecorder {
				return doJSON(t, srv, "POST", "/v1/documents/"+doc.ID+"/send", nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "filling another signer's field is 403",
			run: func() *httptest.ResponseRecorder {
				return fillSignature(t, srv, doc.ID, fieldAlice.ID, bob.ID)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "completing with unfilled required field is 400",
			run: func() *httptest.ResponseRecorder {
				return doJSON(t, srv, "POST", fmt.Sprintf("/v1/documents/%s/signers/%s/complete", doc.ID, alice.ID), nil)
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := tt.run()
			if rr.Code != tt.wantCode {
				t.Errorf("got status %d, want %d (body: %s)", rr.Code, tt.wantCode, rr.Body.String())
			}
		})
	}
}

func TestDeclineMovesDocumentToDeclined(t *testing.T) {
	srv := newTestServer(t)

	doc := createDocument(t, srv, "Decline Flow")
	alice := addSigner(t, srv, doc.ID, "Alice", "alice@example.com")
	addSignatureField(t, srv, doc.ID, alice.ID)
	doJSON(t, srv, "POST", "/v1/documents/"+doc.ID+"/send", nil)

	rr := doJSON(t, srv, "POST", fmt.Sprintf("/v1/documents/%s/signers/%s/decline", doc.ID, alice.ID),
		map[string]string{"reason": "terms unacceptable"})
	if rr.Code != http.StatusOK {
		t.Fatalf("decline returned %d: %s", rr.Code, rr.Body.String())
	}
	declined := decodeDocument(t, rr)
	if declined.Status != sign.DocumentStatusDeclined {
		t.Errorf("status = %s, want declined", declined.Status)
	}

	// terminal: voiding afterwards conflicts
	rr = doJSON(t, srv, "POST", "/v1/documents/"+doc.ID+"/void", map[string]string{"reason": "cleanup"})
	if rr.Code != http.StatusConflict {
		t.Errorf("void after decline returned %d, want 409", rr.Code)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	doc := createDocument(t, srv, "Exportable")
	addSigner(t, srv, doc.ID, "Alice", "alice@example.com")

	rr := doJSON(t, srv, "GET", "/v1/documents/"+doc.ID+"/export", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("export returned %d: %s", rr.Code, rr.Body.String())
	}
	var export sign.Export
	if err := json.Unmarshal(rr.Body.Bytes(), &export); err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}

	rr = doJSON(t, srv, "POST", "/v1/documents/import", export)
	if rr.Code != http.StatusCreated {
		t.Fatalf("import returned %d: %s", rr.Code, rr.Body.String())
	}
	imported := decodeDocument(t, rr)
	if imported.ID == doc.ID {
		t.Error("import reused the original document id")
	}
	if imported.Title != doc.Title || len(imported.Signers) != 1 {
		t.Errorf("import lost content: %+v", imported)
	}

	// tampering is rejected
	export.Checksum = "deadbeef"
	rr = doJSON(t, srv, "POST", "/v1/documents/import", export)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("tampered import returned %d, want 400", rr.Code)
	}
}

func TestListFilters(t *testing.T) {
	srv := newTestServer(t)

	a := createDocument(t, srv, "Apartment Lease")
	createDocument(t, srv, "Sales Contract")
	doJSON(t, srv, "PATCH", "/v1/documents/"+a.ID, map[string]any{"folder": "rentals", "tags": []string{"urgent"}})

	tests := []struct {
		name      string
		query     string
		wantCount int
	}{
		{"all", "", 2},
		{"by folder", "?folder=rentals", 1},
		{"by tag", "?tag=urgent", 1},
		{"by status draft", "?status=draft", 2},
		{"search title", "?q=lease", 1},
		{"search no match", "?q=zebra", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, "GET", "/v1/documents"+tt.query, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("list returned %d: %s", rr.Code, rr.Body.String())
			}
			var docs []*sign.Document
			if err := json.Unmarshal(rr.Body.Bytes(), &docs); err != nil {
				t.Fatalf("failed to decode list: %v", err)
			}
			if len(docs) != tt.wantCount {
				t.Errorf("got %d documents, want %d", len(docs), tt.wantCount)
			}
		})
	}

	rr := doJSON(t, srv, "GET", "/v1/documents?status=bogus", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bogus status filter returned %d, want 400", rr.Code)
	}
}

func TestRenderEndpoint(t *testing.T) {
	srv := newTestServer(t)
	doc := createDocument(t, srv, "Renderable")

	rr := doJSON(t, srv, "GET", "/v1/documents/"+doc.ID+"/render", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("render returned %d: %s", rr.Code, rr.Body.String())
	}
	var view struct {
		Renderer string `json:"Renderer"`
		Result   *struct {
			TotalPages int
		} `json:"Result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode view: %v", err)
	}
	if view.Renderer != "pdf" || view.Result == nil {
		t.Errorf("unexpected view: %s", rr.Body.String())
	}
}

func TestProgressEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doc := createDocument(t, srv, "Progress")
	alice := addSigner(t, srv, doc.ID, "Alice", "alice@example.com")
	field := addSignatureField(t, srv, doc.ID, alice.ID)
	doJSON(t, srv, "POST", "/v1/documents/"+doc.ID+"/send", nil)
	fillSignature(t, srv, doc.ID, field.ID, alice.ID)

	rr := doJSON(t, srv, "GET", "/v1/documents/"+doc.ID+"/progress", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("progress returned %d: %s", rr.Code, rr.Body.String())
	}
	var progress workflow.Progress
	if err := json.Unmarshal(rr.Body.Bytes(), &progress); err != nil {
		t.Fatalf("failed to decode progress: %v", err)
	}
	if progress.Completed != 1 || progress.Required != 1 {
		t.Errorf("progress = %+v, want 1/1", progress)
	}
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health/live", "/health/ready", "/version", "/metrics"} {
		rr := doJSON(t, srv, "GET", path, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("%s returned %d", path, rr.Code)
		}
	}
}
