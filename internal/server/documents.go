package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quillsign/quillsign/internal/api"
	"github.com/quillsign/quillsign/internal/sign"
	"github.com/quillsign/quillsign/internal/store"
)

// decodeJSON decodes the request body into dst, mapping failures to a
// malformed-request error.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return api.WrapMalformedRequestError(err, "could not decode request body")
	}
	return nil
}

// HandleCreateDocument godoc
//
//	@Summary		Create a document
//	@Description	Creates a new draft document from an uploaded file. The document starts with no fields or signers and a sequential signing order.
//	@Tags			Documents
//	@Accept			json
//	@Produce		json
//	@Param			request	body		api.CreateDocumentRequest	true	"document to create"
//	@Success		201		{object}	sign.Document				"created document"
//	@Failure		400		{object}	api.ErrorResponse			"malformed request"
//	@Router			/v1/documents [post]
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req api.CreateDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	if req.Title == "" {
		api.RespondWithErrorResponse(w, r, sign.NewValidationError("document title is required"))
		return
	}

	doc := s.store.Create(req.Title, req.Content, req.ContentType, req.FileName)
	s.metrics.StoreOperationTotal.WithLabelValues("create", "ok").Inc()

	api.RespondWithJSONPayload(w, http.StatusCreated, doc)
}

// HandleListDocuments godoc
//
//	@Summary		List documents
//	@Description	Lists documents newest first. The folder, tag, status and q filters are mutually exclusive; the first one present wins.
//	@Tags			Documents
//	@Produce		json
//	@Param			folder	query		string	false	"filter by folder"
//	@Param			tag		query		string	false	"filter by tag"
//	@Param			status	query		string	false	"filter by document status"
//	@Param			q		query		string	false	"search across titles, signer names, emails and tags"
//	@Success		200		{array}		sign.Document
//	@Failure		400		{object}	api.ErrorResponse	"unknown status filter"
//	@Router			/v1/documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var docs []*sign.Document
	switch {
	case q.Get("folder") != "":
		docs = s.store.ListByFolder(q.Get("folder"))
	case q.Get("tag") != "":
		docs = s.store.ListByTag(q.Get("tag"))
	case q.Get("status") != "":
		status := sign.DocumentStatus(q.Get("status"))
		if !sign.IsValidDocumentStatus(status) {
			api.RespondWithErrorResponse(w, r, sign.NewValidationError("unknown document status "+q.Get("status")))
			return
		}
		docs = s.store.ListByStatus(status)
	case q.Get("q") != "":
		docs = s.store.Search(q.Get("q"))
	default:
		docs = s.store.List()
	}

	if docs == nil {
		docs = []*sign.Document{}
	}
	api.RespondWithJSONPayload(w, http.StatusOK, docs)
}

// HandleGetDocument godoc
//
//	@Summary		Get a document
//	@Tags			Documents
//	@Produce		json
//	@Param			documentID	path		string	true	"document id"
//	@Success		200			{object}	sign.Document
//	@Failure		404			{object}	api.ErrorResponse	"document not found"
//	@Router			/v1/documents/{documentID} [get]
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(chi.URLParam(r, "documentID"))
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	api.RespondWithJSONPayload(w, http.StatusOK, doc)
}

// HandleUpdateDocument godoc
//
//	@Summary		Update document metadata
//	@Description	Merges the given changes into the document. Absent members are left untouched.
//	@Tags			Documents
//	@Accept			json
//	@Produce		json
//	@Param			documentID	path		string						true	"document id"
//	@Param			request		body		api.UpdateDocumentRequest	true	"changes"
//	@Success		200			{object}	sign.Document				"updated document"
//	@Failure		400			{object}	api.ErrorResponse			"validation failed"
//	@Failure		404			{object}	api.ErrorResponse			"document not found"
//	@Router			/v1/documents/{documentID} [patch]
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")

	var req api.UpdateDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	err := s.store.Update(documentID, store.DocumentUpdate{
		Title:        req.Title,
		Folder:       req.Folder,
		Tags:         req.Tags,
		SigningOrder: req.SigningOrder,
		ExpiresAt:    req.ExpiresAt,
		Settings:     req.Settings,
	})
	if err != nil {
		s.metrics.StoreOperationTotal.WithLabelValues("update", "error").Inc()
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	s.metrics.StoreOperationTotal.WithLabelValues("update", "ok").Inc()

	doc, err := s.store.Get(documentID)
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	api.RespondWithJSONPayload(w, http.StatusOK, doc)
}

// HandleDeleteDocument godoc
//
//	@Summary		Delete a document
//	@Description	Deletes the document. Deleting an unknown document is a no-op.
//	@Tags			Documents
//	@Param			documentID	path	string	true	"document id"
//	@Success		204			"deleted"
//	@Router			/v1/documents/{documentID} [delete]
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	s.store.Delete(chi.URLParam(r, "documentID"))
	s.metrics.StoreOperationTotal.WithLabelValues("delete", "ok").Inc()
	api.RespondWithStatusCodeOnly(w, http.StatusNoContent)
}

// HandleDuplicateDocument godoc
//
//	@Summary		Duplicate a document
//	@Description	Creates a draft copy with fresh ids. Signer statuses reset to pending and field values are cleared.
//	@Tags			Documents
//	@Produce		json
//	@Param			documentID	path		string	true	"document id"
//	@Success		201			{object}	sign.Document		"the copy"
//	@Failure		404			{object}	api.ErrorResponse	"document not found"
//	@Router			/v1/documents/{documentID}/duplicate [post]
func (s *Server) handleDuplicateDocument(w http.ResponseWriter, r *http.Request) {
	dup, err := s.store.Duplicate(chi.URLParam(r, "documentID"))
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	api.RespondWithJSONPayload(w, http.StatusCreated, dup)
}

// HandleExportDocument godoc
//
//	@Summary		Export a document
//	@Description	Serializes the document to canonical JSON with a checksum, suitable for re-import.
//	@Tags			Documents
//	@Produce		json
//	@Param			documentID	path		string	true	"document id"
//	@Success		200			{object}	sign.Export
//	@Failure		404			{object}	api.ErrorResponse	"document not found"
//	@Router			/v1/documents/{documentID}/export [get]
func (s *Server) handleExportDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(chi.URLParam(r, "documentID"))
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	export, err := sign.ExportDocument(doc)
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	api.RespondWithJSONPayload(w, http.StatusOK, export)
}

// HandleImportDocument godoc
//
//	@Summary		Import a document
//	@Description	Restores a previously exported document. The checksum is verified before anything is stored; the import gets a fresh document id.
//	@Tags			Documents
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sign.Export			true	"exported document"
//	@Success		201		{object}	sign.Document		"imported document"
//	@Failure		400		{object}	api.ErrorResponse	"bad checksum or malformed export"
//	@Router			/v1/documents/import [post]
func (s *Server) handleImportDocument(w http.ResponseWriter, r *http.Request) {
	var export sign.Export
	if err := decodeJSON(r, &export); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	doc, err := sign.ImportDocument(&export)
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	imported := s.store.Adopt(doc)
	api.RespondWithJSONPayload(w, http.StatusCreated, imported)
}

// HandleRenderDocument godoc
//
//	@Summary		Render a document
//	@Description	Runs the renderer fallback chain (PDF, HTML, image, plain text) over the document's content and returns the page layout, or a diagnostic when no renderer accepts the content.
//	@Tags			Documents
//	@Produce		json
//	@Param			documentID	path		string	true	"document id"
//	@Success		200			{object}	viewer.View
//	@Failure		404			{object}	api.ErrorResponse	"document not found"
//	@Router			/v1/documents/{documentID}/render [get]
func (s *Server) handleRenderDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(chi.URLParam(r, "documentID"))
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	view, err := s.loader.Render(r.Context(), doc)
	if err != nil {
		api.RespondWithErrorResponse(w, r, api.NewInternalError("render cancelled"))
		return
	}

	status := "ok"
	renderer := view.Renderer
	if view.Failure != nil {
		status = string(view.Failure.Reason)
		renderer = view.Failure.Renderer
	}
	s.metrics.RenderAttemptTotal.WithLabelValues(renderer, status).Inc()

	api.RespondWithJSONPayload(w, http.StatusOK, view)
}
