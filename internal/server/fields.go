package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quillsign/quillsign/internal/api"
	"github.com/quillsign/quillsign/internal/sign"
	"github.com/quillsign/quillsign/internal/store"
)

// HandleAddField godoc
//
//	@Summary		Add a field to a document
//	@Description	Places a new field on a page. Geometry is in percentage coordinates (0-100 per axis) and must fit within the page. Dropdown and radio fields need at least one option.
//	@Tags			Fields
//	@Accept			json
//	@Produce		json
//	@Param			documentID	path		string				true	"document id"
//	@Param			request		body		api.AddFieldRequest	true	"field to add"
//	@Success		201			{object}	sign.Field			"created field"
//	@Failure		400			{object}	api.ErrorResponse	"invalid geometry or field definition"
//	@Failure		404			{object}	api.ErrorResponse	"document not found"
//	@Router			/v1/documents/{documentID}/fields [post]
func (s *Server) handleAddField(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")

	var req api.AddFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	fieldID, err := s.store.AddField(documentID, sign.Field{
		Kind:       req.Kind,
		Geometry:   req.Geometry,
		SignerID:   req.SignerID,
		Required:   req.Required,
		Label:      req.Label,
		Tooltip:    req.Tooltip,
		Validation: req.Validation,
		Options:    req.Options,
	})
	if err != nil {
		s.metrics.StoreOperationTotal.WithLabelValues("add_field", "error").Inc()
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	s.metrics.StoreOperationTotal.WithLabelValues("add_field", "ok").Inc()

	doc, err := s.store.Get(documentID)
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	api.RespondWithJSONPayload(w, http.StatusCreated, doc.FieldByID(fieldID))
}

// HandleUpdateField godoc
//
//	@Summary		Update a field
//	@Description	Merges the given changes into the field. The merged result is validated before anything is stored.
//	@Tags			Fields
//	@Accept			json
//	@Produce		json
//	@Param			documentID	path		string					true	"document id"
//	@Param			fieldID		path		string					true	"field id"
//	@Param			request		body		api.UpdateFieldRequest	true	"changes"
//	@Success		200			{object}	sign.Field				"updated field"
//	@Failure		400			{object}	api.ErrorResponse		"validation failed"
//	@Failure		404			{object}	api.ErrorResponse		"document or field not found"
//	@Router			/v1/documents/{documentID}/fields/{fieldID} [patch]
func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")
	fieldID := chi.URLParam(r, "fieldID")

	var req api.UpdateFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	err := s.store.UpdateField(documentID, fieldID, store.FieldUpdate{
		Geometry:   req.Geometry,
		SignerID:   req.SignerID,
		Required:   req.Required,
		Label:      req.Label,
		Tooltip:    req.Tooltip,
		Validation: req.Validation,
		Options:    req.Options,
	})
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	doc, err := s.store.Get(documentID)
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	api.RespondWithJSONPayload(w, http.StatusOK, doc.FieldByID(fieldID))
}

// HandleDeleteField godoc
//
//	@Summary		Delete a field
//	@Tags			Fields
//	@Param			documentID	path	string	true	"document id"
//	@Param			fieldID		path	string	true	"field id"
//	@Success		204			"deleted"
//	@Failure		404			{object}	api.ErrorResponse	"document or field not found"
//	@Router			/v1/documents/{documentID}/fields/{fieldID} [delete]
func (s *Server) handleDeleteField(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteField(chi.URLParam(r, "documentID"), chi.URLParam(r, "fieldID")); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	api.RespondWithStatusCodeOnly(w, http.StatusNoContent)
}
