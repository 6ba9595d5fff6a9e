package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quillsign/quillsign/internal/api"
	"github.com/quillsign/quillsign/internal/sign"
	"github.com/quillsign/quillsign/internal/store"
)

// HandleAddSigner godoc
//
//	@Summary		Add a signer to a document
//	@Description	Adds a participant. The signer starts pending and is appended at the end of the signing order.
//	@Tags			Signers
//	@Accept			json
//	@Produce		json
//	@Param			documentID	path		string				true	"document id"
//	@Param			request		body		api.AddSignerRequest	true	"signer to add"
//	@Success		201			{object}	sign.Signer			"created signer"
//	@Failure		400			{object}	api.ErrorResponse	"missing name or invalid email"
//	@Failure		404			{object}	api.ErrorResponse	"document not found"
//	@Router			/v1/documents/{documentID}/signers [post]
func (s *Server) handleAddSigner(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")

	var req api.AddSignerRequest
	if err := decodeJSON(r, &req); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	signerID, err := s.store.AddSigner(documentID, sign.Signer{
		Name:            req.Name,
		Email:           req.Email,
		Role:            req.Role,
		AuthRequirement: req.AuthRequirement,
	})
	if err != nil {
		s.metrics.StoreOperationTotal.WithLabelValues("add_signer", "error").Inc()
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	s.metrics.StoreOperationTotal.WithLabelValues("add_signer", "ok").Inc()

	doc, err := s.store.Get(documentID)
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	api.RespondWithJSONPayload(w, http.StatusCreated, doc.SignerByID(signerID))
}

// HandleUpdateSigner godoc
//
//	@Summary		Update a signer
//	@Description	Merges the given changes into the signer. The merged result is validated before anything is stored.
//	@Tags			Signers
//	@Accept			json
//	@Produce		json
//	@Param			documentID	path		string					true	"document id"
//	@Param			signerID	path		string					true	"signer id"
//	@Param			request		body		api.UpdateSignerRequest	true	"changes"
//	@Success		200			{object}	sign.Signer				"updated signer"
//	@Failure		400			{object}	api.ErrorResponse		"validation failed"
//	@Failure		404			{object}	api.ErrorResponse		"document or signer not found"
//	@Router			/v1/documents/{documentID}/signers/{signerID} [patch]
func (s *Server) handleUpdateSigner(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")
	signerID := chi.URLParam(r, "signerID")

	var req api.UpdateSignerRequest
	if err := decodeJSON(r, &req); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	err := s.store.UpdateSigner(signerID, store.SignerUpdate{
		Name:            req.Name,
		Email:           req.Email,
		Role:            req.Role,
		AuthRequirement: req.AuthRequirement,
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
	signer := doc.SignerByID(signerID)
	if signer == nil {
		api.RespondWithErrorResponse(w, r, sign.NewNotFoundError("signer "+signerID+" not found on document "+documentID))
		return
	}
	api.RespondWithJSONPayload(w, http.StatusOK, signer)
}

// HandleRemoveSigner godoc
//
//	@Summary		Remove a signer
//	@Description	Removes the signer from the document. Fields assigned exclusively to them are removed as well.
//	@Tags			Signers
//	@Param			documentID	path	string	true	"document id"
//	@Param			signerID	path	string	true	"signer id"
//	@Success		204			"removed"
//	@Failure		404			{object}	api.ErrorResponse	"document or signer not found"
//	@Router			/v1/documents/{documentID}/signers/{signerID} [delete]
func (s *Server) handleRemoveSigner(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveSigner(chi.URLParam(r, "documentID"), chi.URLParam(r, "signerID")); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	api.RespondWithStatusCodeOnly(w, http.StatusNoContent)
}
