package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quillsign/quillsign/internal/api"
	"github.com/quillsign/quillsign/internal/sign"
)

// applyTransition runs one workflow transition against the stored document and
// commits the result. The engine works on a clone, so a failed transition
// leaves the stored document untouched and nothing is committed.
func (s *Server) applyTransition(
	w http.ResponseWriter,
	r *http.Request,
	documentID string,
	operation string,
	transition func(doc *sign.Document) (*sign.Document, error),
) {
	doc, err := s.store.Get(documentID)
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	next, err := transition(doc)
	if err != nil {
		s.metrics.WorkflowTransitionTotal.WithLabelValues(operation, "error").Inc()
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	if err := s.store.Replace(next); err != nil {
		s.metrics.WorkflowTransitionTotal.WithLabelValues(operation, "error").Inc()
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	s.metrics.WorkflowTransitionTotal.WithLabelValues(operation, "ok").Inc()

	committed, err := s.store.Get(documentID)
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	api.RespondWithJSONPayload(w, http.StatusOK, committed)
}

// HandleSendDocument godoc
//
//	@Summary		Send a document for signing
//	@Description	Moves a draft into the signing workflow. With sequential order only the first signer is activated; with parallel order every signer is.
//	@Tags			Workflow
//	@Produce		json
//	@Param			documentID	path		string	true	"document id"
//	@Success		200			{object}	sign.Document		"document after sending"
//	@Failure		400			{object}	api.ErrorResponse	"document has no signers"
//	@Failure		404			{object}	api.ErrorResponse	"document not found"
//	@Failure		409			{object}	api.ErrorResponse	"document is not a draft"
//	@Router			/v1/documents/{documentID}/send [post]
func (s *Server) handleSendDocument(w http.ResponseWriter, r *http.Request) {
	s.applyTransition(w, r, chi.URLParam(r, "documentID"), "send", func(doc *sign.Document) (*sign.Document, error) {
		return s.engine.Send(r.Context(), doc)
	})
}

// HandleFillField godoc
//
//	@Summary		Fill a field
//	@Description	Records a value on a field on behalf of a signer. An empty signerId means the document owner is filling an unassigned field in preview. Repeating a fill with the same value is a no-op.
//	@Tags			Workflow
//	@Accept			json
//	@Produce		json
//	@Param			documentID	path		string					true	"document id"
//	@Param			fieldID		path		string					true	"field id"
//	@Param			request		body		api.FillFieldRequest	true	"value and acting signer"
//	@Success		200			{object}	sign.Document			"document after filling"
//	@Failure		400			{object}	api.ErrorResponse		"value rejected by field validation"
//	@Failure		403			{object}	api.ErrorResponse		"field belongs to another signer or signer is not active"
//	@Failure		404			{object}	api.ErrorResponse		"document, field or signer not found"
//	@Failure		409			{object}	api.ErrorResponse		"document is in a terminal status"
//	@Router			/v1/documents/{documentID}/fields/{fieldID}/value [post]
func (s *Server) handleFillField(w http.ResponseWriter, r *http.Request) {
	fieldID := chi.URLParam(r, "fieldID")

	var req api.FillFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	s.applyTransition(w, r, chi.URLParam(r, "documentID"), "fill_field", func(doc *sign.Document) (*sign.Document, error) {
		return s.engine.FillField(r.Context(), doc, fieldID, req.SignerID, req.Value)
	})
}

// HandleSignerCompletion godoc
//
//	@Summary		Record a signer's completion
//	@Description	Marks an active signer as signed once every required field for them is filled. In sequential mode the next pending signer is activated; when no signer remains the document completes.
//	@Tags			Workflow
//	@Produce		json
//	@Param			documentID	path		string	true	"document id"
//	@Param			signerID	path		string	true	"signer id"
//	@Success		200			{object}	sign.Document		"document after completion"
//	@Failure		400			{object}	api.ErrorResponse	"required fields still unfilled"
//	@Failure		403			{object}	api.ErrorResponse	"signer has not been activated yet"
//	@Failure		404			{object}	api.ErrorResponse	"document or signer not found"
//	@Failure		409			{object}	api.ErrorResponse	"signer already signed or declined"
//	@Router			/v1/documents/{documentID}/signers/{signerID}/complete [post]
func (s *Server) handleSignerCompletion(w http.ResponseWriter, r *http.Request) {
	signerID := chi.URLParam(r, "signerID")
	s.applyTransition(w, r, chi.URLParam(r, "documentID"), "complete", func(doc *sign.Document) (*sign.Document, error) {
		return s.engine.RecordSignerCompletion(r.Context(), doc, signerID)
	})
}

// HandleDecline godoc
//
//	@Summary		Decline to sign
//	@Description	Records a signer's refusal. A declining signer blocks completion permanently, so the document moves to declined.
//	@Tags			Workflow
//	@Accept			json
//	@Produce		json
//	@Param			documentID	path		string				true	"document id"
//	@Param			signerID	path		string				true	"signer id"
//	@Param			request		body		api.DeclineRequest	true	"reason"
//	@Success		200			{object}	sign.Document		"document after declining"
//	@Failure		404			{object}	api.ErrorResponse	"document or signer not found"
//	@Failure		409			{object}	api.ErrorResponse	"signer or document already in a terminal status"
//	@Router			/v1/documents/{documentID}/signers/{signerID}/decline [post]
func (s *Server) handleDecline(w http.ResponseWriter, r *http.Request) {
	signerID := chi.URLParam(r, "signerID")

	var req api.DeclineRequest
	if err := decodeJSON(r, &req); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	s.applyTransition(w, r, chi.URLParam(r, "documentID"), "decline", func(doc *sign.Document) (*sign.Document, error) {
		return s.engine.Decline(r.Context(), doc, signerID, req.Reason)
	})
}

// HandleVoidDocument godoc
//
//	@Summary		Void a document
//	@Description	Withdraws the document from circulation. Valid from any non-terminal status.
//	@Tags			Workflow
//	@Accept			json
//	@Produce		json
//	@Param			documentID	path		string			true	"document id"
//	@Param			request		body		api.VoidRequest	true	"reason"
//	@Success		200			{object}	sign.Document		"voided document"
//	@Failure		404			{object}	api.ErrorResponse	"document not found"
//	@Failure		409			{object}	api.ErrorResponse	"document already in a terminal status"
//	@Router			/v1/documents/{documentID}/void [post]
func (s *Server) handleVoidDocument(w http.ResponseWriter, r *http.Request) {
	var req api.VoidRequest
	if err := decodeJSON(r, &req); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	s.applyTransition(w, r, chi.URLParam(r, "documentID"), "void", func(doc *sign.Document) (*sign.Document, error) {
		return s.engine.Void(r.Context(), doc, req.Reason)
	})
}

// HandleProgress godoc
//
//	@Summary		Signing progress
//	@Description	Returns the count of filled required fields vs. total required fields.
//	@Tags			Workflow
//	@Produce		json
//	@Param			documentID	path		string	true	"document id"
//	@Success		200			{object}	workflow.Progress
//	@Failure		404			{object}	api.ErrorResponse	"document not found"
//	@Router			/v1/documents/{documentID}/progress [get]
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(chi.URLParam(r, "documentID"))
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}
	api.RespondWithJSONPayload(w, http.StatusOK, s.engine.Progress(doc))
}
