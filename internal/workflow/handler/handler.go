package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"slfcert/internal/workflow/models"
	"slfcert/internal/workflow/service"
	id "slfcert/pkg/domain"
	dErrors "slfcert/pkg/domain-errors"
	"slfcert/pkg/platform/audit"
	"slfcert/pkg/platform/httputil"
	"slfcert/pkg/requestcontext"
)

// Service defines the workflow operations exposed over HTTP.
type Service interface {
	Submit(ctx context.Context, req service.SubmitRequest) (*models.Document, error)
	Get(ctx context.Context, documentID id.DocumentID) (*models.Document, error)
	Transition(ctx context.Context, req models.TransitionRequest) (*models.Document, error)
	Resubmit(ctx context.Context, documentID id.DocumentID, actorID id.UserID) (*models.Document, error)
	AllowedTargets(ctx context.Context, documentID id.DocumentID, actor requestcontext.ActorInfo) ([]models.Status, error)
	History(ctx context.Context, documentID id.DocumentID) ([]audit.Event, error)
}

// Handler serves document workflow endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/documents", h.handleSubmit)
	r.Get("/documents/{documentID}", h.handleGet)
	r.Post("/documents/{documentID}/transitions", h.handleTransition)
	r.Post("/documents/{documentID}/resubmit", h.handleResubmit)
	r.Get("/documents/{documentID}/history", h.handleHistory)
}

type submitRequest struct {
	ProjectID    string         `json:"project_id"`
	DocumentType string         `json:"document_type"`
	Metadata     map[string]any `json:"metadata"`
}

type transitionRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type documentResponse struct {
	Document       *models.Document `json:"document"`
	AllowedTargets []models.Status  `json:"allowed_targets"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if !h.decode(w, r, &req) {
		return
	}
	projectID, err := id.ParseProjectID(req.ProjectID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "invalid project_id"))
		return
	}

	doc, err := h.service.Submit(ctx, service.SubmitRequest{
		ProjectID:    projectID,
		DocumentType: req.DocumentType,
		CreatedBy:    actor.ID,
		Metadata:     req.Metadata,
	})
	if err != nil {
		h.fail(ctx, w, "failed to submit document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	documentID, ok := h.documentID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Get(ctx, documentID)
	if err != nil {
		h.fail(ctx, w, "failed to load document", err)
		return
	}
	targets, err := h.service.AllowedTargets(ctx, documentID, actor)
	if err != nil {
		h.fail(ctx, w, "failed to compute allowed transitions", err)
		return
	}
	if targets == nil {
		targets = []models.Status{}
	}
	httputil.WriteJSON(w, http.StatusOK, documentResponse{Document: doc, AllowedTargets: targets})
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	documentID, ok := h.documentID(w, r)
	if !ok {
		return
	}
	var req transitionRequest
	if !h.decode(w, r, &req) {
		return
	}
	target, err := models.ParseStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := h.service.Transition(ctx, models.TransitionRequest{
		DocumentID: documentID,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Target:     target,
		Notes:      req.Notes,
	})
	if err != nil {
		if dErrors.IsAuthorization(err) {
			h.logger.WarnContext(ctx, "transition refused",
				"request_id", requestcontext.RequestID(ctx),
				"document_id", documentID.String(),
				"user_id", actor.ID.String(),
				"reason", string(dErrors.CodeOf(err)),
			)
		}
		h.fail(ctx, w, "failed to transition document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleResubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	documentID, ok := h.documentID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Resubmit(ctx, documentID, actor.ID)
	if err != nil {
		h.fail(ctx, w, "failed to resubmit document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireActor(w, r); !ok {
		return
	}
	documentID, ok := h.documentID(w, r)
	if !ok {
		return
	}
	events, err := h.service.History(ctx, documentID)
	if err != nil {
		h.fail(ctx, w, "failed to load document history", err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"history": events})
}

func (h *Handler) requireActor(w http.ResponseWriter, r *http.Request) (requestcontext.ActorInfo, bool) {
	actor := requestcontext.Actor(r.Context())
	if actor.ID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return actor, false
	}
	return actor, true
}

func (h *Handler) documentID(w http.ResponseWriter, r *http.Request) (id.DocumentID, bool) {
	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid document id"))
		return id.DocumentID{}, false
	}
	return documentID, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
