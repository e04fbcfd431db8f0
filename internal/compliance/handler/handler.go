package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"slfcert/internal/compliance/models"
	id "slfcert/pkg/domain"
	dErrors "slfcert/pkg/domain-errors"
	"slfcert/pkg/platform/httputil"
	"slfcert/pkg/requestcontext"
)

// Service defines the batch operations exposed over HTTP.
type Service interface {
	BatchFetchInspectionsWithChecklists(ctx context.Context, ids []id.InspectionID) ([]models.InspectionWithChecklist, error)
	BatchSaveChecklistResponses(ctx context.Context, responses []models.ChecklistResponse) (*models.BatchResult, error)
	BatchUpdateChecklistResponses(ctx context.Context, updates []models.ResponseUpdate) (*models.BatchResult, error)
	ListResponses(ctx context.Context, inspectionID id.InspectionID) ([]models.ChecklistResponse, error)
	ClearCache(ctx context.Context, kind *models.Kind) error
}

// Handler serves inspection and checklist response endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the compliance routes. Callers are expected to have
// installed the actor middleware on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/inspections/batch", h.handleBatchFetch)
	r.Get("/inspections/{inspectionID}/responses", h.handleListResponses)
	r.Post("/checklist-responses", h.handleBatchSave)
	r.Patch("/checklist-responses", h.handleBatchUpdate)
	r.Delete("/cache", h.handleClearCache)
}

type batchFetchRequest struct {
	IDs []string `json:"ids"`
}

type batchSaveRequest struct {
	Responses []models.ChecklistResponse `json:"responses"`
}

type batchUpdateRequest struct {
	Updates []models.ResponseUpdate `json:"updates"`
}

func (h *Handler) handleBatchFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req batchFetchRequest
	if !h.decode(w, r, &req) {
		return
	}
	ids := make([]id.InspectionID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		parsed, err := id.ParseInspectionID(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid inspection id"))
			return
		}
		ids = append(ids, parsed)
	}

	inspections, err := h.service.BatchFetchInspectionsWithChecklists(ctx, ids)
	if err != nil {
		h.fail(ctx, w, "failed to fetch inspections", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"inspections": inspections})
}

func (h *Handler) handleListResponses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	inspectionID, err := id.ParseInspectionID(chi.URLParam(r, "inspectionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid inspection id"))
		return
	}
	responses, err := h.service.ListResponses(ctx, inspectionID)
	if err != nil {
		h.fail(ctx, w, "failed to list responses", err)
		return
	}
	if responses == nil {
		responses = []models.ChecklistResponse{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"responses": responses})
}

func (h *Handler) handleBatchSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req batchSaveRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor := requestcontext.Actor(ctx)
	for i := range req.Responses {
		if req.Responses[i].RespondedBy.IsNil() {
			req.Responses[i].RespondedBy = actor.ID
		}
	}

	result, err := h.service.BatchSaveChecklistResponses(ctx, req.Responses)
	if err != nil {
		h.fail(ctx, w, "failed to save responses", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleBatchUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req batchUpdateRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.BatchUpdateChecklistResponses(ctx, req.Updates)
	if err != nil {
		h.fail(ctx, w, "failed to update responses", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleClearCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var kind *models.Kind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		parsed, err := models.ParseKind(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		kind = &parsed
	}
	if err := h.service.ClearCache(ctx, kind); err != nil {
		h.fail(ctx, w, "failed to clear cache", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
