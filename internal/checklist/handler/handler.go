package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"slfcert/internal/checklist/geotag"
	"slfcert/internal/checklist/models"
	id "slfcert/pkg/domain"
	dErrors "slfcert/pkg/domain-errors"
	"slfcert/pkg/platform/httputil"
	"slfcert/pkg/requestcontext"
)

// Resolver defines the checklist lookups exposed over HTTP.
type Resolver interface {
	BySpecialization(spec id.Specialization, buildingType models.BuildingType) []models.Template
	ItemsForInspector(spec id.Specialization, buildingType models.BuildingType) []models.FlatItem
	ItemPhotoRequirement(templateID, itemID string, explicit *models.Category) (models.PhotoRequirement, error)
	NoSignalPolicy() models.NoSignalPolicy
}

// Handler serves read-only checklist catalog endpoints.
type Handler struct {
	resolver      Resolver
	logger        *slog.Logger
	geotagTimeout time.Duration
}

type Option func(*Handler)

// WithGeotagTimeout sets the position-fix budget advertised to clients with
// each photo requirement.
func WithGeotagTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.geotagTimeout = d
		}
	}
}

func New(resolver Resolver, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{resolver: resolver, logger: logger, geotagTimeout: geotag.DefaultTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/checklists", h.handleTemplates)
	r.Get("/checklists/items", h.handleItems)
	r.Get("/checklists/{templateID}/items/{itemID}/photo-requirement", h.handlePhotoRequirement)
}

type photoRequirementResponse struct {
	TemplateID       string                  `json:"template_id"`
	ItemID           string                  `json:"item_id"`
	Requirement      models.PhotoRequirement `json:"requirement"`
	NoSignal         models.NoSignalPolicy   `json:"no_signal"`
	GeotagTimeoutSec float64                 `json:"geotag_timeout_seconds"`
}

func (h *Handler) handleTemplates(w http.ResponseWriter, r *http.Request) {
	spec, buildingType, ok := h.filters(w, r)
	if !ok {
		return
	}
	templates := h.resolver.BySpecialization(spec, buildingType)
	if templates == nil {
		templates = []models.Template{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"specialization": spec,
		"building_type":  buildingType,
		"templates":      templates,
	})
}

func (h *Handler) handleItems(w http.ResponseWriter, r *http.Request) {
	spec, buildingType, ok := h.filters(w, r)
	if !ok {
		return
	}
	items := h.resolver.ItemsForInspector(spec, buildingType)
	if items == nil {
		items = []models.FlatItem{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"specialization": spec,
		"building_type":  buildingType,
		"items":          items,
	})
}

func (h *Handler) handlePhotoRequirement(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "templateID")
	itemID := chi.URLParam(r, "itemID")

	var explicit *models.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		c, ok := models.ParseCategory(raw)
		if !ok {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeValidation, "unknown category %q", raw))
			return
		}
		explicit = &c
	}

	rule, err := h.resolver.ItemPhotoRequirement(templateID, itemID, explicit)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(r.Context(), "failed to resolve photo requirement",
				"request_id", requestcontext.RequestID(r.Context()),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, photoRequirementResponse{
		TemplateID:       templateID,
		ItemID:           itemID,
		Requirement:      rule,
		NoSignal:         h.resolver.NoSignalPolicy(),
		GeotagTimeoutSec: h.geotagTimeout.Seconds(),
	})
}

// filters reads specialization and building_type. An absent or unknown
// specialization resolves to the supervisor profile; an unknown building
// type is rejected.
func (h *Handler) filters(w http.ResponseWriter, r *http.Request) (id.Specialization, models.BuildingType, bool) {
	q := r.URL.Query()
	spec := id.NormalizeSpecialization(q.Get("specialization"))
	buildingType, ok := models.ParseBuildingType(q.Get("building_type"))
	if !ok {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeValidation, "unknown building_type %q", q.Get("building_type")))
		return "", "", false
	}
	return spec, buildingType, true
}
