package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	checklist "slfcert/internal/checklist/models"
	"slfcert/internal/checklist/geotag"
	"slfcert/internal/compliance/metrics"
	"slfcert/internal/compliance/models"
	"slfcert/pkg/attrs"
	id "slfcert/pkg/domain"
	dErrors "slfcert/pkg/domain-errors"
	"slfcert/pkg/platform/sentinel"
	"slfcert/pkg/requestcontext"
)

const (
	// DefaultConcurrency bounds in-flight updates in a batch.
	DefaultConcurrency = 8
	// MaxBatchSize caps the number of responses accepted by one save call.
	MaxBatchSize = 1000
)

// Store is the persistence port. Every method is one round trip.
type Store interface {
	FindInspections(ctx context.Context, ids []id.InspectionID) ([]models.Inspection, error)
	FindChecklistItems(ctx context.Context, templateIDs []string) ([]models.ChecklistItemRow, error)
	InsertResponses(ctx context.Context, responses []models.ChecklistResponse) error
	UpdateResponse(ctx context.Context, update models.ResponseUpdate) error
	ListResponses(ctx context.Context, inspectionID id.InspectionID) ([]models.ChecklistResponse, error)
}

// InspectionCache holds composite inspections and per-template checklist
// items. A nil inspection with a nil error is a miss.
type InspectionCache interface {
	GetInspection(ctx context.Context, inspectionID id.InspectionID) (*models.InspectionWithChecklist, error)
	SetInspection(ctx context.Context, insp models.InspectionWithChecklist) error
	GetChecklistItems(ctx context.Context, templateID string) ([]models.ChecklistItemRow, bool, error)
	SetChecklistItems(ctx context.Context, templateID string, items []models.ChecklistItemRow) error
	Clear(ctx context.Context, kind models.Kind) error
	ClearAll(ctx context.Context) error
}

// LocalCache is a process-local map outside the inspection cache that
// ClearCache evicts as well, such as the workflow document cache.
type LocalCache interface {
	Clear(kind models.Kind)
	ClearAll()
}

// Service batches reads and writes of inspection data so that callers
// never issue one query per inspection.
type Service struct {
	store       Store
	cache       InspectionCache
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	validate    *validator.Validate
	concurrency int
	noSignal    checklist.NoSignalPolicy
	locals      []LocalCache
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithConcurrency sets the number of updates run at once by
// BatchUpdateChecklistResponses. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithNoSignalPolicy sets the policy applied to responses saved with a
// manual location.
func WithNoSignalPolicy(policy checklist.NoSignalPolicy) Option {
	return func(s *Service) {
		s.noSignal = policy
	}
}

// WithLocalCache registers a process-local cache for ClearCache to evict.
func WithLocalCache(c LocalCache) Option {
	return func(s *Service) {
		if c != nil {
			s.locals = append(s.locals, c)
		}
	}
}

func New(store Store, cache InspectionCache, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("compliance store is required")
	}
	if cache == nil {
		return nil, errors.New("inspection cache is required")
	}
	s := &Service{
		store:       store,
		cache:       cache,
		logger:      slog.Default(),
		tracer:      otel.Tracer("slfcert/compliance"),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BatchFetchInspectionsWithChecklists returns each requested inspection with
// its checklist items. Cached composites are served as is; the rest cost at
// most one inspection query and one checklist-items query. Results follow
// the order of ids, duplicates collapsed and unknown ids omitted.
func (s *Service) BatchFetchInspectionsWithChecklists(ctx context.Context, ids []id.InspectionID) ([]models.InspectionWithChecklist, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.BatchFetchInspectionsWithChecklists",
		trace.WithAttributes(attribute.Int("inspections.requested", len(ids))))
	defer span.End()
	start := time.Now()
	defer s.observeFetch(start)

	ordered := dedupe(ids)
	found := make(map[id.InspectionID]models.InspectionWithChecklist, len(ordered))
	var uncached []id.InspectionID
	for _, inspectionID := range ordered {
		cached, err := s.cache.GetInspection(ctx, inspectionID)
		if err != nil {
			s.logger.WarnContext(ctx, "inspection cache read failed",
				"inspection_id", inspectionID.String(),
				"error", err,
			)
		}
		if cached != nil {
			s.incrementCacheHit(models.KindInspection)
			found[inspectionID] = *cached
			continue
		}
		s.incrementCacheMiss(models.KindInspection)
		uncached = append(uncached, inspectionID)
	}

	if len(uncached) > 0 {
		fetched, err := s.fetchUncached(ctx, uncached)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "batch fetch failed")
			return nil, err
		}
		for _, insp := range fetched {
			found[insp.ID] = insp
		}
	}

	out := make([]models.InspectionWithChecklist, 0, len(found))
	for _, inspectionID := range ordered {
		if insp, ok := found[inspectionID]; ok {
			out = append(out, insp)
		}
	}
	span.SetAttributes(
		attribute.Int("inspections.cached", len(ordered)-len(uncached)),
		attribute.Int("inspections.returned", len(out)),
	)
	return out, nil
}

func (s *Service) fetchUncached(ctx context.Context, ids []id.InspectionID) ([]models.InspectionWithChecklist, error) {
	s.incrementStoreQuery("find_inspections")
	inspections, err := s.store.FindInspections(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load inspections")
	}
	if len(inspections) == 0 {
		return nil, nil
	}

	itemsByTemplate := make(map[string][]models.ChecklistItemRow)
	var missing []string
	for _, insp := range inspections {
		templateID := insp.ChecklistTemplateID
		if _, seen := itemsByTemplate[templateID]; seen || templateID == "" {
			continue
		}
		items, ok, err := s.cache.GetChecklistItems(ctx, templateID)
		if err != nil {
			s.logger.WarnContext(ctx, "checklist items cache read failed",
				"template_id", templateID,
				"error", err,
			)
		}
		if ok {
			s.incrementCacheHit(models.KindChecklistItems)
			itemsByTemplate[templateID] = items
			continue
		}
		s.incrementCacheMiss(models.KindChecklistItems)
		itemsByTemplate[templateID] = nil
		missing = append(missing, templateID)
	}

	if len(missing) > 0 {
		s.incrementStoreQuery("find_checklist_items")
		rows, err := s.store.FindChecklistItems(ctx, missing)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load checklist items")
		}
		for _, row := range rows {
			itemsByTemplate[row.TemplateID] = append(itemsByTemplate[row.TemplateID], row)
		}
		for _, templateID := range missing {
			if err := s.cache.SetChecklistItems(ctx, templateID, itemsByTemplate[templateID]); err != nil {
				s.logger.WarnContext(ctx, "checklist items cache write failed",
					"template_id", templateID,
					"error", err,
				)
			}
		}
	}

	out := make([]models.InspectionWithChecklist, 0, len(inspections))
	for _, insp := range inspections {
		composite := models.InspectionWithChecklist{
			Inspection:     insp,
			ChecklistItems: itemsByTemplate[insp.ChecklistTemplateID],
		}
		if composite.ChecklistItems == nil {
			composite.ChecklistItems = []models.ChecklistItemRow{}
		}
		if err := s.cache.SetInspection(ctx, composite); err != nil {
			s.logger.WarnContext(ctx, "inspection cache write failed",
				"inspection_id", insp.ID.String(),
				"error", err,
			)
		}
		out = append(out, composite)
	}
	return out, nil
}

// BatchSaveChecklistResponses validates every response before writing any,
// then inserts them in one statement. Responses flagged as manually located
// pick up the no-signal review policy.
func (s *Service) BatchSaveChecklistResponses(ctx context.Context, responses []models.ChecklistResponse) (*models.BatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.BatchSaveChecklistResponses",
		trace.WithAttributes(attribute.Int("responses", len(responses))))
	defer span.End()

	if len(responses) == 0 {
		return &models.BatchResult{Success: true}, nil
	}
	if len(responses) > MaxBatchSize {
		return nil, dErrors.Newf(dErrors.CodeValidation, "batch exceeds %d responses", MaxBatchSize)
	}

	now := requestcontext.Now(ctx)
	prepared := make([]models.ChecklistResponse, len(responses))
	for i, r := range responses {
		r.Normalize()
		if err := s.prepareResponse(&r, now); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("response %d is invalid", i))
		}
		prepared[i] = r
	}

	s.observeBatchSize("save", len(prepared))
	s.incrementStoreQuery("insert_responses")
	if err := s.store.InsertResponses(ctx, prepared); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "checklist response already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save checklist responses")
	}

	s.logAudit(ctx, "checklist_responses_saved",
		"count", len(prepared),
		"inspection_id", prepared[0].InspectionID.String(),
	)
	return &models.BatchResult{Success: true, Count: len(prepared)}, nil
}

func (s *Service) prepareResponse(r *models.ChecklistResponse, now time.Time) error {
	if r.ID.IsNil() {
		r.ID = id.ResponseID(uuid.New())
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	if err := s.validate.Struct(r); err != nil {
		return err
	}
	if (r.Latitude == nil) != (r.Longitude == nil) {
		return errors.New("latitude and longitude must be provided together")
	}
	if r.HasGeotag() {
		r.ManualLocation = false
		r.NeedsReview = false
		if r.CapturedAt == nil {
			captured := now
			r.CapturedAt = &captured
		}
		return nil
	}
	if r.ManualLocation {
		fix, err := geotag.Fallback(s.noSignal)
		if err != nil {
			return errors.New("manual location entry is not allowed")
		}
		r.NeedsReview = fix.NeedsReview
	}
	return nil
}

// BatchUpdateChecklistResponses applies every update independently with
// bounded concurrency. A failed update never cancels its siblings; the
// result reports how many applied and which did not.
func (s *Service) BatchUpdateChecklistResponses(ctx context.Context, updates []models.ResponseUpdate) (*models.BatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.BatchUpdateChecklistResponses",
		trace.WithAttributes(attribute.Int("updates", len(updates))))
	defer span.End()

	if len(updates) == 0 {
		return &models.BatchResult{Success: true}, nil
	}
	if len(updates) > MaxBatchSize {
		return nil, dErrors.Newf(dErrors.CodeValidation, "batch exceeds %d updates", MaxBatchSize)
	}
	s.observeBatchSize("update", len(updates))

	now := requestcontext.Now(ctx)
	errs := make([]error, len(updates))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, u := range updates {
		g.Go(func() error {
			errs[i] = s.applyUpdate(ctx, u, now)
			return nil
		})
	}
	_ = g.Wait()

	result := &models.BatchResult{}
	for i, err := range errs {
		if err == nil {
			result.Count++
			continue
		}
		s.incrementBatchFailure()
		s.logger.WarnContext(ctx, "checklist response update failed",
			"response_id", updates[i].ID.String(),
			"error", err,
		)
		result.Failed = append(result.Failed, models.FailedUpdate{ID: updates[i].ID, Error: err.Error()})
	}
	result.Success = result.Count == len(updates)
	span.SetAttributes(attribute.Int("updates.applied", result.Count))

	s.logAudit(ctx, "checklist_responses_updated",
		"count", result.Count,
		"failed", len(result.Failed),
	)
	return result, nil
}

func (s *Service) applyUpdate(ctx context.Context, u models.ResponseUpdate, now time.Time) error {
	if err := s.validate.Struct(u); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid update")
	}
	if u.IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "update changes nothing")
	}
	if (u.Latitude == nil) != (u.Longitude == nil) {
		return dErrors.New(dErrors.CodeValidation, "latitude and longitude must be provided together")
	}
	u.UpdatedAt = now
	s.incrementStoreQuery("update_response")
	if err := s.store.UpdateResponse(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "checklist response not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update checklist response")
	}
	return nil
}

// ListResponses returns the saved responses of one inspection.
func (s *Service) ListResponses(ctx context.Context, inspectionID id.InspectionID) ([]models.ChecklistResponse, error) {
	s.incrementStoreQuery("list_responses")
	responses, err := s.store.ListResponses(ctx, inspectionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list checklist responses")
	}
	return responses, nil
}

// ClearCache drops one kind of cached entry, or everything when kind is nil,
// from the inspection cache and every registered local cache.
func (s *Service) ClearCache(ctx context.Context, kind *models.Kind) error {
	for _, local := range s.locals {
		if kind == nil {
			local.ClearAll()
		} else {
			local.Clear(*kind)
		}
	}
	var err error
	if kind == nil {
		err = s.cache.ClearAll(ctx)
	} else {
		err = s.cache.Clear(ctx, *kind)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear cache")
	}
	scope := "all"
	if kind != nil {
		scope = string(*kind)
	}
	s.logAudit(ctx, "compliance_cache_cleared", "kind", scope)
	return nil
}

func dedupe(ids []id.InspectionID) []id.InspectionID {
	seen := make(map[id.InspectionID]struct{}, len(ids))
	out := make([]id.InspectionID, 0, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	attributes = attrs.AppendIfMissing(attributes, "request_id", requestcontext.RequestID(ctx))
	if actor := requestcontext.Actor(ctx); !actor.ID.IsNil() {
		attributes = attrs.AppendIfMissing(attributes, "actor_id", actor.ID.String())
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, attrs.Audit(attributes, event)...)
	}
}

func (s *Service) incrementCacheHit(kind models.Kind) {
	if s.metrics != nil {
		s.metrics.IncrementCacheHit(string(kind))
	}
}

func (s *Service) incrementCacheMiss(kind models.Kind) {
	if s.metrics != nil {
		s.metrics.IncrementCacheMiss(string(kind))
	}
}

func (s *Service) incrementStoreQuery(operation string) {
	if s.metrics != nil {
		s.metrics.IncrementStoreQuery(operation)
	}
}

func (s *Service) incrementBatchFailure() {
	if s.metrics != nil {
		s.metrics.BatchFailures.Inc()
	}
}

func (s *Service) observeBatchSize(operation string, n int) {
	if s.metrics != nil {
		s.metrics.ObserveBatchSize(operation, n)
	}
}

func (s *Service) observeFetch(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveFetch(start)
	}
}
