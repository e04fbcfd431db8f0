// Package service implements the document status workflow: who may move a
// document between which statuses, and what happens when they do.
package service

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"slfcert/internal/compliance/cache"
	complianceModels "slfcert/internal/compliance/models"
	"slfcert/internal/workflow/metrics"
	"slfcert/internal/workflow/models"
	"slfcert/pkg/attrs"
	id "slfcert/pkg/domain"
	dErrors "slfcert/pkg/domain-errors"
	"slfcert/pkg/platform/audit"
	"slfcert/pkg/platform/sentinel"
	"slfcert/pkg/requestcontext"
)

type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, documentID id.DocumentID) (*models.Document, error)
	UpdateStatus(ctx context.Context, doc *models.Document, expected models.Status) error
}

// TxRunner scopes the status write and its history entry to one transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// HistoryPublisher records transitions. Emit must fail closed.
type HistoryPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
	History(ctx context.Context, documentID id.DocumentID) ([]audit.Event, error)
}

// Notifier fans a transition out to the next person in the approval chain.
type Notifier interface {
	Fanout(ctx context.Context, event models.TransitionEvent) error
}

// Service is the status workflow engine.
type Service struct {
	documents DocumentStore
	tx        TxRunner
	history   HistoryPublisher
	notifier  Notifier
	cache     *cache.TTLMap
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
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

func WithTxRunner(tx TxRunner) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithHistory(history HistoryPublisher) Option {
	return func(s *Service) {
		s.history = history
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithDocumentCache serves Get, AllowedTargets and History from m. Entries
// are refreshed after every read of the store and every write, and evicted
// on conflicts.
func WithDocumentCache(m *cache.TTLMap) Option {
	return func(s *Service) {
		s.cache = m
	}
}

func New(documents DocumentStore, opts ...Option) (*Service, error) {
	if documents == nil {
		return nil, errors.New("document store is required")
	}
	s := &Service{
		documents: documents,
		logger:    slog.Default(),
		tracer:    otel.Tracer("slfcert/workflow"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SubmitRequest registers an uploaded document or report for review.
type SubmitRequest struct {
	ProjectID    id.ProjectID
	DocumentType string
	CreatedBy    id.UserID
	Metadata     map[string]any
}

// Submit creates a pending document and notifies the admin team. Any
// authenticated actor may submit; upload permissions are enforced by the
// document intake outside the engine.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Document, error) {
	req.DocumentType = strings.TrimSpace(req.DocumentType)
	if req.ProjectID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "project_id is required")
	}
	if req.CreatedBy.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "created_by is required")
	}
	if req.DocumentType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document_type is required")
	}

	now := requestcontext.Now(ctx)
	doc := &models.Document{
		ID:           id.DocumentID(uuid.New()),
		ProjectID:    req.ProjectID,
		DocumentType: req.DocumentType,
		Status:       models.StatusPending,
		CreatedBy:    req.CreatedBy,
		Metadata:     maps.Clone(req.Metadata),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create document")
	}
	s.cacheDocument(*doc)
	s.logAudit(ctx, "document_submitted",
		"document_id", doc.ID.String(),
		"project_id", doc.ProjectID.String(),
		"user_id", doc.CreatedBy.String(),
	)
	s.notify(ctx, models.TransitionEvent{Document: *doc, To: models.StatusPending, ActorID: doc.CreatedBy, At: now})
	return doc, nil
}

// Get returns a document, from cache when fresh. Transition and Resubmit
// always read the stored row.
func (s *Service) Get(ctx context.Context, documentID id.DocumentID) (*models.Document, error) {
	return s.load(ctx, documentID)
}

// Transition moves a document along one edge of the status table.
//
// Checks run in a fixed order: the document must exist, the actor must not
// be its creator, the edge must exist, and the actor's role must own the
// edge. The status write and its history entry commit together; the
// notification is sent afterwards and its failure does not undo anything.
func (s *Service) Transition(ctx context.Context, req models.TransitionRequest) (*models.Document, error) {
	ctx, span := s.tracer.Start(ctx, "workflow.Transition", trace.WithAttributes(
		attribute.String("document.id", req.DocumentID.String()),
		attribute.String("transition.to", string(req.Target)),
		attribute.String("actor.role", string(req.ActorRole)),
	))
	defer span.End()
	start := time.Now()
	defer s.observeTransition(start)

	if req.DocumentID.IsNil() || req.ActorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "document_id and actor are required")
	}

	doc, err := s.loadCurrent(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	from := doc.Status

	if doc.CreatedBy == req.ActorID {
		s.incrementRejected("self_verification")
		return nil, dErrors.New(dErrors.CodeSelfVerification, "the creator of a document cannot act on its verification")
	}
	if !models.CanTransition(from, req.Target) {
		s.incrementRejected("invalid_transition")
		return nil, dErrors.Newf(dErrors.CodeInvalidTransition, "cannot move a document from %s to %s", from, req.Target)
	}
	if !models.RoleMayTransition(from, req.Target, req.ActorRole) {
		s.incrementRejected("forbidden")
		return nil, dErrors.Newf(dErrors.CodeForbidden, "role %s may not move a document from %s to %s", req.ActorRole, from, req.Target)
	}

	now := requestcontext.Now(ctx)
	updated := *doc
	updated.Status = req.Target
	updated.ComplianceStatus = models.ComplianceFor(req.Target)
	verifier := req.ActorID
	updated.VerifiedByAdminTeam = &verifier
	updated.VerifiedAt = &now
	if req.Target == models.StatusRevisionRequested || req.Target == models.StatusRejected {
		updated.AdminTeamFeedback = strings.TrimSpace(req.Notes)
	}
	updated.UpdatedAt = now

	entry := audit.Event{
		Timestamp:  now,
		DocumentID: doc.ID,
		ProjectID:  doc.ProjectID,
		ActorID:    req.ActorID,
		ActorRole:  req.ActorRole,
		Action:     string(audit.EventDocumentTransitioned),
		FromStatus: string(from),
		ToStatus:   string(req.Target),
		Notes:      strings.TrimSpace(req.Notes),
	}
	if err := s.persist(ctx, &updated, from, entry); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return nil, err
	}

	s.incrementTransition(from, req.Target)
	s.logAudit(ctx, string(audit.EventDocumentTransitioned),
		"document_id", doc.ID.String(),
		"project_id", doc.ProjectID.String(),
		"user_id", req.ActorID.String(),
		"from", string(from),
		"to", string(req.Target),
	)
	s.notify(ctx, models.TransitionEvent{Document: updated, From: from, To: req.Target, ActorID: req.ActorID, At: now})
	return &updated, nil
}

// Resubmit sends a document back to review after the creator addressed the
// requested revision. Prior feedback and verification stamps are cleared.
func (s *Service) Resubmit(ctx context.Context, documentID id.DocumentID, actorID id.UserID) (*models.Document, error) {
	ctx, span := s.tracer.Start(ctx, "workflow.Resubmit", trace.WithAttributes(
		attribute.String("document.id", documentID.String()),
	))
	defer span.End()
	start := time.Now()
	defer s.observeTransition(start)

	doc, err := s.loadCurrent(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.StatusRevisionRequested {
		s.incrementRejected("invalid_transition")
		return nil, dErrors.Newf(dErrors.CodeInvalidTransition, "only documents in %s can be resubmitted", models.StatusRevisionRequested)
	}
	if doc.CreatedBy != actorID {
		s.incrementRejected("forbidden")
		return nil, dErrors.New(dErrors.CodeForbidden, "only the creator can resubmit a document")
	}

	now := requestcontext.Now(ctx)
	updated := *doc
	updated.Status = models.StatusPending
	updated.ComplianceStatus = models.ComplianceUnset
	updated.AdminTeamFeedback = ""
	updated.VerifiedByAdminTeam = nil
	updated.VerifiedAt = nil
	updated.UpdatedAt = now

	entry := audit.Event{
		Timestamp:  now,
		DocumentID: doc.ID,
		ProjectID:  doc.ProjectID,
		ActorID:    actorID,
		ActorRole:  requestcontext.Actor(ctx).Role,
		Action:     string(audit.EventDocumentResubmitted),
		FromStatus: string(doc.Status),
		ToStatus:   string(models.StatusPending),
	}
	if err := s.persist(ctx, &updated, doc.Status, entry); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return nil, err
	}

	s.incrementTransition(doc.Status, models.StatusPending)
	s.logAudit(ctx, string(audit.EventDocumentResubmitted),
		"document_id", doc.ID.String(),
		"user_id", actorID.String(),
	)
	s.notify(ctx, models.TransitionEvent{Document: updated, From: doc.Status, To: models.StatusPending, ActorID: actorID, At: now})
	return &updated, nil
}

// AllowedTargets lists the statuses the actor may move the document to.
// Creators get only resubmission, and only from revision_requested.
func (s *Service) AllowedTargets(ctx context.Context, documentID id.DocumentID, actor requestcontext.ActorInfo) ([]models.Status, error) {
	doc, err := s.load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.CreatedBy == actor.ID {
		if doc.Status == models.StatusRevisionRequested {
			return []models.Status{models.StatusPending}, nil
		}
		return nil, nil
	}
	return models.AllowedTargets(doc.Status, actor.Role), nil
}

// History returns the recorded transitions of a document.
func (s *Service) History(ctx context.Context, documentID id.DocumentID) ([]audit.Event, error) {
	if _, err := s.load(ctx, documentID); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []audit.Event{}, nil
	}
	events, err := s.history.History(ctx, documentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document history")
	}
	return events, nil
}

func (s *Service) load(ctx context.Context, documentID id.DocumentID) (*models.Document, error) {
	key := cache.Key{Kind: complianceModels.KindDocument, ID: documentID.String()}
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if doc, ok := v.(models.Document); ok {
				doc.Metadata = maps.Clone(doc.Metadata)
				return &doc, nil
			}
		}
	}
	return s.loadCurrent(ctx, documentID)
}

// loadCurrent reads the document from the store, bypassing the cache, and
// refreshes the cached copy. Status checks must never run against a copy
// another replica may have moved on from.
func (s *Service) loadCurrent(ctx context.Context, documentID id.DocumentID) (*models.Document, error) {
	doc, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	s.cacheDocument(*doc)
	return doc, nil
}

func (s *Service) persist(ctx context.Context, doc *models.Document, expected models.Status, entry audit.Event) error {
	write := func(ctx context.Context) error {
		if err := s.documents.UpdateStatus(ctx, doc, expected); err != nil {
			return err
		}
		if s.history != nil {
			return s.history.Emit(ctx, entry)
		}
		return nil
	}

	var err error
	if s.tx != nil {
		err = s.tx.RunInTx(ctx, write)
	} else {
		err = write(ctx)
	}
	if err != nil {
		s.evict(doc.ID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "document not found")
		case errors.Is(err, sentinel.ErrConflict):
			return dErrors.New(dErrors.CodeConflict, "document status changed, reload and retry")
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update document status")
		}
	}
	s.cacheDocument(*doc)
	return nil
}

func (s *Service) notify(ctx context.Context, event models.TransitionEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Fanout(ctx, event); err != nil {
		if s.metrics != nil {
			s.metrics.NotificationFailures.Inc()
		}
		s.logger.WarnContext(ctx, "notification fan-out failed after status write",
			"document_id", event.Document.ID.String(),
			"to", string(event.To),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func (s *Service) cacheDocument(doc models.Document) {
	if s.cache == nil {
		return
	}
	doc.Metadata = maps.Clone(doc.Metadata)
	s.cache.Set(cache.Key{Kind: complianceModels.KindDocument, ID: doc.ID.String()}, doc)
}

func (s *Service) evict(documentID id.DocumentID) {
	if s.cache != nil {
		s.cache.Delete(cache.Key{Kind: complianceModels.KindDocument, ID: documentID.String()})
	}
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	attributes = attrs.AppendIfMissing(attributes, "request_id", requestcontext.RequestID(ctx))
	if actor := requestcontext.Actor(ctx); !actor.ID.IsNil() {
		attributes = attrs.AppendIfMissing(attributes, "user_id", actor.ID.String())
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, attrs.Audit(attributes, event)...)
	}
}

func (s *Service) incrementTransition(from, to models.Status) {
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(from), string(to))
	}
}

func (s *Service) incrementRejected(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementRejected(reason)
	}
}

func (s *Service) observeTransition(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(start)
	}
}
