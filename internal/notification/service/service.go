// Package service fans workflow transitions out to the next person in the
// approval chain as in-app notifications.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"slfcert/internal/notification/metrics"
	"slfcert/internal/notification/models"
	workflow "slfcert/internal/workflow/models"
	"slfcert/pkg/attrs"
	id "slfcert/pkg/domain"
	dErrors "slfcert/pkg/domain-errors"
	"slfcert/pkg/platform/audit"
	"slfcert/pkg/platform/sentinel"
	"slfcert/pkg/requestcontext"
)

// Store persists notifications. Notifications are write-once apart from the
// read flag.
type Store interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListForRecipient(ctx context.Context, recipientID id.UserID, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID id.NotificationID, recipientID id.UserID, at time.Time) (*models.Notification, error)
}

// Roster resolves a project's team members. FindMember returns
// sentinel.ErrNotFound when nobody on the project holds the role.
type Roster interface {
	FindMember(ctx context.Context, projectID id.ProjectID, role id.Role) (id.UserID, error)
}

// Publisher delivers a persisted notification outside the application.
type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

type Service struct {
	store     Store
	roster    Roster
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
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

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func New(store Store, roster Roster, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("notification store is required")
	}
	if roster == nil {
		return nil, errors.New("roster store is required")
	}
	s := &Service{
		store:  store,
		roster: roster,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Fanout notifies the next stage of a transition. A missing roster entry is
// not an error: it is logged and the transition stands without a
// notification.
func (s *Service) Fanout(ctx context.Context, event workflow.TransitionEvent) error {
	doc := event.Document
	recipient, err := s.resolveRecipient(ctx, event)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incrementSkipped("no_recipient")
			s.logger.WarnContext(ctx, "no recipient for document notification",
				"document_id", doc.ID.String(),
				"project_id", doc.ProjectID.String(),
				"to", string(event.To),
				"request_id", requestcontext.RequestID(ctx),
			)
			s.logAudit(ctx, string(audit.EventNotificationSkipped),
				"document_id", doc.ID.String(),
				"to", string(event.To),
			)
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve notification recipient")
	}

	now := event.At
	if now.IsZero() {
		now = requestcontext.Now(ctx)
	}
	n := &models.Notification{
		ID:          id.NotificationID(uuid.New()),
		RecipientID: recipient,
		Type:        typeFor(event),
		Message:     messageFor(event),
		SenderID:    event.ActorID,
		ProjectID:   doc.ProjectID,
		DocumentID:  doc.ID,
		CreatedAt:   now,
	}
	if err := s.store.Insert(ctx, n); err != nil {
		s.logAudit(ctx, string(audit.EventNotificationFailed),
			"document_id", doc.ID.String(),
			"recipient_id", recipient.String(),
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save notification")
	}
	s.incrementCreated(n.Type)
	s.logAudit(ctx, string(audit.EventNotificationSent),
		"notification_id", n.ID.String(),
		"document_id", doc.ID.String(),
		"recipient_id", recipient.String(),
		"type", string(n.Type),
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, *n); err != nil {
			if s.metrics != nil {
				s.metrics.IncrementPublishFailure()
			}
			s.logger.WarnContext(ctx, "failed to publish notification event",
				"notification_id", n.ID.String(),
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}
	return nil
}

// resolveRecipient picks who hears about a transition:
//
//	verified_by_admin_team -> project lead, else admin lead
//	approved_by_pl         -> admin lead
//	pending                -> admin team
//	anything else          -> the document's creator
func (s *Service) resolveRecipient(ctx context.Context, event workflow.TransitionEvent) (id.UserID, error) {
	projectID := event.Document.ProjectID
	switch event.To {
	case workflow.StatusVerifiedByAdminTeam:
		userID, err := s.roster.FindMember(ctx, projectID, id.RoleProjectLead)
		if errors.Is(err, sentinel.ErrNotFound) {
			return s.roster.FindMember(ctx, projectID, id.RoleAdminLead)
		}
		return userID, err
	case workflow.StatusApprovedByPL:
		return s.roster.FindMember(ctx, projectID, id.RoleAdminLead)
	case workflow.StatusPending:
		return s.roster.FindMember(ctx, projectID, id.RoleAdminTeam)
	default:
		if event.Document.CreatedBy.IsNil() {
			return id.UserID{}, sentinel.ErrNotFound
		}
		return event.Document.CreatedBy, nil
	}
}

func typeFor(event workflow.TransitionEvent) models.Type {
	switch event.To {
	case workflow.StatusPending:
		if event.From == workflow.StatusRevisionRequested {
			return models.TypeDocumentResubmitted
		}
		return models.TypeDocumentSubmitted
	case workflow.StatusVerifiedByAdminTeam:
		return models.TypeDocumentVerified
	case workflow.StatusRevisionRequested:
		return models.TypeRevisionRequested
	case workflow.StatusApprovedByPL:
		return models.TypeApprovedByProjectLead
	case workflow.StatusApprovedByAdminLead:
		return models.TypeApprovedByAdminLead
	case workflow.StatusApproved:
		return models.TypeDocumentApproved
	case workflow.StatusRejected:
		return models.TypeDocumentRejected
	default:
		return models.TypeDocumentCancelled
	}
}

func messageFor(event workflow.TransitionEvent) string {
	doc := event.Document
	subject := "Dokumen"
	if doc.IsReport() {
		subject = "Laporan"
	}
	name := fmt.Sprintf("%s %q", subject, doc.DisplayName())
	feedback := strings.TrimSpace(doc.AdminTeamFeedback)

	switch event.To {
	case workflow.StatusPending:
		if event.From == workflow.StatusRevisionRequested {
			return name + " telah diperbaiki dan diajukan ulang untuk verifikasi."
		}
		return name + " baru diajukan dan menunggu verifikasi tim admin."
	case workflow.StatusVerifiedByAdminTeam:
		return name + " telah diverifikasi tim admin dan menunggu persetujuan Anda."
	case workflow.StatusRevisionRequested:
		if feedback != "" {
			return name + " memerlukan revisi: " + feedback
		}
		return name + " memerlukan revisi."
	case workflow.StatusApprovedByPL:
		return name + " telah disetujui project lead dan menunggu persetujuan admin lead."
	case workflow.StatusApprovedByAdminLead:
		return name + " telah disetujui admin lead."
	case workflow.StatusApproved:
		return name + " telah disetujui dan dinyatakan sesuai."
	case workflow.StatusRejected:
		if feedback != "" {
			return name + " ditolak: " + feedback
		}
		return name + " ditolak."
	default:
		return name + " dibatalkan."
	}
}

// ListForRecipient returns the caller's notifications, newest first.
func (s *Service) ListForRecipient(ctx context.Context, recipientID id.UserID, unreadOnly bool) ([]models.Notification, error) {
	if recipientID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "recipient is required")
	}
	out, err := s.store.ListForRecipient(ctx, recipientID, unreadOnly)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return out, nil
}

// MarkRead flips the read flag. Notifications addressed to someone else are
// reported as not found.
func (s *Service) MarkRead(ctx context.Context, notificationID id.NotificationID, recipientID id.UserID) (*models.Notification, error) {
	n, err := s.store.MarkRead(ctx, notificationID, recipientID, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notification read")
	}
	return n, nil
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	attributes = attrs.AppendIfMissing(attributes, "request_id", requestcontext.RequestID(ctx))
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, attrs.Audit(attributes, event)...)
	}
}

func (s *Service) incrementCreated(kind models.Type) {
	if s.metrics != nil {
		s.metrics.IncrementCreated(string(kind))
	}
}

func (s *Service) incrementSkipped(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementSkipped(reason)
	}
}
