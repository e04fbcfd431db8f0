// Package audit records the history of document status changes and the
// notifications they triggered.
package audit

import (
	"context"
	"time"

	id "slfcert/pkg/domain"
)

// EventCategory classifies audit events by their retention needs.
type EventCategory string

const (
	// CategoryCompliance covers events with certification significance.
	// These are written in the same transaction as the change they describe.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for operational visibility.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	// Workflow events
	EventDocumentTransitioned AuditEvent = "document_transitioned"
	EventDocumentResubmitted  AuditEvent = "document_resubmitted"

	// Notification events
	EventNotificationSent    AuditEvent = "notification_sent"
	EventNotificationSkipped AuditEvent = "notification_skipped"
	EventNotificationFailed  AuditEvent = "notification_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDocumentTransitioned: CategoryCompliance,
	EventDocumentResubmitted:  CategoryCompliance,

	EventNotificationSent:    CategoryOperations,
	EventNotificationSkipped: CategoryOperations,
	EventNotificationFailed:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is one entry in a document's history.
type Event struct {
	Category   EventCategory `json:"category"`
	Timestamp  time.Time     `json:"timestamp"`
	DocumentID id.DocumentID `json:"document_id"`
	ProjectID  id.ProjectID  `json:"project_id"`
	ActorID    id.UserID     `json:"actor_id"`
	ActorRole  id.Role       `json:"actor_role,omitempty"`
	Action     string        `json:"action"`
	FromStatus string        `json:"from_status,omitempty"`
	ToStatus   string        `json:"to_status,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	RequestID  string        `json:"request_id,omitempty"`
}

// Store persists history entries.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByDocument(ctx context.Context, documentID id.DocumentID) ([]Event, error)
}
