// Package models defines in-app notifications raised by document workflow
// transitions.
package models

import (
	"time"

	id "slfcert/pkg/domain"
)

// Type classifies a notification by the transition that raised it.
type Type string

const (
	TypeDocumentSubmitted     Type = "document_submitted"
	TypeDocumentResubmitted   Type = "document_resubmitted"
	TypeDocumentVerified      Type = "document_verified"
	TypeRevisionRequested     Type = "revision_requested"
	TypeApprovedByProjectLead Type = "approved_by_pl"
	TypeApprovedByAdminLead   Type = "approved_by_admin_lead"
	TypeDocumentApproved      Type = "document_approved"
	TypeDocumentRejected      Type = "document_rejected"
	TypeDocumentCancelled     Type = "document_cancelled"
)

// Notification is write-once except for the read flag.
type Notification struct {
	ID          id.NotificationID `json:"id"`
	RecipientID id.UserID         `json:"recipient_id"`
	Type        Type              `json:"type"`
	Message     string            `json:"message"`
	SenderID    id.UserID         `json:"sender_id"`
	ProjectID   id.ProjectID      `json:"project_id"`
	DocumentID  id.DocumentID     `json:"document_id"`
	Read        bool              `json:"read"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TeamMember is one row of a project's roster.
type TeamMember struct {
	ProjectID id.ProjectID
	UserID    id.UserID
	Role      id.Role
	CreatedAt time.Time
}
