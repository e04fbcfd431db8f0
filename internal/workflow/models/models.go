// Package models defines compliance documents and the status machine that
// governs how they move from submission to certification.
package models

import (
	"slices"
	"strings"
	"time"

	id "slfcert/pkg/domain"
	dErrors "slfcert/pkg/domain-errors"
)

// Status is a document's position in the approval pipeline.
type Status string

const (
	StatusPending             Status = "pending"
	StatusVerifiedByAdminTeam Status = "verified_by_admin_team"
	StatusApprovedByPL        Status = "approved_by_pl"
	StatusApprovedByAdminLead Status = "approved_by_admin_lead"
	StatusApproved            Status = "approved"
	StatusRevisionRequested   Status = "revision_requested"
	StatusRejected            Status = "rejected"
	StatusCancelled           Status = "cancelled"
)

var Statuses = []Status{
	StatusPending,
	StatusVerifiedByAdminTeam,
	StatusApprovedByPL,
	StatusApprovedByAdminLead,
	StatusApproved,
	StatusRevisionRequested,
	StatusRejected,
	StatusCancelled,
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Statuses, st) {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown status %q", s)
	}
	return st, nil
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// ComplianceStatus is derived from the final approval outcome.
type ComplianceStatus string

const (
	ComplianceUnset        ComplianceStatus = ""
	ComplianceCompliant    ComplianceStatus = "compliant"
	ComplianceNonCompliant ComplianceStatus = "non_compliant"
)

// ComplianceFor returns the compliance outcome implied by reaching s.
func ComplianceFor(s Status) ComplianceStatus {
	switch s {
	case StatusApproved:
		return ComplianceCompliant
	case StatusRejected:
		return ComplianceNonCompliant
	default:
		return ComplianceUnset
	}
}

// DocumentTypeReport marks inspection reports as opposed to uploaded
// artifacts, which carry their artifact code as the type.
const DocumentTypeReport = "REPORT"

// Metadata keys written at upload time.
const (
	MetaOriginalFilename    = "original_filename"
	MetaSize                = "size"
	MetaChecklistTemplateID = "checklist_template_id"
)

// Document is an uploaded compliance artifact or inspection report.
type Document struct {
	ID                  id.DocumentID    `json:"id"`
	ProjectID           id.ProjectID     `json:"project_id"`
	DocumentType        string           `json:"document_type"`
	Status              Status           `json:"status"`
	ComplianceStatus    ComplianceStatus `json:"compliance_status,omitempty"`
	CreatedBy           id.UserID        `json:"created_by"`
	VerifiedByAdminTeam *id.UserID       `json:"verified_by_admin_team,omitempty"`
	VerifiedAt          *time.Time       `json:"verified_at,omitempty"`
	AdminTeamFeedback   string           `json:"admin_team_feedback,omitempty"`
	Metadata            map[string]any   `json:"metadata,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// DisplayName is the name used in notifications: the uploaded filename when
// known, otherwise the document type.
func (d Document) DisplayName() string {
	if name, ok := d.Metadata[MetaOriginalFilename].(string); ok && strings.TrimSpace(name) != "" {
		return name
	}
	return d.DocumentType
}

// IsReport reports whether the document is an inspection report.
func (d Document) IsReport() bool {
	return d.DocumentType == DocumentTypeReport
}

// TransitionRequest asks the engine to move a document to Target.
type TransitionRequest struct {
	DocumentID id.DocumentID
	ActorID    id.UserID
	ActorRole  id.Role
	Target     Status
	Notes      string
}

// TransitionEvent describes an applied transition. It is handed to the
// notification fan-out after the status write.
type TransitionEvent struct {
	Document Document
	From     Status
	To       Status
	ActorID  id.UserID
	At       time.Time
}
