package models

import (
	"maps"
	"slices"
	"strings"
	"time"

	checklist "slfcert/internal/checklist/models"
	id "slfcert/pkg/domain"
	dErrors "slfcert/pkg/domain-errors"
)

// Kind partitions cache entries so one category can be evicted at a time.
type Kind string

const (
	KindInspection     Kind = "inspection"
	KindChecklistItems Kind = "checklist_items"
	KindDocument       Kind = "document"
)

var Kinds = []Kind{KindInspection, KindChecklistItems, KindDocument}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Kinds, k) {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown cache kind %q", s)
	}
	return k, nil
}

// Inspection is a scheduled site visit joined with its project and
// inspector metadata.
type Inspection struct {
	ID                      id.InspectionID `json:"id"`
	ProjectID               id.ProjectID    `json:"project_id"`
	ProjectName             string          `json:"project_name"`
	InspectorID             id.UserID       `json:"inspector_id"`
	InspectorName           string          `json:"inspector_name"`
	InspectorSpecialization string          `json:"inspector_specialization,omitempty"`
	ChecklistTemplateID     string          `json:"checklist_template_id"`
	Status                  string          `json:"status"`
	ScheduledAt             time.Time       `json:"scheduled_at"`
}

// ChecklistItemRow is a checklist item as stored, keyed by template.
type ChecklistItemRow struct {
	ID          string             `json:"id"`
	TemplateID  string             `json:"template_id"`
	Name        string             `json:"name"`
	Category    checklist.Category `json:"category"`
	SortOrder   int                `json:"sort_order"`
	IsMandatory bool               `json:"is_mandatory"`
}

// InspectionWithChecklist is the composite cached per inspection.
type InspectionWithChecklist struct {
	Inspection
	ChecklistItems []ChecklistItemRow `json:"checklist_items"`
}

func (i InspectionWithChecklist) Clone() InspectionWithChecklist {
	out := i
	out.ChecklistItems = slices.Clone(i.ChecklistItems)
	return out
}

// ChecklistResponse is an inspector's answer to one checklist item.
type ChecklistResponse struct {
	ID              id.ResponseID   `json:"id"`
	InspectionID    id.InspectionID `json:"inspection_id" validate:"required"`
	ChecklistItemID string          `json:"checklist_item_id" validate:"required,max=64"`
	Response        map[string]any  `json:"response" validate:"required"`
	Notes           string          `json:"notes,omitempty" validate:"max=2000"`
	Latitude        *float64        `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude       *float64        `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Accuracy        *float64        `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
	CapturedAt      *time.Time      `json:"captured_at,omitempty"`
	ManualLocation  bool            `json:"manual_location"`
	NeedsReview     bool            `json:"needs_review"`
	RespondedBy     id.UserID       `json:"responded_by" validate:"required"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// HasGeotag reports whether GPS coordinates are attached.
func (r ChecklistResponse) HasGeotag() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Normalize trims identifiers and free text in place.
func (r *ChecklistResponse) Normalize() {
	r.ChecklistItemID = strings.TrimSpace(r.ChecklistItemID)
	r.Notes = strings.TrimSpace(r.Notes)
	if r.Response != nil {
		r.Response = maps.Clone(r.Response)
	}
}

// ResponseUpdate patches an existing response. Nil fields are left as is.
type ResponseUpdate struct {
	ID        id.ResponseID  `json:"id" validate:"required"`
	Response  map[string]any `json:"response,omitempty"`
	Notes     *string        `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Latitude  *float64       `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64       `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Accuracy  *float64       `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
	UpdatedAt time.Time      `json:"-"`
}

// IsEmpty reports whether the update changes nothing.
func (u ResponseUpdate) IsEmpty() bool {
	return u.Response == nil && u.Notes == nil && u.Latitude == nil && u.Longitude == nil && u.Accuracy == nil
}

// FailedUpdate names one update that did not apply.
type FailedUpdate struct {
	ID    id.ResponseID `json:"id"`
	Error string        `json:"error"`
}

// BatchResult reports the outcome of a batch write. Success is true only
// when every element was written; Count is the number that were.
type BatchResult struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Failed  []FailedUpdate `json:"failed,omitempty"`
}
