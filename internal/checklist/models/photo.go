package models

import "slices"

// PhotoRequirement is the evidence rule for one category or the global
// fallback. RequireGeotag is nil when a per-category rule does not
// override the geotag default.
type PhotoRequirement struct {
	RequireGeotag       *bool    `json:"require_geotag,omitempty" yaml:"require_geotag,omitempty"`
	MinPhotos           int      `json:"min_photos" yaml:"min_photos" validate:"gte=0"`
	MaxPhotos           int      `json:"max_photos,omitempty" yaml:"max_photos,omitempty" validate:"gte=0"`
	MinAccuracyMeters   float64  `json:"min_accuracy_meters,omitempty" yaml:"min_accuracy_meters,omitempty" validate:"gte=0"`
	RequiredSubjects    []string `json:"required_subjects,omitempty" yaml:"required_subjects,omitempty"`
	RecommendedSubjects []string `json:"recommended_subjects,omitempty" yaml:"recommended_subjects,omitempty"`
}

// NoSignalPolicy describes the fallback when no position fix can be taken.
type NoSignalPolicy struct {
	AllowManualLocation     bool   `json:"allow_manual_location" yaml:"allow_manual_location"`
	RequireReviewerApproval bool   `json:"require_reviewer_approval" yaml:"require_reviewer_approval"`
	Message                 string `json:"message,omitempty" yaml:"message,omitempty"`
}

type PhotoRequirements struct {
	Global      PhotoRequirement              `json:"global" yaml:"global"`
	PerCategory map[Category]PhotoRequirement `json:"per_category,omitempty" yaml:"per_category,omitempty" validate:"dive"`
	NoSignal    NoSignalPolicy                `json:"no_signal" yaml:"no_signal"`
}

// Merge overlays a per-category rule on top of the receiver. Zero fields
// of the override keep the receiver's value.
func (p PhotoRequirement) Merge(override PhotoRequirement) PhotoRequirement {
	out := p.Clone()
	if override.RequireGeotag != nil {
		v := *override.RequireGeotag
		out.RequireGeotag = &v
	}
	if override.MinPhotos > 0 {
		out.MinPhotos = override.MinPhotos
	}
	if override.MaxPhotos > 0 {
		out.MaxPhotos = override.MaxPhotos
	}
	if override.MinAccuracyMeters > 0 {
		out.MinAccuracyMeters = override.MinAccuracyMeters
	}
	if len(override.RequiredSubjects) > 0 {
		out.RequiredSubjects = slices.Clone(override.RequiredSubjects)
	}
	if len(override.RecommendedSubjects) > 0 {
		out.RecommendedSubjects = slices.Clone(override.RecommendedSubjects)
	}
	return out
}

func (p PhotoRequirement) Clone() PhotoRequirement {
	out := p
	if p.RequireGeotag != nil {
		v := *p.RequireGeotag
		out.RequireGeotag = &v
	}
	out.RequiredSubjects = slices.Clone(p.RequiredSubjects)
	out.RecommendedSubjects = slices.Clone(p.RecommendedSubjects)
	return out
}

func (p PhotoRequirements) Clone() PhotoRequirements {
	out := PhotoRequirements{Global: p.Global.Clone(), NoSignal: p.NoSignal}
	if p.PerCategory != nil {
		out.PerCategory = make(map[Category]PhotoRequirement, len(p.PerCategory))
		for k, v := range p.PerCategory {
			out.PerCategory[k] = v.Clone()
		}
	}
	return out
}

// Metadata versions a checklist configuration document.
type Metadata struct {
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	LastUpdated string `json:"last_updated" yaml:"last_updated" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Config is the on-disk checklist configuration document.
type Config struct {
	Metadata           Metadata          `json:"metadata" yaml:"metadata"`
	ChecklistTemplates []Template        `json:"checklist_templates" yaml:"checklist_templates" validate:"required,min=1,dive"`
	PhotoRequirements  PhotoRequirements `json:"photo_requirements" yaml:"photo_requirements"`
}
