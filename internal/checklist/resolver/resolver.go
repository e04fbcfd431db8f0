// Package resolver decides which checklist templates and items apply to an
// inspector and which items need geotagged photo evidence.
package resolver

import (
	"slices"
	"strings"

	"slfcert/internal/checklist/models"
	id "slfcert/pkg/domain"
)

// Section ids with fixed meaning in the checklist catalog.
const (
	SectionStructure          = "m21"
	SectionDisasterMitigation = "m210"
	SectionPassiveFire        = "m23"
)

// Catalog is the read side of the checklist catalog.
type Catalog interface {
	Templates() []models.Template
	Template(id string) (models.Template, bool)
	Item(templateID, itemID string) (models.Item, *models.Subsection, error)
	PhotoRequirements() models.PhotoRequirements
}

// profile lists what a specialization covers. A template matches when any
// one of categories, templateIDs or keywords matches.
type profile struct {
	categories  []models.Category
	templateIDs []string
	// keywords are matched case-insensitively as substrings of a template's
	// title, description and category. This is a fallback for templates added
	// to the catalog without being listed in templateIDs.
	keywords []string
	matchAll bool
}

var profiles = map[id.Specialization]profile{
	id.SpecializationStruktur: {
		templateIDs: []string{SectionStructure, SectionDisasterMitigation},
		keywords:    []string{"struktur"},
	},
	id.SpecializationArsitektur: {
		categories:  []models.Category{models.CategoryTataBangunan, models.CategoryKeselamatan},
		templateIDs: []string{SectionPassiveFire},
		keywords:    []string{"arsitektur", "tata bangunan", "proteksi pasif"},
	},
	id.SpecializationMEP: {
		templateIDs: []string{"m22", "m24", "m25", "m26", "m27", "m28", "m29"},
		keywords:    []string{"mekanikal", "elektrikal", "plumbing", "listrik"},
	},
	id.SpecializationBuildingInspection: {
		matchAll: true,
	},
}

func profileFor(spec id.Specialization) profile {
	if p, ok := profiles[spec]; ok {
		return p
	}
	return profiles[id.SpecializationBuildingInspection]
}

func (p profile) matches(t models.Template) bool {
	if p.matchAll {
		return true
	}
	if t.Category == models.CategoryAdministrative {
		return false
	}
	if slices.Contains(p.categories, t.Category) || slices.Contains(p.templateIDs, t.ID) {
		return true
	}
	haystack := strings.ToLower(t.Title + "\n" + t.Description + "\n" + string(t.Category))
	for _, kw := range p.keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// Resolver answers checklist applicability questions against a catalog.
type Resolver struct {
	catalog Catalog
}

func New(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// BySpecialization returns the templates an inspector with the given
// specialization works through for a building type, in catalog order.
// Unknown specializations get the supervisor profile, which matches all.
func (r *Resolver) BySpecialization(spec id.Specialization, buildingType models.BuildingType) []models.Template {
	p := profileFor(spec)
	var out []models.Template
	for _, t := range r.catalog.Templates() {
		if p.matches(t) && t.ApplicableFor.Allows(buildingType) {
			out = append(out, t)
		}
	}
	return out
}

// ItemMatchesSpecialization filters items of the merged general template.
// Administrative items never reach field inspectors.
func ItemMatchesSpecialization(item models.FlatItem, spec id.Specialization) bool {
	if item.Category == models.CategoryAdministrative {
		return false
	}
	switch spec {
	case id.SpecializationArsitektur:
		return item.Category == models.CategoryTataBangunan ||
			item.Category == models.CategoryKeselamatan ||
			strings.HasPrefix(item.SectionID, "m1") ||
			strings.HasPrefix(item.SectionID, "m3") ||
			item.SectionID == SectionPassiveFire
	case id.SpecializationStruktur:
		return item.SectionID == SectionStructure || item.SectionID == SectionDisasterMitigation
	case id.SpecializationMEP:
		if item.Category != models.CategoryKeandalan {
			return false
		}
		switch item.SectionID {
		case SectionStructure, SectionDisasterMitigation, SectionPassiveFire:
			return false
		}
		return true
	default:
		// Supervisors and unrecognized specializations see everything.
		return true
	}
}

// Flatten merges template items and subsection items into one ordered list:
// template order, then direct items, then subsections in order, then their
// items in order. Report numbering depends on this order.
func Flatten(templates []models.Template) []models.FlatItem {
	var out []models.FlatItem
	for _, t := range templates {
		for _, it := range t.Items {
			out = append(out, models.FlatItem{
				Item:          it.Clone(),
				TemplateID:    t.ID,
				TemplateTitle: t.Title,
				SectionID:     t.ID,
				Category:      effectiveCategory(it.Category, "", t.Category),
			})
		}
		for _, s := range t.Subsections {
			for _, it := range s.Items {
				out = append(out, models.FlatItem{
					Item:            it.Clone(),
					TemplateID:      t.ID,
					TemplateTitle:   t.Title,
					SubsectionID:    s.ID,
					SubsectionTitle: s.Title,
					SectionID:       t.ID,
					Category:        effectiveCategory(it.Category, s.Category, t.Category),
				})
			}
		}
	}
	return out
}

// ItemsForInspector flattens the whole catalog as one general template and
// keeps the items matching the specialization and building type.
func (r *Resolver) ItemsForInspector(spec id.Specialization, buildingType models.BuildingType) []models.FlatItem {
	templates := r.catalog.Templates()
	applicable := make(map[string]bool)
	for _, t := range templates {
		if !t.ApplicableFor.Allows(buildingType) {
			continue
		}
		applicable[t.ID] = true
		for _, s := range t.Subsections {
			applicable[t.ID+"/"+s.ID] = s.ApplicableFor.Allows(buildingType)
		}
	}

	var out []models.FlatItem
	for _, it := range Flatten(templates) {
		if !applicable[it.TemplateID] {
			continue
		}
		if it.SubsectionID != "" && !applicable[it.TemplateID+"/"+it.SubsectionID] {
			continue
		}
		if !it.ApplicableFor.Allows(buildingType) {
			continue
		}
		if ItemMatchesSpecialization(it, spec) {
			out = append(out, it)
		}
	}
	return out
}

func effectiveCategory(candidates ...models.Category) models.Category {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
