package models

import (
	"slices"
	"strings"
)

// Category is the technical grouping a template or item belongs to.
type Category string

const (
	CategoryAdministrative Category = "administrative"
	CategoryTataBangunan   Category = "tata_bangunan"
	CategoryKeandalan      Category = "keandalan"
	CategoryKeselamatan    Category = "keselamatan"
)

// Categories lists every valid category in declaration order.
var Categories = []Category{
	CategoryAdministrative,
	CategoryTataBangunan,
	CategoryKeandalan,
	CategoryKeselamatan,
}

func (c Category) IsValid() bool {
	return slices.Contains(Categories, c)
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory accepts a category name in any case.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.IsValid()
}

// BuildingType tags the certification scenario a template applies to.
type BuildingType string

const (
	BuildingBaru            BuildingType = "baru"
	BuildingExisting        BuildingType = "existing"
	BuildingPerubahanFungsi BuildingType = "perubahan_fungsi"
	BuildingPascabencana    BuildingType = "pascabencana"
	BuildingPerpanjanganSLF BuildingType = "perpanjangan_slf"
	BuildingAll             BuildingType = "all"
)

var BuildingTypes = []BuildingType{
	BuildingBaru,
	BuildingExisting,
	BuildingPerubahanFungsi,
	BuildingPascabencana,
	BuildingPerpanjanganSLF,
	BuildingAll,
}

func (b BuildingType) IsValid() bool {
	return slices.Contains(BuildingTypes, b)
}

// ParseBuildingType falls back to BuildingAll for empty input.
func ParseBuildingType(s string) (BuildingType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return BuildingAll, true
	}
	b := BuildingType(s)
	return b, b.IsValid()
}

// ApplicableFor is the set of building types a template, subsection or
// item is restricted to. Empty means unrestricted.
type ApplicableFor []BuildingType

// Allows reports whether the set admits the given building type.
func (a ApplicableFor) Allows(b BuildingType) bool {
	if b == BuildingAll || len(a) == 0 {
		return true
	}
	return slices.Contains(a, b) || slices.Contains(a, BuildingAll)
}

type ColumnType string

const (
	ColumnText    ColumnType = "text"
	ColumnNumber  ColumnType = "number"
	ColumnBoolean ColumnType = "boolean"
	ColumnSelect  ColumnType = "select"
	ColumnDate    ColumnType = "date"
	ColumnPhoto   ColumnType = "photo"
)

// Column is one typed input field of a checklist item.
type Column struct {
	Name     string     `json:"name" yaml:"name" validate:"required"`
	Type     ColumnType `json:"type" yaml:"type" validate:"required,oneof=text number boolean select date photo"`
	Label    string     `json:"label,omitempty" yaml:"label,omitempty"`
	Options  []string   `json:"options,omitempty" yaml:"options,omitempty" validate:"required_if=Type select"`
	Required bool       `json:"required,omitempty" yaml:"required,omitempty"`
}

// Item is a single inspection point.
type Item struct {
	ID            string        `json:"id" yaml:"id" validate:"required"`
	Name          string        `json:"name" yaml:"name" validate:"required"`
	Category      Category      `json:"category,omitempty" yaml:"category,omitempty"`
	Wajib         bool          `json:"wajib" yaml:"wajib"`
	ApplicableFor ApplicableFor `json:"applicable_for,omitempty" yaml:"applicable_for,omitempty"`
	Columns       []Column      `json:"columns,omitempty" yaml:"columns,omitempty" validate:"dive"`
}

// Subsection groups items inside a template.
type Subsection struct {
	ID            string        `json:"id" yaml:"id" validate:"required"`
	Title         string        `json:"title" yaml:"title" validate:"required"`
	Category      Category      `json:"category,omitempty" yaml:"category,omitempty"`
	ApplicableFor ApplicableFor `json:"applicable_for,omitempty" yaml:"applicable_for,omitempty"`
	Items         []Item        `json:"items" yaml:"items" validate:"dive"`
}

// Template is a named group of inspection items.
type Template struct {
	ID            string        `json:"id" yaml:"id" validate:"required"`
	Title         string        `json:"title" yaml:"title" validate:"required"`
	Description   string        `json:"description,omitempty" yaml:"description,omitempty"`
	Category      Category      `json:"category" yaml:"category" validate:"required"`
	ApplicableFor ApplicableFor `json:"applicable_for,omitempty" yaml:"applicable_for,omitempty"`
	Items         []Item        `json:"items,omitempty" yaml:"items,omitempty" validate:"dive"`
	Subsections   []Subsection  `json:"subsections,omitempty" yaml:"subsections,omitempty" validate:"dive"`
}

// Clone returns a deep copy.
func (t Template) Clone() Template {
	out := t
	out.ApplicableFor = slices.Clone(t.ApplicableFor)
	out.Items = cloneItems(t.Items)
	if t.Subsections != nil {
		out.Subsections = make([]Subsection, len(t.Subsections))
		for i, s := range t.Subsections {
			s.ApplicableFor = slices.Clone(s.ApplicableFor)
			s.Items = cloneItems(s.Items)
			out.Subsections[i] = s
		}
	}
	return out
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// Clone returns a deep copy.
func (it Item) Clone() Item {
	out := it
	out.ApplicableFor = slices.Clone(it.ApplicableFor)
	if it.Columns != nil {
		out.Columns = make([]Column, len(it.Columns))
		for j, c := range it.Columns {
			c.Options = slices.Clone(c.Options)
			out.Columns[j] = c
		}
	}
	return out
}

// FlatItem is an item tagged with where it came from.
type FlatItem struct {
	Item
	TemplateID      string   `json:"template_id"`
	TemplateTitle   string   `json:"template_title"`
	SubsectionID    string   `json:"subsection_id,omitempty"`
	SubsectionTitle string   `json:"subsection_title,omitempty"`
	SectionID       string   `json:"section_id"`
	Category        Category `json:"category"`
}
