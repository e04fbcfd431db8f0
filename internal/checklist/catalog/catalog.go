// Package catalog loads the checklist configuration document into an
// immutable, validated set of templates and photo rules.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"slfcert/internal/checklist/models"
	dErrors "slfcert/pkg/domain-errors"
)

//go:embed default_checklists.json
var defaultConfig []byte

// Format selects the decoder for a configuration document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatForPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Catalog is read-only after construction. Every accessor returns copies.
type Catalog struct {
	metadata  models.Metadata
	templates []models.Template
	index     map[string]int
	photo     models.PhotoRequirements
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultConfig, FormatJSON)
}

// Load reads the document at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checklist config %s: %w", path, err)
	}
	return Parse(data, FormatForPath(path))
}

// Parse decodes and validates a configuration document. Unknown fields,
// unknown categories or building types, and duplicate ids are rejected.
func Parse(data []byte, format Format) (*Catalog, error) {
	var cfg models.Config
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, "decode checklist config")
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, "decode checklist config")
		}
	}
	return New(cfg)
}

// New validates cfg and builds a catalog from it.
func New(cfg models.Config) (*Catalog, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	c := &Catalog{
		metadata:  cfg.Metadata,
		templates: make([]models.Template, len(cfg.ChecklistTemplates)),
		index:     make(map[string]int, len(cfg.ChecklistTemplates)),
		photo:     cfg.PhotoRequirements.Clone(),
	}
	for i, t := range cfg.ChecklistTemplates {
		c.templates[i] = t.Clone()
		c.index[t.ID] = i
	}
	return c, nil
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

func validate(cfg models.Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid checklist config")
	}

	seenTemplates := make(map[string]struct{}, len(cfg.ChecklistTemplates))
	for _, t := range cfg.ChecklistTemplates {
		if _, dup := seenTemplates[t.ID]; dup {
			return dErrors.Newf(dErrors.CodeValidation, "duplicate template id %q", t.ID)
		}
		seenTemplates[t.ID] = struct{}{}

		if !t.Category.IsValid() {
			return dErrors.Newf(dErrors.CodeValidation, "template %s: unknown category %q", t.ID, t.Category)
		}
		if err := checkBuildingTypes(t.ID, t.ApplicableFor); err != nil {
			return err
		}
		if len(t.Items) == 0 && len(t.Subsections) == 0 {
			return dErrors.Newf(dErrors.CodeValidation, "template %s has neither items nor subsections", t.ID)
		}

		seenItems := make(map[string]struct{})
		checkItems := func(owner string, items []models.Item) error {
			for _, it := range items {
				if _, dup := seenItems[it.ID]; dup {
					return dErrors.Newf(dErrors.CodeValidation, "template %s: duplicate item id %q", t.ID, it.ID)
				}
				seenItems[it.ID] = struct{}{}
				if it.Category != "" && !it.Category.IsValid() {
					return dErrors.Newf(dErrors.CodeValidation, "%s item %s: unknown category %q", owner, it.ID, it.Category)
				}
				if err := checkBuildingTypes(owner+" item "+it.ID, it.ApplicableFor); err != nil {
					return err
				}
			}
			return nil
		}
		if err := checkItems("template "+t.ID, t.Items); err != nil {
			return err
		}
		for _, s := range t.Subsections {
			if s.Category != "" && !s.Category.IsValid() {
				return dErrors.Newf(dErrors.CodeValidation, "subsection %s: unknown category %q", s.ID, s.Category)
			}
			if err := checkBuildingTypes("subsection "+s.ID, s.ApplicableFor); err != nil {
				return err
			}
			if err := checkItems("subsection "+s.ID, s.Items); err != nil {
				return err
			}
		}
	}

	if err := checkPhotoRule("global", cfg.PhotoRequirements.Global); err != nil {
		return err
	}
	for cat, rule := range cfg.PhotoRequirements.PerCategory {
		if !cat.IsValid() {
			return dErrors.Newf(dErrors.CodeValidation, "photo requirements: unknown category %q", cat)
		}
		if err := checkPhotoRule(string(cat), rule); err != nil {
			return err
		}
	}
	return nil
}

func checkBuildingTypes(owner string, set models.ApplicableFor) error {
	for _, b := range set {
		if !b.IsValid() {
			return dErrors.Newf(dErrors.CodeValidation, "%s: unknown building type %q", owner, b)
		}
	}
	return nil
}

func checkPhotoRule(owner string, rule models.PhotoRequirement) error {
	if rule.MaxPhotos > 0 && rule.MinPhotos > rule.MaxPhotos {
		return dErrors.Newf(dErrors.CodeValidation, "photo requirements %s: min_photos %d exceeds max_photos %d",
			owner, rule.MinPhotos, rule.MaxPhotos)
	}
	return nil
}

// Metadata returns the document's version stamp.
func (c *Catalog) Metadata() models.Metadata {
	return c.metadata
}

// Templates returns every template in catalog order.
func (c *Catalog) Templates() []models.Template {
	out := make([]models.Template, len(c.templates))
	for i, t := range c.templates {
		out[i] = t.Clone()
	}
	return out
}

// Template looks up one template by id.
func (c *Catalog) Template(id string) (models.Template, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.Template{}, false
	}
	return c.templates[i].Clone(), true
}

// Item finds an item in a template, searching direct items first and then
// subsections. The returned subsection is nil for direct items.
func (c *Catalog) Item(templateID, itemID string) (models.Item, *models.Subsection, error) {
	i, ok := c.index[templateID]
	if !ok {
		return models.Item{}, nil, dErrors.Newf(dErrors.CodeNotFound, "checklist template %s not found", templateID)
	}
	t := c.templates[i]
	for _, it := range t.Items {
		if it.ID == itemID {
			return it.Clone(), nil, nil
		}
	}
	for _, s := range t.Subsections {
		for _, it := range s.Items {
			if it.ID == itemID {
				sub := s
				sub.Items = nil
				sub.ApplicableFor = slices.Clone(s.ApplicableFor)
				return it.Clone(), &sub, nil
			}
		}
	}
	return models.Item{}, nil, dErrors.Newf(dErrors.CodeNotFound, "checklist item %s not found in template %s", itemID, templateID)
}

// PhotoRequirements returns the global, per-category and no-signal rules.
func (c *Catalog) PhotoRequirements() models.PhotoRequirements {
	return c.photo.Clone()
}
