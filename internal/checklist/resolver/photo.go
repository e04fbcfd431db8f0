package resolver

import (
	"slfcert/internal/checklist/models"
)

// ItemRequiresPhotoGeotag reports whether evidence photos for an item need
// GPS coordinates. The category is taken from explicit when given, then the
// item's own override, then its subsection, then the template. Administrative
// items never need a geotag; other categories follow their per-category
// require_geotag override and default to true.
func (r *Resolver) ItemRequiresPhotoGeotag(templateID, itemID string, explicit *models.Category) bool {
	return r.requiresGeotag(r.categoryFor(templateID, itemID, explicit))
}

// ItemPhotoRequirement returns the full photo rule for a catalog item.
// Unknown templates or items are a not-found error.
func (r *Resolver) ItemPhotoRequirement(templateID, itemID string, explicit *models.Category) (models.PhotoRequirement, error) {
	if _, _, err := r.catalog.Item(templateID, itemID); err != nil {
		return models.PhotoRequirement{}, err
	}
	return r.PhotoRequirementFor(r.categoryFor(templateID, itemID, explicit)), nil
}

// PhotoRequirementFor merges the category's rule over the global rule. The
// returned RequireGeotag is always set.
func (r *Resolver) PhotoRequirementFor(category models.Category) models.PhotoRequirement {
	rules := r.catalog.PhotoRequirements()
	rule := rules.Global
	if override, ok := rules.PerCategory[category]; ok {
		rule = rule.Merge(override)
	}
	geotag := r.requiresGeotag(category)
	rule.RequireGeotag = &geotag
	return rule
}

// NoSignalPolicy is what the field app falls back to without a GPS fix.
func (r *Resolver) NoSignalPolicy() models.NoSignalPolicy {
	return r.catalog.PhotoRequirements().NoSignal
}

func (r *Resolver) categoryFor(templateID, itemID string, explicit *models.Category) models.Category {
	if explicit != nil && *explicit != "" {
		return *explicit
	}
	t, ok := r.catalog.Template(templateID)
	if !ok {
		return ""
	}
	item, sub, err := r.catalog.Item(templateID, itemID)
	if err != nil {
		return t.Category
	}
	var subCategory models.Category
	if sub != nil {
		subCategory = sub.Category
	}
	return effectiveCategory(item.Category, subCategory, t.Category)
}

func (r *Resolver) requiresGeotag(category models.Category) bool {
	if category == models.CategoryAdministrative {
		return false
	}
	if override, ok := r.catalog.PhotoRequirements().PerCategory[category]; ok && override.RequireGeotag != nil {
		return *override.RequireGeotag
	}
	return true
}
