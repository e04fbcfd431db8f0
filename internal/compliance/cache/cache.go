package cache

import (
	"context"
	"time"

	"slfcert/internal/compliance/models"
	id "slfcert/pkg/domain"
)

// DefaultTTL is how long cached inspections and checklist items stay fresh.
const DefaultTTL = 5 * time.Minute

// InMemory is a typed facade over TTLMap. Values are copied in and out so
// callers never share slices with the cache.
type InMemory struct {
	m *TTLMap
}

func NewInMemory(m *TTLMap) *InMemory {
	if m == nil {
		m = NewTTLMap(DefaultTTL)
	}
	return &InMemory{m: m}
}

func (c *InMemory) GetInspection(_ context.Context, inspectionID id.InspectionID) (*models.InspectionWithChecklist, error) {
	v, ok := c.m.Get(Key{Kind: models.KindInspection, ID: inspectionID.String()})
	if !ok {
		return nil, nil
	}
	insp, ok := v.(models.InspectionWithChecklist)
	if !ok {
		return nil, nil
	}
	cp := insp.Clone()
	return &cp, nil
}

func (c *InMemory) SetInspection(_ context.Context, insp models.InspectionWithChecklist) error {
	c.m.Set(Key{Kind: models.KindInspection, ID: insp.ID.String()}, insp.Clone())
	return nil
}

func (c *InMemory) GetChecklistItems(_ context.Context, templateID string) ([]models.ChecklistItemRow, bool, error) {
	v, ok := c.m.Get(Key{Kind: models.KindChecklistItems, ID: templateID})
	if !ok {
		return nil, false, nil
	}
	items, ok := v.([]models.ChecklistItemRow)
	if !ok {
		return nil, false, nil
	}
	return append([]models.ChecklistItemRow(nil), items...), true, nil
}

func (c *InMemory) SetChecklistItems(_ context.Context, templateID string, items []models.ChecklistItemRow) error {
	c.m.Set(Key{Kind: models.KindChecklistItems, ID: templateID}, append([]models.ChecklistItemRow(nil), items...))
	return nil
}

func (c *InMemory) Clear(_ context.Context, kind models.Kind) error {
	c.m.Clear(kind)
	return nil
}

func (c *InMemory) ClearAll(_ context.Context) error {
	c.m.ClearAll()
	return nil
}
