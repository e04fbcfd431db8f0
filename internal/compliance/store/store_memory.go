package store

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"slfcert/internal/compliance/models"
	id "slfcert/pkg/domain"
	"slfcert/pkg/platform/sentinel"
)

// InMemoryStore keeps inspections, checklist items and responses in maps.
// It backs local development and tests.
type InMemoryStore struct {
	mu          sync.RWMutex
	inspections map[id.InspectionID]models.Inspection
	items       map[string][]models.ChecklistItemRow
	responses   map[id.ResponseID]models.ChecklistResponse
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		inspections: make(map[id.InspectionID]models.Inspection),
		items:       make(map[string][]models.ChecklistItemRow),
		responses:   make(map[id.ResponseID]models.ChecklistResponse),
	}
}

// AddInspection seeds one inspection with its joined metadata.
func (s *InMemoryStore) AddInspection(insp models.Inspection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inspections[insp.ID] = insp
}

// AddChecklistItems seeds the items of one template, keeping sort order.
func (s *InMemoryStore) AddChecklistItems(templateID string, items ...models.ChecklistItemRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		it.TemplateID = templateID
		s.items[templateID] = append(s.items[templateID], it)
	}
	sort.SliceStable(s.items[templateID], func(i, j int) bool {
		return s.items[templateID][i].SortOrder < s.items[templateID][j].SortOrder
	})
}

func (s *InMemoryStore) FindInspections(_ context.Context, ids []id.InspectionID) ([]models.Inspection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Inspection, 0, len(ids))
	for _, inspectionID := range ids {
		if insp, ok := s.inspections[inspectionID]; ok {
			out = append(out, insp)
		}
	}
	return out, nil
}

func (s *InMemoryStore) FindChecklistItems(_ context.Context, templateIDs []string) ([]models.ChecklistItemRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ChecklistItemRow
	for _, templateID := range templateIDs {
		out = append(out, s.items[templateID]...)
	}
	return out, nil
}

// InsertResponses is all-or-nothing: a duplicate id rejects the whole batch.
func (s *InMemoryStore) InsertResponses(_ context.Context, responses []models.ChecklistResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[id.ResponseID]struct{}, len(responses))
	for _, r := range responses {
		if _, exists := s.responses[r.ID]; exists {
			return sentinel.ErrConflict
		}
		if _, dup := seen[r.ID]; dup {
			return sentinel.ErrConflict
		}
		seen[r.ID] = struct{}{}
	}
	for _, r := range responses {
		r.Response = maps.Clone(r.Response)
		s.responses[r.ID] = r
	}
	return nil
}

func (s *InMemoryStore) UpdateResponse(_ context.Context, update models.ResponseUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.responses[update.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if update.Response != nil {
		r.Response = maps.Clone(update.Response)
	}
	if update.Notes != nil {
		r.Notes = *update.Notes
	}
	if update.Latitude != nil {
		r.Latitude = update.Latitude
	}
	if update.Longitude != nil {
		r.Longitude = update.Longitude
	}
	if update.Accuracy != nil {
		r.Accuracy = update.Accuracy
	}
	r.UpdatedAt = update.UpdatedAt
	s.responses[update.ID] = r
	return nil
}

// ListResponses returns an inspection's responses ordered by creation time.
func (s *InMemoryStore) ListResponses(_ context.Context, inspectionID id.InspectionID) ([]models.ChecklistResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ChecklistResponse
	for _, r := range s.responses {
		if r.InspectionID == inspectionID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b models.ChecklistResponse) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ChecklistItemID, b.ChecklistItemID)
	})
	return out, nil
}
