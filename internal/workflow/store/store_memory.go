package store

import (
	"context"
	"maps"
	"sync"

	"slfcert/internal/workflow/models"
	id "slfcert/pkg/domain"
	"slfcert/pkg/platform/sentinel"
)

// InMemoryStore keeps documents in a map. RunInTx serializes the callback
// against other transactions but does not roll back on failure.
type InMemoryStore struct {
	mu        sync.RWMutex
	txMu      sync.Mutex
	documents map[id.DocumentID]models.Document
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{documents: make(map[id.DocumentID]models.Document)}
}

func (s *InMemoryStore) Create(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[doc.ID]; exists {
		return sentinel.ErrConflict
	}
	s.documents[doc.ID] = clone(*doc)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, documentID id.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := clone(doc)
	return &out, nil
}

// UpdateStatus replaces the workflow fields of doc if the stored status is
// still expected.
func (s *InMemoryStore) UpdateStatus(_ context.Context, doc *models.Document, expected models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.documents[doc.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != expected {
		return sentinel.ErrConflict
	}
	current.Status = doc.Status
	current.ComplianceStatus = doc.ComplianceStatus
	current.VerifiedByAdminTeam = doc.VerifiedByAdminTeam
	current.VerifiedAt = doc.VerifiedAt
	current.AdminTeamFeedback = doc.AdminTeamFeedback
	current.UpdatedAt = doc.UpdatedAt
	s.documents[doc.ID] = current
	return nil
}

func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

func clone(d models.Document) models.Document {
	d.Metadata = maps.Clone(d.Metadata)
	return d
}
