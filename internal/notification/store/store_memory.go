// Package store persists notifications and reads project rosters.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"slfcert/internal/notification/models"
	id "slfcert/pkg/domain"
	"slfcert/pkg/platform/sentinel"
)

// InMemoryStore keeps notifications and team rosters in memory.
type InMemoryStore struct {
	mu            sync.RWMutex
	notifications []models.Notification
	members       []models.TeamMember
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// AddMember appends a roster entry. Earlier members win lookups.
func (s *InMemoryStore) AddMember(member models.TeamMember) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append(s.members, member)
}

// FindMember returns the first member of the project holding role.
func (s *InMemoryStore) FindMember(_ context.Context, projectID id.ProjectID, role id.Role) (id.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.ProjectID == projectID && m.Role == role {
			return m.UserID, nil
		}
	}
	return id.UserID{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Insert(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.notifications {
		if existing.ID == n.ID {
			return sentinel.ErrConflict
		}
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

// ListForRecipient returns the recipient's notifications, newest first.
func (s *InMemoryStore) ListForRecipient(_ context.Context, recipientID id.UserID, unreadOnly bool) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Notification, 0)
	for _, n := range s.notifications {
		if n.RecipientID != recipientID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	slices.SortStableFunc(out, func(a, b models.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// MarkRead flips the read flag of a notification owned by recipientID.
// Marking an already read notification keeps its original ReadAt.
func (s *InMemoryStore) MarkRead(_ context.Context, notificationID id.NotificationID, recipientID id.UserID, at time.Time) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		n := &s.notifications[i]
		if n.ID != notificationID || n.RecipientID != recipientID {
			continue
		}
		if !n.Read {
			n.Read = true
			readAt := at
			n.ReadAt = &readAt
		}
		out := *n
		return &out, nil
	}
	return nil, sentinel.ErrNotFound
}
