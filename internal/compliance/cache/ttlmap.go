// Package cache holds the TTL-keyed caches that sit in front of the
// compliance store.
package cache

import (
	"sync"
	"time"

	"slfcert/internal/compliance/models"
)

// Key identifies one cached entity.
type Key struct {
	Kind models.Kind
	ID   string
}

type entry struct {
	value    any
	storedAt time.Time
}

// TTLMap is a mutex-guarded map whose entries expire ttl after they were
// stored. Expired entries are evicted on read.
type TTLMap struct {
	mu      sync.RWMutex
	entries map[Key]entry
	ttl     time.Duration
	clock   func() time.Time
}

type TTLOption func(*TTLMap)

// WithClock replaces time.Now, for deterministic expiry in tests.
func WithClock(clock func() time.Time) TTLOption {
	return func(m *TTLMap) {
		m.clock = clock
	}
}

func NewTTLMap(ttl time.Duration, opts ...TTLOption) *TTLMap {
	m := &TTLMap{
		entries: make(map[Key]entry),
		ttl:     ttl,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the value for key if it was stored less than ttl ago.
func (m *TTLMap) Get(key Key) (any, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.clock().Sub(e.storedAt) < m.ttl {
		return e.value, true
	}

	m.mu.Lock()
	// Re-check under the write lock; a concurrent Set may have refreshed it.
	if cur, ok := m.entries[key]; ok && cur.storedAt.Equal(e.storedAt) {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	return nil, false
}

func (m *TTLMap) Set(key Key, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, storedAt: m.clock()}
}

func (m *TTLMap) Delete(key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Clear evicts every entry of one kind.
func (m *TTLMap) Clear(kind models.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if k.Kind == kind {
			delete(m.entries, k)
		}
	}
}

func (m *TTLMap) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[Key]entry)
}

// Len counts stored entries, expired or not.
func (m *TTLMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// TTL returns the configured lifetime.
func (m *TTLMap) TTL() time.Duration {
	return m.ttl
}
