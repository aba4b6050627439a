package service

import (
	"sync"

	"rebalancer/internal/app/port"
)

const defaultStoreCapacity = 500

// MemStore is an in-memory RecommendationStore holding the most recent
// results, newest first. It is safe for concurrent use.
type MemStore struct {
	mu       sync.RWMutex
	items    []port.StoredRecommendation
	capacity int
}

// NewMemStore creates a MemStore. A non-positive capacity selects the default.
func NewMemStore(capacity int) *MemStore {
	if capacity <= 0 {
		capacity = defaultStoreCapacity
	}
	return &MemStore{capacity: capacity}
}

// Append implements port.RecommendationStore.
func (s *MemStore) Append(rec port.StoredRecommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]port.StoredRecommendation{rec}, s.items...)
	if len(s.items) > s.capacity {
		s.items = s.items[:s.capacity]
	}
}

// List implements port.RecommendationStore. A non-positive limit returns all.
func (s *MemStore) List(limit int) []port.StoredRecommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.items)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]port.StoredRecommendation, n)
	copy(out, s.items[:n])
	return out
}
