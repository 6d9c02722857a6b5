// Package memory provides in-memory, thread-safe implementations of the
// domain repositories. They back the STORE=memory local mode and the test
// suite; durability is explicitly not provided.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aryaawcksn/counter/internal/domain"
)

// CounterStore keeps counters in a map protected by a mutex.
type CounterStore struct {
	mu       sync.Mutex
	counters map[string]*domain.Counter
}

func NewCounterStore() *CounterStore {
	return &CounterStore{
		counters: make(map[string]*domain.Counter),
	}
}

// IncrementAndFetch atomically increases the counter and returns the new
// value. The write lock serializes concurrent callers for all keys.
func (s *CounterStore) IncrementAndFetch(_ context.Context, counterID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[counterID]
	if !ok {
		c = &domain.Counter{ID: counterID}
		s.counters[counterID] = c
	}
	c.Count++
	c.UpdatedAt = time.Now().UTC()
	return c.Count, nil
}

// Fetch returns a copy of the counter, or domain.ErrNotFound.
func (s *CounterStore) Fetch(_ context.Context, counterID string) (*domain.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[counterID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *c
	return &copied, nil
}
