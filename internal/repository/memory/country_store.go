package memory

import (
	"context"
	"sync"

	"github.com/aryaawcksn/counter/internal/domain"
)

// CountryStore keeps per-counter country sub-counts in nested maps.
type CountryStore struct {
	mu         sync.RWMutex
	breakdowns map[string]map[string]int64
}

func NewCountryStore() *CountryStore {
	return &CountryStore{
		breakdowns: make(map[string]map[string]int64),
	}
}

func (s *CountryStore) Increment(_ context.Context, counterID, countryCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	countries, ok := s.breakdowns[counterID]
	if !ok {
		countries = make(map[string]int64)
		s.breakdowns[counterID] = countries
	}
	countries[countryCode]++
	return nil
}

func (s *CountryStore) TopN(_ context.Context, counterID string, n int) ([]domain.CountryCount, error) {
	s.mu.RLock()
	countries := s.breakdowns[counterID]
	counts := make([]domain.CountryCount, 0, len(countries))
	for code, count := range countries {
		counts = append(counts, domain.CountryCount{Code: code, Count: count})
	}
	s.mu.RUnlock()

	domain.SortCountryCounts(counts)
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts, nil
}

func (s *CountryStore) GlobalTopN(_ context.Context, n int) ([]domain.CountryCount, error) {
	totals := make(map[string]int64)
	s.mu.RLock()
	for _, countries := range s.breakdowns {
		for code, count := range countries {
			totals[code] += count
		}
	}
	s.mu.RUnlock()

	counts := make([]domain.CountryCount, 0, len(totals))
	for code, total := range totals {
		counts = append(counts, domain.CountryCount{Code: code, Count: total})
	}
	domain.SortCountryCounts(counts)
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts, nil
}
