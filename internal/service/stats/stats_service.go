// Package stats exposes the read-only queries over the counter and
// country stores: single-counter reads, per-counter breakdowns, and the
// cross-counter country leaderboard.
package stats

import (
	"context"
	"fmt"

	"github.com/aryaawcksn/counter/internal/domain"
)

const (
	defaultLimit = 10
	maxLimit     = 250
)

type Service interface {
	// GetCounter returns one counter, or domain.ErrNotFound.
	GetCounter(ctx context.Context, counterID string) (*domain.Counter, error)

	// GetCountryBreakdown returns up to n countries for one counter.
	GetCountryBreakdown(ctx context.Context, counterID string, n int) ([]domain.CountryCount, error)

	// GetGlobalTopCountries returns the cross-counter top n countries.
	GetGlobalTopCountries(ctx context.Context, n int) ([]domain.CountryCount, error)
}

type statsService struct {
	counters  domain.CounterRepository
	countries domain.CountryRepository
}

func NewService(counters domain.CounterRepository, countries domain.CountryRepository) Service {
	return &statsService{counters: counters, countries: countries}
}

func (s *statsService) GetCounter(ctx context.Context, counterID string) (*domain.Counter, error) {
	if counterID == "" {
		return nil, fmt.Errorf("%w: missing counter id", domain.ErrInvalidInput)
	}
	return s.counters.Fetch(ctx, counterID)
}

func (s *statsService) GetCountryBreakdown(ctx context.Context, counterID string, n int) ([]domain.CountryCount, error) {
	if counterID == "" {
		return nil, fmt.Errorf("%w: missing counter id", domain.ErrInvalidInput)
	}
	return s.countries.TopN(ctx, counterID, clampLimit(n))
}

func (s *statsService) GetGlobalTopCountries(ctx context.Context, n int) ([]domain.CountryCount, error) {
	return s.countries.GlobalTopN(ctx, clampLimit(n))
}

func clampLimit(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}
