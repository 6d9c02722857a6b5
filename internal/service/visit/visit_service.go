// Package visit implements the counting engine: one inbound visit is
// resolved to a country, gated by the cooldown window, and, if billable,
// counted in the counter store and the country ledger.
package visit

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aryaawcksn/counter/internal/domain"
	"github.com/aryaawcksn/counter/internal/geo"
	ws "github.com/aryaawcksn/counter/internal/websocket"
)

const (
	// DefaultCooldownTTL applies when the caller does not supply a window.
	DefaultCooldownTTL = 3 * time.Hour

	// MaxCooldownTTL bounds caller-supplied windows. Values beyond it are
	// rejected as invalid input, never clamped silently.
	MaxCooldownTTL = 24 * time.Hour
)

type Service interface {
	// RecordVisit processes one visit event end to end and returns whether
	// it was counted or suppressed by the cooldown.
	RecordVisit(ctx context.Context, event domain.VisitEvent) (*domain.VisitOutcome, error)
}

type visitService struct {
	counters   domain.CounterRepository
	countries  domain.CountryRepository
	cooldowns  domain.CooldownRepository
	resolver   *geo.Resolver
	hub        *ws.Hub
	defaultTTL time.Duration
}

// NewService wires the counting engine. hub may be nil when no live feed
// is wanted. defaultTTL <= 0 falls back to DefaultCooldownTTL.
func NewService(
	counters domain.CounterRepository,
	countries domain.CountryRepository,
	cooldowns domain.CooldownRepository,
	resolver *geo.Resolver,
	hub *ws.Hub,
	defaultTTL time.Duration,
) Service {
	if defaultTTL <= 0 {
		defaultTTL = DefaultCooldownTTL
	}
	return &visitService{
		counters:   counters,
		countries:  countries,
		cooldowns:  cooldowns,
		resolver:   resolver,
		hub:        hub,
		defaultTTL: defaultTTL,
	}
}

// RecordVisit runs the fixed sequence: validate → resolve geo → admit →
// increment counter → increment ledger. The admit decision happens before
// either increment; a rejected visit mutates nothing.
func (s *visitService) RecordVisit(ctx context.Context, event domain.VisitEvent) (*domain.VisitOutcome, error) {
	if strings.TrimSpace(event.CounterID) == "" {
		return nil, fmt.Errorf("%w: missing counter id", domain.ErrInvalidInput)
	}

	ttl := s.defaultTTL
	if event.CooldownTTL != nil {
		ttl = *event.CooldownTTL
		if ttl < 0 || ttl > MaxCooldownTTL {
			return nil, fmt.Errorf("%w: cooldown ttl %s outside accepted range 0..%s", domain.ErrInvalidInput, ttl, MaxCooldownTTL)
		}
	}

	geoResult := s.resolver.Resolve(event.ClientAddress, event.Headers)
	clientID := s.resolver.ClientAddress(event.ClientAddress, event.Headers)

	// A zero TTL disables the window for this call: every visit bills.
	if ttl > 0 {
		admission, err := s.cooldowns.TryAdmit(ctx, event.CounterID, clientID, ttl)
		if err != nil {
			return nil, fmt.Errorf("%w: cooldown check: %v", domain.ErrStorageUnavailable, err)
		}
		if !admission.Admitted {
			return &domain.VisitOutcome{
				Counted:    false,
				RetryAfter: roundUpToSecond(admission.RetryAfter),
			}, nil
		}
	}

	count, err := s.counters.IncrementAndFetch(ctx, event.CounterID)
	if err != nil {
		return nil, fmt.Errorf("%w: counter increment: %v", domain.ErrStorageUnavailable, err)
	}

	// The two increments are separate operations with no cross-store
	// transaction. When the ledger write fails the counter stays ahead of
	// the country sum; that divergence is bounded and observable, and it
	// is not rolled back.
	if err := s.countries.Increment(ctx, event.CounterID, geoResult.CountryCode); err != nil {
		log.Printf("⚠️ Counter %q advanced to %d but country %s was not recorded: %v",
			event.CounterID, count, geoResult.CountryCode, err)
	}

	if s.hub != nil {
		s.hub.BroadcastVisit(event.CounterID, count, geoResult.CountryCode)
	}

	return &domain.VisitOutcome{
		Counted:     true,
		Count:       count,
		CountryCode: geoResult.CountryCode,
	}, nil
}

// roundUpToSecond rounds a remaining wait up to whole seconds for display.
func roundUpToSecond(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	return ((d + time.Second - 1) / time.Second) * time.Second
}
