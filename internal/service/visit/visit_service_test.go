package visit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/aryaawcksn/counter/internal/domain"
	"github.com/aryaawcksn/counter/internal/geo"
	"github.com/aryaawcksn/counter/internal/repository/memory"
)

type stubLookup struct {
	countries map[string]string
}

func (s *stubLookup) CountryCode(ip net.IP) (string, error) {
	return s.countries[ip.String()], nil
}

type fixture struct {
	counters  *memory.CounterStore
	countries *memory.CountryStore
	service   Service
}

func newFixture(defaultTTL time.Duration) *fixture {
	counters := memory.NewCounterStore()
	countries := memory.NewCountryStore()
	resolver := geo.NewResolver(&stubLookup{countries: map[string]string{
		"103.28.12.1": "ID",
		"8.8.8.8":     "US",
	}})
	return &fixture{
		counters:  counters,
		countries: countries,
		service:   NewService(counters, countries, memory.NewCooldownStore(), resolver, nil, defaultTTL),
	}
}

func event(counterID, addr string) domain.VisitEvent {
	return domain.VisitEvent{
		CounterID:     counterID,
		ClientAddress: addr + ":40000",
	}
}

func TestRecordVisitCounted(t *testing.T) {
	f := newFixture(time.Hour)
	ctx := context.Background()

	outcome, err := f.service.RecordVisit(ctx, event("page", "103.28.12.1"))
	if err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	if !outcome.Counted {
		t.Fatal("expected visit to be counted")
	}
	if outcome.Count != 1 {
		t.Fatalf("expected count 1, got %d", outcome.Count)
	}
	if outcome.CountryCode != "ID" {
		t.Fatalf("expected country ID, got %s", outcome.CountryCode)
	}

	breakdown, err := f.countries.TopN(ctx, "page", 10)
	if err != nil {
		t.Fatalf("TopN: %v", err)
	}
	if len(breakdown) != 1 || breakdown[0].Code != "ID" || breakdown[0].Count != 1 {
		t.Fatalf("expected breakdown [{ID 1}], got %v", breakdown)
	}
}

func TestRecordVisitMissingCounterID(t *testing.T) {
	f := newFixture(time.Hour)

	_, err := f.service.RecordVisit(context.Background(), event("  ", "8.8.8.8"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRecordVisitCooldownSuppressesRepeat(t *testing.T) {
	f := newFixture(time.Hour)
	ctx := context.Background()

	first, err := f.service.RecordVisit(ctx, event("page", "8.8.8.8"))
	if err != nil {
		t.Fatalf("first RecordVisit: %v", err)
	}
	if !first.Counted {
		t.Fatal("expected first visit to be counted")
	}

	second, err := f.service.RecordVisit(ctx, event("page", "8.8.8.8"))
	if err != nil {
		t.Fatalf("second RecordVisit: %v", err)
	}
	if second.Counted {
		t.Fatal("expected second visit to be suppressed")
	}
	if second.RetryAfter <= 0 || second.RetryAfter > time.Hour {
		t.Fatalf("expected retry-after in (0, 1h], got %s", second.RetryAfter)
	}
	if second.RetryAfter%time.Second != 0 {
		t.Fatalf("expected retry-after rounded to whole seconds, got %s", second.RetryAfter)
	}

	counter, err := f.counters.Fetch(ctx, "page")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if counter.Count != 1 {
		t.Fatalf("expected count to stay at 1, got %d", counter.Count)
	}
}

func TestRecordVisitCooldownExpires(t *testing.T) {
	f := newFixture(time.Hour)
	ctx := context.Background()

	ttl := 50 * time.Millisecond
	ev := event("page", "8.8.8.8")
	ev.CooldownTTL = &ttl

	if _, err := f.service.RecordVisit(ctx, ev); err != nil {
		t.Fatalf("first RecordVisit: %v", err)
	}

	time.Sleep(80 * time.Millisecond)

	outcome, err := f.service.RecordVisit(ctx, ev)
	if err != nil {
		t.Fatalf("second RecordVisit: %v", err)
	}
	if !outcome.Counted {
		t.Fatal("expected visit after expiry to be counted")
	}
	if outcome.Count != 2 {
		t.Fatalf("expected count 2, got %d", outcome.Count)
	}
}

func TestRecordVisitDistinctClients(t *testing.T) {
	f := newFixture(time.Hour)
	ctx := context.Background()

	for i, addr := range []string{"8.8.8.8", "103.28.12.1"} {
		outcome, err := f.service.RecordVisit(ctx, event("page", addr))
		if err != nil {
			t.Fatalf("RecordVisit(%s): %v", addr, err)
		}
		if !outcome.Counted {
			t.Fatalf("expected visit from %s to be counted", addr)
		}
		if outcome.Count != int64(i+1) {
			t.Fatalf("expected count %d, got %d", i+1, outcome.Count)
		}
	}
}

func TestRecordVisitTTLBounds(t *testing.T) {
	ctx := context.Background()

	t.Run("maximum accepted", func(t *testing.T) {
		f := newFixture(time.Hour)
		ttl := MaxCooldownTTL
		ev := event("page", "8.8.8.8")
		ev.CooldownTTL = &ttl

		outcome, err := f.service.RecordVisit(ctx, ev)
		if err != nil {
			t.Fatalf("RecordVisit: %v", err)
		}
		if !outcome.Counted {
			t.Fatal("expected visit with maximum TTL to be counted")
		}
	})

	t.Run("one second beyond maximum", func(t *testing.T) {
		f := newFixture(time.Hour)
		ttl := MaxCooldownTTL + time.Second
		ev := event("page", "8.8.8.8")
		ev.CooldownTTL = &ttl

		if _, err := f.service.RecordVisit(ctx, ev); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("negative", func(t *testing.T) {
		f := newFixture(time.Hour)
		ttl := -time.Second
		ev := event("page", "8.8.8.8")
		ev.CooldownTTL = &ttl

		if _, err := f.service.RecordVisit(ctx, ev); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestRecordVisitZeroTTLDisablesCooldown(t *testing.T) {
	f := newFixture(time.Hour)
	ctx := context.Background()

	ttl := time.Duration(0)
	ev := event("page", "8.8.8.8")
	ev.CooldownTTL = &ttl

	for want := int64(1); want <= 3; want++ {
		outcome, err := f.service.RecordVisit(ctx, ev)
		if err != nil {
			t.Fatalf("RecordVisit: %v", err)
		}
		if !outcome.Counted || outcome.Count != want {
			t.Fatalf("expected counted visit %d, got %+v", want, outcome)
		}
	}
}

func TestRecordVisitUnknownCountry(t *testing.T) {
	f := newFixture(time.Hour)
	ctx := context.Background()

	outcome, err := f.service.RecordVisit(ctx, event("page", "192.0.2.55"))
	if err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	if outcome.CountryCode != domain.CountryUnknown {
		t.Fatalf("expected Unknown country, got %s", outcome.CountryCode)
	}

	breakdown, err := f.countries.TopN(ctx, "page", 10)
	if err != nil {
		t.Fatalf("TopN: %v", err)
	}
	if len(breakdown) != 1 || breakdown[0].Code != domain.CountryUnknown {
		t.Fatalf("expected breakdown keyed by Unknown, got %v", breakdown)
	}
}

func TestRecordVisitBreakdownMatchesCount(t *testing.T) {
	f := newFixture(time.Hour)
	ctx := context.Background()

	// Distinct client addresses so the cooldown never suppresses.
	addrs := []string{"8.8.8.8", "103.28.12.1", "192.0.2.55", "192.0.2.56"}
	counters := []string{"a", "b", "c"}
	for _, counterID := range counters {
		for _, addr := range addrs {
			if _, err := f.service.RecordVisit(ctx, event(counterID, addr)); err != nil {
				t.Fatalf("RecordVisit(%s, %s): %v", counterID, addr, err)
			}
		}
	}

	for _, counterID := range counters {
		counter, err := f.counters.Fetch(ctx, counterID)
		if err != nil {
			t.Fatalf("Fetch(%s): %v", counterID, err)
		}
		breakdown, err := f.countries.TopN(ctx, counterID, 0)
		if err != nil {
			t.Fatalf("TopN(%s): %v", counterID, err)
		}
		var sum int64
		for _, cc := range breakdown {
			sum += cc.Count
		}
		if sum != counter.Count {
			t.Fatalf("counter %s: breakdown sum %d != count %d", counterID, sum, counter.Count)
		}
	}
}

// failingCounters simulates an unreachable counter store.
type failingCounters struct{}

func (failingCounters) IncrementAndFetch(context.Context, string) (int64, error) {
	return 0, fmt.Errorf("connection refused")
}

func (failingCounters) Fetch(context.Context, string) (*domain.Counter, error) {
	return nil, fmt.Errorf("connection refused")
}

func TestRecordVisitStorageUnavailable(t *testing.T) {
	resolver := geo.NewResolver(nil)
	s := NewService(failingCounters{}, memory.NewCountryStore(), memory.NewCooldownStore(), resolver, nil, time.Hour)

	_, err := s.RecordVisit(context.Background(), event("page", "8.8.8.8"))
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

// failingCountries simulates a ledger write failure after the counter
// already advanced.
type failingCountries struct{}

func (failingCountries) Increment(context.Context, string, string) error {
	return fmt.Errorf("connection refused")
}

func (failingCountries) TopN(context.Context, string, int) ([]domain.CountryCount, error) {
	return nil, nil
}

func (failingCountries) GlobalTopN(context.Context, int) ([]domain.CountryCount, error) {
	return nil, nil
}

func TestRecordVisitLedgerFailureStillCounts(t *testing.T) {
	counters := memory.NewCounterStore()
	resolver := geo.NewResolver(nil)
	s := NewService(counters, failingCountries{}, memory.NewCooldownStore(), resolver, nil, time.Hour)

	outcome, err := s.RecordVisit(context.Background(), event("page", "8.8.8.8"))
	if err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	if !outcome.Counted || outcome.Count != 1 {
		t.Fatalf("expected counted visit despite ledger failure, got %+v", outcome)
	}
}
