package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/aryaawcksn/counter/internal/domain"
	"github.com/aryaawcksn/counter/internal/repository/memory"
)

func seed(t *testing.T, countries *memory.CountryStore, counterID, code string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := countries.Increment(context.Background(), counterID, code); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
}

func TestGetCounterNotFound(t *testing.T) {
	s := NewService(memory.NewCounterStore(), memory.NewCountryStore())

	_, err := s.GetCounter(context.Background(), "never-visited")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetCounterMissingID(t *testing.T) {
	s := NewService(memory.NewCounterStore(), memory.NewCountryStore())

	_, err := s.GetCounter(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGetCountryBreakdownLimit(t *testing.T) {
	countries := memory.NewCountryStore()
	s := NewService(memory.NewCounterStore(), countries)

	seed(t, countries, "page", "ID", 5)
	seed(t, countries, "page", "US", 3)
	seed(t, countries, "page", "SG", 1)

	got, err := s.GetCountryBreakdown(context.Background(), "page", 2)
	if err != nil {
		t.Fatalf("GetCountryBreakdown: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Code != "ID" || got[1].Code != "US" {
		t.Fatalf("expected [ID US], got %v", got)
	}
}

func TestGetGlobalTopCountriesTieBreak(t *testing.T) {
	countries := memory.NewCountryStore()
	s := NewService(memory.NewCounterStore(), countries)

	// Regression for the ordering rule: counter A has US=3, ID=2 and
	// counter B has US=1, SG=4. US and SG both total 4; SG sorts first.
	seed(t, countries, "a", "US", 3)
	seed(t, countries, "a", "ID", 2)
	seed(t, countries, "b", "US", 1)
	seed(t, countries, "b", "SG", 4)

	got, err := s.GetGlobalTopCountries(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetGlobalTopCountries: %v", err)
	}

	want := []domain.CountryCount{{Code: "SG", Count: 4}, {Code: "US", Count: 4}}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestLimitDefaultsWhenNotPositive(t *testing.T) {
	countries := memory.NewCountryStore()
	s := NewService(memory.NewCounterStore(), countries)

	codes := []string{"AU", "BR", "CA", "DE", "ES", "FR", "GB", "ID", "IN", "JP", "KR", "MY"}
	for _, code := range codes {
		seed(t, countries, "page", code, 1)
	}

	got, err := s.GetCountryBreakdown(context.Background(), "page", 0)
	if err != nil {
		t.Fatalf("GetCountryBreakdown: %v", err)
	}
	if len(got) != defaultLimit {
		t.Fatalf("expected default limit %d entries, got %d", defaultLimit, len(got))
	}
}
