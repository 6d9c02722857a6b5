package memory

import (
	"context"
	"time"

	"github.com/aryaawcksn/counter/internal/domain"

	gocache "github.com/patrickmn/go-cache"
)

// CooldownStore enforces cooldown windows with an in-process TTL cache.
// go-cache's Add fails when a live entry exists and runs under the cache
// mutex, which gives the exactly-one-admitted guarantee; expired entries
// are treated as absent even before the janitor removes them.
type CooldownStore struct {
	cache *gocache.Cache
}

func NewCooldownStore() *CooldownStore {
	return &CooldownStore{
		cache: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

func (s *CooldownStore) TryAdmit(_ context.Context, counterID, clientID string, ttl time.Duration) (*domain.Admission, error) {
	key := counterID + "|" + clientID

	// A reject can race with expiry between Add and the follow-up read;
	// one retry covers that window.
	for attempt := 0; attempt < 2; attempt++ {
		if err := s.cache.Add(key, time.Now().UTC(), ttl); err == nil {
			return &domain.Admission{Admitted: true}, nil
		}

		_, expiresAt, ok := s.cache.GetWithExpiration(key)
		if !ok {
			continue
		}
		if remaining := time.Until(expiresAt); remaining > 0 {
			return &domain.Admission{Admitted: false, RetryAfter: remaining}, nil
		}
	}

	// Both attempts lost the race to a concurrent writer; the window was
	// just re-armed, so report the full TTL.
	return &domain.Admission{Admitted: false, RetryAfter: ttl}, nil
}
