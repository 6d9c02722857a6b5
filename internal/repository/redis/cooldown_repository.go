// Package redis provides a Redis-backed cooldown store for deployments
// that want cooldown state shared across replicas without putting the
// admit hot path on MongoDB.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aryaawcksn/counter/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cooldown:"

type cooldownRepository struct {
	client *redis.Client
}

// NewCooldownRepository creates a Redis implementation of CooldownRepository.
func NewCooldownRepository(client *redis.Client) domain.CooldownRepository {
	return &cooldownRepository{client: client}
}

// TryAdmit uses SET NX with a TTL, which Redis executes atomically: of N
// concurrent calls for an absent key exactly one SET succeeds. Expiry is
// native, so a stale record is simply an absent key.
func (r *cooldownRepository) TryAdmit(ctx context.Context, counterID, clientID string, ttl time.Duration) (*domain.Admission, error) {
	key := keyPrefix + counterID + "|" + clientID

	for attempt := 0; attempt < 2; attempt++ {
		ok, err := r.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to record cooldown for %q: %w", key, err)
		}
		if ok {
			return &domain.Admission{Admitted: true}, nil
		}

		remaining, err := r.client.PTTL(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read cooldown TTL for %q: %w", key, err)
		}
		if remaining > 0 {
			return &domain.Admission{Admitted: false, RetryAfter: remaining}, nil
		}
		// Key expired between SETNX and PTTL; try again.
	}

	return &domain.Admission{Admitted: false, RetryAfter: ttl}, nil
}
