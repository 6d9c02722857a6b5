package mongo

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aryaawcksn/counter/internal/db"
	"github.com/aryaawcksn/counter/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cooldownsCollection = "cooldowns"

type cooldownRepository struct {
	coll *mongo.Collection
}

// NewCooldownRepository creates a new MongoDB implementation of
// CooldownRepository. A TTL index on expires_at reclaims stale records in
// the background; logical expiry is still enforced on every admit, since
// the TTL monitor only runs periodically.
func NewCooldownRepository(db *db.MongoDB) domain.CooldownRepository {
	r := &cooldownRepository{
		coll: db.Collection(cooldownsCollection),
	}
	r.ensureTTLIndex()
	return r
}

func (r *cooldownRepository) ensureTTLIndex() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		log.Printf("⚠️ Failed to create cooldown TTL index: %v", err)
	}
}

// TryAdmit performs the admit-and-record step as a single conditional
// upsert. The filter only matches an expired record; when a live record
// exists the upsert collides with it on the _id unique index and the
// duplicate-key error is the reject signal. MongoDB serializes writers on
// that index, so concurrent calls for the same key admit exactly one.
func (r *cooldownRepository) TryAdmit(ctx context.Context, counterID, clientID string, ttl time.Duration) (*domain.Admission, error) {
	key := counterID + "|" + clientID

	// A reject can race with expiry between the failed upsert and the
	// follow-up read; one retry covers that window.
	for attempt := 0; attempt < 2; attempt++ {
		now := time.Now().UTC()
		filter := bson.M{
			"_id":        key,
			"expires_at": bson.M{"$lte": now},
		}
		update := bson.M{
			"$set": bson.M{
				"last_counted_at": now,
				"expires_at":      now.Add(ttl),
			},
		}

		opts := options.Update().SetUpsert(true)
		_, err := r.coll.UpdateOne(ctx, filter, update, opts)
		if err == nil {
			return &domain.Admission{Admitted: true}, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to record cooldown for %q: %w", key, err)
		}

		var doc struct {
			ExpiresAt time.Time `bson:"expires_at"`
		}
		findErr := r.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
		if findErr != nil {
			if findErr == mongo.ErrNoDocuments {
				continue // record expired and was reclaimed; try again
			}
			return nil, fmt.Errorf("failed to read cooldown for %q: %w", key, findErr)
		}
		if remaining := doc.ExpiresAt.Sub(time.Now().UTC()); remaining > 0 {
			return &domain.Admission{Admitted: false, RetryAfter: remaining}, nil
		}
		// Logically expired but not yet reclaimed; retry the upsert.
	}

	return nil, fmt.Errorf("cooldown admit for %q did not settle", counterID+"|"+clientID)
}
