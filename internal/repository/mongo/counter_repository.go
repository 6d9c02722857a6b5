package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/aryaawcksn/counter/internal/db"
	"github.com/aryaawcksn/counter/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollection = "counters"

type counterRepository struct {
	coll *mongo.Collection
}

// NewCounterRepository creates a new MongoDB implementation of CounterRepository
func NewCounterRepository(db *db.MongoDB) domain.CounterRepository {
	return &counterRepository{
		coll: db.Collection(countersCollection),
	}
}

// IncrementAndFetch atomically increments the counter and returns the new
// value. The upsert is serialized by MongoDB on the _id index, so N
// concurrent calls on a fresh id return exactly {1..N}.
func (r *counterRepository) IncrementAndFetch(ctx context.Context, counterID string) (int64, error) {
	filter := bson.M{"_id": counterID}
	update := bson.M{
		"$inc": bson.M{"count": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Count int64 `bson:"count"`
	}
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return 0, fmt.Errorf("failed to increment counter %q: %w", counterID, err)
	}

	return doc.Count, nil
}

// Fetch returns the counter, or domain.ErrNotFound if it does not exist.
func (r *counterRepository) Fetch(ctx context.Context, counterID string) (*domain.Counter, error) {
	var counter domain.Counter
	err := r.coll.FindOne(ctx, bson.M{"_id": counterID}).Decode(&counter)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch counter %q: %w", counterID, err)
	}

	return &counter, nil
}
