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

const countriesCollection = "countries"

type countryRepository struct {
	coll *mongo.Collection
}

// NewCountryRepository creates a new MongoDB implementation of CountryRepository
func NewCountryRepository(db *db.MongoDB) domain.CountryRepository {
	return &countryRepository{
		coll: db.Collection(countriesCollection),
	}
}

// Increment atomically adds 1 to the sub-count for countryCode. Country
// codes are ISO alpha-2 or the Unknown sentinel, so they are safe to use
// as document keys.
func (r *countryRepository) Increment(ctx context.Context, counterID, countryCode string) error {
	filter := bson.M{"_id": counterID}
	update := bson.M{
		"$inc": bson.M{"countries." + countryCode: 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to increment country %s for counter %q: %w", countryCode, counterID, err)
	}

	return nil
}

// TopN returns the breakdown for one counter. A counter that was never
// visited yields an empty list, not an error.
func (r *countryRepository) TopN(ctx context.Context, counterID string, n int) ([]domain.CountryCount, error) {
	var doc struct {
		Countries map[string]int64 `bson:"countries"`
	}
	err := r.coll.FindOne(ctx, bson.M{"_id": counterID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return []domain.CountryCount{}, nil
		}
		return nil, fmt.Errorf("failed to fetch breakdown for counter %q: %w", counterID, err)
	}

	counts := make([]domain.CountryCount, 0, len(doc.Countries))
	for code, count := range doc.Countries {
		counts = append(counts, domain.CountryCount{Code: code, Count: count})
	}
	domain.SortCountryCounts(counts)

	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts, nil
}

// GlobalTopN sums sub-counts per country across every counter document.
// The scan is read-only and each document is read at its own instant; the
// view is eventually consistent by design.
func (r *countryRepository) GlobalTopN(ctx context.Context, n int) ([]domain.CountryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "countries", Value: bson.D{{Key: "$objectToArray", Value: "$countries"}}},
		}}},
		{{Key: "$unwind", Value: "$countries"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$countries.k"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$countries.v"}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "total", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$limit", Value: int64(n)}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate country totals: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Code  string `bson:"_id"`
		Total int64  `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode country totals: %w", err)
	}

	counts := make([]domain.CountryCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, domain.CountryCount{Code: row.Code, Count: row.Total})
	}
	return counts, nil
}
