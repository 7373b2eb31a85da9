package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SequenceRepository implements course.Sequencer with $inc upserts
type SequenceRepository struct {
	counters *mongo.Collection
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(s *Store) *SequenceRepository {
	return &SequenceRepository{counters: s.db.Collection(countersCollection)}
}

// NextID atomically increments the collection counter and returns the new value.
func (r *SequenceRepository) NextID(ctx context.Context, collection string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		SequenceValue int64 `bson:"sequence_value"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: collection + "_id"}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "sequence_value", Value: 1}}}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return counter.SequenceValue, nil
}
