// Package mongo stores courses in MongoDB documents.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	coursesCollection  = "courses"
	countersCollection = "counter"
)

// Store owns the client connection and the database handle.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client for uri and verifies the deployment is reachable.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping deployment: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Database returns the underlying database handle.
func (s *Store) Database() *mongo.Database {
	return s.db
}

// EnsureIndexes creates the unique indexes the course invariants rely on.
// Partial indexes cannot express "field absent", so active documents carry
// active: true and the name index is restricted to them.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(coursesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("ux_courses_id"),
		},
		{
			Keys: bson.D{{Key: "name", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("ux_courses_active_name").
				SetPartialFilterExpression(bson.D{{Key: "active", Value: true}}),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create course indexes: %w", err)
	}
	return nil
}
