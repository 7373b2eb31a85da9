package postgres

import (
	"context"
	"fmt"
)

// SequenceRepository implements course.Sequencer for PostgreSQL
type SequenceRepository struct {
	db *DB
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(db *DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// NextID atomically increments the collection counter and returns the new value.
func (r *SequenceRepository) NextID(ctx context.Context, collection string) (int64, error) {
	query := `
		INSERT INTO counters (id, sequence_value) VALUES ($1, 1)
		ON CONFLICT (id) DO UPDATE SET sequence_value = counters.sequence_value + 1
		RETURNING sequence_value
	`

	var next int64
	if err := r.db.QueryRow(ctx, query, collection+"_id").Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return next, nil
}
