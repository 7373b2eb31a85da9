package course

import "context"

// Repository provides persistence for courses. Every conditional path is a
// single atomic store operation.
type Repository interface {
	// FindOne returns the first course matching filter, or repository.ErrNotFound.
	FindOne(ctx context.Context, filter Filter) (*Course, error)
	// Insert stores a new course. It returns repository.ErrDuplicateKey when
	// the store's unique constraint on active names rejects it.
	Insert(ctx context.Context, c *Course) error
	// ConditionalUpdate applies mutation to the course matching filter at
	// execution time and returns the updated record, or repository.ErrNotFound
	// when nothing matched.
	ConditionalUpdate(ctx context.Context, filter Filter, mutation Mutation) (*Course, error)
	// List returns courses oldest first.
	List(ctx context.Context, opts ListOptions) ([]CourseRef, error)
}

// Sequencer issues identifiers.
type Sequencer interface {
	// NextID atomically increments the counter for collection and returns
	// the new value. A missing counter starts at 1.
	NextID(ctx context.Context, collection string) (int64, error)
}
