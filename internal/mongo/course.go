package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rpggio/courses/internal/domain/course"
	"github.com/rpggio/courses/internal/repository"
)

// courseDocument is the persisted form of a course. Timestamps are stored as
// strings in course.TimeLayout.
type courseDocument struct {
	ID        int64   `bson:"id"`
	Name      string  `bson:"name"`
	Status    string  `bson:"status"`
	CreatedAt string  `bson:"createdAt"`
	UpdatedAt string  `bson:"updatedAt"`
	DeletedAt *string `bson:"deletedAt,omitempty"`
	Active    bool    `bson:"active,omitempty"`
}

func toDocument(c *course.Course) courseDocument {
	doc := courseDocument{
		ID:        c.ID,
		Name:      c.Name,
		Status:    string(c.Status),
		CreatedAt: course.FormatTime(c.CreatedAt),
		UpdatedAt: course.FormatTime(c.UpdatedAt),
		Active:    c.DeletedAt == nil,
	}
	if c.DeletedAt != nil {
		ts := course.FormatTime(*c.DeletedAt)
		doc.DeletedAt = &ts
	}
	return doc
}

func (d courseDocument) toCourse() (*course.Course, error) {
	c := &course.Course{ID: d.ID, Name: d.Name, Status: course.Status(d.Status)}
	var err error
	if c.CreatedAt, err = course.ParseTime(d.CreatedAt); err != nil {
		return nil, fmt.Errorf("parse createdAt: %w", err)
	}
	if c.UpdatedAt, err = course.ParseTime(d.UpdatedAt); err != nil {
		return nil, fmt.Errorf("parse updatedAt: %w", err)
	}
	if d.DeletedAt != nil {
		ts, err := course.ParseTime(*d.DeletedAt)
		if err != nil {
			return nil, fmt.Errorf("parse deletedAt: %w", err)
		}
		c.DeletedAt = &ts
	}
	return c, nil
}

// CourseRepository implements course.Repository for MongoDB
type CourseRepository struct {
	courses *mongo.Collection
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(s *Store) *CourseRepository {
	return &CourseRepository{courses: s.db.Collection(coursesCollection)}
}

// FindOne retrieves the first course matching the filter
func (r *CourseRepository) FindOne(ctx context.Context, filter course.Filter) (*course.Course, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "id", Value: 1}})

	var doc courseDocument
	err := r.courses.FindOne(ctx, filterDocument(filter), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find course: %w", err)
	}
	return doc.toCourse()
}

// Insert creates a new course document
func (r *CourseRepository) Insert(ctx context.Context, c *course.Course) error {
	if _, err := r.courses.InsertOne(ctx, toDocument(c)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert course: %w", err)
	}
	return nil
}

// ConditionalUpdate applies the mutation with findOneAndUpdate, returning the
// document as it is after the update.
func (r *CourseRepository) ConditionalUpdate(ctx context.Context, filter course.Filter, mutation course.Mutation) (*course.Course, error) {
	if filter.ID == nil {
		return nil, fmt.Errorf("conditional update requires an id filter")
	}

	set := bson.D{}
	if mutation.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *mutation.Name})
	}
	if mutation.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*mutation.Status)})
	}
	if mutation.UpdatedAt != nil {
		set = append(set, bson.E{Key: "updatedAt", Value: course.FormatTime(*mutation.UpdatedAt)})
	}
	if mutation.DeletedAt != nil {
		set = append(set, bson.E{Key: "deletedAt", Value: course.FormatTime(*mutation.DeletedAt)})
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("conditional update requires at least one field")
	}

	update := bson.D{{Key: "$set", Value: set}}
	if mutation.DeletedAt != nil {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "active", Value: ""}}})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc courseDocument
	err := r.courses.FindOneAndUpdate(ctx, filterDocument(filter), update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return doc.toCourse()
}

// List returns course references ordered by id, oldest first
func (r *CourseRepository) List(ctx context.Context, opts course.ListOptions) ([]course.CourseRef, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "id", Value: 1}}).
		SetProjection(bson.D{{Key: "id", Value: 1}, {Key: "name", Value: 1}, {Key: "_id", Value: 0}})
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cursor, err := r.courses.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	var docs []courseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode courses: %w", err)
	}

	refs := make([]course.CourseRef, 0, len(docs))
	for _, doc := range docs {
		refs = append(refs, course.CourseRef{ID: doc.ID, Name: doc.Name})
	}
	return refs, nil
}

func filterDocument(filter course.Filter) bson.D {
	doc := bson.D{}

	idCond := bson.D{}
	if filter.ID != nil {
		idCond = append(idCond, bson.E{Key: "$eq", Value: *filter.ID})
	}
	if filter.ExcludeID != nil {
		idCond = append(idCond, bson.E{Key: "$ne", Value: *filter.ExcludeID})
	}
	if len(idCond) > 0 {
		doc = append(doc, bson.E{Key: "id", Value: idCond})
	}
	if filter.Name != nil {
		doc = append(doc, bson.E{Key: "name", Value: *filter.Name})
	}
	if filter.ActiveOnly {
		doc = append(doc, bson.E{Key: "deletedAt", Value: bson.D{{Key: "$exists", Value: false}}})
	}
	return doc
}

var (
	_ course.Repository = (*CourseRepository)(nil)
	_ course.Sequencer  = (*SequenceRepository)(nil)
)
