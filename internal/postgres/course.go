package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/rpggio/courses/internal/domain/course"
	"github.com/rpggio/courses/internal/repository"
)

var courseColumns = []string{"id", "name", "status", "created_at", "updated_at", "deleted_at"}

// CourseRepository implements course.Repository for PostgreSQL
type CourseRepository struct {
	db *DB
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *DB) *CourseRepository {
	return &CourseRepository{db: db, sb: builder()}
}

// FindOne retrieves the first course matching the filter
func (r *CourseRepository) FindOne(ctx context.Context, filter course.Filter) (*course.Course, error) {
	q := r.sb.Select(courseColumns...).From("courses").OrderBy("id").Limit(1)
	if pred := predicate(filter); len(pred) > 0 {
		q = q.Where(pred)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find course query: %w", err)
	}

	c, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find course: %w", err)
	}
	return c, nil
}

// Insert creates a new course
func (r *CourseRepository) Insert(ctx context.Context, c *course.Course) error {
	sql, args, err := r.sb.Insert("courses").
		Columns(courseColumns...).
		Values(c.ID, c.Name, string(c.Status), c.CreatedAt, c.UpdatedAt, c.DeletedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert course query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert course: %w", err)
	}
	return nil
}

// ConditionalUpdate applies the mutation with UPDATE ... WHERE ... RETURNING.
func (r *CourseRepository) ConditionalUpdate(ctx context.Context, filter course.Filter, mutation course.Mutation) (*course.Course, error) {
	if filter.ID == nil {
		return nil, fmt.Errorf("conditional update requires an id filter")
	}

	q := r.sb.Update("courses")
	set := 0
	if mutation.Name != nil {
		q = q.Set("name", *mutation.Name)
		set++
	}
	if mutation.Status != nil {
		q = q.Set("status", string(*mutation.Status))
		set++
	}
	if mutation.UpdatedAt != nil {
		q = q.Set("updated_at", *mutation.UpdatedAt)
		set++
	}
	if mutation.DeletedAt != nil {
		q = q.Set("deleted_at", *mutation.DeletedAt)
		set++
	}
	if set == 0 {
		return nil, fmt.Errorf("conditional update requires at least one field")
	}

	sql, args, err := q.Where(predicate(filter)).
		Suffix("RETURNING id, name, status, created_at, updated_at, deleted_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update course query: %w", err)
	}

	c, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return c, nil
}

// List returns course references ordered by creation, oldest first
func (r *CourseRepository) List(ctx context.Context, opts course.ListOptions) ([]course.CourseRef, error) {
	q := r.sb.Select("id", "name").From("courses").OrderBy("id ASC")
	if opts.Offset > 0 {
		q = q.Offset(uint64(opts.Offset))
	}
	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	refs := []course.CourseRef{}
	for rows.Next() {
		var ref course.CourseRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}
	return refs, nil
}

func predicate(filter course.Filter) squirrel.And {
	var pred squirrel.And
	if filter.ID != nil {
		pred = append(pred, squirrel.Eq{"id": *filter.ID})
	}
	if filter.Name != nil {
		pred = append(pred, squirrel.Eq{"name": *filter.Name})
	}
	if filter.ExcludeID != nil {
		pred = append(pred, squirrel.NotEq{"id": *filter.ExcludeID})
	}
	if filter.ActiveOnly {
		pred = append(pred, squirrel.Eq{"deleted_at": nil})
	}
	return pred
}

func scanCourse(row pgx.Row) (*course.Course, error) {
	var c course.Course
	var status string
	var deletedAt *time.Time

	if err := row.Scan(&c.ID, &c.Name, &status, &c.CreatedAt, &c.UpdatedAt, &deletedAt); err != nil {
		return nil, err
	}

	c.Status = course.Status(status)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	if deletedAt != nil {
		ts := deletedAt.UTC()
		c.DeletedAt = &ts
	}
	return &c, nil
}

var (
	_ course.Repository = (*CourseRepository)(nil)
	_ course.Sequencer  = (*SequenceRepository)(nil)
)
