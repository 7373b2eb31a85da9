package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/courses/internal/domain/course"
	"github.com/rpggio/courses/internal/repository"
)

const courseColumns = `id, name, status, created_at, updated_at, deleted_at`

// CourseRepository implements course.Repository for SQLite
type CourseRepository struct {
	db *DB
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindOne retrieves the first course matching the filter
func (r *CourseRepository) FindOne(ctx context.Context, filter course.Filter) (*course.Course, error) {
	where, args := whereClause(filter)
	query := `SELECT ` + courseColumns + ` FROM courses` + where + ` ORDER BY id LIMIT 1`

	c, err := scanCourse(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find course: %w", err)
	}

	return c, nil
}

// Insert creates a new course
func (r *CourseRepository) Insert(ctx context.Context, c *course.Course) error {
	query := `
		INSERT INTO courses (id, name, status, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.Status,
		course.FormatTime(c.CreatedAt),
		course.FormatTime(c.UpdatedAt),
		nullTime(c.DeletedAt),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert course: %w", err)
	}

	return nil
}

// ConditionalUpdate applies the mutation in a single UPDATE ... RETURNING
// statement, so the filter is evaluated at write time.
func (r *CourseRepository) ConditionalUpdate(ctx context.Context, filter course.Filter, mutation course.Mutation) (*course.Course, error) {
	if filter.ID == nil {
		return nil, fmt.Errorf("conditional update requires an id filter")
	}

	var sets []string
	var args []any
	if mutation.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *mutation.Name)
	}
	if mutation.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *mutation.Status)
	}
	if mutation.UpdatedAt != nil {
		sets = append(sets, "updated_at = ?")
		args = append(args, course.FormatTime(*mutation.UpdatedAt))
	}
	if mutation.DeletedAt != nil {
		sets = append(sets, "deleted_at = ?")
		args = append(args, course.FormatTime(*mutation.DeletedAt))
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("conditional update requires at least one field")
	}

	where, whereArgs := whereClause(filter)
	query := `UPDATE courses SET ` + strings.Join(sets, ", ") + where + ` RETURNING ` + courseColumns
	args = append(args, whereArgs...)

	c, err := scanCourse(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
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
	query := `SELECT id, name FROM courses ORDER BY id ASC`
	var args []any

	if opts.Limit > 0 || opts.Offset > 0 {
		limit := opts.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
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

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}

	return refs, nil
}

func whereClause(filter course.Filter) (string, []any) {
	var conditions []string
	var args []any

	if filter.ID != nil {
		conditions = append(conditions, "id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		conditions = append(conditions, "name = ?")
		args = append(args, *filter.Name)
	}
	if filter.ExcludeID != nil {
		conditions = append(conditions, "id <> ?")
		args = append(args, *filter.ExcludeID)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "deleted_at IS NULL")
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanCourse(row *sql.Row) (*course.Course, error) {
	var c course.Course
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(&c.ID, &c.Name, &c.Status, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	var err error
	if c.CreatedAt, err = course.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if c.UpdatedAt, err = course.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if deletedAt.Valid {
		ts, err := course.ParseTime(deletedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse deleted_at: %w", err)
		}
		c.DeletedAt = &ts
	}

	return &c, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return course.FormatTime(*t)
}

var (
	_ course.Repository = (*CourseRepository)(nil)
	_ course.Sequencer  = (*SequenceRepository)(nil)
)
