package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/courses/internal/domain/course"
	"github.com/rpggio/courses/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2001, 2, 4, 4, 5, 6, 0, time.UTC)

func TestPredicate(t *testing.T) {
	sql, args, err := builder().Select("id").From("courses").
		Where(predicate(course.ActiveByName("Intro").Excluding(3))).ToSql()
	require.NoError(t, err)
	require.Equal(t, "SELECT id FROM courses WHERE (name = $1 AND id <> $2 AND deleted_at IS NULL)", sql)
	require.Equal(t, []any{"Intro", int64(3)}, args)
}

func TestCourseRepository_Lifecycle(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	err := repo.Insert(ctx, &course.Course{ID: 1, Name: "Intro", Status: course.StatusScheduled, CreatedAt: testTime, UpdatedAt: testTime})
	require.NoError(t, err)

	err = repo.Insert(ctx, &course.Course{ID: 2, Name: "Intro", Status: course.StatusScheduled, CreatedAt: testTime, UpdatedAt: testTime})
	require.Equal(t, repository.ErrDuplicateKey, err)

	found, err := repo.FindOne(ctx, course.ActiveByName("Intro"))
	require.NoError(t, err)
	require.Equal(t, int64(1), found.ID)
	require.True(t, testTime.Equal(found.CreatedAt))

	name, status, updatedAt := "Intro2", course.StatusAvailable, testTime.Add(time.Hour)
	updated, err := repo.ConditionalUpdate(ctx, course.ActiveByID(1), course.Mutation{Name: &name, Status: &status, UpdatedAt: &updatedAt})
	require.NoError(t, err)
	require.Equal(t, "Intro2", updated.Name)
	require.Equal(t, course.StatusAvailable, updated.Status)

	deletedAt := updatedAt.Add(time.Minute)
	deleted, err := repo.ConditionalUpdate(ctx, course.ActiveByID(1), course.Mutation{UpdatedAt: &deletedAt, DeletedAt: &deletedAt})
	require.NoError(t, err)
	require.NotNil(t, deleted.DeletedAt)

	_, err = repo.ConditionalUpdate(ctx, course.ActiveByID(1), course.Mutation{UpdatedAt: &deletedAt, DeletedAt: &deletedAt})
	require.Equal(t, repository.ErrNotFound, err)

	_, err = repo.FindOne(ctx, course.ByID(42))
	require.Equal(t, repository.ErrNotFound, err)

	refs, err := repo.List(ctx, course.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, []course.CourseRef{{ID: 1, Name: "Intro2"}}, refs)
}

func TestSequenceRepository_NextID_Concurrent(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSequenceRepository(db)
	ctx := context.Background()

	const callers = 20
	ids := make(chan int64, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.NextID(ctx, course.Collection)
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		require.False(t, seen[id], "id %d issued twice", id)
		seen[id] = true
	}
	require.Len(t, seen, callers)
}
