package mongo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/courses/internal/domain/course"
	"github.com/rpggio/courses/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

var testTime = time.Date(2001, 2, 4, 4, 5, 6, 0, time.UTC)

func TestFilterDocument(t *testing.T) {
	tests := []struct {
		name   string
		filter course.Filter
		want   bson.D
	}{
		{
			name:   "empty",
			filter: course.Filter{},
			want:   bson.D{},
		},
		{
			name:   "by id",
			filter: course.ByID(4),
			want:   bson.D{{Key: "id", Value: bson.D{{Key: "$eq", Value: int64(4)}}}},
		},
		{
			name:   "active name excluding id",
			filter: course.ActiveByName("Intro").Excluding(3),
			want: bson.D{
				{Key: "id", Value: bson.D{{Key: "$ne", Value: int64(3)}}},
				{Key: "name", Value: "Intro"},
				{Key: "deletedAt", Value: bson.D{{Key: "$exists", Value: false}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, filterDocument(tt.filter))
		})
	}
}

func TestDocumentConversion(t *testing.T) {
	deletedAt := testTime.Add(time.Hour)
	c := &course.Course{ID: 7, Name: "Go", Status: course.StatusAvailable, CreatedAt: testTime, UpdatedAt: deletedAt, DeletedAt: &deletedAt}

	doc := toDocument(c)
	require.False(t, doc.Active)
	require.Equal(t, "2001-02-04T04:05:06Z", doc.CreatedAt)

	back, err := doc.toCourse()
	require.NoError(t, err)
	require.Equal(t, c, back)
}

func TestCourseRepository_Lifecycle(t *testing.T) {
	store := NewTestStore(t)
	repo := NewCourseRepository(store)
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

	// The deleted course released its name.
	err = repo.Insert(ctx, &course.Course{ID: 3, Name: "Intro2", Status: course.StatusScheduled, CreatedAt: testTime, UpdatedAt: testTime})
	require.NoError(t, err)

	refs, err := repo.List(ctx, course.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, []course.CourseRef{{ID: 1, Name: "Intro2"}, {ID: 3, Name: "Intro2"}}, refs)

	refs, err = repo.List(ctx, course.ListOptions{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, []course.CourseRef{{ID: 3, Name: "Intro2"}}, refs)
}

func TestSequenceRepository_NextID_Concurrent(t *testing.T) {
	store := NewTestStore(t)
	repo := NewSequenceRepository(store)
	ctx := context.Background()

	first, err := repo.NextID(ctx, course.Collection)
	require.NoError(t, err)
	require.Equal(t, int64(1), first)

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
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	require.Len(t, seen, callers)
}
