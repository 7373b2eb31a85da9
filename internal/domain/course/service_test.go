package course_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/rpggio/courses/internal/domain/course"
	"github.com/rpggio/courses/internal/repository"
	"github.com/rpggio/courses/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 9, 14, 30, 15, 987654321, time.UTC)

func newService(repo *mocks.CourseRepository, seq *mocks.Sequencer) *course.Service {
	return course.NewService(repo, seq, nil, course.WithClock(func() time.Time { return fixedNow }))
}

func activeCourse(id int64, name string) *course.Course {
	ts := fixedNow.Add(-time.Hour).Truncate(time.Second)
	return &course.Course{ID: id, Name: name, Status: course.StatusScheduled, CreatedAt: ts, UpdatedAt: ts}
}

func deletedCourse(id int64, name string) *course.Course {
	c := activeCourse(id, name)
	deletedAt := c.UpdatedAt
	c.DeletedAt = &deletedAt
	return c
}

func TestCourseService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		req  course.CreateRequest
	}{
		{"empty name", course.CreateRequest{Name: "", Status: course.StatusScheduled}},
		{"blank name", course.CreateRequest{Name: "   ", Status: course.StatusScheduled}},
		{"missing status", course.CreateRequest{Name: "Intro"}},
		{"unknown status", course.CreateRequest{Name: "Intro", Status: "scheduled2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mocks.CourseRepository{}
			seq := &mocks.Sequencer{}
			_, err := newService(repo, seq).Create(ctx, tc.req)
			require.ErrorIs(t, err, course.ErrInvalidInput)
			repo.AssertExpectations(t)
			seq.AssertExpectations(t)
		})
	}
}

func TestCourseService_Create(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CourseRepository{}
	seq := &mocks.Sequencer{}
	repo.On("FindOne", ctx, course.ActiveByName("Intro")).Return(nil, repository.ErrNotFound)
	seq.On("NextID", ctx, course.Collection).Return(int64(7), nil)
	repo.On("Insert", ctx, mock.MatchedBy(func(c *course.Course) bool {
		return c.ID == 7 && c.Name == "Intro" && c.DeletedAt == nil
	})).Return(nil)

	created, err := newService(repo, seq).Create(ctx, course.CreateRequest{Name: "Intro", Status: course.StatusScheduled})
	require.NoError(t, err)
	require.Equal(t, int64(7), created.ID)
	require.Equal(t, course.StatusScheduled, created.Status)
	require.Equal(t, fixedNow.Truncate(time.Second), created.CreatedAt)
	require.Equal(t, created.CreatedAt, created.UpdatedAt)
	repo.AssertExpectations(t)
	seq.AssertExpectations(t)
}

func TestCourseService_CreateDuplicateName(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CourseRepository{}
	seq := &mocks.Sequencer{}
	repo.On("FindOne", ctx, course.ActiveByName("Intro")).Return(activeCourse(1, "Intro"), nil)

	_, err := newService(repo, seq).Create(ctx, course.CreateRequest{Name: "Intro", Status: course.StatusAvailable})
	require.ErrorIs(t, err, course.ErrDuplicateName)
	seq.AssertNotCalled(t, "NextID", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCourseService_CreateLosesInsertRace(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CourseRepository{}
	seq := &mocks.Sequencer{}
	repo.On("FindOne", ctx, course.ActiveByName("Intro")).Return(nil, repository.ErrNotFound)
	seq.On("NextID", ctx, course.Collection).Return(int64(2), nil)
	repo.On("Insert", ctx, mock.Anything).Return(repository.ErrDuplicateKey)

	_, err := newService(repo, seq).Create(ctx, course.CreateRequest{Name: "Intro", Status: course.StatusScheduled})
	require.ErrorIs(t, err, course.ErrConflict)
	require.NotErrorIs(t, err, course.ErrDuplicateName)
}

func TestCourseService_CreateStorageError(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CourseRepository{}
	seq := &mocks.Sequencer{}
	boom := errors.New("connection reset")
	repo.On("FindOne", ctx, course.ActiveByName("Intro")).Return(nil, repository.ErrNotFound)
	seq.On("NextID", ctx, course.Collection).Return(int64(0), boom)

	_, err := newService(repo, seq).Create(ctx, course.CreateRequest{Name: "Intro", Status: course.StatusScheduled})
	require.ErrorIs(t, err, boom)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

type requestKey struct{}

// contextRecorder keeps the request value seen on each record's context.
type contextRecorder struct {
	slog.Handler
	seen []any
}

func (h *contextRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (h *contextRecorder) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		h.seen = append(h.seen, ctx.Value(requestKey{}))
	}
	return nil
}

func TestCourseService_StorageErrorLogsWithContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), requestKey{}, "req-42")
	repo := &mocks.CourseRepository{}
	boom := errors.New("disk full")
	repo.On("List", ctx, course.ListOptions{}).Return(nil, boom)

	rec := &contextRecorder{Handler: slog.DiscardHandler}
	svc := course.NewService(repo, &mocks.Sequencer{}, slog.New(rec))

	_, err := svc.List(ctx, course.ListOptions{})
	require.ErrorIs(t, err, boom)
	require.Equal(t, []any{"req-42"}, rec.seen)
}

func TestCourseService_Get(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CourseRepository{}
	repo.On("FindOne", ctx, course.ByID(1)).Return(activeCourse(1, "Intro"), nil)
	repo.On("FindOne", ctx, course.ByID(2)).Return(deletedCourse(2, "Old"), nil)
	repo.On("FindOne", ctx, course.ByID(3)).Return(nil, repository.ErrNotFound)
	svc := newService(repo, &mocks.Sequencer{})

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Intro", got.Name)

	_, err = svc.Get(ctx, 2)
	require.ErrorIs(t, err, course.ErrCourseGone)

	_, err = svc.Get(ctx, 3)
	require.ErrorIs(t, err, course.ErrCourseNotFound)
}

func TestCourseService_ListReturnsEmptySlice(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CourseRepository{}
	repo.On("List", ctx, course.ListOptions{}).Return(nil, nil)

	refs, err := newService(repo, &mocks.Sequencer{}).List(ctx, course.ListOptions{})
	require.NoError(t, err)
	require.NotNil(t, refs)
	require.Empty(t, refs)
}

func TestCourseService_Update(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CourseRepository{}
	repo.On("FindOne", ctx, course.ActiveByName("Intro2").Excluding(1)).Return(nil, repository.ErrNotFound)
	repo.On("FindOne", ctx, course.ByID(1)).Return(activeCourse(1, "Intro"), nil)
	repo.On("ConditionalUpdate", ctx, course.ActiveByID(1), mock.MatchedBy(func(m course.Mutation) bool {
		return *m.Name == "Intro2" && *m.Status == course.StatusAvailable &&
			m.UpdatedAt.Equal(fixedNow.Truncate(time.Second)) && m.DeletedAt == nil
	})).Return(&course.Course{ID: 1, Name: "Intro2", Status: course.StatusAvailable}, nil)

	updated, err := newService(repo, &mocks.Sequencer{}).Update(ctx, course.UpdateRequest{
		ID: 1, Name: "Intro2", Status: course.StatusAvailable,
	})
	require.NoError(t, err)
	require.Equal(t, "Intro2", updated.Name)
	repo.AssertExpectations(t)
}

func TestCourseService_UpdateOutcomes(t *testing.T) {
	ctx := context.Background()
	req := course.UpdateRequest{ID: 5, Name: "Algebra", Status: course.StatusInProduction}
	nameFilter := course.ActiveByName("Algebra").Excluding(5)

	t.Run("invalid input", func(t *testing.T) {
		repo := &mocks.CourseRepository{}
		_, err := newService(repo, &mocks.Sequencer{}).Update(ctx, course.UpdateRequest{ID: 5, Name: " ", Status: course.StatusAvailable})
		require.ErrorIs(t, err, course.ErrInvalidInput)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate name", func(t *testing.T) {
		repo := &mocks.CourseRepository{}
		repo.On("FindOne", ctx, nameFilter).Return(activeCourse(9, "Algebra"), nil)
		_, err := newService(repo, &mocks.Sequencer{}).Update(ctx, req)
		require.ErrorIs(t, err, course.ErrDuplicateName)
		repo.AssertNotCalled(t, "ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &mocks.CourseRepository{}
		repo.On("FindOne", ctx, nameFilter).Return(nil, repository.ErrNotFound)
		repo.On("FindOne", ctx, course.ByID(5)).Return(nil, repository.ErrNotFound)
		_, err := newService(repo, &mocks.Sequencer{}).Update(ctx, req)
		require.ErrorIs(t, err, course.ErrCourseNotFound)
		repo.AssertNotCalled(t, "ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already deleted", func(t *testing.T) {
		repo := &mocks.CourseRepository{}
		repo.On("FindOne", ctx, nameFilter).Return(nil, repository.ErrNotFound)
		repo.On("FindOne", ctx, course.ByID(5)).Return(deletedCourse(5, "Old"), nil)
		_, err := newService(repo, &mocks.Sequencer{}).Update(ctx, req)
		require.ErrorIs(t, err, course.ErrCourseGone)
		repo.AssertNotCalled(t, "ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deleted concurrently", func(t *testing.T) {
		repo := &mocks.CourseRepository{}
		repo.On("FindOne", ctx, nameFilter).Return(nil, repository.ErrNotFound)
		repo.On("FindOne", ctx, course.ByID(5)).Return(activeCourse(5, "Old"), nil)
		repo.On("ConditionalUpdate", ctx, course.ActiveByID(5), mock.Anything).Return(nil, repository.ErrNotFound)
		_, err := newService(repo, &mocks.Sequencer{}).Update(ctx, req)
		require.ErrorIs(t, err, course.ErrCourseGone)
	})

	t.Run("name claimed concurrently", func(t *testing.T) {
		repo := &mocks.CourseRepository{}
		repo.On("FindOne", ctx, nameFilter).Return(nil, repository.ErrNotFound)
		repo.On("FindOne", ctx, course.ByID(5)).Return(activeCourse(5, "Old"), nil)
		repo.On("ConditionalUpdate", ctx, course.ActiveByID(5), mock.Anything).Return(nil, repository.ErrDuplicateKey)
		_, err := newService(repo, &mocks.Sequencer{}).Update(ctx, req)
		require.ErrorIs(t, err, course.ErrConflict)
	})
}

func TestCourseService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CourseRepository{}
	repo.On("FindOne", ctx, course.ByID(1)).Return(activeCourse(1, "Intro"), nil)
	repo.On("ConditionalUpdate", ctx, course.ActiveByID(1), mock.MatchedBy(func(m course.Mutation) bool {
		return m.Name == nil && m.Status == nil && m.DeletedAt != nil && m.UpdatedAt != nil &&
			m.DeletedAt.Equal(*m.UpdatedAt)
	})).Return(deletedCourse(1, "Intro"), nil)

	err := newService(repo, &mocks.Sequencer{}).Delete(ctx, 1)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCourseService_DeleteOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		repo := &mocks.CourseRepository{}
		repo.On("FindOne", ctx, course.ByID(4)).Return(nil, repository.ErrNotFound)
		err := newService(repo, &mocks.Sequencer{}).Delete(ctx, 4)
		require.ErrorIs(t, err, course.ErrCourseNotFound)
	})

	t.Run("already deleted", func(t *testing.T) {
		repo := &mocks.CourseRepository{}
		repo.On("FindOne", ctx, course.ByID(4)).Return(deletedCourse(4, "Old"), nil)
		err := newService(repo, &mocks.Sequencer{}).Delete(ctx, 4)
		require.ErrorIs(t, err, course.ErrCourseGone)
		repo.AssertNotCalled(t, "ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deleted concurrently", func(t *testing.T) {
		repo := &mocks.CourseRepository{}
		repo.On("FindOne", ctx, course.ByID(4)).Return(activeCourse(4, "Old"), nil)
		repo.On("ConditionalUpdate", ctx, course.ActiveByID(4), mock.Anything).Return(nil, repository.ErrNotFound)
		err := newService(repo, &mocks.Sequencer{}).Delete(ctx, 4)
		require.ErrorIs(t, err, course.ErrCourseGone)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := &mocks.CourseRepository{}
		boom := errors.New("disk full")
		repo.On("FindOne", ctx, course.ByID(4)).Return(activeCourse(4, "Old"), nil)
		repo.On("ConditionalUpdate", ctx, course.ActiveByID(4), mock.Anything).Return(nil, boom)
		err := newService(repo, &mocks.Sequencer{}).Delete(ctx, 4)
		require.ErrorIs(t, err, boom)
		require.NotErrorIs(t, err, course.ErrCourseGone)
	})
}
