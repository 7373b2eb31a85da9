package mocks

import (
	"context"

	"github.com/rpggio/courses/internal/domain/course"
	"github.com/stretchr/testify/mock"
)

// CourseRepository is a mock for course.Repository.
type CourseRepository struct {
	mock.Mock
}

func (m *CourseRepository) FindOne(ctx context.Context, filter course.Filter) (*course.Course, error) {
	args := m.Called(ctx, filter)
	if c, ok := args.Get(0).(*course.Course); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CourseRepository) Insert(ctx context.Context, c *course.Course) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CourseRepository) ConditionalUpdate(ctx context.Context, filter course.Filter, mutation course.Mutation) (*course.Course, error) {
	args := m.Called(ctx, filter, mutation)
	if c, ok := args.Get(0).(*course.Course); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CourseRepository) List(ctx context.Context, opts course.ListOptions) ([]course.CourseRef, error) {
	args := m.Called(ctx, opts)
	if refs, ok := args.Get(0).([]course.CourseRef); ok {
		return refs, args.Error(1)
	}
	return nil, args.Error(1)
}

// Sequencer is a mock for course.Sequencer.
type Sequencer struct {
	mock.Mock
}

func (m *Sequencer) NextID(ctx context.Context, collection string) (int64, error) {
	args := m.Called(ctx, collection)
	return args.Get(0).(int64), args.Error(1)
}
