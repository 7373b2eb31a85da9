package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/courses/internal/repository"
)

// Service enforces course business rules on top of a Repository and Sequencer.
// It holds no locks; concurrent requests are arbitrated by the store.
type Service struct {
	repo   Repository
	seq    Sequencer
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new course service.
func NewService(repo Repository, seq Sequencer, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		repo:   repo,
		seq:    seq,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest describes a course creation request.
type CreateRequest struct {
	Name   string
	Status Status
}

// UpdateRequest describes a course update request.
type UpdateRequest struct {
	ID     int64
	Name   string
	Status Status
}

// List returns every course, oldest first. Deleted courses are included;
// only Get distinguishes deleted records.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]CourseRef, error) {
	refs, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, s.storageError(ctx, "listing courses", err)
	}
	if refs == nil {
		refs = []CourseRef{}
	}
	return refs, nil
}

// Get returns an active course by id.
func (s *Service) Get(ctx context.Context, id int64) (*Course, error) {
	return s.fetchActive(ctx, id)
}

// Create validates and stores a new course.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Course, error) {
	if err := ValidateInput(req.Name, req.Status); err != nil {
		return nil, err
	}

	// Best-effort pre-check; the unique index on active names decides races.
	if err := s.ensureNameFree(ctx, ActiveByName(req.Name)); err != nil {
		return nil, err
	}

	id, err := s.seq.NextID(ctx, Collection)
	if err != nil {
		return nil, s.storageError(ctx, "allocating course id", err)
	}

	now := s.timestamp()
	c := &Course{
		ID:        id,
		Name:      req.Name,
		Status:    req.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			s.logger.DebugContext(ctx, "course insert lost name race", "id", id, "name", req.Name)
			return nil, ErrConflict
		}
		return nil, s.storageError(ctx, "inserting course", err)
	}

	s.logger.InfoContext(ctx, "course created", "id", c.ID, "name", c.Name, "status", c.Status)
	return c, nil
}

// Update changes the name and status of an active course.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Course, error) {
	if err := ValidateInput(req.Name, req.Status); err != nil {
		return nil, err
	}

	if err := s.ensureNameFree(ctx, ActiveByName(req.Name).Excluding(req.ID)); err != nil {
		return nil, err
	}

	if _, err := s.fetchActive(ctx, req.ID); err != nil {
		return nil, err
	}

	now := s.timestamp()
	name, status := req.Name, req.Status
	updated, err := s.repo.ConditionalUpdate(ctx, ActiveByID(req.ID), Mutation{
		Name:      &name,
		Status:    &status,
		UpdatedAt: &now,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			// Deleted between the fetch and the write.
			s.logger.DebugContext(ctx, "course update lost race with delete", "id", req.ID)
			return nil, ErrCourseGone
		case errors.Is(err, repository.ErrDuplicateKey):
			s.logger.DebugContext(ctx, "course update lost name race", "id", req.ID, "name", req.Name)
			return nil, ErrConflict
		}
		return nil, s.storageError(ctx, "updating course", err)
	}

	s.logger.InfoContext(ctx, "course updated", "id", updated.ID, "name", updated.Name, "status", updated.Status)
	return updated, nil
}

// Delete soft deletes an active course.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.fetchActive(ctx, id); err != nil {
		return err
	}

	now := s.timestamp()
	_, err := s.repo.ConditionalUpdate(ctx, ActiveByID(id), Mutation{
		UpdatedAt: &now,
		DeletedAt: &now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.DebugContext(ctx, "course delete lost race", "id", id)
			return ErrCourseGone
		}
		return s.storageError(ctx, "deleting course", err)
	}

	s.logger.InfoContext(ctx, "course deleted", "id", id)
	return nil
}

func (s *Service) fetchActive(ctx context.Context, id int64) (*Course, error) {
	c, err := s.repo.FindOne(ctx, ByID(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, s.storageError(ctx, "loading course", err)
	}
	if c.Deleted() {
		return nil, ErrCourseGone
	}
	return c, nil
}

func (s *Service) ensureNameFree(ctx context.Context, filter Filter) error {
	_, err := s.repo.FindOne(ctx, filter)
	switch {
	case err == nil:
		return ErrDuplicateName
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return s.storageError(ctx, "checking course name", err)
	}
}

// timestamp truncates to the precision of TimeLayout so stored and returned
// values compare equal.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func (s *Service) storageError(ctx context.Context, op string, err error) error {
	s.logger.ErrorContext(ctx, "storage failure", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}
