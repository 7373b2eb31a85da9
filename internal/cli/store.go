package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rpggio/courses/internal/config"
	"github.com/rpggio/courses/internal/domain/course"
	mongostore "github.com/rpggio/courses/internal/mongo"
	"github.com/rpggio/courses/internal/postgres"
	"github.com/rpggio/courses/internal/sqlite"
)

// store bundles the repositories of one backend with its lifecycle hooks.
type store struct {
	Courses  course.Repository
	Sequence course.Sequencer

	migrate func(context.Context) error
	close   func()
}

func (s *store) Migrate(ctx context.Context) error {
	if err := s.migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *store) Close() {
	s.close()
}

func openStore(ctx context.Context, cfg config.DBConfig) (*store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		if err := ensureDBDir(cfg.Path); err != nil {
			return nil, fmt.Errorf("prepare database path: %w", err)
		}
		db, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return &store{
			Courses:  sqlite.NewCourseRepository(db),
			Sequence: sqlite.NewSequenceRepository(db),
			migrate:  func(context.Context) error { return db.RunMigrations() },
			close:    func() { _ = db.Close() },
		}, nil

	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &store{
			Courses:  postgres.NewCourseRepository(db),
			Sequence: postgres.NewSequenceRepository(db),
			migrate:  db.RunMigrations,
			close:    db.Close,
		}, nil

	case config.DriverMongo:
		s, err := mongostore.Connect(ctx, cfg.DSN, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		return &store{
			Courses:  mongostore.NewCourseRepository(s),
			Sequence: mongostore.NewSequenceRepository(s),
			migrate:  s.EnsureIndexes,
			close:    func() { _ = s.Close(context.Background()) },
		}, nil
	}
	return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
