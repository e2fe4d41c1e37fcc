package store

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
)

func (s *Store) prepareGoose() error {
	if s == nil || s.db == nil {
		return ErrNotOpened
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(s.dialect.GooseDialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// Migrate runs all pending embedded migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.prepareGoose(); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, s.db.DB, migrationsDir(s.dialect)); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.logger.Debug().Str("driver", s.dialect.Name).Msg("migrations applied")
	return nil
}

// MigrationVersion returns the current migration version.
func (s *Store) MigrationVersion(ctx context.Context) (int64, error) {
	if err := s.prepareGoose(); err != nil {
		return 0, err
	}

	version, err := goose.GetDBVersionContext(ctx, s.db.DB)
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, nil
}
