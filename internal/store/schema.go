package store

import (
	"context"
	"embed"
	"fmt"
	"path"
)

//go:embed migrations
var migrations embed.FS

const initialMigration = "00001_school.sql"

func migrationsDir(d Dialect) string {
	return path.Join("migrations", d.Name)
}

// DefaultSchema returns the embedded bootstrap script for a dialect.
func DefaultSchema(d Dialect) (string, error) {
	data, err := migrations.ReadFile(path.Join(migrationsDir(d), initialMigration))
	if err != nil {
		return "", fmt.Errorf("no embedded schema for %s: %w", d.Name, err)
	}
	return string(data), nil
}

// Init executes a schema script as is. The script is not parsed; it is the
// driver's job to run multiple statements.
func (s *Store) Init(ctx context.Context, script string) error {
	if script == "" {
		return fmt.Errorf("failed to initialize schema: empty script")
	}

	err := s.Do(ctx, func(q Querier) error {
		_, err := q.ExecContext(ctx, script)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.Debug().Int("bytes", len(script)).Msg("schema initialized")
	return nil
}
