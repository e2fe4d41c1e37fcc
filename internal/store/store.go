// Package store owns the database handle shared by the data access objects.
//
// Every operation borrows one connection for its duration through Do. A
// transaction started with InTx travels in the context, and Do runs on it
// instead of a fresh connection.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// ErrNotOpened is returned by operations on a closed or zero Store.
var ErrNotOpened = errors.New("database not opened")

// Querier is the part of *sqlx.Conn and *sqlx.Tx the data access objects use.
type Querier interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
	PreparexContext(ctx context.Context, query string) (*sqlx.Stmt, error)
	Rebind(query string) string
}

var (
	_ Querier = (*sqlx.Conn)(nil)
	_ Querier = (*sqlx.Tx)(nil)
)

// Store is a handle to an opened database.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	logger  zerolog.Logger
}

// Open connects to the database described by cfg.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	dialect, err := LookupDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(dialect.DriverName, dialect.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name, err)
	}
	if dialect.Configure != nil {
		dialect.Configure(db.DB)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect.Name, err)
	}

	logger.Debug().Str("driver", dialect.Name).Msg("database opened")
	return New(db, dialect, logger), nil
}

// New wraps an already opened handle.
func New(db *sqlx.DB, dialect Dialect, logger zerolog.Logger) *Store {
	return &Store{db: db, dialect: dialect, logger: logger}
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying handle, or nil once closed.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Dialect returns the dialect the store was opened with.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Logger returns the store's logger.
func (s *Store) Logger() zerolog.Logger {
	return s.logger
}

type txKey struct{}

// Do runs fn on a connection held for the duration of the call. When ctx
// carries a transaction from InTx, fn runs on that transaction.
func (s *Store) Do(ctx context.Context, fn func(q Querier) error) error {
	if s == nil || s.db == nil {
		return ErrNotOpened
	}

	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(tx)
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	return fn(conn)
}

// InTx runs fn with a context carrying a transaction. The transaction is
// committed when fn returns nil and rolled back otherwise. Nested calls join
// the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s == nil || s.db == nil {
		return ErrNotOpened
	}

	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.logger.Debug().Msg("transaction committed")
	return nil
}

// ResyncSequence moves the id generator of table past its largest id. It is
// a no-op on databases that track this themselves.
func (s *Store) ResyncSequence(ctx context.Context, q Querier, table string) error {
	if s.dialect.ResyncSequence == nil {
		return nil
	}
	stmt := s.dialect.ResyncSequence(table)
	if stmt == "" {
		return nil
	}
	if _, err := q.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to resync %s id sequence: %w", table, err)
	}
	return nil
}
