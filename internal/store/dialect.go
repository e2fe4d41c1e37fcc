package store

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	// database/sql drivers for the registered dialects.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Config describes how to reach the database.
type Config struct {
	Driver   string
	Path     string // sqlite file; empty or ":memory:" for a private in-memory database
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Dialect captures what differs between the supported databases.
type Dialect struct {
	// Name is the value accepted in Config.Driver.
	Name string
	// DriverName is the database/sql driver to open.
	DriverName string
	// GooseDialect is passed to goose.SetDialect.
	GooseDialect string
	// DSN builds the connection string.
	DSN func(cfg Config) string
	// Configure tunes the pool after opening.
	Configure func(db *sql.DB)
	// ResyncSequence returns the statement that moves the id generator of a
	// table past its current maximum, or "" when the database needs none.
	ResyncSequence func(table string) string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Dialect)
)

func init() {
	RegisterDialect(Dialect{
		Name:         "sqlite",
		DriverName:   "sqlite",
		GooseDialect: "sqlite3",
		DSN:          buildSQLiteDSN,
		Configure: func(db *sql.DB) {
			// A single connection keeps in-memory databases alive and
			// serialises writers.
			db.SetMaxOpenConns(1)
		},
		ResyncSequence: func(string) string { return "" },
	})
	RegisterDialect(Dialect{
		Name:         "postgres",
		DriverName:   "pgx",
		GooseDialect: "postgres",
		DSN:          buildPostgresDSN,
		ResyncSequence: func(table string) string {
			return fmt.Sprintf(
				"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %[1]s",
				table)
		},
	})

	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// RegisterDialect adds a dialect to the registry, replacing any dialect with
// the same name.
func RegisterDialect(d Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Name] = d
}

// LookupDialect retrieves a dialect by name.
func LookupDialect(name string) (Dialect, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[name]
	if !ok {
		return Dialect{}, &UnknownDialectError{Name: name, Available: listDialectsLocked()}
	}
	return d, nil
}

// ListDialects returns all registered dialect names (sorted).
func ListDialects() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return listDialectsLocked()
}

func listDialectsLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownDialectError is returned when an unknown driver is requested.
type UnknownDialectError struct {
	Name      string
	Available []string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("unknown database driver %q\nAvailable drivers: %v\nHint: Check database.driver in schooldb.yaml", e.Name, e.Available)
}

func buildSQLiteDSN(cfg Config) string {
	if cfg.Path == "" || cfg.Path == ":memory:" {
		// Named so that every store gets its own database.
		return fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	}
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cfg.Path)
}

// buildPostgresDSN constructs a key=value PostgreSQL connection string.
func buildPostgresDSN(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", host, port, cfg.Name, sslmode)
	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	return dsn
}
