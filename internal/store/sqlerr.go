package store

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Violation names the integrity constraint a driver error reports.
type Violation int

const (
	NoViolation Violation = iota
	UniqueViolation
	ForeignKeyViolation
	NotNullViolation
	CheckViolation
)

func (v Violation) String() string {
	switch v {
	case UniqueViolation:
		return "unique"
	case ForeignKeyViolation:
		return "foreign key"
	case NotNullViolation:
		return "not null"
	case CheckViolation:
		return "check"
	default:
		return "none"
	}
}

// Postgres SQLSTATE codes for class 23, integrity constraint violation.
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// Classify reports which integrity constraint err violates, if any.
func Classify(err error) Violation {
	if err == nil {
		return NoViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return UniqueViolation
		case pgForeignKeyViolation:
			return ForeignKeyViolation
		case pgNotNullViolation:
			return NotNullViolation
		case pgCheckViolation:
			return CheckViolation
		}
		return NoViolation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return classifySQLite(liteErr.Code(), liteErr.Error())
	}

	return NoViolation
}

func classifySQLite(code int, msg string) Violation {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return UniqueViolation
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return ForeignKeyViolation
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return NotNullViolation
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return CheckViolation
	}

	// Extended codes are off: fall back to the message.
	if code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return NoViolation
	}
	msg = strings.ToUpper(msg)
	switch {
	case strings.Contains(msg, "UNIQUE"):
		return UniqueViolation
	case strings.Contains(msg, "FOREIGN KEY"):
		return ForeignKeyViolation
	case strings.Contains(msg, "NOT NULL"):
		return NotNullViolation
	case strings.Contains(msg, "CHECK"):
		return CheckViolation
	}
	return NoViolation
}
