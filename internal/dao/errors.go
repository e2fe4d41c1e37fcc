package dao

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/schooldb/internal/store"
)

// Kind classifies a DAO failure.
type Kind int

const (
	// KindStore is a driver or connectivity failure.
	KindStore Kind = iota
	// KindContract is invalid input, rejected before the store is touched.
	KindContract
	// KindConstraint is a uniqueness or referential integrity violation.
	KindConstraint
	// KindNotFound means a mutation matched no rows.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindContract:
		return "contract violation"
	case KindConstraint:
		return "constraint violation"
	case KindNotFound:
		return "not found"
	default:
		return "store failure"
	}
}

// Sentinels for errors.Is. A *Error matches the sentinel of its Kind.
var (
	ErrStore      = errors.New("store failure")
	ErrContract   = errors.New("contract violation")
	ErrConstraint = errors.New("constraint violation")
	ErrNotFound   = errors.New("not found")
)

// Error is returned by every failing DAO operation.
type Error struct {
	Op   string
	Kind Kind
	IDs  []int64
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if len(e.IDs) > 0 {
		b.WriteString(" (ids ")
		for i, id := range e.IDs {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%d", id)
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(": ")
		b.WriteString(e.Kind.String())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrStore:
		return e.Kind == KindStore
	case ErrContract:
		return e.Kind == KindContract
	case ErrConstraint:
		return e.Kind == KindConstraint
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

func contractError(op, reason string, ids ...int64) error {
	return &Error{Op: op, Kind: KindContract, IDs: ids, Err: errors.New(reason)}
}

func notFoundError(op string, ids ...int64) error {
	return &Error{Op: op, Kind: KindNotFound, IDs: ids}
}

// storeError wraps a driver error, promoting integrity violations to
// KindConstraint.
func storeError(op string, err error, ids ...int64) error {
	var daoErr *Error
	if errors.As(err, &daoErr) {
		return err
	}

	kind := KindStore
	if v := store.Classify(err); v != store.NoViolation {
		kind = KindConstraint
		err = fmt.Errorf("%s constraint: %w", v, err)
	}
	return &Error{Op: op, Kind: kind, IDs: ids, Err: err}
}
