// Package dao provides hand-written SQL data access objects for groups,
// courses and students.
//
// Every DAO method borrows a single connection from the store for its whole
// duration and returns a *Error on failure. Multi-statement operations are
// not atomic unless the caller runs them inside store.InTx.
package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leapstack-labs/schooldb/internal/model"
	"github.com/leapstack-labs/schooldb/internal/store"
)

// insertBatch executes one prepared statement per row on a single
// connection, then resynchronises the table's id generator. It stops at the
// first failing row; earlier rows stay written.
func insertBatch[T any](
	ctx context.Context,
	s *store.Store,
	op, table, query string,
	rows []T,
	id func(T) int64,
	args func(T) []any,
) error {
	if rows == nil {
		return contractError(op, "nil batch")
	}
	for i, row := range rows {
		if id(row) <= 0 {
			return contractError(op, fmt.Sprintf("row %d has no positive id", i), id(row))
		}
		if err := model.Validate(row); err != nil {
			return &Error{Op: op, Kind: KindContract, IDs: []int64{id(row)}, Err: err}
		}
	}
	if len(rows) == 0 {
		return nil
	}

	var current int64
	err := s.Do(ctx, func(q store.Querier) error {
		stmt, err := q.PreparexContext(ctx, q.Rebind(query))
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, row := range rows {
			current = id(row)
			if _, err := stmt.ExecContext(ctx, args(row)...); err != nil {
				return err
			}
		}
		current = 0
		return s.ResyncSequence(ctx, q, table)
	})
	if err != nil {
		if current != 0 {
			return storeError(op, err, current)
		}
		return storeError(op, err)
	}

	logger := s.Logger()
	logger.Debug().Str("table", table).Int("rows", len(rows)).Msg("batch inserted")
	return nil
}

// insertReturningID runs an INSERT ... RETURNING id statement.
func insertReturningID(ctx context.Context, s *store.Store, op, query string, args ...any) (int64, error) {
	var id int64
	err := s.Do(ctx, func(q store.Querier) error {
		return q.QueryRowxContext(ctx, q.Rebind(query), args...).Scan(&id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &Error{Op: op, Kind: KindStore, Err: errors.New("no key returned")}
	}
	if err != nil {
		return 0, storeError(op, err)
	}
	return id, nil
}

func validateEntity(op string, entity any) error {
	if err := model.Validate(entity); err != nil {
		return &Error{Op: op, Kind: KindContract, Err: err}
	}
	return nil
}
