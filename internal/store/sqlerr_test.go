package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/schooldb/internal/store"
	"github.com/leapstack-labs/schooldb/internal/testutil"
)

func TestClassify_Postgres(t *testing.T) {
	tests := []struct {
		code string
		want store.Violation
	}{
		{code: "23505", want: store.UniqueViolation},
		{code: "23503", want: store.ForeignKeyViolation},
		{code: "23502", want: store.NotNullViolation},
		{code: "23514", want: store.CheckViolation},
		{code: "42P01", want: store.NoViolation},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("failed to insert: %w", &pgconn.PgError{Code: tt.code})
			assert.Equal(t, tt.want, store.Classify(err))
		})
	}
}

func TestClassify_SQLite(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	exec := func(query string, args ...any) error {
		return s.Do(ctx, func(q store.Querier) error {
			_, err := q.ExecContext(ctx, query, args...)
			return err
		})
	}

	require.NoError(t, exec("INSERT INTO groups (id, name) VALUES (1, 'AB-12')"))
	require.NoError(t, exec("INSERT INTO courses (id, name) VALUES (1, 'Art')"))
	require.NoError(t, exec("INSERT INTO students (id, group_id, first_name, last_name) VALUES (1, 1, 'Ann', 'Lee')"))
	require.NoError(t, exec("INSERT INTO students_courses (student_id, course_id) VALUES (1, 1)"))

	tests := []struct {
		name  string
		query string
		want  store.Violation
	}{
		{
			name:  "duplicate course name",
			query: "INSERT INTO courses (name) VALUES ('Art')",
			want:  store.UniqueViolation,
		},
		{
			name:  "duplicate primary key",
			query: "INSERT INTO groups (id, name) VALUES (1, 'CD-34')",
			want:  store.UniqueViolation,
		},
		{
			name:  "duplicate enrollment",
			query: "INSERT INTO students_courses (student_id, course_id) VALUES (1, 1)",
			want:  store.UniqueViolation,
		},
		{
			name:  "dangling group",
			query: "INSERT INTO students (group_id, first_name, last_name) VALUES (99, 'Bob', 'Ray')",
			want:  store.ForeignKeyViolation,
		},
		{
			name:  "missing name",
			query: "INSERT INTO groups (id, name) VALUES (2, NULL)",
			want:  store.NotNullViolation,
		},
		{
			name:  "syntax error",
			query: "INSERT INTO nowhere VALUES (1)",
			want:  store.NoViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exec(tt.query)
			require.Error(t, err)
			assert.Equal(t, tt.want, store.Classify(err), err.Error())
		})
	}
}

func TestClassify_Other(t *testing.T) {
	assert.Equal(t, store.NoViolation, store.Classify(nil))
	assert.Equal(t, store.NoViolation, store.Classify(assert.AnError))
	assert.Equal(t, "foreign key", store.ForeignKeyViolation.String())
	assert.Equal(t, "none", store.NoViolation.String())
}
