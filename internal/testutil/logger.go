// Package testutil provides shared helpers for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/schooldb/internal/store"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// NewStore opens a private in-memory sqlite database with the default
// schema applied. It is closed when the test ends.
func NewStore(t testing.TB) *store.Store {
	t.Helper()

	ctx := context.Background()
	s, err := store.Open(ctx, store.Config{Driver: "sqlite", Path: ":memory:"}, NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	script, err := store.DefaultSchema(s.Dialect())
	require.NoError(t, err)
	require.NoError(t, s.Init(ctx, script))
	return s
}
