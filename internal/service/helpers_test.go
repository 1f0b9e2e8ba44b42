package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"practice-api/internal/db"
)

func newTestStore(t *testing.T) *db.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "service.db") + "?_busy_timeout=5000"
	store, err := db.Init(context.Background(), "sqlite3", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func requireKind(t *testing.T, want Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, KindOf(err), "error: %v", err)
}

func countSubmissions(t *testing.T, store *db.DB, hash string) int {
	t.Helper()
	var n int
	err := store.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM form_submissions WHERE submission_hash = ?", hash).Scan(&n)
	require.NoError(t, err)
	return n
}
