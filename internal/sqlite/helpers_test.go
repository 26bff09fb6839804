package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

// newTestLoader returns a connected Loader on a database file in a fresh
// temp dir, plus the file path so tests can reopen it.
func newTestLoader(t *testing.T) (*Loader, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "keeper.db")
	l, err := NewLoader(types.LoaderConfig{DBPath: dbPath})
	require.NoError(t, err)
	require.NoError(t, l.Connect(context.Background()))
	t.Cleanup(func() { l.Close() })
	return l, dbPath
}

// mustExec runs a write statement and fails the test on error.
func mustExec(t *testing.T, l *Loader, query string, args ...any) {
	t.Helper()
	_, err := l.Exec(context.Background(), query, args...)
	require.NoError(t, err)
}

// countRows returns SELECT COUNT(*) for table.
func countRows(t *testing.T, l *Loader, table string) int64 {
	t.Helper()
	rows, err := l.Query(context.Background(), "SELECT COUNT(*) AS n FROM "+table)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0]["n"].(int64)
}

// writeFile writes content to name inside a temp dir and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
