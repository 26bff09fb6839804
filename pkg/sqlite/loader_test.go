package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

func TestNewLoader(t *testing.T) {
	_, err := NewLoader(types.LoaderConfig{})
	assert.ErrorIs(t, err, types.ErrDBPathEmpty)

	l, err := NewLoader(types.LoaderConfig{DBPath: types.MemoryDB})
	require.NoError(t, err)
	require.NoError(t, l.Close())
}

func TestWithLoader(t *testing.T) {
	ctx := context.Background()
	cfg := types.LoaderConfig{DBPath: filepath.Join(t.TempDir(), "keeper.db")}

	err := WithLoader(ctx, cfg, func(l types.BulkLoader) error {
		_, err := l.RunStatement(ctx, "CREATE TABLE t (id INTEGER)", nil, false)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = WithLoader(ctx, cfg, func(l types.BulkLoader) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = WithLoader(ctx, cfg, func(l types.BulkLoader) error {
		res, err := l.RunStatement(ctx, "SELECT COUNT(*) AS n FROM t", nil, true)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(0), res.Rows[0]["n"])
		return nil
	})
	require.NoError(t, err)
}
