// Package sqlite provides the public API for the SQLite bulk loader. It
// exposes constructors while keeping the implementation internal.
package sqlite

import (
	"context"

	"github.com/mesh-intelligence/keeper/internal/sqlite"
	"github.com/mesh-intelligence/keeper/pkg/types"
)

// NewLoader creates an unconnected bulk loader. The connection opens on
// first use; call Close to commit and release it.
//
// Example:
//
//	loader, err := sqlite.NewLoader(types.LoaderConfig{DBPath: "keeper.db"})
//	if err != nil {
//	    return err
//	}
//	defer loader.Close()
//	n, err := loader.InsertFromCSV(ctx, "people", "people.csv", types.CSVOptions{})
func NewLoader(config types.LoaderConfig) (types.BulkLoader, error) {
	l, err := sqlite.NewLoader(config)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// WithLoader runs fn with a connected loader. Work is committed when fn
// returns nil and rolled back when it returns an error or panics; the
// connection is released either way.
func WithLoader(ctx context.Context, config types.LoaderConfig, fn func(types.BulkLoader) error) error {
	return sqlite.WithLoader(ctx, config, func(l *sqlite.Loader) error {
		return fn(l)
	})
}
