package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

// loadStats summarises one bulk load.
type loadStats struct {
	rows    int64
	batches int
}

// rowSource yields value tuples aligned to the load's column list. It
// returns io.EOF when exhausted.
type rowSource func() ([]any, error)

// bulkInsert streams rows from next into table in batches of batchSize.
// All batches share the pending transaction, which is committed once at the
// end. Any failure rolls the whole load back, so a call either inserts
// every row or none. The caller must hold l.mu.
func (l *Loader) bulkInsert(ctx context.Context, verb, table string, columns []string, batchSize int, next rowSource) (loadStats, error) {
	var stats loadStats

	batch, err := newRowBatch(verb, table, columns, batchSize)
	if err != nil {
		return stats, err
	}

	tx, err := l.txLocked(ctx)
	if err != nil {
		return stats, err
	}

	loadID := newLoadID()
	log := l.logger.With("load_id", loadID, "table", table)
	log.Debug("bulk load started", "columns", len(columns), "batch_size", batch.limit)
	start := time.Now()

	fail := func(err error) (loadStats, error) {
		l.rollbackLocked()
		log.Debug("bulk load rolled back", "error", err, "flushed_rows", stats.rows)
		return loadStats{}, err
	}

	for {
		vals, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(err)
		}

		full, err := batch.add(vals)
		if err != nil {
			return fail(err)
		}
		if !full {
			continue
		}
		n, err := batch.flush(ctx, tx)
		if err != nil {
			return fail(err)
		}
		stats.rows += n
		log.Debug("batch flushed", "rows", n, "total", stats.rows)
	}

	n, err := batch.flush(ctx, tx)
	if err != nil {
		return fail(err)
	}
	stats.rows += n
	stats.batches = batch.flushes

	if err := l.commitLocked(); err != nil {
		log.Debug("bulk load commit failed", "error", err)
		return loadStats{}, err
	}

	log.Debug("bulk load committed", "rows", stats.rows, "batches", stats.batches, "elapsed", time.Since(start))
	return stats, nil
}

// batchSizeFor returns the per-call override when positive, else the
// loader default.
func (l *Loader) batchSizeFor(override int) int {
	if override > 0 {
		return override
	}
	return l.config.GetBatchSize()
}

// openError classifies a failure to open an input file.
func openError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", types.ErrFileNotFound, path, err)
	}
	return types.StorageError("open "+path, err)
}
