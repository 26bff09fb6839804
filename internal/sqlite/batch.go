package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

// maxVariables is SQLite's default limit on bound parameters per statement.
const maxVariables = 32766

// Insert verbs accepted by newRowBatch.
const (
	verbInsert         = "INSERT INTO"
	verbInsertOrIgnore = "INSERT OR IGNORE INTO"
)

// rowBatch accumulates value tuples for one table and flushes them as a
// single multi-row INSERT. Every tuple has exactly len(columns) values.
type rowBatch struct {
	prefix  string
	tuple   string
	width   int
	limit   int
	rows    [][]any
	flushes int
}

// newRowBatch validates the identifiers and prepares the statement prefix.
// The batch limit is clamped so one flush never exceeds maxVariables.
func newRowBatch(verb, table string, columns []string, size int) (*rowBatch, error) {
	qtable, err := quoteTable(table)
	if err != nil {
		return nil, err
	}
	qcols := make([]string, len(columns))
	for i, c := range columns {
		if qcols[i], err = quoteIdent(c); err != nil {
			return nil, err
		}
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	limit := size
	if limit <= 0 {
		limit = types.DefaultBatchSize
	}
	if maxRows := maxVariables / len(columns); limit > maxRows {
		limit = maxRows
	}

	return &rowBatch{
		prefix: fmt.Sprintf("%s %s (%s) VALUES ", verb, qtable, strings.Join(qcols, ", ")),
		tuple:  "(" + strings.Join(placeholders, ", ") + ")",
		width:  len(columns),
		limit:  limit,
		rows:   make([][]any, 0, limit),
	}, nil
}

// add appends one tuple and reports whether the batch is full.
func (b *rowBatch) add(vals []any) (bool, error) {
	if len(vals) != b.width {
		return false, fmt.Errorf("%w: got %d values for %d columns", types.ErrRowArity, len(vals), b.width)
	}
	b.rows = append(b.rows, vals)
	return len(b.rows) >= b.limit, nil
}

// flush inserts the accumulated tuples and clears the batch. It returns the
// number of rows the statement affected. An empty batch is a no-op.
func (b *rowBatch) flush(ctx context.Context, tx *sql.Tx) (int64, error) {
	if len(b.rows) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(b.prefix)
	args := make([]any, 0, len(b.rows)*b.width)
	for i, row := range b.rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.tuple)
		args = append(args, row...)
	}

	res, err := tx.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, types.StorageError("insert batch", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, types.StorageError("rows affected", err)
	}

	b.rows = b.rows[:0]
	b.flushes++
	return n, nil
}

// quoteIdent double-quotes a column name after validating it.
func quoteIdent(name string) (string, error) {
	if err := types.ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("%w: %q", err, name)
	}
	return `"` + name + `"`, nil
}

// quoteTable quotes a table name, keeping an optional schema qualifier
// (schema.table) as a separate identifier.
func quoteTable(name string) (string, error) {
	parts := strings.SplitN(name, ".", 2)
	for i, p := range parts {
		q, err := quoteIdent(p)
		if err != nil {
			return "", fmt.Errorf("%w: table %q", types.ErrInvalidIdentifier, name)
		}
		parts[i] = q
	}
	return strings.Join(parts, "."), nil
}
