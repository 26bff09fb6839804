package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

// readKeywords are leading keywords of statements that produce rows.
var readKeywords = map[string]bool{
	"SELECT":  true,
	"WITH":    true,
	"VALUES":  true,
	"PRAGMA":  true,
	"EXPLAIN": true,
}

// RunStatement executes query with positional ? parameters. A read query
// with fetch set returns its full result set and leaves the transaction
// pending. Any other statement is committed and reports the affected row
// count. A WITH statement that turns out to produce no columns is a write
// and is committed too; WITH ... RETURNING stays pending like a read. Only identifiers may be interpolated into query; values must go
// through params.
func (l *Loader) RunStatement(ctx context.Context, query string, params []any, fetch bool) (types.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.txLocked(ctx)
	if err != nil {
		return types.Result{}, err
	}

	if fetch && isReadQuery(query) {
		res, err := queryRows(ctx, tx, query, params)
		if err != nil {
			l.rollbackLocked()
			return types.Result{}, err
		}
		if len(res.Columns) > 0 {
			return res, nil
		}
		// WITH ... INSERT/UPDATE/DELETE produces no columns: treat it as a write.
		var n int64
		if err := tx.QueryRowContext(ctx, "SELECT changes()").Scan(&n); err != nil {
			l.rollbackLocked()
			return types.Result{}, types.StorageError("rows affected", err)
		}
		if err := l.commitLocked(); err != nil {
			return types.Result{}, err
		}
		return types.Result{RowsAffected: n}, nil
	}

	execRes, err := tx.ExecContext(ctx, query, params...)
	if err != nil {
		l.rollbackLocked()
		return types.Result{}, types.StorageError("exec", err)
	}
	n, err := execRes.RowsAffected()
	if err != nil {
		l.rollbackLocked()
		return types.Result{}, types.StorageError("rows affected", err)
	}
	if err := l.commitLocked(); err != nil {
		return types.Result{}, err
	}
	return types.Result{RowsAffected: n}, nil
}

// Exec runs a write statement and returns the affected row count.
func (l *Loader) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := l.RunStatement(ctx, query, args, false)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// Query runs a read statement and returns its rows.
func (l *Loader) Query(ctx context.Context, query string, args ...any) ([]types.Row, error) {
	res, err := l.RunStatement(ctx, query, args, true)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// queryRows materialises the result set of query as column-keyed rows.
func queryRows(ctx context.Context, tx *sql.Tx, query string, params []any) (types.Result, error) {
	rows, err := tx.QueryContext(ctx, query, params...)
	if err != nil {
		return types.Result{}, types.StorageError("query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return types.Result{}, types.StorageError("read columns", err)
	}

	res := types.Result{Columns: cols, Rows: []types.Row{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return types.Result{}, types.StorageError("scan row", err)
		}
		row := make(types.Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return types.Result{}, types.StorageError("iterate rows", err)
	}
	return res, nil
}

// isReadQuery reports whether query starts with a row-producing keyword,
// ignoring leading whitespace and SQL comments.
func isReadQuery(query string) bool {
	return readKeywords[leadingKeyword(query)]
}

// leadingKeyword returns the first word of query in upper case.
func leadingKeyword(query string) string {
	s := query
	for {
		s = strings.TrimLeft(s, " \t\r\n(")
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s, "*/")
			if i < 0 {
				return ""
			}
			s = s[i+2:]
		default:
			end := strings.IndexFunc(s, func(r rune) bool {
				return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
			})
			if end < 0 {
				end = len(s)
			}
			return strings.ToUpper(s[:end])
		}
	}
}
