package types

import (
	"context"
	"strings"
	"unicode"
)

// Row is one fetched result row keyed by column name. Result.Columns holds
// the column order.
type Row map[string]any

// Result is the outcome of a single statement. A fetched read query fills
// Columns and Rows; any other statement fills RowsAffected.
type Result struct {
	Columns      []string
	Rows         []Row
	RowsAffected int64
}

// CSVOptions controls InsertFromCSV.
type CSVOptions struct {
	// Columns is the destination column list. When empty the CSV header
	// row supplies it.
	Columns []string

	// NoHeader marks a CSV without a header row. Columns is then required.
	NoHeader bool

	// BatchSize overrides the loader's default batch size when positive.
	BatchSize int
}

// JSONOptions controls InsertFromJSON.
type JSONOptions struct {
	// Columns is the destination column list. When empty the keys of the
	// first object supply it, in document order.
	Columns []string

	// BatchSize overrides the loader's default batch size when positive.
	BatchSize int
}

// BulkLoader executes statements against a relational store and loads CSV
// and JSON files into tables.
type BulkLoader interface {
	// Connect opens the connection. It is a no-op when already open.
	Connect(ctx context.Context) error

	// Close commits pending work and releases the connection. It is a
	// no-op when already closed.
	Close() error

	// Rollback discards pending work without closing the connection.
	Rollback() error

	// RunStatement executes one statement with positional parameters.
	// A read query with fetch set returns its rows; anything else is
	// committed and returns the affected row count.
	RunStatement(ctx context.Context, query string, params []any, fetch bool) (Result, error)

	// InsertFromCSV loads the CSV file at path into table and returns the
	// number of rows inserted.
	InsertFromCSV(ctx context.Context, table, path string, opts CSVOptions) (int64, error)

	// InsertFromJSON loads the JSON file at path into table and returns
	// the number of rows inserted.
	InsertFromJSON(ctx context.Context, table, path string, opts JSONOptions) (int64, error)
}

// ValidateIdentifier checks that name can be used as a quoted table or
// column name. Identifiers are interpolated into SQL text, so empty names,
// double quotes and control characters are rejected. Values never go
// through this path; they are always bound parameters.
func ValidateIdentifier(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidIdentifier
	}
	for _, r := range name {
		if r == '"' || unicode.IsControl(r) {
			return ErrInvalidIdentifier
		}
	}
	return nil
}
