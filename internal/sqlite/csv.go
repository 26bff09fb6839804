package sqlite

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// InsertFromCSV loads the CSV file at path into table and returns the
// number of rows inserted.
//
// With a header row and no explicit columns, the header names the columns
// and each row is aligned to it by position; short rows are padded with
// NULL and surplus cells are dropped. With explicit columns that all appear
// in the header, values are picked by header name; otherwise they are taken
// positionally. Without a header, Columns is required and every row must
// have exactly len(Columns) cells. An empty header loads nothing.
func (l *Loader) InsertFromCSV(ctx context.Context, table, path string, opts types.CSVOptions) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats, err := l.loadCSV(ctx, table, path, opts)
	return stats.rows, err
}

func (l *Loader) loadCSV(ctx context.Context, table, path string, opts types.CSVOptions) (loadStats, error) {
	if opts.NoHeader && len(opts.Columns) == 0 {
		return loadStats{}, fmt.Errorf("%w: %s", types.ErrColumnsRequired, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return loadStats{}, openError(path, err)
	}
	defer f.Close()

	r, err := newCSVReader(f)
	if err != nil {
		return loadStats{}, types.StorageError("read "+path, err)
	}

	var header []string
	if !opts.NoHeader {
		header, err = r.Read()
		if errors.Is(err, io.EOF) {
			return loadStats{}, nil
		}
		if err != nil {
			return loadStats{}, csvError(path, err)
		}
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
	}

	columns := opts.Columns
	if len(columns) == 0 {
		columns = header
	}
	if len(columns) == 0 {
		return loadStats{}, nil
	}

	align := positional(len(columns), !opts.NoHeader)
	if len(opts.Columns) > 0 && header != nil {
		if idx, ok := headerIndex(header, columns); ok {
			align = byIndex(idx)
		}
	}

	next := func() ([]any, error) {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, csvError(path, err)
		}
		vals, err := align(rec)
		if err != nil {
			if len(rec) > 0 {
				line, _ := r.FieldPos(0)
				return nil, fmt.Errorf("%s line %d: %w", path, line, err)
			}
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return vals, nil
	}

	return l.bulkInsert(ctx, verbInsert, table, columns, l.batchSizeFor(opts.BatchSize), next)
}

// newCSVReader returns a csv.Reader over r with a leading UTF-8 BOM removed
// and variable field counts allowed.
func newCSVReader(r io.Reader) (*csv.Reader, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	return cr, nil
}

// csvError wraps a CSV syntax error as a validation error and anything else
// as a storage error.
func csvError(path string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return fmt.Errorf("%w: parsing %s: %w", types.ErrValidation, path, err)
	}
	return types.StorageError("read "+path, err)
}

// aligner converts one CSV record into a tuple in column order.
type aligner func(rec []string) ([]any, error)

// positional maps cell i to column i. In lenient mode short records are
// padded with NULL and surplus cells dropped; otherwise the cell count must
// match exactly.
func positional(width int, lenient bool) aligner {
	return func(rec []string) ([]any, error) {
		if !lenient && len(rec) != width {
			return nil, fmt.Errorf("%w: got %d values for %d columns", types.ErrRowArity, len(rec), width)
		}
		vals := make([]any, width)
		for i := range vals {
			if i < len(rec) {
				vals[i] = rec[i]
			}
		}
		return vals, nil
	}
}

// byIndex picks cells by precomputed header positions. Cells past the end
// of a short record are NULL.
func byIndex(idx []int) aligner {
	return func(rec []string) ([]any, error) {
		vals := make([]any, len(idx))
		for i, j := range idx {
			if j < len(rec) {
				vals[i] = rec[j]
			}
		}
		return vals, nil
	}
}

// headerIndex locates each column in header. ok is false if any column is
// missing.
func headerIndex(header, columns []string) (idx []int, ok bool) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	idx = make([]int, len(columns))
	for i, c := range columns {
		j, found := pos[c]
		if !found {
			return nil, false
		}
		idx[i] = j
	}
	return idx, true
}
