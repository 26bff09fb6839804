package sqlite

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

// InsertFromJSON loads the JSON file at path into table and returns the
// number of rows inserted. The root must be an object (one row) or an array
// of objects. Without explicit columns the keys of the first object name the
// columns, in document order. Keys missing from later objects load as NULL
// and keys absent from the column list are ignored. An empty array loads
// nothing.
func (l *Loader) InsertFromJSON(ctx context.Context, table, path string, opts types.JSONOptions) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats, err := l.loadJSON(ctx, table, path, opts)
	return stats.rows, err
}

func (l *Loader) loadJSON(ctx context.Context, table, path string, opts types.JSONOptions) (loadStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return loadStats{}, openError(path, err)
	}
	if !gjson.ValidBytes(data) {
		return loadStats{}, fmt.Errorf("%w: parsing %s: malformed JSON", types.ErrValidation, path)
	}

	root := gjson.ParseBytes(data)
	var items []gjson.Result
	switch {
	case root.IsObject():
		items = []gjson.Result{root}
	case root.IsArray():
		items = root.Array()
	default:
		return loadStats{}, fmt.Errorf("%w: %s", types.ErrJSONRoot, path)
	}
	if len(items) == 0 {
		return loadStats{}, nil
	}

	columns := opts.Columns
	if len(columns) == 0 {
		if !items[0].IsObject() {
			return loadStats{}, fmt.Errorf("%w: %s element 0", types.ErrJSONElement, path)
		}
		columns = objectKeys(items[0])
	}
	if len(columns) == 0 {
		return loadStats{}, nil
	}

	i := 0
	next := func() ([]any, error) {
		if i >= len(items) {
			return nil, io.EOF
		}
		item := items[i]
		if !item.IsObject() {
			return nil, fmt.Errorf("%w: %s element %d", types.ErrJSONElement, path, i)
		}
		i++

		fields := make(map[string]gjson.Result, len(columns))
		item.ForEach(func(k, v gjson.Result) bool {
			fields[k.String()] = v
			return true
		})
		vals := make([]any, len(columns))
		for j, c := range columns {
			if v, ok := fields[c]; ok {
				vals[j] = jsonValue(v)
			}
		}
		return vals, nil
	}

	return l.bulkInsert(ctx, verbInsert, table, columns, l.batchSizeFor(opts.BatchSize), next)
}

// objectKeys returns the keys of obj in document order without duplicates.
func objectKeys(obj gjson.Result) []string {
	var keys []string
	seen := make(map[string]bool)
	obj.ForEach(func(k, _ gjson.Result) bool {
		key := k.String()
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
		return true
	})
	return keys
}

// jsonValue converts a JSON value to a driver argument. Integral numbers
// become int64, other numbers float64. Nested objects and arrays are stored
// as their JSON text.
func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.String:
		return v.Str
	case gjson.Number:
		if !strings.ContainsAny(v.Raw, ".eE") {
			if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
				return n
			}
		}
		return v.Num
	default:
		return v.Raw
	}
}
