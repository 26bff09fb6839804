package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

func TestInsertFromJSONMissingKeysAreNull(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLoader(t)
	mustExec(t, l, "CREATE TABLE t (id INTEGER, name TEXT)")
	path := writeFile(t, "in.json", `[{"id":1,"name":"a"},{"id":2}]`)

	n, err := l.InsertFromJSON(ctx, "t", path, types.JSONOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err := l.Query(ctx, "SELECT id, name FROM t ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, []types.Row{
		{"id": int64(1), "name": "a"},
		{"id": int64(2), "name": nil},
	}, rows)
}

func TestInsertFromJSONBareObject(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLoader(t)
	mustExec(t, l, "CREATE TABLE t (id INTEGER)")
	path := writeFile(t, "in.json", `{"id":1}`)

	n, err := l.InsertFromJSON(ctx, "t", path, types.JSONOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(1), countRows(t, l, "t"))
}

func TestInsertFromJSONColumnOrderFollowsDocument(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLoader(t)
	mustExec(t, l, "CREATE TABLE t (zeta TEXT, alpha TEXT, mid TEXT)")
	path := writeFile(t, "in.json", `[{"zeta":"z","alpha":"a","mid":"m"}]`)

	// A strict-arity insert would fail if columns were reordered and the
	// values were not; reading back by name checks the pairing.
	_, err := l.InsertFromJSON(ctx, "t", path, types.JSONOptions{})
	require.NoError(t, err)

	res, err := l.RunStatement(ctx, "SELECT * FROM t", nil, true)
	require.NoError(t, err)
	assert.Equal(t, []types.Row{{"zeta": "z", "alpha": "a", "mid": "m"}}, res.Rows)

	items := gjson.Parse(`{"zeta":1,"alpha":2,"zeta":3,"mid":4}`)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, objectKeys(items))
}

func TestInsertFromJSONValueTypes(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLoader(t)
	mustExec(t, l, "CREATE TABLE t (i, f, s, b, n, obj, arr)")
	path := writeFile(t, "in.json",
		`{"i":42,"f":2.5,"s":"text","b":true,"n":null,"obj":{"k":[1,2]},"arr":["x","y"]}`)

	_, err := l.InsertFromJSON(ctx, "t", path, types.JSONOptions{})
	require.NoError(t, err)

	rows, err := l.Query(ctx, "SELECT * FROM t")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.Row{
		"i":   int64(42),
		"f":   2.5,
		"s":   "text",
		"b":   int64(1),
		"n":   nil,
		"obj": `{"k":[1,2]}`,
		"arr": `["x","y"]`,
	}, rows[0])
}

func TestInsertFromJSONExplicitColumns(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLoader(t)
	mustExec(t, l, "CREATE TABLE t (id INTEGER, name TEXT)")
	path := writeFile(t, "in.json", `[{"extra":true,"name":"a","id":1},{"name":"b"}]`)

	n, err := l.InsertFromJSON(ctx, "t", path, types.JSONOptions{Columns: []string{"id", "name"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err := l.Query(ctx, "SELECT id, name FROM t ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []types.Row{
		{"id": int64(1), "name": "a"},
		{"id": nil, "name": "b"},
	}, rows)
}

func TestInsertFromJSONBatching(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLoader(t)
	mustExec(t, l, "CREATE TABLE t (id INTEGER)")
	path := writeFile(t, "in.json", `[{"id":1},{"id":2},{"id":3},{"id":4},{"id":5}]`)

	stats, err := l.loadJSON(ctx, "t", path, types.JSONOptions{BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.rows)
	assert.Equal(t, 3, stats.batches)
}

func TestInsertFromJSONEmpty(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLoader(t)

	for name, content := range map[string]string{
		"empty array":  `[]`,
		"empty object": `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, "in.json", content)
			n, err := l.InsertFromJSON(ctx, "missing", path, types.JSONOptions{})
			require.NoError(t, err)
			assert.Equal(t, int64(0), n)
		})
	}
}

func TestInsertFromJSONErrors(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLoader(t)
	mustExec(t, l, "CREATE TABLE t (id INTEGER PRIMARY KEY)")

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"scalar root", `42`, types.ErrJSONRoot},
		{"string root", `"text"`, types.ErrJSONRoot},
		{"null root", `null`, types.ErrJSONRoot},
		{"first element not an object", `[1, {"id":2}]`, types.ErrJSONElement},
		{"later element not an object", `[{"id":1}, {"id":2}, "x"]`, types.ErrJSONElement},
		{"malformed", `[{"id":1}`, types.ErrValidation},
		{"empty file", ``, types.ErrValidation},
		{"constraint violation", `[{"id":1},{"id":1}]`, types.ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "in.json", tt.content)
			_, err := l.InsertFromJSON(ctx, "t", path, types.JSONOptions{BatchSize: 1})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := l.InsertFromJSON(ctx, "t", "/nonexistent/in.json", types.JSONOptions{})
	assert.ErrorIs(t, err, types.ErrFileNotFound)

	assert.Equal(t, int64(0), countRows(t, l, "t"), "failed loads insert nothing")
}

func TestJSONValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{`0`, int64(0)},
		{`-17`, int64(-17)},
		{`1.0`, 1.0},
		{`1e3`, 1000.0},
		{`99999999999999999999`, 1e20},
		{`"s"`, "s"},
		{`"esc\"aped"`, `esc"aped`},
		{`true`, true},
		{`false`, false},
		{`null`, nil},
		{`[1, 2]`, `[1, 2]`},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, jsonValue(gjson.Parse(tt.raw)))
		})
	}
}
