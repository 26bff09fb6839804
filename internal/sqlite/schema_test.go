package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

func TestUpsertUsers(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLoader(t)
	require.NoError(t, l.EnsureUsersTable(ctx))
	require.NoError(t, l.EnsureUsersTable(ctx), "table creation is idempotent")

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	records := []types.UserRecord{
		{UserID: "u-1", Username: "alice", PasswordHash: "$2a$04$a", Role: types.RoleAdmin, CreatedAt: created},
		{UserID: "u-2", Username: "bob", PasswordHash: "$2a$04$b"},
	}

	n, err := l.UpsertUsers(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	records[0].PasswordHash = "$2a$04$changed"
	n, err = l.UpsertUsers(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "existing usernames are ignored")

	rows, err := l.Query(ctx, "SELECT username, password_hash, role, user_id, created_at FROM users ORDER BY username")
	require.NoError(t, err)
	assert.Equal(t, []types.Row{
		{"username": "alice", "password_hash": "$2a$04$a", "role": "admin", "user_id": "u-1", "created_at": "2026-01-02T03:04:05Z"},
		{"username": "bob", "password_hash": "$2a$04$b", "role": "user", "user_id": "u-2", "created_at": nil},
	}, rows)

	n, err = l.UpsertUsers(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
