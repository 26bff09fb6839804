package sqlite

import (
	"context"
	"io"
	"time"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

// UsersTable is the relational home of migrated credential records.
const UsersTable = "users"

const createUsers = `CREATE TABLE IF NOT EXISTS users (
    username TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL,
    user_id TEXT,
    created_at TEXT
);`

var usersColumns = []string{"username", "password_hash", "role", "user_id", "created_at"}

// EnsureUsersTable creates the users table if it does not exist.
func (l *Loader) EnsureUsersTable(ctx context.Context) error {
	_, err := l.RunStatement(ctx, createUsers, nil, false)
	return err
}

// UpsertUsers copies credential records into the users table. Usernames
// already present are left unchanged. It returns the number of rows added.
func (l *Loader) UpsertUsers(ctx context.Context, records []types.UserRecord) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(records) == 0 {
		return 0, nil
	}

	i := 0
	next := func() ([]any, error) {
		if i >= len(records) {
			return nil, io.EOF
		}
		rec := records[i]
		i++
		role := rec.Role
		if role == "" {
			role = types.RoleUser
		}
		var createdAt any
		if !rec.CreatedAt.IsZero() {
			createdAt = rec.CreatedAt.UTC().Format(time.RFC3339)
		}
		return []any{rec.Username, rec.PasswordHash, role, rec.UserID, createdAt}, nil
	}

	stats, err := l.bulkInsert(ctx, verbInsertOrIgnore, UsersTable, usersColumns, l.config.GetBatchSize(), next)
	return stats.rows, err
}
