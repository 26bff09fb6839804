// Package auth implements the credential store: bcrypt password hashing and
// a JSONL file holding one UserRecord per line.
package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

// Store implements types.CredentialStore over a JSONL file. Username
// uniqueness is checked before each append; two processes registering the
// same name at once can both succeed.
type Store struct {
	path   string
	cost   int
	logger *slog.Logger
	now    func() time.Time
}

var _ types.CredentialStore = (*Store)(nil)

// NewStore validates config and returns a Store. The file is not touched
// until the first registration.
func NewStore(config types.StoreConfig) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Store{
		path:   config.Path,
		cost:   config.GetBcryptCost(),
		logger: config.GetLogger(),
		now:    time.Now,
	}, nil
}

// Path returns the credential file location.
func (s *Store) Path() string {
	return s.path
}

// UserExists reports whether username has a record. A missing file means
// no users.
func (s *Store) UserExists(username string) (bool, error) {
	records, _, err := readRecords(s.path)
	if err != nil {
		return false, types.StorageError("read users", err)
	}
	_, ok := findUser(records, username)
	return ok, nil
}

// RegisterUser appends a new record for username. The record is on disk
// before AuthSuccess is returned. A username or password that breaks the
// validation rules is rejected with a validation error before the file is
// touched; an existing username is reported before the password is checked.
func (s *Store) RegisterUser(username, password string) (types.AuthResult, error) {
	if err := types.ValidateUsername(username); err != nil {
		return 0, fmt.Errorf("%w: %q", err, username)
	}
	exists, err := s.UserExists(username)
	if err != nil {
		return 0, err
	}
	if exists {
		return types.AuthAlreadyExists, nil
	}
	if err := types.ValidatePassword(password); err != nil {
		return 0, err
	}

	hash, err := hashPasswordCost(password, s.cost)
	if err != nil {
		return 0, fmt.Errorf("%w: hashing password: %w", types.ErrValidation, err)
	}

	rec := s.newRecord(username, hash, types.RoleUser)
	if err := appendRecords(s.path, []types.UserRecord{rec}); err != nil {
		return 0, types.StorageError("append user", err)
	}

	s.logger.Debug("user registered", "username", username, "user_id", rec.UserID)
	return types.AuthSuccess, nil
}

// LoginUser checks password against the stored hash for username.
func (s *Store) LoginUser(username, password string) (types.AuthResult, error) {
	records, _, err := readRecords(s.path)
	if err != nil {
		return 0, types.StorageError("read users", err)
	}
	if len(records) == 0 {
		return types.AuthNoUsersYet, nil
	}

	rec, ok := findUser(records, username)
	if !ok {
		return types.AuthUserNotFound, nil
	}
	if !VerifyPassword(password, rec.PasswordHash) {
		s.logger.Debug("login rejected", "username", username)
		return types.AuthInvalidPassword, nil
	}
	return types.AuthSuccess, nil
}

// Users returns every record in file order.
func (s *Store) Users() ([]types.UserRecord, error) {
	records, _, err := readRecords(s.path)
	if err != nil {
		return nil, types.StorageError("read users", err)
	}
	return records, nil
}

// ImportLegacy reads comma-delimited lines of the form username,hash or
// username,hash,role and appends a record for each username not already
// present. Blank lines are ignored; lines with any other field count or an
// invalid username are skipped.
// The hash is stored as given.
func (s *Store) ImportLegacy(r io.Reader) (imported, skipped int, err error) {
	records, _, err := readRecords(s.path)
	if err != nil {
		return 0, 0, types.StorageError("read users", err)
	}
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		seen[rec.Username] = true
	}

	var batch []types.UserRecord
	br := bufio.NewReader(r)
	for {
		raw, rerr := readLine(br)
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return 0, 0, types.StorageError("read legacy users", rerr)
		}
		if line := strings.TrimSpace(string(raw)); line != "" {
			if rec, ok := s.legacyRecord(line, seen); ok {
				seen[rec.Username] = true
				batch = append(batch, rec)
			} else {
				skipped++
			}
		}
		if rerr != nil {
			break
		}
	}

	if err := appendRecords(s.path, batch); err != nil {
		return 0, 0, types.StorageError("append users", err)
	}
	s.logger.Debug("legacy users imported", "imported", len(batch), "skipped", skipped)
	return len(batch), skipped, nil
}

// legacyRecord parses one users.txt line. ok is false for a wrong field
// count, an empty hash, an invalid username, or a username in seen.
func (s *Store) legacyRecord(line string, seen map[string]bool) (types.UserRecord, bool) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return types.UserRecord{}, false
	}
	username, hash := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	role := types.RoleUser
	if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
		role = strings.TrimSpace(parts[2])
	}
	if hash == "" || seen[username] || types.ValidateUsername(username) != nil {
		return types.UserRecord{}, false
	}
	return s.newRecord(username, hash, role), true
}

func (s *Store) newRecord(username, hash, role string) types.UserRecord {
	return types.UserRecord{
		UserID:       generateUUID(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}
}

// findUser returns the first record for username.
func findUser(records []types.UserRecord, username string) (types.UserRecord, bool) {
	for _, rec := range records {
		if rec.Username == username {
			return rec, true
		}
	}
	return types.UserRecord{}, false
}

// generateUUID generates a new UUID v7 for user IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
