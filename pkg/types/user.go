package types

import (
	"io"
	"time"
	"unicode"
)

// Role values for UserRecord.Role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserRecord is one entry in the credential file. Records are appended on
// registration and never rewritten.
type UserRecord struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthResult reports the outcome of a register or login attempt. Expected
// outcomes are results, not errors; errors are reserved for I/O faults.
type AuthResult int

const (
	AuthSuccess AuthResult = iota
	AuthAlreadyExists
	AuthUserNotFound
	AuthInvalidPassword
	AuthNoUsersYet
)

func (r AuthResult) String() string {
	switch r {
	case AuthSuccess:
		return "success"
	case AuthAlreadyExists:
		return "already exists"
	case AuthUserNotFound:
		return "user not found"
	case AuthInvalidPassword:
		return "invalid password"
	case AuthNoUsersYet:
		return "no users registered yet"
	default:
		return "unknown"
	}
}

// CredentialStore holds the username to password hash mapping used to gate
// access.
type CredentialStore interface {
	// UserExists reports whether username has a record. A store that has
	// never been written to has no users.
	UserExists(username string) (bool, error)

	// RegisterUser hashes password and appends a record for username.
	// Returns AuthAlreadyExists if the username is taken.
	RegisterUser(username, password string) (AuthResult, error)

	// LoginUser checks password against the stored hash for username.
	LoginUser(username, password string) (AuthResult, error)

	// Users returns every record in file order.
	Users() ([]UserRecord, error)

	// ImportLegacy appends records from a comma-delimited users.txt stream
	// (username,hash[,role]), skipping usernames that already exist.
	ImportLegacy(r io.Reader) (imported, skipped int, err error)
}

// Username and password length limits enforced by ValidateUsername and
// ValidatePassword.
const (
	UsernameMinLen = 3
	UsernameMaxLen = 20
	PasswordMinLen = 6
	PasswordMaxLen = 50
)

// ValidateUsername checks that username is 3-20 letters or digits.
func ValidateUsername(username string) error {
	n := len([]rune(username))
	if n < UsernameMinLen || n > UsernameMaxLen {
		return ErrInvalidUsername
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ErrInvalidUsername
		}
	}
	return nil
}

// ValidatePassword checks that password is 6-50 characters long.
func ValidatePassword(password string) error {
	n := len([]rune(password))
	if n < PasswordMinLen || n > PasswordMaxLen {
		return ErrInvalidPassword
	}
	return nil
}
