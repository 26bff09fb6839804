package types

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"alphanumeric", "alice42", false},
		{"minimum length", "bob", false},
		{"maximum length", strings.Repeat("a", 20), false},
		{"too short", "al", true},
		{"too long", strings.Repeat("a", 21), true},
		{"contains space", "al ice", true},
		{"contains comma", "al,ice", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidUsername)
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret"))
	assert.NoError(t, ValidatePassword(strings.Repeat("x", 50)))
	assert.ErrorIs(t, ValidatePassword("short"), ErrInvalidPassword)
	assert.ErrorIs(t, ValidatePassword(strings.Repeat("x", 51)), ErrInvalidPassword)
}

func TestAuthResultString(t *testing.T) {
	assert.Equal(t, "success", AuthSuccess.String())
	assert.Equal(t, "already exists", AuthAlreadyExists.String())
	assert.Equal(t, "user not found", AuthUserNotFound.String())
	assert.Equal(t, "invalid password", AuthInvalidPassword.String())
	assert.Equal(t, "no users registered yet", AuthNoUsersYet.String())
	assert.Equal(t, "unknown", AuthResult(99).String())
}

func TestStorageError(t *testing.T) {
	assert.NoError(t, StorageError("exec", nil))

	cause := errors.New("disk full")
	err := StorageError("exec", cause)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "exec")
}

func TestValidateIdentifier(t *testing.T) {
	for _, ok := range []string{"users", "First Name", "main.users", "_id"} {
		assert.NoError(t, ValidateIdentifier(ok), ok)
	}
	for _, bad := range []string{"", "   ", `a"b`, "a\nb", "a\x00b"} {
		assert.ErrorIs(t, ValidateIdentifier(bad), ErrInvalidIdentifier, bad)
	}
}
