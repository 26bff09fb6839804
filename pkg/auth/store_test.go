package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

func TestNewStore(t *testing.T) {
	_, err := NewStore(types.StoreConfig{})
	assert.ErrorIs(t, err, types.ErrUsersFileEmpty)

	s, err := NewStore(types.StoreConfig{
		Path:       filepath.Join(t.TempDir(), "users.jsonl"),
		BcryptCost: types.MinBcryptCost,
	})
	require.NoError(t, err)

	res, err := s.RegisterUser("alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, types.AuthSuccess, res)

	res, err = s.LoginUser("alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, types.AuthSuccess, res)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, VerifyPassword("secret1", hash))
	assert.False(t, VerifyPassword("secret2", hash))
}
