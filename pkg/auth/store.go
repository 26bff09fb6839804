// Package auth provides the public API for the credential store.
package auth

import (
	"github.com/mesh-intelligence/keeper/internal/auth"
	"github.com/mesh-intelligence/keeper/pkg/types"
)

// NewStore creates a credential store backed by the JSONL file named in
// config. The file is created on first registration.
func NewStore(config types.StoreConfig) (types.CredentialStore, error) {
	s, err := auth.NewStore(config)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// HashPassword derives a salted bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	return auth.HashPassword(plain)
}

// VerifyPassword reports whether plain matches hash.
func VerifyPassword(plain, hash string) bool {
	return auth.VerifyPassword(plain, hash)
}
