package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

// HashPassword derives a bcrypt hash of plain at the default cost. Each call
// draws a fresh salt, so hashing the same password twice gives different
// strings. The result embeds cost and salt and is safe to persist as-is.
func HashPassword(plain string) (string, error) {
	return hashPasswordCost(plain, types.DefaultBcryptCost)
}

func hashPasswordCost(plain string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plain matches hash. The salt and cost are
// read back from hash. A malformed hash never matches.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
