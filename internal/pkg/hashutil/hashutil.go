package hashutil

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is bcrypt's input limit. Longer passwords are truncated
// before hashing and before comparison, so inputs sharing the first 72 bytes
// are indistinguishable.
const MaxPasswordBytes = 72

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

// Truncated reports whether Hash will drop bytes from password.
func Truncated(password string) bool {
	return len(password) > MaxPasswordBytes
}

func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncate(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password failed: %w", err)
	}
	return string(hash), nil
}

// Verify never fails loudly: a malformed hash is simply a mismatch.
func Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(plain)) == nil
}
