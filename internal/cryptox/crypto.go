// Package cryptox implements password hashing for stored credentials.
// Passwords are never persisted in clear text: each user record carries a
// random salt, and only the Argon2id digest of (password, salt) is stored.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

const saltSize = 32

// NewSalt returns a fresh per-record salt.
func NewSalt() []byte {
	return common.GenerateRandByteArray(saltSize)
}

// HashPassword derives the stored digest for a password and salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// VerifyPassword recomputes the digest for a candidate password and compares
// it to the stored hash in constant time.
func VerifyPassword(candidate, salt, hash []byte) bool {
	return subtle.ConstantTimeCompare(HashPassword(candidate, salt), hash) == 1
}
