// Package auth provides the credential hasher and the token service that
// the access-control gate and the user service depend on.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"appdird/internal/directory"
)

// Hasher produces and verifies salted bcrypt digests. It holds no mutable
// state and is safe for concurrent use.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the bcrypt default cost.
func NewHasher() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// Hash returns a one-way salted digest of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing credential: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Comparison runs in
// constant time inside bcrypt; a malformed digest verifies false rather
// than raising an error.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// Compile-time check that Hasher implements the CredentialHasher interface
var _ directory.CredentialHasher = (*Hasher)(nil)
