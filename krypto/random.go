package krypto

import (
	"crypto/rand"
	"fmt"
)

// NewSalt returns n cryptographically secure random bytes, suitable for use
// as a PBKDF2 salt.
func NewSalt(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("krypto: generate salt: %w", err)
	}
	return b, nil
}

// NewIV returns a fresh random AES-CBC initialization vector.
func NewIV() ([]byte, error) {
	iv := make([]byte, blockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("krypto: generate iv: %w", err)
	}
	return iv, nil
}

// Zero overwrites b with zero bytes in place, used to scrub secrets from
// memory as soon as they're no longer needed.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
