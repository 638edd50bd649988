// Package krypto provides the low-level symmetric primitives the vault
// format is built on: PBKDF2 key derivation and AES-CBC encryption.
package krypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/pbkdf2"
)

// Key size constants fixed by the on-disk vault format.
const (
	SaltLen = 32
	IVLen   = 16

	WrappingKeyLen = 32
	DataKeyLen     = 32

	// WrappingIterations is the PBKDF2-HMAC-SHA384 iteration count used to
	// derive the master wrapping key and its IV from the master password.
	WrappingIterations = 32768

	// DataKeyIterations is the default PBKDF2-HMAC-SHA256 iteration count
	// used to derive the data key from the key generation key.
	DataKeyIterations = 1024
)

// DeriveWrappingKeyAndIV derives the 32-byte wrapping key and 16-byte IV
// used to wrap/unwrap the key generation key block, via
// PBKDF2-HMAC-SHA384 over the master password.
func DeriveWrappingKeyAndIV(password []byte, salt []byte, iterations int) (key, iv []byte, err error) {
	if len(salt) == 0 {
		return nil, nil, errors.New("krypto: salt is required")
	}
	if iterations <= 0 {
		iterations = WrappingIterations
	}
	material := pbkdf2.Key(password, salt, iterations, WrappingKeyLen+IVLen, newSHA384)
	return material[:WrappingKeyLen], material[WrappingKeyLen:], nil
}

// DeriveDataKey derives the 32-byte AES key used to encrypt the records
// blob, via PBKDF2-HMAC-SHA256 over the key generation key.
func DeriveDataKey(kgk []byte, salt []byte, iterations int) ([]byte, error) {
	if len(kgk) == 0 {
		return nil, errors.New("krypto: key generation key is required")
	}
	if len(salt) == 0 {
		return nil, errors.New("krypto: salt is required")
	}
	if iterations <= 0 {
		iterations = DataKeyIterations
	}
	return pbkdf2.Key(kgk, salt, iterations, DataKeyLen, sha256.New), nil
}

// DeriveBytes runs PBKDF2-HMAC-SHA512 over seed/salt and returns keyLen
// pseudorandom bytes. Used by the deterministic password deriver, which
// treats the output as a single big-endian integer.
func DeriveBytes(seed []byte, salt []byte, iterations, keyLen int) ([]byte, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("krypto: seed is required")
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("krypto: salt is required")
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("krypto: iterations must be positive")
	}
	return pbkdf2.Key(seed, salt, iterations, keyLen, sha512.New), nil
}

func newSHA384() hash.Hash { return sha512.New384() }
