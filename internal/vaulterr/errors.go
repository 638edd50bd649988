// Package vaulterr defines the sentinel error kinds the vault surfaces to
// callers, usable with errors.Is/errors.As.
package vaulterr

import "errors"

var (
	// ErrWrongMasterPassword is returned when unlocking a vault with an
	// incorrect master password. The key generation key block unwraps to
	// garbage without error; the records blob decrypted under it then fails
	// to decompress.
	ErrWrongMasterPassword = errors.New("vaulterr: wrong master password")

	// ErrInvalidLength is returned when a fixed-size field (salt, IV, key
	// generation key block) doesn't have its required length.
	ErrInvalidLength = errors.New("vaulterr: invalid length")

	// ErrTypeMismatch is returned when a value's dynamic type doesn't match
	// what an operation requires (e.g. a record field expected as bytes).
	ErrTypeMismatch = errors.New("vaulterr: type mismatch")

	// ErrInvalidFormat is returned when stored data can't be parsed as the
	// format it claims to be (malformed JSON, corrupt blob).
	ErrInvalidFormat = errors.New("vaulterr: invalid format")

	// ErrMissingPreference is returned when the key manager is asked to wrap
	// the key generation key block before its wrapping key, inner salt/IV,
	// or key generation key have been set.
	ErrMissingPreference = errors.New("vaulterr: missing preference")

	// ErrShortPayload is returned when the records blob declares more
	// records than its JSON payload actually contains.
	ErrShortPayload = errors.New("vaulterr: short payload")
)
