// Package keymanager implements unwrap/wrap/rewrap of the key generation
// key (KGK), the 64-byte root secret that both the records cipher and the
// per-domain password deriver are built on.
package keymanager

import (
	"crypto/rand"
	"fmt"

	"github.com/arelius-labs/passvault/internal/vaulterr"
	"github.com/arelius-labs/passvault/krypto"
)

const (
	innerSaltLen = 32
	innerIVLen   = 16
	kgkLen       = 64
	blockLen     = innerSaltLen + innerIVLen + kgkLen // 112, no padding needed
)

// Manager holds the unwrapped state of a vault's key generation key: the
// KGK itself, the inner salt/IV the records cipher derives its data key
// from, and the wrapping key/IV derived from the master password that
// re-seals the block on save.
type Manager struct {
	wrapKey []byte
	wrapIV  []byte

	KGK       []byte
	InnerSalt []byte
	InnerIV   []byte
}

// Unlock derives the wrapping key/IV from masterPassword and outerSalt,
// then unwraps wrappedBlock. If wrappedBlock is not exactly 112 bytes the
// vault is treated as uninitialized: a fresh KGK and inner salt/IV are
// generated instead of unwrapping anything. Unlock never itself reports a
// wrong master password — a wrong password produces a KGK that decrypts
// the records blob to garbage, which is detected downstream when that blob
// fails to decompress.
func Unlock(masterPassword, outerSalt, wrappedBlock []byte, iterations int) (*Manager, error) {
	wrapKey, wrapIV, err := krypto.DeriveWrappingKeyAndIV(masterPassword, outerSalt, iterations)
	if err != nil {
		return nil, fmt.Errorf("keymanager: derive wrapping key: %w", err)
	}

	m := &Manager{wrapKey: wrapKey, wrapIV: wrapIV}

	if len(wrappedBlock) != blockLen {
		if err := m.generateNewKGK(); err != nil {
			return nil, err
		}
		return m, nil
	}

	plain, err := krypto.DecryptCBCUnpadded(wrapKey, wrapIV, wrappedBlock)
	if err != nil {
		return nil, fmt.Errorf("keymanager: unwrap block: %w", err)
	}
	m.InnerSalt = plain[:innerSaltLen]
	m.InnerIV = plain[innerSaltLen : innerSaltLen+innerIVLen]
	m.KGK = plain[innerSaltLen+innerIVLen:]
	return m, nil
}

func (m *Manager) generateNewKGK() error {
	kgk := make([]byte, kgkLen)
	if _, err := rand.Read(kgk); err != nil {
		return fmt.Errorf("keymanager: generate kgk: %w", err)
	}
	m.KGK = kgk
	return m.RotateInner()
}

// RotateInner replaces InnerSalt and InnerIV with freshly sampled random
// bytes. The KGK itself is left untouched.
func (m *Manager) RotateInner() error {
	salt, err := krypto.NewSalt(innerSaltLen)
	if err != nil {
		return fmt.Errorf("keymanager: rotate inner salt: %w", err)
	}
	iv, err := krypto.NewIV()
	if err != nil {
		return fmt.Errorf("keymanager: rotate inner iv: %w", err)
	}
	m.InnerSalt = salt
	m.InnerIV = iv
	return nil
}

// Wrap produces the 112-byte wrapped block for the manager's current
// InnerSalt/InnerIV/KGK under its wrapping key.
func (m *Manager) Wrap() ([]byte, error) {
	if len(m.wrapKey) == 0 {
		return nil, fmt.Errorf("%w: no wrapping key set", vaulterr.ErrMissingPreference)
	}
	if len(m.InnerSalt) != innerSaltLen || len(m.InnerIV) != innerIVLen || len(m.KGK) != kgkLen {
		return nil, fmt.Errorf("%w: inner salt/iv/kgk not initialized", vaulterr.ErrMissingPreference)
	}
	plain := make([]byte, 0, blockLen)
	plain = append(plain, m.InnerSalt...)
	plain = append(plain, m.InnerIV...)
	plain = append(plain, m.KGK...)
	block, err := krypto.EncryptCBCUnpadded(m.wrapKey, m.wrapIV, plain)
	if err != nil {
		return nil, fmt.Errorf("keymanager: wrap block: %w", err)
	}
	return block, nil
}

// RewrapWithNewInner rotates InnerSalt/InnerIV and returns the freshly
// wrapped block, so the next data-key derivation uses new parameters. It is
// the same as calling RotateInner followed by Wrap.
func (m *Manager) RewrapWithNewInner() ([]byte, error) {
	if err := m.RotateInner(); err != nil {
		return nil, err
	}
	return m.Wrap()
}

// DataCodecParams returns the key/IV the records cipher should use, derived
// from the current KGK and inner salt.
func (m *Manager) DataCodecParams(iterations int) (key, iv []byte, err error) {
	key, err = krypto.DeriveDataKey(m.KGK, m.InnerSalt, iterations)
	if err != nil {
		return nil, nil, fmt.Errorf("keymanager: derive data key: %w", err)
	}
	return key, m.InnerIV, nil
}

// Rewrap replaces the wrapping key/IV with ones derived from a new master
// password and outer salt, without touching the KGK or inner salt/IV. The
// caller is responsible for persisting the new outer salt and calling Wrap
// (or RewrapWithNewInner) to obtain the block to store alongside it.
func (m *Manager) Rewrap(newMasterPassword, newOuterSalt []byte, iterations int) error {
	wrapKey, wrapIV, err := krypto.DeriveWrappingKeyAndIV(newMasterPassword, newOuterSalt, iterations)
	if err != nil {
		return fmt.Errorf("keymanager: derive new wrapping key: %w", err)
	}
	m.wrapKey = wrapKey
	m.wrapIV = wrapIV
	return nil
}

// Reset clears all key material, used when locking the vault.
func (m *Manager) Reset() {
	krypto.Zero(m.wrapKey)
	krypto.Zero(m.wrapIV)
	krypto.Zero(m.KGK)
	krypto.Zero(m.InnerSalt)
	krypto.Zero(m.InnerIV)
	m.wrapKey, m.wrapIV, m.KGK, m.InnerSalt, m.InnerIV = nil, nil, nil, nil, nil
}
