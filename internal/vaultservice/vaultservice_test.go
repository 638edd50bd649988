package vaultservice

import (
	"path/filepath"
	"testing"

	"github.com/arelius-labs/passvault/internal/logging"
	"github.com/arelius-labs/passvault/internal/record"
	"github.com/arelius-labs/passvault/internal/vaulterr"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, vaultPath string) *Service {
	t.Helper()
	svc, err := New(Options{
		VaultPath:  vaultPath,
		Iterations: record.DefaultIterations,
		Logger:     logging.NewDiscard(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, svc.Close()) })
	return svc
}

// TestUnlockPopulateSaveReloadRoundTrip mirrors the round-trip scenario:
// populate several records, save, discard all in-memory state, unlock the
// same file with the same password, and confirm the same records come back.
func TestUnlockPopulateSaveReloadRoundTrip(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "vault.bin")

	svc := newTestService(t, vaultPath)
	require.NoError(t, svc.Unlock("correct horse battery staple"))

	domains := []string{"alpha.example", "beta.example", "gamma.example"}
	for _, d := range domains {
		rec, err := svc.GetOrCreate(d)
		require.NoError(t, err)
		require.NoError(t, svc.Put(rec))
	}
	require.NoError(t, svc.Save())
	svc.Lock()

	require.NoError(t, svc.Unlock("correct horse battery staple"))
	got, err := svc.Domains()
	require.NoError(t, err)
	require.ElementsMatch(t, domains, got)

	for _, d := range domains {
		rec, ok, err := svc.Get(d)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, d, rec.Domain)
	}
}

// TestUnlockWrongPasswordFailsToDecompress mirrors the wrong-password
// scenario: a vault saved under one password must not unlock under another.
func TestUnlockWrongPasswordFailsToDecompress(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "vault.bin")

	svc := newTestService(t, vaultPath)
	require.NoError(t, svc.Unlock("password-A"))
	rec, err := svc.GetOrCreate("example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Put(rec))
	require.NoError(t, svc.Save())
	svc.Lock()

	err = svc.Unlock("password-B")
	require.ErrorIs(t, err, vaulterr.ErrWrongMasterPassword)
}

// TestChangeMasterPasswordThenUnlockWithNewPassword confirms the vault is
// readable under the new password (and not the old one) after a master
// password change.
func TestChangeMasterPasswordThenUnlockWithNewPassword(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "vault.bin")

	svc := newTestService(t, vaultPath)
	require.NoError(t, svc.Unlock("old-password"))
	rec, err := svc.GetOrCreate("example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Put(rec))
	require.NoError(t, svc.Save())
	require.NoError(t, svc.ChangeMasterPassword("new-password"))
	svc.Lock()

	require.ErrorIs(t, svc.Unlock("old-password"), vaulterr.ErrWrongMasterPassword)
	svc.Lock()

	require.NoError(t, svc.Unlock("new-password"))
	_, ok, err := svc.Get("example.com")
	require.NoError(t, err)
	require.True(t, ok)
}

// TestRevealReturnsFixedPasswordWhenSet confirms a fixed password takes
// precedence over the derived one.
func TestRevealReturnsFixedPasswordWhenSet(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "vault.bin")

	svc := newTestService(t, vaultPath)
	require.NoError(t, svc.Unlock("hunter2"))
	rec, err := svc.GetOrCreate("example.com")
	require.NoError(t, err)
	rec.FixedPassword = "my-fixed-password"
	require.NoError(t, svc.Put(rec))

	got, err := svc.Reveal("example.com")
	require.NoError(t, err)
	require.Equal(t, "my-fixed-password", got)
}

// TestFreshVaultHasNoDomains confirms a brand-new vault file unlocks to an
// empty record set instead of failing, since its records blob is far
// shorter than the minimum meaningful length.
func TestFreshVaultHasNoDomains(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "vault.bin")

	svc := newTestService(t, vaultPath)
	require.NoError(t, svc.Unlock("hunter2"))
	domains, err := svc.Domains()
	require.NoError(t, err)
	require.Empty(t, domains)
}
