// Package vaultservice ties the vault file, key manager, and record store
// together into the operations a CLI or other frontend drives: unlock,
// list/get/put/delete domains, reveal a password, and save.
package vaultservice

import (
	"fmt"
	"log/slog"

	"github.com/arelius-labs/passvault/internal/audit"
	"github.com/arelius-labs/passvault/internal/derive"
	"github.com/arelius-labs/passvault/internal/keymanager"
	"github.com/arelius-labs/passvault/internal/record"
	"github.com/arelius-labs/passvault/internal/recordstore"
	"github.com/arelius-labs/passvault/internal/vaultfile"
	"github.com/arelius-labs/passvault/krypto"
)

// minEncryptedLen mirrors the reference implementation's bootstrap check:
// an encrypted records blob shorter than this is treated as "no records
// yet" rather than attempted decryption.
const minEncryptedLen = 40

// Service is the top-level handle a CLI builds once per vault file.
type Service struct {
	file  *vaultfile.File
	store *recordstore.Store
	audit *audit.Log
	log   *slog.Logger

	iterations int
	outerSalt  []byte
	km         *keymanager.Manager
}

// Options configures a new Service.
type Options struct {
	VaultPath  string
	AuditPath  string // empty disables the audit log
	Iterations int    // default iteration count for newly created records
	Logger     *slog.Logger
}

// New opens (without unlocking) the vault at opts.VaultPath.
func New(opts Options) (*Service, error) {
	if opts.VaultPath == "" {
		return nil, fmt.Errorf("vaultservice: vault path is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = record.DefaultIterations
	}

	var auditLog *audit.Log
	if opts.AuditPath != "" {
		l, err := audit.Open(opts.AuditPath)
		if err != nil {
			logger.Warn("audit log unavailable, continuing without it", "error", err)
		} else {
			auditLog = l
		}
	}

	return &Service{
		file:       vaultfile.Open(opts.VaultPath),
		store:      recordstore.New(),
		audit:      auditLog,
		log:        logger,
		iterations: iterations,
	}, nil
}

// Close releases the audit log and clears key material.
func (s *Service) Close() error {
	s.Lock()
	if s.audit != nil {
		return s.audit.Close()
	}
	return nil
}

func (s *Service) recordAudit(operation, domain string, err error) {
	if s.audit == nil {
		return
	}
	if aerr := s.audit.Record(operation, domain, err == nil); aerr != nil {
		s.log.Warn("audit log write failed", "operation", operation, "error", aerr)
	}
}

// IsUnlocked reports whether Unlock has succeeded and Lock hasn't been
// called since.
func (s *Service) IsUnlocked() bool {
	return s.km != nil
}

func (s *Service) requireUnlocked() error {
	if !s.IsUnlocked() {
		return fmt.Errorf("vaultservice: vault is locked")
	}
	return nil
}

// Unlock derives the vault's key generation key from masterPassword and
// loads the records blob into memory. A wrong master password is not
// reported directly here — it surfaces as a failure to decompress the
// records blob, wrapped in vaulterr.ErrWrongMasterPassword.
func (s *Service) Unlock(masterPassword string) (err error) {
	defer func() { s.recordAudit("unlock", "", err) }()

	salt, err := s.file.Salt()
	if err != nil {
		return fmt.Errorf("vaultservice: read outer salt: %w", err)
	}
	if len(salt) != krypto.SaltLen {
		salt, err = krypto.NewSalt(krypto.SaltLen)
		if err != nil {
			return fmt.Errorf("vaultservice: generate outer salt: %w", err)
		}
		if err := s.file.StoreSalt(salt); err != nil {
			return fmt.Errorf("vaultservice: store outer salt: %w", err)
		}
	}

	wrappedBlock, err := s.file.KGKBlock()
	if err != nil {
		return fmt.Errorf("vaultservice: read wrapped key block: %w", err)
	}

	km, err := keymanager.Unlock([]byte(masterPassword), salt, wrappedBlock, krypto.WrappingIterations)
	if err != nil {
		return fmt.Errorf("vaultservice: unwrap key generation key: %w", err)
	}

	encryptedBlob, err := s.file.RecordsBlob()
	if err != nil {
		return fmt.Errorf("vaultservice: read records blob: %w", err)
	}

	store := recordstore.New()
	if len(encryptedBlob) >= minEncryptedLen {
		dataKey, dataIV, err := km.DataCodecParams(krypto.DataKeyIterations)
		if err != nil {
			return fmt.Errorf("vaultservice: derive data key: %w", err)
		}
		plaintext, err := krypto.DecryptCBC(dataKey, dataIV, encryptedBlob)
		if err != nil {
			return fmt.Errorf("vaultservice: decrypt records blob: %w", err)
		}
		if err := store.LoadBlob(plaintext); err != nil {
			return fmt.Errorf("vaultservice: load records: %w", err)
		}
	}

	s.outerSalt = salt
	s.km = km
	s.store = store
	return nil
}

// Lock discards in-memory key material and loaded records.
func (s *Service) Lock() {
	if s.km != nil {
		s.km.Reset()
	}
	s.km = nil
	s.store = recordstore.New()
	krypto.Zero(s.outerSalt)
	s.outerSalt = nil
}

// Domains lists the stored domain names.
func (s *Service) Domains() ([]string, error) {
	if err := s.requireUnlocked(); err != nil {
		return nil, err
	}
	return s.store.Domains(), nil
}

// SuggestDomain offers the closest stored domain name for query, when
// query isn't itself an exact match.
func (s *Service) SuggestDomain(query string) (string, bool, error) {
	if err := s.requireUnlocked(); err != nil {
		return "", false, err
	}
	domain, ok := s.store.SuggestDomain(query)
	return domain, ok, nil
}

// Get returns the stored record for domain.
func (s *Service) Get(domain string) (*record.Record, bool, error) {
	if err := s.requireUnlocked(); err != nil {
		return nil, false, err
	}
	r, ok := s.store.Get(domain)
	return r, ok, nil
}

// GetOrCreate returns the record for domain, creating a default one if
// none exists yet.
func (s *Service) GetOrCreate(domain string) (*record.Record, error) {
	if err := s.requireUnlocked(); err != nil {
		return nil, err
	}
	if r, ok := s.store.Get(domain); ok {
		return r, nil
	}
	r, err := record.New(domain)
	if err != nil {
		return nil, err
	}
	r.Iterations = s.iterations
	s.store.Put(r)
	return r, nil
}

// Put stores rec, stamping its modification date.
func (s *Service) Put(rec *record.Record) (err error) {
	defer func() { s.recordAudit("put", rec.Domain, err) }()
	if err = s.requireUnlocked(); err != nil {
		return err
	}
	rec.Touch()
	s.store.Put(rec)
	return nil
}

// Delete removes the record for domain.
func (s *Service) Delete(domain string) (err error) {
	defer func() { s.recordAudit("delete", domain, err) }()
	if err = s.requireUnlocked(); err != nil {
		return err
	}
	s.store.Delete(domain)
	return nil
}

// Reveal returns the password for domain: the fixed password if one is
// set, otherwise a deterministically derived one.
func (s *Service) Reveal(domain string) (password string, err error) {
	defer func() { s.recordAudit("reveal", domain, err) }()
	if err = s.requireUnlocked(); err != nil {
		return "", err
	}
	rec, ok := s.store.Get(domain)
	if !ok {
		return "", fmt.Errorf("vaultservice: no record for domain %q", domain)
	}
	if rec.HasFixedPassword() {
		return rec.FixedPassword, nil
	}
	return derive.Password(domain, s.km.KGK, rec.Salt, rec.Iterations, rec)
}

// Save persists the in-memory records to the vault file: it rotates the
// inner salt/IV so the data key changes on every write, encrypts the
// records blob under that fresh key, writes it, then rewraps and writes
// the key generation key block — in that order, matching the on-disk
// format's write sequence.
func (s *Service) Save() (err error) {
	defer func() { s.recordAudit("save", "", err) }()
	if err = s.requireUnlocked(); err != nil {
		return err
	}

	plaintext, err := s.store.DumpBlob()
	if err != nil {
		return fmt.Errorf("vaultservice: encode records: %w", err)
	}

	if err := s.km.RotateInner(); err != nil {
		return fmt.Errorf("vaultservice: rotate inner salt/iv: %w", err)
	}
	dataKey, dataIV, err := s.km.DataCodecParams(krypto.DataKeyIterations)
	if err != nil {
		return fmt.Errorf("vaultservice: derive data key: %w", err)
	}
	ciphertext, err := krypto.EncryptCBC(dataKey, dataIV, plaintext)
	if err != nil {
		return fmt.Errorf("vaultservice: encrypt records: %w", err)
	}
	if err := s.file.StoreRecordsBlob(ciphertext); err != nil {
		return fmt.Errorf("vaultservice: write records blob: %w", err)
	}

	wrapped, err := s.km.Wrap()
	if err != nil {
		return fmt.Errorf("vaultservice: wrap key generation key: %w", err)
	}
	if err := s.file.StoreKGKBlock(wrapped); err != nil {
		return fmt.Errorf("vaultservice: write key generation key block: %w", err)
	}
	if err := s.file.StoreSalt(s.outerSalt); err != nil {
		return fmt.Errorf("vaultservice: write outer salt: %w", err)
	}
	return nil
}

// ChangeMasterPassword re-derives the wrapping key from newPassword under a
// freshly sampled outer salt, then saves so every on-disk region reflects
// the new password immediately.
func (s *Service) ChangeMasterPassword(newPassword string) (err error) {
	defer func() { s.recordAudit("change-master", "", err) }()
	if err = s.requireUnlocked(); err != nil {
		return err
	}
	newSalt, err := krypto.NewSalt(krypto.SaltLen)
	if err != nil {
		return fmt.Errorf("vaultservice: generate new outer salt: %w", err)
	}
	if err := s.km.Rewrap([]byte(newPassword), newSalt, krypto.WrappingIterations); err != nil {
		return fmt.Errorf("vaultservice: rewrap with new password: %w", err)
	}
	s.outerSalt = newSalt
	return s.Save()
}

// Stat reports the on-disk vault file size without requiring the vault to
// be unlocked.
func (s *Service) Stat() (int64, error) {
	return s.file.Size()
}

// History returns the n most recent audit log entries, newest first. It
// does not require the vault to be unlocked since the audit trail never
// holds secrets. It returns an error if no audit log is configured.
func (s *Service) History(n int) ([]audit.Entry, error) {
	if s.audit == nil {
		return nil, fmt.Errorf("vaultservice: audit log is not enabled")
	}
	return s.audit.Recent(n)
}
