// Package vaultfile implements the fixed-offset single-file binary vault
// envelope: a 32-byte outer salt, a 112-byte wrapped key generation key
// block, and a records ciphertext blob, stored at byte offsets 0, 32, and
// 144 respectively. Writes seek to the relevant offset and overwrite in
// place — there is no atomic rename, matching the format this package is
// bit-compatible with.
package vaultfile

import (
	"fmt"
	"os"

	"github.com/arelius-labs/passvault/internal/vaulterr"
)

const (
	SaltOffset     = 0
	SaltLen        = 32
	KGKBlockOffset = SaltOffset + SaltLen
	KGKBlockLen    = 112
	DataOffset     = KGKBlockOffset + KGKBlockLen
)

// File gives offset-addressed read/write access to a vault file on disk.
// A File that doesn't yet exist on disk behaves as if it were empty: reads
// return zero-length slices and writes create the file with the necessary
// leading zero-padding, matching the bootstrap behavior of a brand-new
// vault.
type File struct {
	path string
}

// Open returns a File bound to path. It does not require the file to exist.
func Open(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

// Exists reports whether the backing file is present on disk.
func (f *File) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

func (f *File) readRegion(offset, length int) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("vaultfile: read %s: %w", f.path, err)
	}
	if offset >= len(data) {
		return nil, nil
	}
	end := offset + length
	if length <= 0 || end > len(data) {
		end = len(data)
	}
	if end < offset {
		return nil, nil
	}
	out := make([]byte, end-offset)
	copy(out, data[offset:end])
	return out, nil
}

// Salt reads the outer salt (bytes [0,32)). Returns a short or empty slice
// if the file is missing or truncated; callers must check the length.
func (f *File) Salt() ([]byte, error) {
	return f.readRegion(SaltOffset, SaltLen)
}

// StoreSalt writes salt to bytes [0,32), creating the file if necessary.
func (f *File) StoreSalt(salt []byte) error {
	if len(salt) != SaltLen {
		return fmt.Errorf("%w: salt must be %d bytes", vaulterr.ErrInvalidLength, SaltLen)
	}
	return f.writeAt(SaltOffset, salt, false)
}

// KGKBlock reads the wrapped key generation key block (bytes [32,144)).
func (f *File) KGKBlock() ([]byte, error) {
	return f.readRegion(KGKBlockOffset, KGKBlockLen)
}

// StoreKGKBlock writes block to bytes [32,144).
func (f *File) StoreKGKBlock(block []byte) error {
	if len(block) != KGKBlockLen {
		return fmt.Errorf("%w: key generation key block must be %d bytes", vaulterr.ErrInvalidLength, KGKBlockLen)
	}
	return f.writeAt(KGKBlockOffset, block, false)
}

// RecordsBlob reads the records ciphertext blob (bytes [144,EOF)).
func (f *File) RecordsBlob() ([]byte, error) {
	return f.readRegion(DataOffset, -1)
}

// StoreRecordsBlob writes blob starting at byte 144 and truncates the file
// to end exactly there, so a shorter blob shrinks the file.
func (f *File) StoreRecordsBlob(blob []byte) error {
	return f.writeAt(DataOffset, blob, true)
}

// writeAt seeks to offset and overwrites in place. When the file doesn't
// exist yet it is created with zero bytes padding [0, offset). When
// truncate is true the file is truncated to offset+len(data) after writing,
// matching the non-atomic seek+write+truncate protocol this format uses
// instead of write-temp-then-rename.
func (f *File) writeAt(offset int, data []byte, truncate bool) error {
	existing := f.Exists()
	var file *os.File
	var err error
	if existing {
		file, err = os.OpenFile(f.path, os.O_RDWR, 0o600)
	} else {
		file, err = os.OpenFile(f.path, os.O_RDWR|os.O_CREATE, 0o600)
	}
	if err != nil {
		return fmt.Errorf("vaultfile: open %s: %w", f.path, err)
	}
	defer file.Close()

	if !existing && offset > 0 {
		if _, err := file.Write(make([]byte, offset)); err != nil {
			return fmt.Errorf("vaultfile: pad %s: %w", f.path, err)
		}
	}

	if _, err := file.Seek(int64(offset), 0); err != nil {
		return fmt.Errorf("vaultfile: seek %s: %w", f.path, err)
	}
	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("vaultfile: write %s: %w", f.path, err)
	}
	if truncate {
		if err := file.Truncate(int64(offset + len(data))); err != nil {
			return fmt.Errorf("vaultfile: truncate %s: %w", f.path, err)
		}
	}
	return nil
}

// Size returns the on-disk size of the vault file, or 0 if it doesn't
// exist.
func (f *File) Size() (int64, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("vaultfile: stat %s: %w", f.path, err)
	}
	return info.Size(), nil
}
