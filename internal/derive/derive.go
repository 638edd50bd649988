// Package derive implements deterministic per-domain password generation:
// a PBKDF2-HMAC-SHA512 seed over the domain name and the key generation
// key, walked as one large big-endian integer against a record's character
// template.
package derive

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/arelius-labs/passvault/internal/record"
	"github.com/arelius-labs/passvault/krypto"
)

const (
	hashLen          = 64 // SHA-512 output
	minIterations    = 1
	defaultIteration = 4096
)

// Password deterministically derives a password for domain from the key
// generation key, a per-record salt, and iteration count, walking the
// derived hash against record's template.
func Password(domain string, kgk []byte, salt []byte, iterations int, rec *record.Record) (string, error) {
	if iterations < minIterations {
		iterations = defaultIteration
	}

	seed := make([]byte, 0, len(domain)+len(kgk))
	seed = append(seed, []byte(domain)...)
	seed = append(seed, kgk...)

	hashed, err := krypto.DeriveBytes(seed, salt, iterations, hashLen)
	if err != nil {
		return "", fmt.Errorf("derive: derive seed hash: %w", err)
	}

	number := new(big.Int).SetBytes(hashed)
	characterSet := rec.CharacterSet()

	var out strings.Builder
	for i := 0; i < len(rec.Template); i++ {
		if number.Sign() <= 0 {
			break
		}
		var set string
		switch rec.Template[i] {
		case 'a':
			set = record.LowerChars
		case 'A':
			set = record.UpperChars
		case 'n':
			set = record.DigitChars
		case 'o':
			set = rec.ExtraCharacters
		default:
			set = characterSet
		}
		if len(set) == 0 {
			continue
		}
		setLen := big.NewInt(int64(len(set)))
		idx := new(big.Int).Mod(number, setLen)
		out.WriteByte(set[idx.Int64()])
		number.Div(number, setLen)
	}
	return out.String(), nil
}
