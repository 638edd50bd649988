// Package record implements the per-domain settings a vault stores: the
// character-class template and parameters a password is deterministically
// derived from, or an explicit fixed password, plus optional username,
// URL, and notes metadata.
package record

import (
	cryptorand "crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	mathrand "math/rand/v2"
	"time"

	"github.com/arelius-labs/passvault/internal/vaulterr"
	"github.com/arelius-labs/passvault/krypto"
)

// Character classes a template marker can draw from.
const (
	LowerChars = "abcdefghijklmnopqrstuvwxyz"
	UpperChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	DigitChars = "0123456789"

	lowerChars = LowerChars
	upperChars = UpperChars
	digitChars = DigitChars
	// defaultExtraChars mirrors the reference character set; it has no
	// ASCII-art significance beyond being a fixed symbol menu.
	defaultExtraChars = `#!"§$%&/()[]{}=-_+*<>;:.`

	DefaultLength     = 16
	DefaultIterations = 4096

	dateLayout = "2006-01-02T15:04:05"
)

// Record holds the stored settings for one domain.
type Record struct {
	Domain          string
	Username        string
	FixedPassword   string
	URL             string
	Notes           string
	Length          int
	Iterations      int
	Salt            []byte
	Template        string
	ExtraCharacters string

	CreationDate     time.Time
	ModificationDate time.Time
}

// New creates a record for domain with a freshly generated salt and a
// default generated-password template (complexity 7: digits, lower case,
// upper case, and extra characters).
func New(domain string) (*Record, error) {
	salt, err := krypto.NewSalt(32)
	if err != nil {
		return nil, fmt.Errorf("record: new salt: %w", err)
	}
	now := time.Now()
	r := &Record{
		Domain:           domain,
		Length:           DefaultLength,
		Iterations:       DefaultIterations,
		Salt:             salt,
		ExtraCharacters:  defaultExtraChars,
		CreationDate:     now,
		ModificationDate: now,
	}
	if err := r.calculateTemplate(true, true, true, true); err != nil {
		return nil, err
	}
	return r, nil
}

// HasFixedPassword reports whether a fixed password (rather than a
// generated one) is set.
func (r *Record) HasFixedPassword() bool {
	return r.FixedPassword != ""
}

// ClearFixedPassword removes the fixed password, letting the stored
// template drive password generation again.
func (r *Record) ClearFixedPassword() {
	r.FixedPassword = ""
}

// SetLength changes the password length and regenerates the template at
// the record's current complexity so the character-class mix is
// preserved. If the current template matches none of the eight standard
// combinations (Complexity returns -1), only Length changes and the
// template is left as it is.
func (r *Record) SetLength(length int) error {
	if length <= 0 {
		return fmt.Errorf("record: length must be positive")
	}
	complexity := r.Complexity()
	r.Length = length
	if complexity == -1 {
		return nil
	}
	return r.SetComplexity(complexity)
}

// SetComplexity regenerates the template for one of the eight standard
// character-class combinations:
//
//  1: digits
//  2: lower case
//  3: upper case
//  4: digits + lower case
//  5: lower case + upper case
//  6: digits + lower case + upper case
//  7: digits + lower case + upper case + extra
//  8: extra only
func (r *Record) SetComplexity(complexity int) error {
	switch complexity {
	case 1:
		return r.calculateTemplate(false, false, true, false)
	case 2:
		return r.calculateTemplate(true, false, false, false)
	case 3:
		return r.calculateTemplate(false, true, false, false)
	case 4:
		return r.calculateTemplate(true, false, true, false)
	case 5:
		return r.calculateTemplate(true, true, false, false)
	case 6:
		return r.calculateTemplate(true, true, true, false)
	case 7:
		return r.calculateTemplate(true, true, true, true)
	case 8:
		return r.calculateTemplate(false, false, false, true)
	default:
		return fmt.Errorf("record: complexity must be an integer in the range 1 to 8")
	}
}

// Complexity returns which of the eight standard combinations the current
// template matches, or -1 if it matches none of them (e.g. after loading a
// hand-edited template).
func (r *Record) Complexity() int {
	n := templateHas(r.Template, 'n')
	a := templateHas(r.Template, 'a')
	A := templateHas(r.Template, 'A')
	o := templateHas(r.Template, 'o')
	switch {
	case n && !a && !A && !o:
		return 1
	case !n && a && !A && !o:
		return 2
	case !n && !a && A && !o:
		return 3
	case n && a && !A && !o:
		return 4
	case !n && a && A && !o:
		return 5
	case n && a && A && !o:
		return 6
	case n && a && A && o:
		return 7
	case !n && !a && !A && o:
		return 8
	default:
		return -1
	}
}

// CharacterSet returns the union of character classes the current template
// draws from, in digits/lower/upper/extra order.
func (r *Record) CharacterSet() string {
	var set string
	if templateHas(r.Template, 'n') {
		set += digitChars
	}
	if templateHas(r.Template, 'a') {
		set += lowerChars
	}
	if templateHas(r.Template, 'A') {
		set += upperChars
	}
	if templateHas(r.Template, 'o') {
		set += r.ExtraCharacters
	}
	return set
}

func templateHas(template string, marker byte) bool {
	for i := 0; i < len(template); i++ {
		if template[i] == marker {
			return true
		}
	}
	return false
}

// calculateTemplate builds a new Length-character template: one slot each
// for the enabled classes (in lower, upper, digit, extra priority order,
// first-come-first-served over the available positions), the rest filled
// with the "no constraint" marker 'x', then cryptographically shuffled.
func (r *Record) calculateTemplate(useLower, useUpper, useDigit, useExtra bool) error {
	if r.Length <= 0 {
		return fmt.Errorf("record: length must be positive")
	}
	slots := make([]byte, r.Length)
	insertedLower, insertedUpper, insertedDigit, insertedExtra := false, false, false, false
	for i := 0; i < r.Length; i++ {
		switch {
		case useLower && !insertedLower:
			slots[i] = 'a'
			insertedLower = true
		case useUpper && !insertedUpper:
			slots[i] = 'A'
			insertedUpper = true
		case useDigit && !insertedDigit:
			slots[i] = 'n'
			insertedDigit = true
		case useExtra && !insertedExtra:
			slots[i] = 'o'
			insertedExtra = true
		default:
			slots[i] = 'x'
		}
	}
	if err := shuffle(slots); err != nil {
		return err
	}
	r.Template = string(slots)
	return nil
}

// shuffle performs a Fisher-Yates shuffle seeded from crypto/rand, in
// place of an insecure math/rand-only shuffle.
func shuffle(slots []byte) error {
	var seed [32]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		return fmt.Errorf("record: seed shuffle: %w", err)
	}
	src := mathrand.NewChaCha8(seed)
	r := mathrand.New(src)
	r.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })
	return nil
}

// recordJSON is the on-disk shape, matching field names exactly —
// including the space in "domain name" and the capitalized "URL" — with
// unset optional fields omitted rather than empty-stringed.
type recordJSON struct {
	DomainName       string `json:"domain name"`
	Username         string `json:"username,omitempty"`
	FixedPassword    string `json:"fixed_password,omitempty"`
	Length           int    `json:"length"`
	ExtraCharacters  string `json:"extra_character_set"`
	Iterations       int    `json:"iterations"`
	Salt             string `json:"salt"`
	Template         string `json:"template"`
	URL              string `json:"URL,omitempty"`
	Notes            string `json:"notes,omitempty"`
	CreationDate     string `json:"creation_date"`
	ModificationDate string `json:"modification_date"`
}

func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		DomainName:       r.Domain,
		Username:         r.Username,
		FixedPassword:    r.FixedPassword,
		Length:           r.Length,
		ExtraCharacters:  r.ExtraCharacters,
		Iterations:       r.Iterations,
		Salt:             base64.StdEncoding.EncodeToString(r.Salt),
		Template:         r.Template,
		URL:              r.URL,
		Notes:            r.Notes,
		CreationDate:     r.CreationDate.Format(dateLayout),
		ModificationDate: r.ModificationDate.Format(dateLayout),
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var j recordJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("%w: %v", vaulterr.ErrInvalidFormat, err)
	}
	r.Domain = j.DomainName
	r.Username = j.Username
	r.FixedPassword = j.FixedPassword
	if j.Length > 0 {
		r.Length = j.Length
	}
	if j.ExtraCharacters != "" {
		r.ExtraCharacters = j.ExtraCharacters
	} else {
		r.ExtraCharacters = defaultExtraChars
	}
	if j.Iterations > 0 {
		r.Iterations = j.Iterations
	}
	if j.Salt != "" {
		salt, err := base64.StdEncoding.DecodeString(j.Salt)
		if err != nil {
			return fmt.Errorf("%w: salt: %v", vaulterr.ErrInvalidFormat, err)
		}
		r.Salt = salt
	}
	if j.Template != "" {
		r.Template = j.Template
	}
	r.URL = j.URL
	r.Notes = j.Notes
	if j.CreationDate != "" {
		t, err := time.Parse(dateLayout, j.CreationDate)
		if err != nil {
			return fmt.Errorf("%w: creation_date: %v", vaulterr.ErrInvalidFormat, err)
		}
		r.CreationDate = t
	}
	if j.ModificationDate != "" {
		t, err := time.Parse(dateLayout, j.ModificationDate)
		if err != nil {
			return fmt.Errorf("%w: modification_date: %v", vaulterr.ErrInvalidFormat, err)
		}
		r.ModificationDate = t
	}
	if r.ModificationDate.Before(r.CreationDate) {
		r.CreationDate = r.ModificationDate
	}
	return nil
}

// Touch updates the modification date to now, moving the creation date
// back to the same instant if it would otherwise postdate the modification.
func (r *Record) Touch() {
	r.ModificationDate = time.Now()
	if r.ModificationDate.Before(r.CreationDate) {
		r.CreationDate = r.ModificationDate
	}
}
