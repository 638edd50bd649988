package derive

import (
	"testing"

	"github.com/arelius-labs/passvault/internal/record"
	"github.com/stretchr/testify/require"
)

func TestPasswordIsDeterministic(t *testing.T) {
	r, err := record.New("example.com")
	require.NoError(t, err)
	kgk := make([]byte, 64)
	for i := range kgk {
		kgk[i] = byte(i)
	}

	p1, err := Password("example.com", kgk, r.Salt, r.Iterations, r)
	require.NoError(t, err)
	p2, err := Password("example.com", kgk, r.Salt, r.Iterations, r)
	require.NoError(t, err)
	require.Equal(t, p1, p2)
	require.LessOrEqual(t, len(p1), r.Length)
}

func TestPasswordDiffersByDomain(t *testing.T) {
	r, err := record.New("example.com")
	require.NoError(t, err)
	kgk := make([]byte, 64)

	p1, err := Password("example.com", kgk, r.Salt, r.Iterations, r)
	require.NoError(t, err)
	p2, err := Password("other.com", kgk, r.Salt, r.Iterations, r)
	require.NoError(t, err)
	require.NotEqual(t, p1, p2)
}

// TestPasswordInitializeAndReveal pins the exact output of the reference
// algorithm for a fixed seed: an all-zero key generation key and salt, a
// single PBKDF2 iteration, and an explicit eight-character template mixing
// digits, lower case, and upper case.
func TestPasswordInitializeAndReveal(t *testing.T) {
	kgk := make([]byte, 64)
	salt := make([]byte, 32)
	rec := &record.Record{
		Domain:     "example.com",
		Length:     8,
		Iterations: 1,
		Salt:       salt,
		Template:   "nnaaAAnn",
	}

	got, err := Password("example.com", kgk, salt, 1, rec)
	require.NoError(t, err)
	require.Equal(t, "13juSM76", got)
}

func TestPasswordOnlyUsesTemplateCharacterClasses(t *testing.T) {
	r, err := record.New("example.com")
	require.NoError(t, err)
	require.NoError(t, r.SetComplexity(1)) // digits only
	kgk := make([]byte, 64)
	for i := range kgk {
		kgk[i] = byte(255 - i)
	}

	p, err := Password("example.com", kgk, r.Salt, r.Iterations, r)
	require.NoError(t, err)
	for _, c := range p {
		require.Contains(t, record.DigitChars, string(c))
	}
}
