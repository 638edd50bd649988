package record

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToComplexity7(t *testing.T) {
	r, err := New("example.com")
	require.NoError(t, err)
	require.Equal(t, DefaultLength, r.Length)
	require.Len(t, r.Template, DefaultLength)
	require.Equal(t, 7, r.Complexity())
}

func TestSetComplexityTable(t *testing.T) {
	cases := []struct {
		complexity int
		markers    string
	}{
		{1, "n"},
		{2, "a"},
		{3, "A"},
		{4, "na"},
		{5, "aA"},
		{6, "naA"},
		{7, "naAo"},
		{8, "o"},
	}
	for _, c := range cases {
		r, err := New("example.com")
		require.NoError(t, err)
		require.NoError(t, r.SetComplexity(c.complexity))
		require.Equal(t, c.complexity, r.Complexity())
		for _, m := range []byte{'n', 'a', 'A', 'o'} {
			want := strings.IndexByte(c.markers, m) >= 0
			require.Equal(t, want, templateHas(r.Template, m), "marker %q in template %q", m, r.Template)
		}
	}
}

func TestSetLengthPreservesComplexity(t *testing.T) {
	r, err := New("example.com")
	require.NoError(t, err)
	require.NoError(t, r.SetComplexity(6))
	require.NoError(t, r.SetLength(24))
	require.Len(t, r.Template, 24)
	require.Equal(t, 6, r.Complexity())
}

func TestMarshalOmitsUnsetFields(t *testing.T) {
	r, err := New("example.com")
	require.NoError(t, err)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	require.Contains(t, raw, "domain name")
	require.NotContains(t, raw, "username")
	require.NotContains(t, raw, "fixed_password")
	require.NotContains(t, raw, "URL")
	require.NotContains(t, raw, "notes")

	r.Username = "alice"
	r.URL = "https://example.com"
	data, err = json.Marshal(r)
	require.NoError(t, err)
	raw = nil
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, "alice", raw["username"])
	require.Equal(t, "https://example.com", raw["URL"])
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	r, err := New("example.com")
	require.NoError(t, err)
	r.Username = "bob"
	r.Notes = "work account"

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var got Record
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, r.Domain, got.Domain)
	require.Equal(t, r.Username, got.Username)
	require.Equal(t, r.Notes, got.Notes)
	require.Equal(t, r.Salt, got.Salt)
	require.Equal(t, r.Template, got.Template)
}
