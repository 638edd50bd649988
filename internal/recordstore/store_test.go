package recordstore

import (
	"testing"
	"time"

	"github.com/arelius-labs/passvault/internal/record"
	"github.com/arelius-labs/passvault/internal/vaulterr"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := New()
	r1, err := s.GetOrCreate("example.com")
	require.NoError(t, err)
	r1.Username = "alice"
	r2, err := s.GetOrCreate("other.com")
	require.NoError(t, err)
	r2.Notes = "work"

	blob, err := s.DumpBlob()
	require.NoError(t, err)

	s2 := New()
	require.NoError(t, s2.LoadBlob(blob))

	require.ElementsMatch(t, []string{"example.com", "other.com"}, s2.Domains())
	got, ok := s2.Get("example.com")
	require.True(t, ok)
	require.Equal(t, "alice", got.Username)
}

func TestLoadBlobEmptyIsNotAnError(t *testing.T) {
	s := New()
	require.NoError(t, s.LoadBlob(nil))
	require.Empty(t, s.Domains())
}

func TestLoadBlobMergesByNewerModificationDate(t *testing.T) {
	s := New()
	older, err := record.New("example.com")
	require.NoError(t, err)
	older.ModificationDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	older.Username = "old-username"
	s.Put(older)

	newer, err := record.New("example.com")
	require.NoError(t, err)
	newer.ModificationDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer.Username = "new-username"
	incoming := New()
	incoming.Put(newer)
	blob, err := incoming.DumpBlob()
	require.NoError(t, err)

	require.NoError(t, s.LoadBlob(blob))
	got, ok := s.Get("example.com")
	require.True(t, ok)
	require.Equal(t, "new-username", got.Username)
}

func TestLoadBlobKeepsNewerInMemoryRecord(t *testing.T) {
	s := New()
	newer, err := record.New("example.com")
	require.NoError(t, err)
	newer.ModificationDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer.Username = "in-memory"
	s.Put(newer)

	older, err := record.New("example.com")
	require.NoError(t, err)
	older.ModificationDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	older.Username = "on-disk"
	incoming := New()
	incoming.Put(older)
	blob, err := incoming.DumpBlob()
	require.NoError(t, err)

	require.NoError(t, s.LoadBlob(blob))
	got, ok := s.Get("example.com")
	require.True(t, ok)
	require.Equal(t, "in-memory", got.Username)
}

func TestDecodeBlobShortPayloadErrors(t *testing.T) {
	s := New()
	r, err := s.GetOrCreate("example.com")
	require.NoError(t, err)
	_ = r
	blob, err := s.DumpBlob()
	require.NoError(t, err)

	// Corrupt the declared record count to claim more records than exist.
	blob[3] = 9

	_, err = DecodeBlob(blob)
	require.ErrorIs(t, err, vaulterr.ErrShortPayload)
}

func TestSuggestDomainPrefixMatch(t *testing.T) {
	s := New()
	_, err := s.GetOrCreate("example.com")
	require.NoError(t, err)

	suggestion, isPrefix := s.SuggestDomain("example")
	require.True(t, isPrefix)
	require.Equal(t, "example.com", suggestion)

	_, exact := s.SuggestDomain("example.com")
	require.False(t, exact)

	_, found := s.SuggestDomain("nowhere")
	require.False(t, found)
}
