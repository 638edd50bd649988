package audit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenCreatesDatabaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	require.FileExists(t, path)
}

func TestRecordAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Record("unlock", "", true))
	require.NoError(t, l.Record("reveal", "example.com", true))
	require.NoError(t, l.Record("reveal", "missing.com", false))

	entries, err := l.Recent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "reveal", entries[0].Operation)
	require.Equal(t, "missing.com", entries[0].Domain)
	require.False(t, entries[0].Succeeded)
}
