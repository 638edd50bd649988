package keymanager

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnlockBootstrapsWhenBlockAbsent(t *testing.T) {
	outerSalt := make([]byte, 32)
	m, err := Unlock([]byte("correct horse"), outerSalt, nil, 100)
	require.NoError(t, err)
	require.Len(t, m.KGK, kgkLen)
	require.Len(t, m.InnerSalt, innerSaltLen)
	require.Len(t, m.InnerIV, innerIVLen)
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	outerSalt := make([]byte, 32)
	password := []byte("hunter2")

	m1, err := Unlock(password, outerSalt, nil, 100)
	require.NoError(t, err)
	wrapped, err := m1.Wrap()
	require.NoError(t, err)
	require.Len(t, wrapped, blockLen)

	m2, err := Unlock(password, outerSalt, wrapped, 100)
	require.NoError(t, err)
	require.Equal(t, m1.KGK, m2.KGK)
	require.Equal(t, m1.InnerSalt, m2.InnerSalt)
	require.Equal(t, m1.InnerIV, m2.InnerIV)
}

func TestRewrapWithNewInnerChangesInnerButNotKGK(t *testing.T) {
	outerSalt := make([]byte, 32)
	m, err := Unlock([]byte("pw"), outerSalt, nil, 100)
	require.NoError(t, err)
	origKGK := append([]byte(nil), m.KGK...)
	origSalt := append([]byte(nil), m.InnerSalt...)

	_, err = m.RewrapWithNewInner()
	require.NoError(t, err)

	require.Equal(t, origKGK, m.KGK)
	require.NotEqual(t, origSalt, m.InnerSalt)
}

func TestWrongPasswordUnwrapsToGarbageNotError(t *testing.T) {
	outerSalt := make([]byte, 32)
	m1, err := Unlock([]byte("right"), outerSalt, nil, 100)
	require.NoError(t, err)
	wrapped, err := m1.Wrap()
	require.NoError(t, err)

	m2, err := Unlock([]byte("wrong"), outerSalt, wrapped, 100)
	require.NoError(t, err, "unwrapping with the wrong password must not itself error")
	require.NotEqual(t, m1.KGK, m2.KGK, "the wrong password should unwrap to a different KGK")
}
