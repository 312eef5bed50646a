package tokenstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Get(AdminTokenKey)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.Set(AdminTokenKey, "admin-jwt"))
	require.NoError(t, s.Set(UserTokenKey, "user-jwt"))

	v, err = s.Get(AdminTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "admin-jwt", v)

	require.NoError(t, s.Clear())
	for _, k := range []string{AdminTokenKey, UserTokenKey} {
		v, err = s.Get(k)
		require.NoError(t, err)
		assert.Empty(t, v, k)
	}
}

func TestDeleteMissingKey(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.Delete(UserTokenKey))
}

func TestEmptyKey(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	assert.ErrorIs(t, s.Set(" ", "x"), ErrEmptyKey)
	_, err = s.Get("")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestOnDiskPersists(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(AdminTokenKey, "persisted"))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get(AdminTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "persisted", v)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
