package cachestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteBackend_CRUD(t *testing.T) {
	backend, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer backend.Close()

	testBackendCRUD(t, backend)
}

func TestSQLiteBackend_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	backend, err := NewSQLiteBackend(path)
	require.NoError(t, err)

	entry := backendEntry("buildings:60.16_24.93:aaa", "buildings", []byte(`{"features":[1]}`))
	require.NoError(t, backend.Put(entry))
	require.NoError(t, backend.PutMeta("usage", []byte(`{"hits":3}`)))
	require.NoError(t, backend.Close())

	// Entries and meta survive a process restart
	reopened, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assertSameEntry(t, entry, entries[0])

	value, found, err := reopened.GetMeta("usage")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte(`{"hits":3}`), value)
}

func TestSQLiteBackend_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")

	backend, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.Put(backendEntry("k", "buildings", []byte("v"))))
}
