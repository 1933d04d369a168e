package remote

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConn(t *testing.T, cmd string) Connection {
	t.Helper()
	conn, err := ParseCommand(cmd)
	require.NoError(t, err)
	return conn
}

func TestStorePutGet(t *testing.T) {
	store, err := NewStore(t.TempDir(), 0, nil)
	require.NoError(t, err)
	conn := testConn(t, "ssh host")

	_, ok := store.Get(conn, "/a.txt")
	assert.False(t, ok)

	store.Put(conn, "/a.txt", "hello", Metadata{Size: 5})
	content, ok := store.Get(conn, "/a.txt")
	require.True(t, ok)
	assert.Equal(t, "hello", content)
	assert.Equal(t, 1, store.Len())
}

func TestStoreDiskTierSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	conn := testConn(t, "ssh host")

	store, err := NewStore(dir, 0, nil)
	require.NoError(t, err)
	store.Put(conn, "/a.txt", "hello", Metadata{Size: 5})

	// A fresh store over the same directory simulates a new process.
	reopened, err := NewStore(dir, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, reopened.Len())

	content, ok := reopened.Get(conn, "/a.txt")
	require.True(t, ok)
	assert.Equal(t, "hello", content)
	// The disk read populates the memory tier.
	assert.Equal(t, 1, reopened.Len())
}

func TestStoreExpiredEntryIsMiss(t *testing.T) {
	store, err := NewStore(t.TempDir(), 10*time.Millisecond, nil)
	require.NoError(t, err)
	conn := testConn(t, "ssh host")

	store.Put(conn, "/a.txt", "hello", Metadata{Size: 5})
	time.Sleep(25 * time.Millisecond)

	_, ok := store.Get(conn, "/a.txt")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestStoreExpiredDiskEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	conn := testConn(t, "ssh host")
	store, err := NewStore(dir, time.Hour, nil)
	require.NoError(t, err)

	stale := CacheEntry{
		Content:   "old",
		Timestamp: float64(time.Now().Add(-2*time.Hour).UnixNano()) / float64(time.Second),
		Metadata:  Metadata{Size: 3},
	}
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.diskPath(Key(conn, "/a.txt")), data, 0o644))

	_, ok := store.Get(conn, "/a.txt")
	assert.False(t, ok)
}

func TestStoreClearAll(t *testing.T) {
	store, err := NewStore(t.TempDir(), 0, nil)
	require.NoError(t, err)
	conn := testConn(t, "ssh host")

	store.Put(conn, "/a.txt", "a", Metadata{})
	store.Put(conn, "/b.txt", "b", Metadata{})
	require.Equal(t, 2, store.Len())
	require.Positive(t, store.DiskSize())

	store.Clear(0)
	assert.Equal(t, 0, store.Len())
	assert.Zero(t, store.DiskSize())
	_, ok := store.Get(conn, "/a.txt")
	assert.False(t, ok)
}

func TestStoreClearOlderThan(t *testing.T) {
	store, err := NewStore(t.TempDir(), 0, nil)
	require.NoError(t, err)
	conn := testConn(t, "ssh host")

	store.Put(conn, "/fresh.txt", "fresh", Metadata{})
	store.Put(conn, "/stale.txt", "stale", Metadata{})

	// Age the stale entry in both tiers.
	staleKey := Key(conn, "/stale.txt")
	store.mu.Lock()
	entry := store.entries[staleKey]
	entry.Timestamp -= float64(2 * 3600)
	store.entries[staleKey] = entry
	store.mu.Unlock()
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(store.diskPath(staleKey), old, old))

	store.Clear(time.Hour)

	_, ok := store.Get(conn, "/fresh.txt")
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len())
	_, err = os.Stat(store.diskPath(staleKey))
	assert.True(t, os.IsNotExist(err))
}

func TestStoreKeyIsConnectionScoped(t *testing.T) {
	store, err := NewStore(t.TempDir(), 0, nil)
	require.NoError(t, err)
	alpha := testConn(t, "ssh user@alpha")
	beta := testConn(t, "ssh user@beta")

	store.Put(alpha, "/a.txt", "from alpha", Metadata{})

	_, ok := store.Get(beta, "/a.txt")
	assert.False(t, ok)
	content, ok := store.Get(alpha, "/a.txt")
	require.True(t, ok)
	assert.Equal(t, "from alpha", content)

	assert.NotEqual(t, Key(alpha, "/a.txt"), Key(beta, "/a.txt"))
}

func TestStoreIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, 0, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644))
	store.Clear(0)

	_, err = os.Stat(filepath.Join(dir, "notes.txt"))
	assert.NoError(t, err)
	assert.Zero(t, store.DiskSize())
}
