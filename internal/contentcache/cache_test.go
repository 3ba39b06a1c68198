package contentcache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGet_ReadsOnceAndCaches(t *testing.T) {
	path := writeFile(t, "a.txt", "hello")
	c := NewCache()

	got, err := c.Get(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	// Deleting the file proves the second read comes from the cache.
	require.NoError(t, os.Remove(path))
	got, err = c.Get(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
	assert.Equal(t, 1, c.Len())
}

func TestGet_MissingFile(t *testing.T) {
	c := NewCache()
	_, err := c.Get(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// The failed read is cached too.
	assert.Equal(t, 1, c.Len())
}

func TestHash_MatchesContent(t *testing.T) {
	path := writeFile(t, "a.txt", "stable content")
	c := NewCache()

	h, err := c.Hash(path)
	require.NoError(t, err)
	assert.Equal(t, xxhash.Sum64([]byte("stable content")), h)
}

func TestGet_ConcurrentSameFile(t *testing.T) {
	path := writeFile(t, "a.txt", "shared")
	c := NewCache()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Get(path)
			assert.NoError(t, err)
			assert.Equal(t, []byte("shared"), got)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
