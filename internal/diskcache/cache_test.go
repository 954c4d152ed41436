package diskcache

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, f *os.File) string {
	t.Helper()
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return string(data)
}

func TestCache_PutGet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)

	key := digest.FromString("https://example.org/psi-ms.obo")
	_, ok := c.Get(key)
	assert.False(t, ok)

	require.NoError(t, c.Put(key, strings.NewReader("format-version: 1.2")))
	f, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "format-version: 1.2", readAll(t, f))
	assert.Equal(t, int64(len("format-version: 1.2")), c.SizeBytes())

	enc := key.Encoded()
	_, err = os.Stat(filepath.Join(dir, "sha256", enc[:defaultShardPrefixLen], enc))
	require.NoError(t, err)
}

func TestCache_Overwrite(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir(), WithShardPrefixLen(0))
	require.NoError(t, err)

	key := digest.FromString("k")
	require.NoError(t, c.Put(key, strings.NewReader("first")))
	require.NoError(t, c.Put(key, strings.NewReader("second!")))

	f, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "second!", readAll(t, f))
	assert.Equal(t, int64(7), c.SizeBytes())
}

func TestCache_Delete(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	key := digest.FromString("gone")
	require.NoError(t, c.Put(key, strings.NewReader("bytes")))
	require.NoError(t, c.Delete(key))
	require.NoError(t, c.Delete(key))

	_, ok := c.Get(key)
	assert.False(t, ok)
	assert.Zero(t, c.SizeBytes())
}

func TestCache_MaxBytesPrunesOldest(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir(), WithMaxBytes(10))
	require.NoError(t, err)

	old := digest.FromString("old")
	require.NoError(t, c.Put(old, strings.NewReader("123456")))
	path, err := c.path(old)
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	fresh := digest.FromString("fresh")
	require.NoError(t, c.Put(fresh, strings.NewReader("abcdef")))

	_, ok := c.Get(old)
	assert.False(t, ok)
	f, ok := c.Get(fresh)
	require.True(t, ok)
	assert.Equal(t, "abcdef", readAll(t, f))

	tooBig := digest.FromString("big")
	require.NoError(t, c.Put(tooBig, strings.NewReader(strings.Repeat("x", 11))))
	_, ok = c.Get(tooBig)
	assert.False(t, ok)
}

func TestCache_InvalidKey(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	require.NoError(t, err)

	require.Error(t, c.Put(digest.Digest("sha256:nothex"), strings.NewReader("x")))
	_, ok := c.Get(digest.Digest("bogus"))
	assert.False(t, ok)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New("")
	require.Error(t, err)
	_, err = New(t.TempDir(), WithMaxBytes(-1))
	require.Error(t, err)
	_, err = New(t.TempDir(), WithShardPrefixLen(-1))
	require.Error(t, err)
}
