package mzml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/mzml/internal/testutil"
)

func TestSaveAndLoadIndexFile(t *testing.T) {
	t.Parallel()

	data := testutil.MzML(testutil.Indexed())
	src := testutil.NewMockByteSource(data)
	idx, err := BuildIndex(src, 4096)
	require.NoError(t, err)
	assert.NotEmpty(t, idx.Fingerprint())

	path := IndexPath(filepath.Join(t.TempDir(), "nested", "run.mzML"))
	require.NoError(t, SaveIndex(path, idx))

	loaded, err := LoadIndexFile(path)
	require.NoError(t, err)
	assert.True(t, idx.Equal(loaded))
	assert.Equal(t, idx.Fingerprint(), loaded.Fingerprint())

	r, err := Open(src, WithIndex(loaded))
	require.NoError(t, err)
	assert.Len(t, r.SpectrumIDs(), 11)

	// Overwrite in place; no temp files are left behind.
	require.NoError(t, SaveIndex(path, idx))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadIndexFile_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadIndexFile(filepath.Join(t.TempDir(), "missing.mzidx"))
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.mzidx")
	require.NoError(t, os.WriteFile(path, []byte("not an index"), 0o600))
	_, err = LoadIndexFile(path)
	require.Error(t, err)
}

func TestStampIndex(t *testing.T) {
	t.Parallel()

	data := testutil.MzML()
	r := openFixture(t, data)
	assert.Empty(t, r.Index().Fingerprint())

	stamped, err := StampIndex(r.Index(), testutil.NewMockByteSource(data))
	require.NoError(t, err)
	assert.True(t, stamped.Equal(r.Index()))
	assert.Equal(t, uint64(len(data)), stamped.SourceSize())

	_, err = Open(testutil.NewMockByteSource(append([]byte(" "), data...)), WithIndex(stamped))
	require.ErrorIs(t, err, ErrStaleIndex)
}
