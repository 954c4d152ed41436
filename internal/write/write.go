// Package write replaces files atomically.
package write

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
)

// File streams the output of fill into a temp file beside path and renames
// it over path once fill and the close succeed. Parent directories are
// created as needed. On failure the temp file is removed and path is left
// untouched. It returns the byte count and digest of what was written.
func File(path string, perm os.FileMode, fill func(io.Writer) error) (uint64, digest.Digest, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, "", fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return 0, "", err
	}
	tmpPath := tmp.Name()
	fail := func(err error) (uint64, digest.Digest, error) {
		tmp.Close()
		os.Remove(tmpPath)
		return 0, "", err
	}

	digester := digest.Canonical.Digester()
	cw := &countingWriter{w: io.MultiWriter(tmp, digester.Hash())}
	if err := fill(cw); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, "", err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, "", err
	}
	return cw.n, digester.Digest(), nil
}

// Bytes writes data to path atomically.
func Bytes(path string, perm os.FileMode, data []byte) error {
	_, _, err := File(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	return err
}

type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n) //nolint:gosec // n is never negative
	return n, err
}
