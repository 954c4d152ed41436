package mzml

import (
	"fmt"
	"os"
)

// DefaultIndexSuffix is appended to a document path to name its persisted index.
const DefaultIndexSuffix = ".mzidx"

// fileSource wraps *os.File to implement ByteSource.
// os.File has ReadAt but not Size, so the size is cached at construction.
type fileSource struct {
	file *os.File
	path string
	size int64
}

func newFileSource(f *os.File) (*fileSource, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}
	return &fileSource{file: f, path: f.Name(), size: info.Size()}, nil
}

// ReadAt implements io.ReaderAt.
func (fs *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return fs.file.ReadAt(p, off)
}

// Size returns the total size of the file.
func (fs *fileSource) Size() int64 {
	return fs.size
}

// SourceID returns the file path.
func (fs *fileSource) SourceID() string {
	return fs.path
}

// File wraps a Reader with its underlying file handle.
// Close must be called to release file resources.
type File struct {
	*Reader
	file *os.File
}

// Close closes the underlying file.
func (f *File) Close() error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// OpenFile opens the mzML document at path for random access.
// The returned File must be closed to release file resources.
func OpenFile(path string, opts ...Option) (*File, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	src, err := newFileSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r, err := Open(src, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{Reader: r, file: f}, nil
}
