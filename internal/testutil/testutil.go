// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"io"
	"sync/atomic"
)

// MockByteSource implements a simple in-memory byte source for tests.
type MockByteSource struct {
	data []byte
	id   string
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	return &MockByteSource{data: data, id: "mock"}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if off+int64(n) >= int64(len(m.data)) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}

// SourceID returns a fixed identifier.
func (m *MockByteSource) SourceID() string {
	return m.id
}

// Bytes returns the backing slice for tests that need to mutate data.
func (m *MockByteSource) Bytes() []byte {
	return m.data
}

// CountingByteSource records how many bytes are read through it.
type CountingByteSource struct {
	*MockByteSource
	n atomic.Int64
}

// NewCountingByteSource wraps data.
func NewCountingByteSource(data []byte) *CountingByteSource {
	return &CountingByteSource{MockByteSource: NewMockByteSource(data)}
}

// ReadAt reads from the backing slice and counts the bytes returned.
func (c *CountingByteSource) ReadAt(p []byte, off int64) (int, error) {
	n, err := c.MockByteSource.ReadAt(p, off)
	c.n.Add(int64(n))
	return n, err
}

// BytesRead returns the total bytes read so far.
func (c *CountingByteSource) BytesRead() int64 {
	return c.n.Load()
}

// Reset zeroes the counter.
func (c *CountingByteSource) Reset() {
	c.n.Store(0)
}
