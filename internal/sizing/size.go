// Package sizing converts between offset types without silent overflow and
// bounds reads of untrusted lengths.
package sizing

import (
	"io"
	"math"
)

// ToInt64 converts a uint64 offset to int64, returning overflowErr if it doesn't fit.
func ToInt64(v uint64, overflowErr error) (int64, error) {
	if v > uint64(math.MaxInt64) {
		return 0, overflowErr
	}
	return int64(v), nil
}

// ToUint64 converts a non-negative int64 offset to uint64, returning
// overflowErr for negative values.
func ToUint64(v int64, overflowErr error) (uint64, error) {
	if v < 0 {
		return 0, overflowErr
	}
	return uint64(v), nil
}

// ReadAllWithLimit reads up to maxSize bytes from r.
// Returns overflowErr if more than maxSize bytes are available.
func ReadAllWithLimit(r io.Reader, maxSize uint64, overflowErr error) ([]byte, error) {
	if maxSize > uint64(math.MaxInt-1) {
		return nil, overflowErr
	}
	limit := int64(maxSize) + 1 //nolint:gosec // checked above
	lr := &io.LimitedReader{R: r, N: limit}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) > maxSize { //nolint:gosec // len is always non-negative
		return nil, overflowErr
	}
	return data, nil
}
