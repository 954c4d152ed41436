package index

import (
	_ "crypto/sha256" // register SHA-256 for go-digest
	"encoding/binary"
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/mzml/internal/mzmltype"
	"github.com/meigma/mzml/internal/sizing"
)

// fingerprintSpan is the number of bytes hashed from each end of the source.
const fingerprintSpan = 64 << 10

// Fingerprint digests the source size together with its first and last
// 64 KiB. It is cheap to compute on multi-gigabyte files and changes when
// the file is rewritten, truncated or appended to.
func Fingerprint(src io.ReaderAt, size int64) (digest.Digest, error) {
	digester := digest.SHA256.Digester()
	h := digester.Hash()

	var sizeBuf [8]byte
	binary.LittleEndian.PutUint64(sizeBuf[:], uint64(size)) //nolint:gosec // sizes are non-negative
	h.Write(sizeBuf[:])

	head := min(size, fingerprintSpan)
	if _, err := io.Copy(h, io.NewSectionReader(src, 0, head)); err != nil {
		return "", fmt.Errorf("fingerprint head: %w", err)
	}
	if size > head {
		tailStart := max(head, size-fingerprintSpan)
		if _, err := io.Copy(h, io.NewSectionReader(src, tailStart, size-tailStart)); err != nil {
			return "", fmt.Errorf("fingerprint tail: %w", err)
		}
	}
	return digester.Digest(), nil
}

// Stamp returns a copy of idx that records the size and fingerprint of src.
func Stamp(idx *Index, src io.ReaderAt, size int64) (*Index, error) {
	fp, err := Fingerprint(src, size)
	if err != nil {
		return nil, err
	}
	usize, err := sizing.ToUint64(size, mzmltype.ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	return idx.stamped(usize, fp), nil
}

// Verify checks a stamped index against src. Unstamped indexes always pass.
func (idx *Index) Verify(src io.ReaderAt, size int64) error {
	if idx.fingerprint == "" {
		return nil
	}
	if usize, err := sizing.ToUint64(size, mzmltype.ErrSizeOverflow); err != nil || usize != idx.sourceSize {
		return fmt.Errorf("%w: source size %d, index built for %d", mzmltype.ErrStaleIndex, size, idx.sourceSize)
	}
	fp, err := Fingerprint(src, size)
	if err != nil {
		return err
	}
	if fp != idx.fingerprint {
		return fmt.Errorf("%w: fingerprint %s, index built for %s", mzmltype.ErrStaleIndex, fp, idx.fingerprint)
	}
	return nil
}
