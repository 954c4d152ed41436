// Package scan implements bounded-memory literal search over large byte streams.
//
// A Window reads a stream in fixed-size chunks and searches the buffered
// bytes for literal markers, discarding bytes the caller has released. The
// same primitive runs backward by feeding it a ReverseReader and reversed
// patterns.
package scan

import (
	"bytes"
	"errors"
	"io"
	"math"
)

// DefaultChunkSize is the default number of bytes read per refill (1 MiB).
const DefaultChunkSize = 1 << 20

// Window is a sliding buffer over a stream. Positions are stream offsets.
type Window struct {
	r     io.Reader
	chunk int
	buf   []byte
	base  int64 // stream position of buf[0]
	mark  int64 // bytes at or after mark are kept buffered
	eof   bool
	read  int64
}

// NewWindow returns a window over r that reads chunk bytes at a time.
// A chunk of 0 or less selects DefaultChunkSize.
func NewWindow(r io.Reader, chunk int) *Window {
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	return &Window{r: r, chunk: chunk, mark: math.MaxInt64}
}

// Retain keeps bytes at or after pos buffered across refills so they can be
// read back with Bytes.
func (w *Window) Retain(pos int64) {
	w.mark = pos
}

// Release undoes Retain. Bytes before the current search position may then
// be discarded on refill.
func (w *Window) Release() {
	w.mark = math.MaxInt64
}

// BytesRead returns the number of bytes consumed from the stream.
func (w *Window) BytesRead() int64 {
	return w.read
}

// Find returns the position of the earliest occurrence of any pattern at or
// after from, and the index of the pattern that matched. It returns io.EOF
// if the stream ends without a match.
func (w *Window) Find(from int64, patterns ...[]byte) (int64, int, error) {
	if from < w.base {
		return 0, -1, errors.New("scan: search position precedes window")
	}
	longest := 0
	for _, p := range patterns {
		longest = max(longest, len(p))
	}
	if longest == 0 {
		return 0, -1, errors.New("scan: empty pattern")
	}

	for {
		start := int(from - w.base)
		if start <= len(w.buf) {
			hay := w.buf[start:]
			best, which := -1, -1
			for i, p := range patterns {
				if idx := bytes.Index(hay, p); idx >= 0 && (best < 0 || idx < best) {
					best, which = idx, i
				}
			}
			if best >= 0 {
				// A longer pattern may still start before best and straddle
				// the end of the buffer; confirm by reading on unless at EOF.
				if w.eof || best+longest <= len(hay) {
					return from + int64(best), which, nil
				}
			} else if next := w.base + int64(len(w.buf)) - int64(longest-1); next > from {
				// Matches not yet seen must start within the last longest-1 bytes.
				from = next
			}
		}
		if w.eof {
			return 0, -1, io.EOF
		}
		if err := w.fill(min(w.mark, from)); err != nil {
			return 0, -1, err
		}
	}
}

// Bytes returns the buffered bytes in [start, end). The slice is valid until
// the next call to Find.
func (w *Window) Bytes(start, end int64) []byte {
	return w.buf[start-w.base : end-w.base]
}

// fill discards bytes before keep and appends up to one chunk from the stream.
func (w *Window) fill(keep int64) error {
	if drop := keep - w.base; drop > 0 {
		if drop > int64(len(w.buf)) {
			drop = int64(len(w.buf))
		}
		n := copy(w.buf, w.buf[drop:])
		w.buf = w.buf[:n]
		w.base += drop
	}
	if cap(w.buf)-len(w.buf) < w.chunk {
		grown := make([]byte, len(w.buf), len(w.buf)+w.chunk)
		copy(grown, w.buf)
		w.buf = grown
	}

	n, err := io.ReadFull(w.r, w.buf[len(w.buf):len(w.buf)+w.chunk])
	w.buf = w.buf[:len(w.buf)+n]
	w.read += int64(n)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		w.eof = true
		return nil
	default:
		return err
	}
}

// ReverseReader yields the bytes of src[lo:hi] from hi toward lo.
type ReverseReader struct {
	src io.ReaderAt
	lo  int64
	pos int64
}

// NewReverseReader returns a reader over src[lo:hi] in reverse byte order.
func NewReverseReader(src io.ReaderAt, lo, hi int64) *ReverseReader {
	return &ReverseReader{src: src, lo: lo, pos: hi}
}

// Read fills p with the next bytes before the current position, reversed.
func (r *ReverseReader) Read(p []byte) (int, error) {
	if r.pos <= r.lo {
		return 0, io.EOF
	}
	n := min(int64(len(p)), r.pos-r.lo)
	start := r.pos - n
	m, err := r.src.ReadAt(p[:n], start)
	if int64(m) < n {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	reverse(p[:n])
	r.pos = start
	return int(n), nil
}

// IndexAny returns the offset of the first occurrence in src[lo:hi] of any
// pattern and which pattern matched. found is false if none occurs.
func IndexAny(src io.ReaderAt, lo, hi int64, chunk int, patterns ...[]byte) (off int64, which int, found bool, err error) {
	w := NewWindow(io.NewSectionReader(src, lo, hi-lo), chunk)
	pos, which, err := w.Find(0, patterns...)
	if errors.Is(err, io.EOF) {
		return 0, -1, false, nil
	}
	if err != nil {
		return 0, -1, false, err
	}
	return lo + pos, which, true, nil
}

// LastIndex returns the offset of the last occurrence of pattern in src[lo:hi].
// found is false if it does not occur.
func LastIndex(src io.ReaderAt, lo, hi int64, chunk int, pattern []byte) (off int64, found bool, err error) {
	reversed := bytes.Clone(pattern)
	reverse(reversed)

	w := NewWindow(NewReverseReader(src, lo, hi), chunk)
	pos, _, err := w.Find(0, reversed)
	if errors.Is(err, io.EOF) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return hi - pos - int64(len(pattern)), true, nil
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
