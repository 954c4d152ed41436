package index

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/meigma/mzml/internal/mzmltype"
	"github.com/meigma/mzml/internal/scan"
)

var (
	openMarkers = [][]byte{
		mzmltype.KindSpectrum:     []byte("<spectrum "),
		mzmltype.KindChromatogram: []byte("<chromatogram "),
	}
	closeMarkers = [][]byte{
		mzmltype.KindSpectrum:     []byte("</spectrum>"),
		mzmltype.KindChromatogram: []byte("</chromatogram>"),
	}
	idAttr = []byte(`id="`)
)

// Stats describes a completed scan.
type Stats struct {
	BytesRead int64
}

// Build scans r once and records the offset of every spectrum and
// chromatogram opening tag. Memory is bounded by the chunk size plus the
// largest single record.
func Build(r io.Reader, chunkSize int) (*Index, Stats, error) {
	w := scan.NewWindow(r, chunkSize)
	idx := newIndex()

	var from int64
	for {
		w.Release()
		open, which, err := w.Find(from, openMarkers...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, Stats{BytesRead: w.BytesRead()}, fmt.Errorf("scan for record: %w", err)
		}
		kind := mzmltype.Kind(which) //nolint:gosec // which indexes openMarkers

		w.Retain(open)
		end, _, err := w.Find(open+int64(len(openMarkers[kind])), closeMarkers[kind])
		if errors.Is(err, io.EOF) {
			return nil, Stats{BytesRead: w.BytesRead()}, fmt.Errorf("%w: %w", mzmltype.ErrTagNotClosed, &mzmltype.StructuralError{
				Element:  kind.String(),
				Expected: string(closeMarkers[kind]),
				Found:    "end of input",
				Offset:   open,
			})
		}
		if err != nil {
			return nil, Stats{BytesRead: w.BytesRead()}, fmt.Errorf("scan for %s: %w", closeMarkers[kind], err)
		}

		id, ok := elementID(w.Bytes(open, end))
		if !ok {
			return nil, Stats{BytesRead: w.BytesRead()}, &mzmltype.StructuralError{
				Element:  kind.String(),
				Expected: `id="..." attribute`,
				Offset:   open,
			}
		}
		table := idx.table(kind)
		if prev, dup := table[id]; dup {
			return nil, Stats{BytesRead: w.BytesRead()}, &mzmltype.StructuralError{
				Element:  kind.String(),
				Expected: "unique id",
				Found:    fmt.Sprintf("%q also at offset %d", id, prev),
				Offset:   open,
			}
		}
		table[id] = uint64(open) //nolint:gosec // stream positions are non-negative

		from = end + int64(len(closeMarkers[kind]))
	}
	return idx, Stats{BytesRead: w.BytesRead()}, nil
}

// elementID returns the id attribute of the opening tag at the start of b.
func elementID(b []byte) (string, bool) {
	if end := bytes.IndexByte(b, '>'); end >= 0 {
		b = b[:end]
	}
	for i := 0; ; {
		j := bytes.Index(b[i:], idAttr)
		if j < 0 {
			return "", false
		}
		at := i + j
		i = at + len(idAttr)
		if at == 0 || !isSpace(b[at-1]) {
			continue
		}
		valEnd := bytes.IndexByte(b[i:], '"')
		if valEnd < 0 {
			return "", false
		}
		id := b[i : i+valEnd]
		if bytes.IndexByte(id, '&') >= 0 {
			return unescapeAttr(id)
		}
		return string(id), true
	}
}

// unescapeAttr resolves the entity and character references in a raw
// attribute value.
func unescapeAttr(raw []byte) (string, bool) {
	tag := make([]byte, 0, len(raw)+len(`<a id=""/>`))
	tag = append(tag, `<a id="`...)
	tag = append(tag, raw...)
	tag = append(tag, `"/>`...)
	var v struct {
		ID string `xml:"id,attr"`
	}
	if err := xml.Unmarshal(tag, &v); err != nil {
		return "", false
	}
	return v.ID, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
