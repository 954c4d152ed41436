// Package index maps spectrum and chromatogram ids to the byte offsets of
// their opening tags.
package index

import (
	"cmp"
	"iter"
	"maps"
	"slices"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/mzml/internal/mzmltype"
)

// Index maps record ids to byte offsets.
//
// An Index is immutable once built and safe for concurrent reads. Offsets are
// only meaningful against the exact bytes the index was built from; when the
// index carries a source fingerprint, Verify detects a mismatch.
type Index struct {
	spectra       map[string]uint64
	chromatograms map[string]uint64

	sourceSize  uint64
	fingerprint digest.Digest
}

func newIndex() *Index {
	return &Index{
		spectra:       make(map[string]uint64),
		chromatograms: make(map[string]uint64),
	}
}

// FromMaps builds an index from caller-supplied offsets. The maps are copied.
func FromMaps(spectra, chromatograms map[string]uint64) *Index {
	idx := newIndex()
	maps.Copy(idx.spectra, spectra)
	maps.Copy(idx.chromatograms, chromatograms)
	return idx
}

func (idx *Index) table(kind mzmltype.Kind) map[string]uint64 {
	if kind == mzmltype.KindChromatogram {
		return idx.chromatograms
	}
	return idx.spectra
}

// Offset returns the byte offset of the record with the given kind and id.
func (idx *Index) Offset(kind mzmltype.Kind, id string) (uint64, bool) {
	off, ok := idx.table(kind)[id]
	return off, ok
}

// Len returns the number of records of the given kind.
func (idx *Index) Len(kind mzmltype.Kind) int {
	return len(idx.table(kind))
}

// Entries yields (id, offset) pairs of the given kind in document order.
func (idx *Index) Entries(kind mzmltype.Kind) iter.Seq2[string, uint64] {
	ids := idx.IDs(kind)
	table := idx.table(kind)
	return func(yield func(string, uint64) bool) {
		for _, id := range ids {
			if !yield(id, table[id]) {
				return
			}
		}
	}
}

// IDs returns the ids of the given kind in document order.
func (idx *Index) IDs(kind mzmltype.Kind) []string {
	table := idx.table(kind)
	ids := slices.Collect(maps.Keys(table))
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Compare(table[a], table[b])
	})
	return ids
}

// Ordinal returns the zero-based position of id among records of its kind
// in document order.
func (idx *Index) Ordinal(kind mzmltype.Kind, id string) (int, bool) {
	table := idx.table(kind)
	off, ok := table[id]
	if !ok {
		return 0, false
	}
	n := 0
	for _, o := range table {
		if o < off {
			n++
		}
	}
	return n, true
}

// Equal reports whether both indexes hold the same ids and offsets.
// Source metadata is ignored.
func (idx *Index) Equal(other *Index) bool {
	if idx == nil || other == nil {
		return idx == other
	}
	return maps.Equal(idx.spectra, other.spectra) && maps.Equal(idx.chromatograms, other.chromatograms)
}

// SourceSize returns the size of the document the index was stamped with,
// or 0 if unstamped.
func (idx *Index) SourceSize() uint64 {
	return idx.sourceSize
}

// Fingerprint returns the source fingerprint, or "" if unstamped.
func (idx *Index) Fingerprint() digest.Digest {
	return idx.fingerprint
}

// stamped returns a copy of idx carrying source metadata.
func (idx *Index) stamped(size uint64, fp digest.Digest) *Index {
	out := *idx
	out.sourceSize = size
	out.fingerprint = fp
	return &out
}
