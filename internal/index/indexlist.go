package index

import (
	"fmt"

	"github.com/meigma/mzml/internal/mzmltype"
)

// Names of the offset tables in an indexedmzML indexList.
const (
	listNameSpectrum     = "spectrum"
	listNameChromatogram = "chromatogram"
)

// FromIndexList converts the embedded offset tables of an indexedmzML
// document. Tables with other names are ignored.
func FromIndexList(list mzmltype.IndexList) (*Index, error) {
	if list.Count != len(list.Indexes) {
		return nil, &mzmltype.StructuralError{
			Element:  "indexList",
			Expected: fmt.Sprintf("count=%d", list.Count),
			Found:    fmt.Sprintf("%d offset tables", len(list.Indexes)),
		}
	}
	idx := newIndex()
	for _, table := range list.Indexes {
		var dst map[string]uint64
		switch table.Name {
		case listNameSpectrum:
			dst = idx.spectra
		case listNameChromatogram:
			dst = idx.chromatograms
		default:
			continue
		}
		for _, off := range table.Offsets {
			if _, dup := dst[off.IDRef]; dup {
				return nil, &mzmltype.StructuralError{
					Element:  "indexList",
					Expected: "unique idRef",
					Found:    fmt.Sprintf("%q listed twice in %s index", off.IDRef, table.Name),
				}
			}
			dst[off.IDRef] = off.Value
		}
	}
	return idx, nil
}

// IndexList converts idx to indexedmzML offset tables in document order.
// The spectrum table is always present; the chromatogram table only when
// the index holds chromatograms.
func (idx *Index) IndexList() mzmltype.IndexList {
	list := mzmltype.IndexList{
		Indexes: []mzmltype.OffsetIndex{offsetTable(idx, mzmltype.KindSpectrum, listNameSpectrum)},
	}
	if idx.Len(mzmltype.KindChromatogram) > 0 {
		list.Indexes = append(list.Indexes, offsetTable(idx, mzmltype.KindChromatogram, listNameChromatogram))
	}
	list.Count = len(list.Indexes)
	return list
}

func offsetTable(idx *Index, kind mzmltype.Kind, name string) mzmltype.OffsetIndex {
	table := mzmltype.OffsetIndex{Name: name, Offsets: make([]mzmltype.Offset, 0, idx.Len(kind))}
	for id, off := range idx.Entries(kind) {
		table.Offsets = append(table.Offsets, mzmltype.Offset{IDRef: id, Value: off})
	}
	return table
}
