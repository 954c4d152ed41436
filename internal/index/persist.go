package index

import (
	"errors"
	"fmt"
	"slices"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/mzml/internal/fb"
	"github.com/meigma/mzml/internal/mzmltype"
)

// formatVersion is the persisted index format version.
const formatVersion = 1

// MarshalBinary encodes idx as a FlatBuffers buffer (schema/index.fbs).
// Records are sorted by id.
func (idx *Index) MarshalBinary() ([]byte, error) {
	builder := flatbuffers.NewBuilder(1024 + 64*(len(idx.spectra)+len(idx.chromatograms)))

	spectra := buildRecords(builder, idx.spectra, fb.IndexStartSpectraVector)
	chromatograms := buildRecords(builder, idx.chromatograms, fb.IndexStartChromatogramsVector)

	var fpOffset flatbuffers.UOffsetT
	if idx.fingerprint != "" {
		fpOffset = builder.CreateString(idx.fingerprint.String())
	}

	fb.IndexStart(builder)
	fb.IndexAddVersion(builder, formatVersion)
	fb.IndexAddSourceSize(builder, idx.sourceSize)
	if idx.fingerprint != "" {
		fb.IndexAddSourceFingerprint(builder, fpOffset)
	}
	fb.IndexAddSpectra(builder, spectra)
	fb.IndexAddChromatograms(builder, chromatograms)
	fb.FinishIndexBuffer(builder, fb.IndexEnd(builder))

	return builder.FinishedBytes(), nil
}

func buildRecords(builder *flatbuffers.Builder, table map[string]uint64, startVector func(*flatbuffers.Builder, int) flatbuffers.UOffsetT) flatbuffers.UOffsetT {
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	offsets := make([]flatbuffers.UOffsetT, len(ids))
	for i, id := range ids {
		idOffset := builder.CreateString(id)
		fb.RecordStart(builder)
		fb.RecordAddId(builder, idOffset)
		fb.RecordAddOffset(builder, table[id])
		offsets[i] = fb.RecordEnd(builder)
	}

	startVector(builder, len(offsets))
	for i := len(offsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(offsets[i])
	}
	return builder.EndVector(len(offsets))
}

// Load decodes an index produced by MarshalBinary.
func Load(data []byte) (idx *Index, err error) {
	defer func() {
		if r := recover(); r != nil {
			idx = nil
			err = fmt.Errorf("mzml: failed to parse index: %v", r)
		}
	}()
	if len(data) == 0 {
		return nil, errors.New("mzml: empty index data")
	}

	root := fb.GetRootAsIndex(data, 0)
	if v := root.Version(); v != formatVersion {
		return nil, fmt.Errorf("mzml: unsupported index version %d", v)
	}

	idx = newIndex()
	idx.sourceSize = root.SourceSize()
	if raw := root.SourceFingerprint(); len(raw) > 0 {
		fp, err := digest.Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("mzml: index fingerprint: %w", err)
		}
		idx.fingerprint = fp
	}

	var rec fb.Record
	for i := range root.SpectraLength() {
		if root.Spectra(&rec, i) {
			idx.spectra[string(rec.Id())] = rec.Offset()
		}
	}
	for i := range root.ChromatogramsLength() {
		if root.Chromatograms(&rec, i) {
			idx.chromatograms[string(rec.Id())] = rec.Offset()
		}
	}
	if len(idx.spectra) != root.SpectraLength() || len(idx.chromatograms) != root.ChromatogramsLength() {
		return nil, &mzmltype.StructuralError{Element: "persisted index", Expected: "unique record ids", Found: "duplicates"}
	}
	return idx, nil
}
