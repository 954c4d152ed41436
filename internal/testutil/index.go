package testutil

import (
	"regexp"
	"slices"
	"strings"
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/meigma/mzml/internal/fb"
)

var idAttr = regexp.MustCompile(`\sid="([^"]*)"`)

// ScanOffsets finds every element opened with "<"+name+" " in data by plain
// string search and maps its id attribute to the offset of the "<".
// It is an independent reference for the streaming indexer.
func ScanOffsets(data []byte, name string) map[string]uint64 {
	text := string(data)
	open := "<" + name + " "
	out := make(map[string]uint64)
	for pos := 0; ; {
		i := strings.Index(text[pos:], open)
		if i < 0 {
			return out
		}
		start := pos + i
		end := strings.IndexByte(text[start:], '>')
		if end < 0 {
			return out
		}
		if m := idAttr.FindStringSubmatch(text[start : start+end]); m != nil {
			out[m[1]] = uint64(start)
		}
		pos = start + len(open)
	}
}

// BuildTestIndex encodes a persisted index buffer directly, bypassing the
// index package, so tests can produce versions and layouts it would refuse
// to write.
func BuildTestIndex(tb testing.TB, version uint32, spectra, chromatograms map[string]uint64) []byte {
	tb.Helper()

	builder := flatbuffers.NewBuilder(1024)
	spec := buildTestRecords(builder, spectra, fb.IndexStartSpectraVector)
	chrom := buildTestRecords(builder, chromatograms, fb.IndexStartChromatogramsVector)

	fb.IndexStart(builder)
	fb.IndexAddVersion(builder, version)
	fb.IndexAddSpectra(builder, spec)
	fb.IndexAddChromatograms(builder, chrom)
	fb.FinishIndexBuffer(builder, fb.IndexEnd(builder))
	return builder.FinishedBytes()
}

func buildTestRecords(builder *flatbuffers.Builder, records map[string]uint64, startVector func(*flatbuffers.Builder, int) flatbuffers.UOffsetT) flatbuffers.UOffsetT {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	offsets := make([]flatbuffers.UOffsetT, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		idOffset := builder.CreateString(ids[i])
		fb.RecordStart(builder)
		fb.RecordAddId(builder, idOffset)
		fb.RecordAddOffset(builder, records[ids[i]])
		offsets[i] = fb.RecordEnd(builder)
	}
	startVector(builder, len(offsets))
	for i := len(offsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(offsets[i])
	}
	return builder.EndVector(len(offsets))
}
