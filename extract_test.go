package mzml

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // indexedmzML checksums are SHA-1
	"encoding/hex"
	"encoding/xml"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/mzml/internal/mzmltype"
	"github.com/meigma/mzml/internal/testutil"
)

func requireChecksum(t *testing.T, out []byte) {
	t.Helper()
	open := bytes.LastIndex(out, []byte("<fileChecksum>"))
	require.GreaterOrEqual(t, open, 0)
	open += len("<fileChecksum>")
	end := bytes.Index(out[open:], []byte("</fileChecksum>"))
	require.GreaterOrEqual(t, end, 0)

	sum := sha1.Sum(out[:open]) //nolint:gosec // format-mandated
	assert.Equal(t, hex.EncodeToString(sum[:]), string(out[open:open+end]))
}

func requireIndexListOffset(t *testing.T, out []byte) {
	t.Helper()
	var doc mzmltype.IndexedDocument
	require.NoError(t, xml.Unmarshal(out, &doc))
	assert.Equal(t, uint64(bytes.Index(out, []byte("<indexList "))), doc.IndexListOffset) //nolint:gosec // test data
}

func TestExtract_Plain(t *testing.T) {
	t.Parallel()

	src := openFixture(t, testutil.MzML())
	id := testutil.SpectrumID(7)
	out, err := Extract(src, []string{id})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte(xml.Header)))

	got := openFixture(t, out)
	assert.Equal(t, VariantPlain, got.Variant())
	assert.Equal(t, []string{id}, got.SpectrumIDs())
	assert.Empty(t, got.ChromatogramIDs())
	assert.Equal(t, 1, got.Document().Root().Run.SpectrumList.Count)
	assert.Equal(t, src.Document().Root().FileDescription, got.Document().Root().FileDescription)

	want, err := src.Spectrum(id)
	require.NoError(t, err)
	have, err := got.Spectrum(id)
	require.NoError(t, err)
	assert.Equal(t, want, have)
}

func TestExtract_Ancestors(t *testing.T) {
	t.Parallel()

	src := openFixture(t, testutil.MzML(testutil.Indexed()))
	tests := []struct {
		name string
		ids  []string
		opts []ExtractOption
		want []string
	}{
		{"target only", []string{testutil.SpectrumID(3)}, nil, []string{testutil.SpectrumID(3)}},
		{
			"with parent", []string{testutil.SpectrumID(3)}, []ExtractOption{WithAncestors()},
			[]string{testutil.SpectrumID(0), testutil.SpectrumID(3)},
		},
		{
			"several targets in index order", []string{testutil.SpectrumID(9), testutil.SpectrumID(2)}, []ExtractOption{WithAncestors()},
			[]string{testutil.SpectrumID(0), testutil.SpectrumID(2), testutil.SpectrumID(5), testutil.SpectrumID(9)},
		},
		{
			"MS1 has no ancestors", []string{testutil.SpectrumID(5)}, []ExtractOption{WithAncestors()},
			[]string{testutil.SpectrumID(5)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := Extract(src, tt.ids, tt.opts...)
			require.NoError(t, err)
			got := openFixture(t, out)
			assert.Equal(t, tt.want, got.SpectrumIDs())

			for i, id := range tt.want {
				s, err := got.Spectrum(id)
				require.NoError(t, err)
				orig, err := src.Spectrum(id)
				require.NoError(t, err)
				assert.Equal(t, orig.Index, s.Index, "record %d keeps its original index", i)
			}
		})
	}
}

func TestExtract_Indexed(t *testing.T) {
	t.Parallel()

	src := openFixture(t, testutil.MzML(testutil.Indexed()))
	out, err := Extract(src, []string{testutil.SpectrumID(4)}, WithAncestors(), WithChromatograms(testutil.TICID))
	require.NoError(t, err)

	requireChecksum(t, out)
	requireIndexListOffset(t, out)

	got := openFixture(t, out)
	assert.Equal(t, VariantIndexed, got.Variant())
	assert.Equal(t, []string{testutil.SpectrumID(0), testutil.SpectrumID(4)}, got.SpectrumIDs())
	assert.Equal(t, []string{testutil.TICID}, got.ChromatogramIDs())

	rescanned := openFixture(t, out, WithReindex())
	assert.True(t, got.Index().Equal(rescanned.Index()), "embedded index matches a rescan")

	for _, id := range got.SpectrumIDs() {
		want, err := src.Spectrum(id)
		require.NoError(t, err)
		have, err := got.Spectrum(id)
		require.NoError(t, err)
		assert.Equal(t, want, have)
	}
	wantC, err := src.Chromatogram(testutil.TICID)
	require.NoError(t, err)
	haveC, err := got.Chromatogram(testutil.TICID)
	require.NoError(t, err)
	assert.Equal(t, wantC, haveC)
}

func TestExtract_Idempotent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fixture []testutil.FixtureOption
		opts    []ExtractOption
	}{
		{"plain", nil, nil},
		{"indexed", []testutil.FixtureOption{testutil.Indexed()}, nil},
		{"indexed with ancestors", []testutil.FixtureOption{testutil.Indexed()}, []ExtractOption{WithAncestors(), WithChromatograms(testutil.TICID)}},
		{"plain to indexed", nil, []ExtractOption{WithVariant(VariantIndexed)}},
		{"indexed to plain", []testutil.FixtureOption{testutil.Indexed()}, []ExtractOption{WithVariant(VariantPlain)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ids := []string{testutil.SpectrumID(8)}

			first, err := Extract(openFixture(t, testutil.MzML(tt.fixture...)), ids, tt.opts...)
			require.NoError(t, err)
			second, err := Extract(openFixture(t, first), ids, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, string(first), string(second))
		})
	}
}

func TestExtract_VariantConversion(t *testing.T) {
	t.Parallel()

	plain := openFixture(t, testutil.MzML())
	out, err := Extract(plain, []string{testutil.SpectrumID(1)}, WithVariant(VariantIndexed))
	require.NoError(t, err)
	requireChecksum(t, out)
	requireIndexListOffset(t, out)
	assert.Equal(t, VariantIndexed, openFixture(t, out).Variant())

	indexed := openFixture(t, testutil.MzML(testutil.Indexed()))
	out, err = Extract(indexed, []string{testutil.SpectrumID(1)}, WithVariant(VariantPlain))
	require.NoError(t, err)
	assert.NotContains(t, string(out), "indexList")
	got := openFixture(t, out)
	assert.Equal(t, VariantPlain, got.Variant())
	assert.Equal(t, []string{testutil.SpectrumID(1)}, got.SpectrumIDs())
}

func TestExtract_NotFound(t *testing.T) {
	t.Parallel()

	m := NewMetrics(prometheus.NewRegistry())
	src := openFixture(t, testutil.MzML(), WithMetrics(m))

	_, err := Extract(src, []string{"scan=404"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = Extract(src, []string{testutil.SpectrumID(0)}, WithChromatograms("BPC"))
	require.ErrorIs(t, err, ErrNotFound)

	assert.InDelta(t, 2, promtest.ToFloat64(m.ExtractionsTotal.WithLabelValues("mzML", "error")), 0)
}

func TestExtract_MissingAncestor(t *testing.T) {
	t.Parallel()

	data := testutil.MzML()
	first, err := Extract(openFixture(t, data), []string{testutil.SpectrumID(1)})
	require.NoError(t, err)

	// The extracted document holds an MS2 spectrum whose parent is absent.
	_, err = Extract(openFixture(t, first), []string{testutil.SpectrumID(1)}, WithAncestors())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPatchMarkers(t *testing.T) {
	t.Parallel()

	_, err := patchIndexListOffset([]byte(`<indexedmzML><indexListOffset>0</indexListOffset>`))
	require.ErrorIs(t, err, ErrExtraction)

	_, err = patchIndexListOffset([]byte(`<indexList count="1"></indexList><indexListOffset>0`))
	require.ErrorIs(t, err, ErrExtraction)

	_, err = patchChecksum([]byte(`<indexedmzML></indexedmzML>`))
	require.ErrorIs(t, err, ErrExtraction)

	_, err = patchChecksum([]byte(`<fileChecksum>`))
	require.ErrorIs(t, err, ErrExtraction)

	out, err := patchIndexListOffset([]byte(`ab<indexList count="0"></indexList><indexListOffset>0</indexListOffset>`))
	require.NoError(t, err)
	assert.Equal(t, `ab<indexList count="0"></indexList><indexListOffset>2</indexListOffset>`, string(out))
}

func TestFixtureChecksum(t *testing.T) {
	t.Parallel()

	data := testutil.MzML(testutil.Indexed())
	requireChecksum(t, data)
	requireIndexListOffset(t, data)
}

func TestPatchChecksum_Range(t *testing.T) {
	t.Parallel()

	prefix := `<indexedmzML><fileChecksum>`
	sum := sha1.Sum([]byte(prefix)) //nolint:gosec // format-mandated
	want := prefix + hex.EncodeToString(sum[:]) + `</fileChecksum></indexedmzML>`

	for _, placeholder := range []string{"", "0", "stale-value-of-any-length"} {
		out, err := patchChecksum([]byte(prefix + placeholder + `</fileChecksum></indexedmzML>`))
		require.NoError(t, err)
		assert.Equal(t, want, string(out), "placeholder %q", placeholder)
	}
}
