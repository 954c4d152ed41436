package mzml

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/mzml/internal/testutil"
	"github.com/meigma/mzml/ontology"
	"github.com/meigma/mzml/validation"
)

func openFixture(tb testing.TB, data []byte, opts ...Option) *Reader {
	tb.Helper()
	r, err := Open(testutil.NewMockByteSource(data), opts...)
	require.NoError(tb, err, "Open failed")
	return r
}

func fixtureValidator() *validation.Validator {
	reg := ontology.NewRegistry()
	reg.Register("MS", ontology.BytesSource{Name: "psi-ms fixture", Data: []byte(testutil.PSIMSOBO)})
	reg.Register("UO", ontology.BytesSource{Name: "uo fixture", Data: []byte(testutil.UOOBO)})
	return validation.New(reg)
}

// withExtraCentroidTerm gives every spectrum a second spectrum representation.
func withExtraCentroidTerm() testutil.FixtureOption {
	return testutil.WithMutation(func(s string) string {
		return strings.ReplaceAll(s,
			`<cvParam cvRef="MS" accession="MS:1000127" name="centroid spectrum" value=""/>`,
			`<cvParam cvRef="MS" accession="MS:1000127" name="centroid spectrum" value=""/><cvParam cvRef="MS" accession="MS:1000128" name="profile spectrum" value=""/>`)
	})
}

func TestOpen_IndexStrategies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fixture  []testutil.FixtureOption
		opts     []Option
		variant  Variant
		strategy string
	}{
		{"plain scans", nil, nil, VariantPlain, strategyScan},
		{"indexed uses embedded", []testutil.FixtureOption{testutil.Indexed()}, nil, VariantIndexed, strategyEmbedded},
		{"reindex forces scan", []testutil.FixtureOption{testutil.Indexed()}, []Option{WithReindex()}, VariantIndexed, strategyScan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewMetrics(prometheus.NewRegistry())
			r := openFixture(t, testutil.MzML(tt.fixture...), append(tt.opts, WithMetrics(m))...)

			assert.Equal(t, tt.variant, r.Variant())
			assert.Len(t, r.SpectrumIDs(), 11)
			assert.Equal(t, []string{testutil.TICID}, r.ChromatogramIDs())
			assert.InDelta(t, 1, promtest.ToFloat64(m.IndexBuildsTotal.WithLabelValues(tt.strategy)), 0)
			if tt.strategy == strategyScan {
				assert.Equal(t, float64(r.Size()), promtest.ToFloat64(m.IndexBytesScannedTotal))
			} else {
				assert.Zero(t, promtest.ToFloat64(m.IndexBytesScannedTotal))
			}
		})
	}
}

func TestOpen_EmbeddedIndexMatchesRescan(t *testing.T) {
	t.Parallel()

	data := testutil.MzML(testutil.Indexed())
	embedded := openFixture(t, data)
	rescanned := openFixture(t, data, WithReindex())
	assert.True(t, embedded.Index().Equal(rescanned.Index()))
}

func TestOpen_Shell(t *testing.T) {
	t.Parallel()

	for _, indexed := range []bool{false, true} {
		var opts []testutil.FixtureOption
		if indexed {
			opts = append(opts, testutil.Indexed())
		}
		m := openFixture(t, testutil.MzML(opts...)).Document().Root()

		assert.Equal(t, "fixture", m.ID)
		assert.Equal(t, "1.1.0", m.Version)
		assert.Len(t, m.CVList.CVs, 2)
		assert.Equal(t, "IC1", m.InstrumentConfigurationList.Configs[0].ID)
		assert.Equal(t, "fixture", m.Run.ID)

		require.NotNil(t, m.Run.SpectrumList)
		assert.Equal(t, 11, m.Run.SpectrumList.Count)
		assert.Equal(t, "pwiz_conversion", m.Run.SpectrumList.DefaultDataProcessingRef)
		assert.Empty(t, m.Run.SpectrumList.Spectra)

		require.NotNil(t, m.Run.ChromatogramList)
		assert.Equal(t, 1, m.Run.ChromatogramList.Count)
		assert.Empty(t, m.Run.ChromatogramList.Chromatograms)
	}

	r := openFixture(t, testutil.MzML(testutil.WithoutChromatograms()))
	assert.Nil(t, r.Document().Root().Run.ChromatogramList)
	assert.Empty(t, r.ChromatogramIDs())
}

func TestOpen_StructuralErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(string) string
	}{
		{"missing run close", func(s string) string { return strings.Replace(s, "</run>", "", 1) }},
		{"unclosed record", func(s string) string { return strings.Replace(s, "</chromatogram>", "", 1) }},
		{"wrong root", func(s string) string {
			s = strings.Replace(s, "<mzML ", "<mzXML ", 1)
			return strings.Replace(s, "</mzML>", "</mzXML>", 1)
		}},
		{"spectrumList count above records", func(s string) string {
			return strings.Replace(s, `<spectrumList count="11"`, `<spectrumList count="12"`, 1)
		}},
		{"spectrumList count below records", func(s string) string {
			return strings.Replace(s, `<spectrumList count="11"`, `<spectrumList count="3"`, 1)
		}},
		{"chromatogramList count", func(s string) string {
			return strings.Replace(s, `<chromatogramList count="1"`, `<chromatogramList count="2"`, 1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Open(testutil.NewMockByteSource(testutil.MzML(testutil.WithMutation(tt.mutate))))
			require.ErrorIs(t, err, ErrStructure)
		})
	}
}

func TestOpen_ListCountMismatch(t *testing.T) {
	t.Parallel()

	t.Run("spectrumList", func(t *testing.T) {
		t.Parallel()
		for _, indexed := range []bool{false, true} {
			opts := []testutil.FixtureOption{testutil.WithMutation(func(s string) string {
				return strings.Replace(s, `<spectrumList count="11"`, `<spectrumList count="3"`, 1)
			})}
			if indexed {
				opts = append(opts, testutil.Indexed())
			}
			_, err := Open(testutil.NewMockByteSource(testutil.MzML(opts...)))
			require.ErrorIs(t, err, ErrStructure)

			var serr *StructuralError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, "spectrumList", serr.Element)
			assert.Equal(t, "count=3", serr.Expected)
			assert.Equal(t, "11 indexed", serr.Found)
		}
	})

	t.Run("embedded indexList", func(t *testing.T) {
		t.Parallel()
		data := testutil.MzML(testutil.Indexed())
		mutated := bytes.Replace(data, []byte(`<indexList count="2"`), []byte(`<indexList count="5"`), 1)
		require.NotEqual(t, data, mutated)

		_, err := Open(testutil.NewMockByteSource(mutated))
		require.ErrorIs(t, err, ErrStructure)

		var serr *StructuralError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "indexList", serr.Element)

		_, err = Open(testutil.NewMockByteSource(mutated), WithReindex())
		require.NoError(t, err)
	})
}

func TestReader_Spectrum(t *testing.T) {
	t.Parallel()

	for _, indexed := range []bool{false, true} {
		var opts []testutil.FixtureOption
		if indexed {
			opts = append(opts, testutil.Indexed())
		}
		r := openFixture(t, testutil.MzML(opts...))

		for i := range 11 {
			s, err := r.Spectrum(testutil.SpectrumID(i))
			require.NoError(t, err)
			assert.Equal(t, testutil.SpectrumID(i), s.ID)
			assert.Equal(t, i, s.Index)
			assert.Equal(t, testutil.MSLevel(i), s.MSLevel())

			mz, err := s.MZ()
			require.NoError(t, err)
			assert.Equal(t, testutil.SpectrumMZ(i), mz)
			intensity, err := s.Intensity()
			require.NoError(t, err)
			assert.Equal(t, testutil.SpectrumIntensity(i), intensity)

			rt, ok := s.ScanStartTime()
			require.True(t, ok)
			assert.InDelta(t, testutil.ScanStartTime(i), rt, 0)

			if testutil.MSLevel(i) == 1 {
				assert.Empty(t, s.Precursors())
				continue
			}
			require.Len(t, s.Precursors(), 1)
			p := s.Precursors()[0]
			parent, external := p.ParentID()
			assert.False(t, external)
			assert.Equal(t, testutil.SpectrumID(testutil.ParentIndex(i)), parent)
			assert.Equal(t, []SelectedIon{{MZ: testutil.PrecursorMZ(i), Charge: 2}}, p.SelectedIons())
		}
	}
}

func TestReader_Chromatogram(t *testing.T) {
	t.Parallel()

	r := openFixture(t, testutil.MzML(testutil.Indexed()))
	c, err := r.Chromatogram(testutil.TICID)
	require.NoError(t, err)
	assert.Equal(t, testutil.TICID, c.ID)

	times, err := c.Time()
	require.NoError(t, err)
	require.Len(t, times, 11)
	assert.InDelta(t, testutil.ScanStartTime(10), times[10], 0)
}

func TestReader_NotFound(t *testing.T) {
	t.Parallel()

	m := NewMetrics(prometheus.NewRegistry())
	r := openFixture(t, testutil.MzML(), WithMetrics(m))

	_, err := r.Spectrum("scan=0")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.Chromatogram(testutil.SpectrumID(0))
	require.ErrorIs(t, err, ErrNotFound, "ids are looked up per kind")
	assert.InDelta(t, 1, promtest.ToFloat64(m.RecordReadFailuresTotal.WithLabelValues("spectrum", "not_found")), 0)
}

func TestReader_ReadCostIsBoundedByRecord(t *testing.T) {
	t.Parallel()

	data := testutil.MzML(testutil.WithSpectra(200))
	src := testutil.NewCountingByteSource(data)
	r, err := Open(src, WithChunkSize(512))
	require.NoError(t, err)

	for _, i := range []int{0, 100, 199} {
		src.Reset()
		_, err := r.Spectrum(testutil.SpectrumID(i))
		require.NoError(t, err)
		assert.Less(t, src.BytesRead(), int64(len(data)/20), "spectrum %d", i)
	}
}

func TestReader_MaxRecordSize(t *testing.T) {
	t.Parallel()

	m := NewMetrics(prometheus.NewRegistry())
	r := openFixture(t, testutil.MzML(), WithMaxRecordSize(256), WithMetrics(m))
	_, err := r.Spectrum(testutil.SpectrumID(3))
	require.ErrorIs(t, err, ErrRecordTooLarge)
	assert.InDelta(t, 1, promtest.ToFloat64(m.RecordReadFailuresTotal.WithLabelValues("spectrum", "too_large")), 0)
}

func TestReader_SuppliedIndex(t *testing.T) {
	t.Parallel()

	data := testutil.MzML()
	src := testutil.NewMockByteSource(data)
	idx, err := BuildIndex(src, 0)
	require.NoError(t, err)

	r, err := Open(src, WithIndex(idx))
	require.NoError(t, err)
	_, err = r.Spectrum(testutil.SpectrumID(5))
	require.NoError(t, err)

	t.Run("stale", func(t *testing.T) {
		t.Parallel()
		edited := testutil.MzML(testutil.WithSpectra(12))
		_, err := Open(testutil.NewMockByteSource(edited), WithIndex(idx))
		require.ErrorIs(t, err, ErrStaleIndex)
	})

	t.Run("unstamped offsets surface as parse errors", func(t *testing.T) {
		t.Parallel()
		shifted := append([]byte("\n\n\n\n\n\n\n\n"), data...)
		bare, err := LoadIndex(testutil.BuildTestIndex(t, 1, testutil.ScanOffsets(data, "spectrum"), nil))
		require.NoError(t, err)

		r, err := Open(testutil.NewMockByteSource(shifted), WithIndex(bare))
		require.NoError(t, err)
		_, err = r.Spectrum(testutil.SpectrumID(4))
		require.ErrorIs(t, err, ErrElementParse)
	})
}

func TestReader_Iterators(t *testing.T) {
	t.Parallel()

	r := openFixture(t, testutil.MzML(testutil.Indexed()))
	var ids []string
	for s, err := range r.Spectra() {
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}
	assert.Equal(t, r.SpectrumIDs(), ids)

	n := 0
	for c, err := range r.Chromatograms() {
		require.NoError(t, err)
		assert.Equal(t, testutil.TICID, c.ID)
		n++
	}
	assert.Equal(t, 1, n)
}

func TestReader_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := openFixture(t, testutil.MzML(), WithMetrics(m))
	for _, id := range r.SpectrumIDs()[:3] {
		_, err := r.Spectrum(id)
		require.NoError(t, err)
	}
	assert.InDelta(t, 3, promtest.ToFloat64(m.RecordsReadTotal.WithLabelValues("spectrum")), 0)
	assert.Equal(t, 1, promtest.CollectAndCount(m.RecordReadDuration))
}

func TestReader_Validation(t *testing.T) {
	t.Parallel()

	t.Run("fixture passes", func(t *testing.T) {
		t.Parallel()
		r := openFixture(t, testutil.MzML(), WithValidation(fixtureValidator()), WithRecordValidation())
		for s, err := range r.Spectra() {
			require.NoError(t, err)
			require.NotNil(t, s)
		}
		require.NoError(t, r.Validate(context.Background(), fixtureValidator()))
	})

	t.Run("shell violation fails open", func(t *testing.T) {
		t.Parallel()
		data := testutil.MzML(testutil.WithMutation(func(s string) string {
			return strings.Replace(s, `<cvParam cvRef="MS" accession="MS:1000484" name="orbitrap" value=""/>`, "", 1)
		}))
		_, err := Open(testutil.NewMockByteSource(data), WithValidation(fixtureValidator()))
		require.ErrorIs(t, err, ErrValidation)

		r := openFixture(t, data)
		require.NotNil(t, r, "validation is optional")
	})

	t.Run("record violation", func(t *testing.T) {
		t.Parallel()
		m := NewMetrics(prometheus.NewRegistry())
		data := testutil.MzML(withExtraCentroidTerm())
		r := openFixture(t, data, WithValidation(fixtureValidator()), WithRecordValidation(), WithMetrics(m))
		_, err := r.Spectrum(testutil.SpectrumID(0))
		require.ErrorIs(t, err, ErrValidation)
		assert.InDelta(t, 1, promtest.ToFloat64(m.ValidationFailuresTotal.WithLabelValues("spectrum")), 0)

		r = openFixture(t, data, WithValidation(fixtureValidator()))
		_, err = r.Spectrum(testutil.SpectrumID(0))
		require.NoError(t, err, "records are only validated on request")
	})

	t.Run("validate joins violations", func(t *testing.T) {
		t.Parallel()
		r := openFixture(t, testutil.MzML(withExtraCentroidTerm()))
		err := r.Validate(context.Background(), fixtureValidator())
		require.ErrorIs(t, err, ErrValidation)

		var joined interface{ Unwrap() []error }
		require.ErrorAs(t, err, &joined)
		assert.Len(t, joined.Unwrap(), 11)
	})

	t.Run("workers report in document order", func(t *testing.T) {
		t.Parallel()
		data := testutil.MzML(withExtraCentroidTerm(), testutil.WithSpectra(40))
		serial := openFixture(t, data, WithWorkers(-1)).Validate(context.Background(), fixtureValidator())
		parallel := openFixture(t, data, WithWorkers(4)).Validate(context.Background(), fixtureValidator())
		require.ErrorIs(t, parallel, ErrValidation)
		assert.Equal(t, serial.Error(), parallel.Error())
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := openFixture(t, testutil.MzML())
		require.ErrorIs(t, r.Validate(ctx, fixtureValidator()), context.Canceled)
	})
}

func TestDecodeListHeader(t *testing.T) {
	t.Parallel()

	data := []byte(`<run><spectrumList count="3" defaultDataProcessingRef="dp"><spectrum`)
	src := testutil.NewMockByteSource(data)
	var list SpectrumList
	require.NoError(t, decodeListHeader(src, int64(bytes.Index(data, []byte("<spectrumList"))), src.Size(), 8, "spectrumList", &list))
	assert.Equal(t, 3, list.Count)
	assert.Equal(t, "dp", list.DefaultDataProcessingRef)

	empty := []byte(`<spectrumList count="0" defaultDataProcessingRef="dp"/>`)
	src = testutil.NewMockByteSource(empty)
	list = SpectrumList{}
	require.NoError(t, decodeListHeader(src, 0, src.Size(), 8, "spectrumList", &list))
	assert.Equal(t, 0, list.Count)
}
