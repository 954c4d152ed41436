package mzmltype

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shellDoc() *PlainDocument {
	return &PlainDocument{MzML: MzML{
		Attrs:   defaultRootAttrs("http://psi.hupo.org/ms/mzml http://psidev.info/files/ms/mzML/xsd/mzML1.1.0.xsd"),
		Version: "1.1.0",
		Run: Run{
			ID:               "run1",
			SpectrumList:     &SpectrumList{Count: 3, DefaultDataProcessingRef: "dp"},
			ChromatogramList: &ChromatogramList{Count: 1, DefaultDataProcessingRef: "dp2"},
		},
	}}
}

func TestWithRecords(t *testing.T) {
	t.Parallel()

	doc := shellDoc()
	spectra := []Spectrum{{Index: 2, ID: "scan=3"}}
	out := WithRecords(doc, spectra, nil)

	run := out.Root().Run
	require.NotNil(t, run.SpectrumList)
	assert.Equal(t, 1, run.SpectrumList.Count)
	assert.Equal(t, "dp", run.SpectrumList.DefaultDataProcessingRef)
	assert.Equal(t, spectra, run.SpectrumList.Spectra)
	assert.Nil(t, run.ChromatogramList, "empty lists are omitted")

	assert.Equal(t, 3, doc.MzML.Run.SpectrumList.Count, "source shell is unchanged")
	assert.Equal(t, VariantPlain, out.Variant())
}

func TestVariantConversion(t *testing.T) {
	t.Parallel()

	indexed := ToIndexed(shellDoc())
	assert.Equal(t, VariantIndexed, indexed.Variant())
	assert.Equal(t, "run1", indexed.Root().Run.ID)
	assert.True(t, hasAttr(indexed.Attrs, "xmlns"))

	indexed.IndexListOffset = 42
	indexed.FileChecksum = "abc"
	again := ToIndexed(indexed)
	assert.Zero(t, again.IndexListOffset)
	assert.Empty(t, again.FileChecksum)
	assert.Equal(t, uint64(42), indexed.IndexListOffset)

	// An mzML element nested in indexedmzML may rely on inherited namespaces.
	nested := &IndexedDocument{MzML: MzML{
		Attrs: []xml.Attr{{Name: xml.Name{Local: "xsi:schemaLocation"}, Value: "loc"}},
	}}
	plain := ToPlain(nested)
	assert.True(t, hasAttr(plain.MzML.Attrs, "xmlns"))
	assert.True(t, hasAttr(plain.MzML.Attrs, "xmlns:xsi"))
	assert.Len(t, nested.MzML.Attrs, 1)
}

func TestLiteralAttrs(t *testing.T) {
	t.Parallel()

	attrs := []xml.Attr{
		{Name: xml.Name{Local: "xmlns"}, Value: Namespace},
		{Name: xml.Name{Space: "xmlns", Local: "xsi"}, Value: XSINamespace},
		{Name: xml.Name{Space: XSINamespace, Local: "schemaLocation"}, Value: "loc"},
		{Name: xml.Name{Local: "version"}, Value: "1.1.0"},
	}
	out, scope := LiteralAttrs(attrs, nil)
	names := make([]string, 0, len(out))
	for _, a := range out {
		names = append(names, a.Name.Local)
	}
	assert.Equal(t, []string{"xmlns", "xmlns:xsi", "xsi:schemaLocation", "version"}, names)
	assert.Equal(t, "xsi", scope[XSINamespace])

	inner, _ := LiteralAttrs([]xml.Attr{{Name: xml.Name{Space: XSINamespace, Local: "type"}, Value: "x"}}, scope)
	assert.Equal(t, "xsi:type", inner[0].Name.Local, "prefix inherited from the enclosing scope")
}

func TestPrecursorParentID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		p            Precursor
		wantID       string
		wantExternal bool
	}{
		{"local", Precursor{SpectrumRef: "scan=1"}, "scan=1", false},
		{"external", Precursor{SourceFileRef: "sf1", ExternalSpectrumID: "scan=9"}, "sf1" + ExternalRefSeparator + "scan=9", true},
		{"none", Precursor{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, external := tt.p.ParentID()
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantExternal, external)
		})
	}
}

func TestParamAccessors(t *testing.T) {
	t.Parallel()

	s := Spectrum{ParamGroup: ParamGroup{CvParams: []CvParam{
		{Accession: AccMSLevel, Value: "2"},
		{Accession: "MS:1000127"},
	}}}
	assert.Equal(t, 2, s.MSLevel())
	assert.True(t, s.Has("MS:1000127"))
	_, ok := s.ScanStartTime()
	assert.False(t, ok)

	p := Precursor{
		IsolationWindow: &ParamGroup{CvParams: []CvParam{
			{Accession: AccIsolationTarget, Value: "445.3"},
			{Accession: AccIsolationLowerOffset, Value: "0.5"},
		}},
		SelectedIonList: &SelectedIonList{Ions: []ParamGroup{
			{CvParams: []CvParam{{Accession: AccSelectedIonMZ, Value: "445.34"}, {Accession: AccChargeState, Value: "2"}}},
			{CvParams: []CvParam{{Accession: AccChargeState, Value: "3"}}},
		}},
	}
	target, lower, upper, ok := p.IsolationWindowBounds()
	require.True(t, ok)
	assert.InDelta(t, 445.3, target, 1e-9)
	assert.InDelta(t, 0.5, lower, 1e-9)
	assert.Zero(t, upper)
	assert.Equal(t, []SelectedIon{{MZ: 445.34, Charge: 2}}, p.SelectedIons(), "ions without an m/z are skipped")

	assert.Equal(t, "chromatogram", KindChromatogram.String())
	assert.Equal(t, RootIndexed, VariantIndexed.String())
}
