package validation

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/mzml/internal/mzmltype"
	"github.com/meigma/mzml/internal/testutil"
	"github.com/meigma/mzml/ontology"
)

func fixtureRegistry() *ontology.Registry {
	r := ontology.NewRegistry()
	r.Register("MS", ontology.BytesSource{Name: "psi-ms fixture", Data: []byte(testutil.PSIMSOBO)})
	r.Register("UO", ontology.BytesSource{Name: "uo fixture", Data: []byte(testutil.UOOBO)})
	return r
}

func fixtureDocument(t *testing.T) *mzmltype.MzML {
	t.Helper()
	var m mzmltype.MzML
	require.NoError(t, xml.Unmarshal(testutil.MzML(), &m))
	require.NotNil(t, m.Run.SpectrumList)
	return &m
}

func param(acc string) mzmltype.CvParam {
	return mzmltype.CvParam{CVRef: ontology.Prefix(acc), Accession: acc}
}

func group(accs ...string) *mzmltype.ParamGroup {
	g := &mzmltype.ParamGroup{}
	for _, acc := range accs {
		g.CvParams = append(g.CvParams, param(acc))
	}
	return g
}

func rules(violations []Violation) []Rule {
	var out []Rule
	for _, v := range violations {
		out = append(out, v.Rule)
	}
	return out
}

func TestValidator_FixturePasses(t *testing.T) {
	t.Parallel()

	v := New(fixtureRegistry())
	m := fixtureDocument(t)
	groups := GroupsOf(m)

	require.NoError(t, v.Shell(m))
	for i := range m.Run.SpectrumList.Spectra {
		require.NoError(t, v.Spectrum(&m.Run.SpectrumList.Spectra[i], groups))
	}
	require.NoError(t, v.Chromatogram(&m.Run.ChromatogramList.Chromatograms[0], groups))
}

func TestValidator_ExactlyOne(t *testing.T) {
	t.Parallel()

	v := New(fixtureRegistry())
	tests := []struct {
		name  string
		terms []string
		want  []Rule
	}{
		{"zero terms", nil, []Rule{RuleExactlyOne}},
		{"one term", []string{"MS:1000579"}, nil},
		{"intermediate term", []string{"MS:1000294"}, nil},
		{"two siblings", []string{"MS:1000579", "MS:1000580"}, []Rule{RuleExactlyOne}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := v.Element(KindSpectrum, "s", group(tt.terms...), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rules(got))
		})
	}
}

func TestValidator_ExactlyOneViolationDetails(t *testing.T) {
	t.Parallel()

	v := New(fixtureRegistry())
	got, err := v.Element(KindSpectrum, "spectrum[x]", group("MS:1000579", "MS:1000580"), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)

	viol := got[0]
	assert.Equal(t, "MS:1000559", viol.Parent)
	assert.Equal(t, []string{"MS:1000579", "MS:1000580"}, viol.Accessions)
	assert.Contains(t, viol.Allowed, "MS:1000294")
	assert.Contains(t, viol.String(), "MS:1000559")
}

func TestValidator_AtLeastOne(t *testing.T) {
	t.Parallel()

	v := New(fixtureRegistry())

	got, err := v.Element(KindSoftware, "software", group(), nil)
	require.NoError(t, err)
	assert.Equal(t, []Rule{RuleAtLeastOne}, rules(got))

	got, err = v.Element(KindIsolationWindow, "iw", group("MS:1000827", "MS:1000828", "MS:1000829"), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestValidator_AtMostOne(t *testing.T) {
	t.Parallel()

	v := New(fixtureRegistry())

	got, err := v.Element(KindSpectrum, "s", group("MS:1000579"), nil)
	require.NoError(t, err)
	assert.Empty(t, got, "absent optional term")

	got, err = v.Element(KindSpectrum, "s", group("MS:1000579", "MS:1000127"), nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = v.Element(KindSpectrum, "s", group("MS:1000579", "MS:1000127", "MS:1000128"), nil)
	require.NoError(t, err)
	assert.Equal(t, []Rule{RuleAtMostOne}, rules(got))
	assert.Equal(t, "MS:1000525", got[0].Parent)
}

func TestValidator_ClosedWorld(t *testing.T) {
	t.Parallel()

	v := New(fixtureRegistry())

	// Mandatory rule satisfied, but m/z belongs to no group on a spectrum.
	got, err := v.Element(KindSpectrum, "s", group("MS:1000579", "MS:1000040"), nil)
	require.NoError(t, err)
	require.Equal(t, []Rule{RuleDisallowed}, rules(got))
	assert.Equal(t, []string{"MS:1000040"}, got[0].Accessions)

	// Terms from namespaces without a vocabulary are rejected too.
	got, err = v.Element(KindSpectrum, "s", group("MS:1000579", "XX:0000001"), nil)
	require.NoError(t, err)
	assert.Equal(t, []Rule{RuleDisallowed}, rules(got))

	// AnyNumber terms are accepted in any quantity.
	got, err = v.Element(KindScan, "scan", group("MS:1000016", "MS:1000016"), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestValidator_GroupRefs(t *testing.T) {
	t.Parallel()

	v := New(fixtureRegistry())
	groups := Groups{"instrument": group("MS:1001742")}

	ic := &mzmltype.ParamGroup{GroupRefs: []mzmltype.Ref{{Ref: "instrument"}}}
	got, err := v.Element(KindInstrumentConfiguration, "ic", ic, groups)
	require.NoError(t, err)
	assert.Empty(t, got)

	ic = &mzmltype.ParamGroup{GroupRefs: []mzmltype.Ref{{Ref: "missing"}}}
	got, err = v.Element(KindInstrumentConfiguration, "ic", ic, groups)
	require.NoError(t, err)
	assert.Equal(t, []Rule{RuleGroupRef, RuleExactlyOne}, rules(got))
}

func TestValidator_Units(t *testing.T) {
	t.Parallel()

	v := New(fixtureRegistry())
	g := group("MS:1000016")
	g.CvParams[0].UnitAccession = "UO:0000031"
	got, err := v.Element(KindScan, "scan", g, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	g.CvParams[0].UnitAccession = "UO:9999999"
	got, err = v.Element(KindScan, "scan", g, nil)
	require.NoError(t, err)
	assert.Equal(t, []Rule{RuleUnknownUnit}, rules(got))

	got, err = New(fixtureRegistry(), WithoutUnitCheck()).Element(KindScan, "scan", g, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	g.CvParams[0].UnitAccession = "PATO:0000001"
	_, err = v.Element(KindScan, "scan", g, nil)
	require.ErrorIs(t, err, ontology.ErrUnknownNamespace)
}

func TestValidator_SpectrumError(t *testing.T) {
	t.Parallel()

	v := New(fixtureRegistry())
	m := fixtureDocument(t)
	s := m.Run.SpectrumList.Spectra[1]
	s.CvParams = append([]mzmltype.CvParam(nil), s.CvParams...)
	s.CvParams = append(s.CvParams, param("MS:1000128"))

	err := v.Spectrum(&s, GroupsOf(m))
	require.ErrorIs(t, err, ErrValidation)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, `spectrum "`+testutil.SpectrumID(1)+`"`, verr.Element)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, RuleAtMostOne, verr.Violations[0].Rule)
	assert.Equal(t, "spectrum["+testutil.SpectrumID(1)+"]", verr.Violations[0].Path)
	assert.Contains(t, err.Error(), "1 vocabulary violation;")
}

func TestValidator_ShellReportsNestedPaths(t *testing.T) {
	t.Parallel()

	v := New(fixtureRegistry())
	m := fixtureDocument(t)
	m.InstrumentConfigurationList.Configs[0].ComponentList.Analyzers[0].CvParams = nil

	err := v.Shell(m)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "instrumentConfigurationList/instrumentConfiguration[IC1]/componentList/analyzer[2]", verr.Violations[0].Path)
}

type brokenSource struct{}

func (brokenSource) Open() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("")), nil }
func (brokenSource) String() string               { return "broken" }

func TestValidator_OntologyUnavailable(t *testing.T) {
	t.Parallel()

	r := ontology.NewRegistry()
	r.Register("MS", brokenSource{})
	v := New(r)

	err := v.Spectrum(&fixtureDocument(t).Run.SpectrumList.Spectra[0], nil)
	require.ErrorIs(t, err, ontology.ErrOntologyUnavailable)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestValidator_CustomRules(t *testing.T) {
	t.Parallel()

	v := New(fixtureRegistry(), WithRules(Rules{KindScan: {ExactlyOne: []string{"MS:1000503"}}}))
	got, err := v.Element(KindScan, "scan", group(), nil)
	require.NoError(t, err)
	assert.Equal(t, []Rule{RuleExactlyOne}, rules(got))

	got, err = v.Element(KindSpectrum, "s", group(), nil)
	require.NoError(t, err)
	assert.Empty(t, got, "kinds without rules pass")
}
