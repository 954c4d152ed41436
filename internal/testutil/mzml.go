package testutil

import (
	"cmp"
	"crypto/sha1" //nolint:gosec // indexedmzML checksums are SHA-1
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/meigma/mzml/internal/payload"
)

// FirstScan is the scan number of the first fixture spectrum.
const FirstScan = 2814

// TICID is the id of the fixture chromatogram.
const TICID = "TIC"

// SpectrumID returns the id of the i-th fixture spectrum.
func SpectrumID(i int) string {
	return "controllerType=0 controllerNumber=1 scan=" + strconv.Itoa(FirstScan+i)
}

// MSLevel returns the MS level of the i-th fixture spectrum. Every fifth
// spectrum, starting with the first, is a survey scan.
func MSLevel(i int) int {
	if i%5 == 0 {
		return 1
	}
	return 2
}

// ParentIndex returns the position of the survey scan the i-th spectrum
// fragments, or -1 for survey scans.
func ParentIndex(i int) int {
	if MSLevel(i) == 1 {
		return -1
	}
	return i - i%5
}

// SpectrumMZ returns the m/z values stored in the i-th fixture spectrum.
func SpectrumMZ(i int) []float64 {
	f := float64(i)
	return []float64{100 + f, 200.5 + f, 300.25 + f, 400.125 + f}
}

// SpectrumIntensity returns the intensities of the i-th fixture spectrum.
// All values are exact in 32 bits.
func SpectrumIntensity(i int) []float64 {
	return []float64{float64(1000 * (i + 1)), 1500, 250.5, 8}
}

// ScanStartTime returns the scan start time in minutes of the i-th spectrum.
func ScanStartTime(i int) float64 {
	return 5.875 + 0.125*float64(i)
}

// PrecursorMZ returns the selected ion m/z of the i-th fixture spectrum.
func PrecursorMZ(i int) float64 {
	return 445.25 + float64(i)
}

// Fixture configures MzML.
type Fixture struct {
	Spectra       int
	Chromatograms bool
	Indexed       bool
	// Mutate, when set, edits the document text before offsets and the
	// checksum are computed.
	Mutate func(string) string
}

// FixtureOption configures a fixture.
type FixtureOption func(*Fixture)

// Indexed wraps the document in indexedmzML.
func Indexed() FixtureOption {
	return func(f *Fixture) { f.Indexed = true }
}

// WithSpectra sets the number of spectra.
func WithSpectra(n int) FixtureOption {
	return func(f *Fixture) { f.Spectra = n }
}

// WithoutChromatograms omits the chromatogram list.
func WithoutChromatograms() FixtureOption {
	return func(f *Fixture) { f.Chromatograms = false }
}

// WithMutation edits the body text before indexing.
func WithMutation(fn func(string) string) FixtureOption {
	return func(f *Fixture) { f.Mutate = fn }
}

// MzML renders a deterministic document with 11 spectra and one
// chromatogram unless options say otherwise.
func MzML(opts ...FixtureOption) []byte {
	f := Fixture{Spectra: 11, Chromatograms: true}
	for _, opt := range opts {
		opt(&f)
	}
	body := f.body()
	if f.Mutate != nil {
		body = f.Mutate(body)
	}
	if !f.Indexed {
		return []byte(xmlHeader + body)
	}
	return []byte(indexed(body))
}

const (
	xmlHeader = `<?xml version="1.0" encoding="utf-8"?>` + "\n"
	rootAttrs = `xmlns="http://psi.hupo.org/ms/mzml" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"`
)

func indexed(body string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<indexedmzML ` + rootAttrs + ` xsi:schemaLocation="http://psi.hupo.org/ms/mzml http://psidev.info/files/ms/mzML/xsd/mzML1.1.2_idx.xsd">` + "\n")
	base := b.Len()
	b.WriteString(indent(body, "  "))

	doc := b.String()
	spectra := ScanOffsets([]byte(doc[base:]), "spectrum")
	chromatograms := ScanOffsets([]byte(doc[base:]), "chromatogram")

	listOffset := b.Len() + len("  ")
	b.WriteString(`  <indexList count="` + strconv.Itoa(1+boolInt(len(chromatograms) > 0)) + `">` + "\n")
	writeOffsets(&b, "spectrum", spectra, base)
	if len(chromatograms) > 0 {
		writeOffsets(&b, "chromatogram", chromatograms, base)
	}
	b.WriteString("  </indexList>\n")
	fmt.Fprintf(&b, "  <indexListOffset>%d</indexListOffset>\n", listOffset)
	b.WriteString("  <fileChecksum>")
	sum := sha1.Sum([]byte(b.String())) //nolint:gosec // format-mandated
	b.WriteString(hex.EncodeToString(sum[:]))
	b.WriteString("</fileChecksum>\n</indexedmzML>\n")
	return b.String()
}

func writeOffsets(b *strings.Builder, name string, offsets map[string]uint64, base int) {
	type entry struct {
		id  string
		off uint64
	}
	entries := make([]entry, 0, len(offsets))
	for id, off := range offsets {
		entries = append(entries, entry{id, off + uint64(base)})
	}
	slices.SortFunc(entries, func(a, b entry) int { return cmp.Compare(a.off, b.off) })
	b.WriteString(`    <index name="` + name + `">` + "\n")
	for _, e := range entries {
		fmt.Fprintf(b, "      <offset idRef=%q>%d</offset>\n", e.id, e.off)
	}
	b.WriteString("    </index>\n")
}

func indent(text, prefix string) string {
	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		b.WriteString(prefix)
		b.WriteString(l)
	}
	return b.String()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (f Fixture) body() string {
	var b strings.Builder
	b.WriteString(`<mzML ` + rootAttrs + ` xsi:schemaLocation="http://psi.hupo.org/ms/mzml http://psidev.info/files/ms/mzML/xsd/mzML1.1.0.xsd" id="fixture" version="1.1.0">` + "\n")
	b.WriteString(shellHead)
	b.WriteString(`  <run id="fixture" defaultInstrumentConfigurationRef="IC1" defaultSourceFileRef="RAW1" startTimeStamp="2005-07-20T14:44:22Z">` + "\n")
	if f.Spectra > 0 {
		fmt.Fprintf(&b, "    <spectrumList count=\"%d\" defaultDataProcessingRef=\"pwiz_conversion\">\n", f.Spectra)
		for i := range f.Spectra {
			writeSpectrum(&b, i)
		}
		b.WriteString("    </spectrumList>\n")
	}
	if f.Chromatograms {
		b.WriteString(`    <chromatogramList count="1" defaultDataProcessingRef="pwiz_conversion">` + "\n")
		writeTIC(&b, f.Spectra)
		b.WriteString("    </chromatogramList>\n")
	}
	b.WriteString("  </run>\n</mzML>\n")
	return b.String()
}

const shellHead = `  <cvList count="2">
    <cv id="MS" fullName="Proteomics Standards Initiative Mass Spectrometry Ontology" version="4.1.184" URI="https://raw.githubusercontent.com/HUPO-PSI/psi-ms-CV/master/psi-ms.obo"/>
    <cv id="UO" fullName="Unit Ontology" version="09:04:2014" URI="https://raw.githubusercontent.com/bio-ontology-research-group/unit-ontology/master/unit.obo"/>
  </cvList>
  <fileDescription>
    <fileContent>
      <cvParam cvRef="MS" accession="MS:1000579" name="MS1 spectrum" value=""/>
      <cvParam cvRef="MS" accession="MS:1000580" name="MSn spectrum" value=""/>
    </fileContent>
    <sourceFileList count="1">
      <sourceFile id="RAW1" name="fixture.RAW" location="file:///data">
        <cvParam cvRef="MS" accession="MS:1000768" name="Thermo nativeID format" value=""/>
        <cvParam cvRef="MS" accession="MS:1000563" name="Thermo RAW format" value=""/>
        <cvParam cvRef="MS" accession="MS:1000569" name="SHA-1" value="71be39fb2700ab2f3c8b2234b91274968b6899b1"/>
      </sourceFile>
    </sourceFileList>
  </fileDescription>
  <referenceableParamGroupList count="1">
    <referenceableParamGroup id="CommonInstrumentParams">
      <cvParam cvRef="MS" accession="MS:1001742" name="LTQ Orbitrap Velos" value=""/>
      <cvParam cvRef="MS" accession="MS:1000529" name="instrument serial number" value="SN06061F"/>
    </referenceableParamGroup>
  </referenceableParamGroupList>
  <softwareList count="1">
    <software id="pwiz" version="3.0.9987">
      <cvParam cvRef="MS" accession="MS:1000615" name="ProteoWizard software" value=""/>
    </software>
  </softwareList>
  <instrumentConfigurationList count="1">
    <instrumentConfiguration id="IC1">
      <referenceableParamGroupRef ref="CommonInstrumentParams"/>
      <componentList count="3">
        <source order="1">
          <cvParam cvRef="MS" accession="MS:1000073" name="electrospray ionization" value=""/>
          <cvParam cvRef="MS" accession="MS:1000057" name="electrospray inlet" value=""/>
        </source>
        <analyzer order="2">
          <cvParam cvRef="MS" accession="MS:1000484" name="orbitrap" value=""/>
        </analyzer>
        <detector order="3">
          <cvParam cvRef="MS" accession="MS:1000624" name="inductive detector" value=""/>
        </detector>
      </componentList>
      <softwareRef ref="pwiz"/>
    </instrumentConfiguration>
  </instrumentConfigurationList>
  <dataProcessingList count="1">
    <dataProcessing id="pwiz_conversion">
      <processingMethod order="1" softwareRef="pwiz">
        <cvParam cvRef="MS" accession="MS:1000544" name="Conversion to mzML" value=""/>
      </processingMethod>
    </dataProcessing>
  </dataProcessingList>
`

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeSpectrum(b *strings.Builder, i int) {
	level := MSLevel(i)
	mz := SpectrumMZ(i)
	fmt.Fprintf(b, "      <spectrum index=\"%d\" id=\"%s\" defaultArrayLength=\"%d\">\n", i, SpectrumID(i), len(mz))
	fmt.Fprintf(b, "        <cvParam cvRef=\"MS\" accession=\"MS:1000511\" name=\"ms level\" value=\"%d\"/>\n", level)
	if level == 1 {
		b.WriteString(`        <cvParam cvRef="MS" accession="MS:1000579" name="MS1 spectrum" value=""/>` + "\n")
	} else {
		b.WriteString(`        <cvParam cvRef="MS" accession="MS:1000580" name="MSn spectrum" value=""/>` + "\n")
	}
	b.WriteString(`        <cvParam cvRef="MS" accession="MS:1000130" name="positive scan" value=""/>` + "\n")
	b.WriteString(`        <cvParam cvRef="MS" accession="MS:1000127" name="centroid spectrum" value=""/>` + "\n")
	var tic float64
	for _, v := range SpectrumIntensity(i) {
		tic += v
	}
	fmt.Fprintf(b, "        <cvParam cvRef=\"MS\" accession=\"MS:1000285\" name=\"total ion current\" value=\"%s\"/>\n", formatFloat(tic))

	b.WriteString(`        <scanList count="1">` + "\n")
	b.WriteString(`          <cvParam cvRef="MS" accession="MS:1000795" name="no combination" value=""/>` + "\n")
	b.WriteString(`          <scan instrumentConfigurationRef="IC1">` + "\n")
	fmt.Fprintf(b, "            <cvParam cvRef=\"MS\" accession=\"MS:1000016\" name=\"scan start time\" value=\"%s\" unitCvRef=\"UO\" unitAccession=\"UO:0000031\" unitName=\"minute\"/>\n", formatFloat(ScanStartTime(i)))
	b.WriteString(`            <scanWindowList count="1">
              <scanWindow>
                <cvParam cvRef="MS" accession="MS:1000501" name="scan window lower limit" value="100" unitCvRef="MS" unitAccession="MS:1000040" unitName="m/z"/>
                <cvParam cvRef="MS" accession="MS:1000500" name="scan window upper limit" value="2000" unitCvRef="MS" unitAccession="MS:1000040" unitName="m/z"/>
              </scanWindow>
            </scanWindowList>
          </scan>
        </scanList>
`)
	if level > 1 {
		target := formatFloat(PrecursorMZ(i))
		fmt.Fprintf(b, "        <precursorList count=\"1\">\n          <precursor spectrumRef=\"%s\">\n", SpectrumID(ParentIndex(i)))
		fmt.Fprintf(b, `            <isolationWindow>
              <cvParam cvRef="MS" accession="MS:1000827" name="isolation window target m/z" value="%s" unitCvRef="MS" unitAccession="MS:1000040" unitName="m/z"/>
              <cvParam cvRef="MS" accession="MS:1000828" name="isolation window lower offset" value="1" unitCvRef="MS" unitAccession="MS:1000040" unitName="m/z"/>
              <cvParam cvRef="MS" accession="MS:1000829" name="isolation window upper offset" value="1.5" unitCvRef="MS" unitAccession="MS:1000040" unitName="m/z"/>
            </isolationWindow>
            <selectedIonList count="1">
              <selectedIon>
                <cvParam cvRef="MS" accession="MS:1000744" name="selected ion m/z" value="%s" unitCvRef="MS" unitAccession="MS:1000040" unitName="m/z"/>
                <cvParam cvRef="MS" accession="MS:1000041" name="charge state" value="2"/>
              </selectedIon>
            </selectedIonList>
            <activation>
              <cvParam cvRef="MS" accession="MS:1000133" name="collision-induced dissociation" value=""/>
              <cvParam cvRef="MS" accession="MS:1000045" name="collision energy" value="35" unitCvRef="UO" unitAccession="UO:0000266" unitName="electronvolt"/>
            </activation>
          </precursor>
        </precursorList>
`, target, target)
	}

	b.WriteString(`        <binaryDataArrayList count="2">` + "\n")
	writeArray(b, "        ", mz, payload.CompressionZlib, payload.Float64,
		`<cvParam cvRef="MS" accession="MS:1000514" name="m/z array" value="" unitCvRef="MS" unitAccession="MS:1000040" unitName="m/z"/>`)
	writeArray(b, "        ", SpectrumIntensity(i), payload.CompressionNone, payload.Float32,
		`<cvParam cvRef="MS" accession="MS:1000515" name="intensity array" value="" unitCvRef="MS" unitAccession="MS:1000131" unitName="number of detector counts"/>`)
	b.WriteString("        </binaryDataArrayList>\n      </spectrum>\n")
}

func writeTIC(b *strings.Builder, spectra int) {
	times := make([]float64, spectra)
	totals := make([]float64, spectra)
	for i := range spectra {
		times[i] = ScanStartTime(i)
		for _, v := range SpectrumIntensity(i) {
			totals[i] += v
		}
	}
	fmt.Fprintf(b, "      <chromatogram index=\"0\" id=\"%s\" defaultArrayLength=\"%d\">\n", TICID, spectra)
	b.WriteString(`        <cvParam cvRef="MS" accession="MS:1000235" name="total ion current chromatogram" value=""/>` + "\n")
	b.WriteString(`        <binaryDataArrayList count="2">` + "\n")
	writeArray(b, "        ", times, payload.CompressionZlib, payload.Float64,
		`<cvParam cvRef="MS" accession="MS:1000595" name="time array" value="" unitCvRef="UO" unitAccession="UO:0000031" unitName="minute"/>`)
	writeArray(b, "        ", totals, payload.CompressionNone, payload.Float32,
		`<cvParam cvRef="MS" accession="MS:1000515" name="intensity array" value="" unitCvRef="MS" unitAccession="MS:1000131" unitName="number of detector counts"/>`)
	b.WriteString("        </binaryDataArrayList>\n      </chromatogram>\n")
}

var accessionNames = map[string]string{
	string(payload.CompressionNone): "no compression",
	string(payload.CompressionZlib): "zlib compression",
	string(payload.Float32):         "32-bit float",
	string(payload.Float64):         "64-bit float",
}

func writeArray(b *strings.Builder, pad string, values []float64, c payload.Compression, t payload.DataType, kindParam string) {
	text, err := payload.Encode(values, c, t)
	if err != nil {
		panic(err)
	}
	fmt.Fprintf(b, "%s  <binaryDataArray encodedLength=\"%d\">\n", pad, len(text))
	fmt.Fprintf(b, "%s    <cvParam cvRef=\"MS\" accession=\"%s\" name=\"%s\" value=\"\"/>\n", pad, t, accessionNames[string(t)])
	fmt.Fprintf(b, "%s    <cvParam cvRef=\"MS\" accession=\"%s\" name=\"%s\" value=\"\"/>\n", pad, c, accessionNames[string(c)])
	fmt.Fprintf(b, "%s    %s\n", pad, kindParam)
	fmt.Fprintf(b, "%s    <binary>%s</binary>\n", pad, text)
	fmt.Fprintf(b, "%s  </binaryDataArray>\n", pad)
}
