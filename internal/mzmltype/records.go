package mzmltype

import (
	"iter"
	"strconv"

	"github.com/meigma/mzml/internal/payload"
)

// Accessions read by the record accessors.
const (
	AccMSLevel              = "MS:1000511"
	AccScanStartTime        = "MS:1000016"
	AccIsolationTarget      = "MS:1000827"
	AccIsolationLowerOffset = "MS:1000828"
	AccIsolationUpperOffset = "MS:1000829"
	AccSelectedIonMZ        = "MS:1000744"
	AccChargeState          = "MS:1000041"
	AccCollisionEnergy      = "MS:1000045"
	AccMZArray              = "MS:1000514"
	AccIntensityArray       = "MS:1000515"
	AccTimeArray            = "MS:1000595"
)

// ExternalRefSeparator joins a source file reference and an external
// spectrum id in a precursor's parent id.
const ExternalRefSeparator = " // "

// Kind identifies a bulk record kind.
type Kind uint8

const (
	// KindSpectrum is a spectrum record.
	KindSpectrum Kind = iota
	// KindChromatogram is a chromatogram record.
	KindChromatogram
)

func (k Kind) String() string {
	if k == KindChromatogram {
		return "chromatogram"
	}
	return "spectrum"
}

// Float parses the param value as a float64.
func (p CvParam) Float() (float64, bool) {
	v, err := strconv.ParseFloat(p.Value, 64)
	return v, err == nil
}

// Int parses the param value as an int.
func (p CvParam) Int() (int, bool) {
	v, err := strconv.Atoi(p.Value)
	return v, err == nil
}

func (g *ParamGroup) float(accession string) (float64, bool) {
	p, ok := g.Param(accession)
	if !ok {
		return 0, false
	}
	return p.Float()
}

// Accessions yields the accession of every cvParam in the group.
func (g *ParamGroup) Accessions() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, p := range g.CvParams {
			if !yield(p.Accession) {
				return
			}
		}
	}
}

// Decode returns the array's values as float64.
func (a *BinaryDataArray) Decode() ([]float64, error) {
	c, t := payload.Declared(a.Accessions())
	return payload.Decode(a.Binary, c, t)
}

// Array returns the first binary array tagged with the given array kind accession.
func (l *BinaryDataArrayList) Array(accession string) (*BinaryDataArray, bool) {
	if l == nil {
		return nil, false
	}
	for i := range l.Arrays {
		if l.Arrays[i].Has(accession) {
			return &l.Arrays[i], true
		}
	}
	return nil, false
}

func decodeArray(l *BinaryDataArrayList, accession string) ([]float64, error) {
	a, ok := l.Array(accession)
	if !ok {
		return nil, nil
	}
	return a.Decode()
}

// MSLevel returns the spectrum's ms level, or 0 if absent.
func (s *Spectrum) MSLevel() int {
	p, ok := s.Param(AccMSLevel)
	if !ok {
		return 0
	}
	v, _ := p.Int()
	return v
}

// ScanStartTime returns the start time of the first scan.
func (s *Spectrum) ScanStartTime() (float64, bool) {
	if s.ScanList == nil || len(s.ScanList.Scans) == 0 {
		return 0, false
	}
	return s.ScanList.Scans[0].float(AccScanStartTime)
}

// Precursors returns the spectrum's precursors.
func (s *Spectrum) Precursors() []Precursor {
	if s.PrecursorList == nil {
		return nil
	}
	return s.PrecursorList.Precursors
}

// MZ decodes the m/z array. It returns nil if the spectrum has none.
func (s *Spectrum) MZ() ([]float64, error) {
	return decodeArray(s.BinaryDataArrayList, AccMZArray)
}

// Intensity decodes the intensity array. It returns nil if the spectrum has none.
func (s *Spectrum) Intensity() ([]float64, error) {
	return decodeArray(s.BinaryDataArrayList, AccIntensityArray)
}

// Time decodes the time array. It returns nil if the chromatogram has none.
func (c *Chromatogram) Time() ([]float64, error) {
	return decodeArray(c.BinaryDataArrayList, AccTimeArray)
}

// Intensity decodes the intensity array. It returns nil if the chromatogram has none.
func (c *Chromatogram) Intensity() ([]float64, error) {
	return decodeArray(c.BinaryDataArrayList, AccIntensityArray)
}

// ParentID returns the id of the spectrum this precursor was selected from.
// A reference into another file is returned as "sourceFileRef // externalSpectrumID"
// with external set.
func (p *Precursor) ParentID() (id string, external bool) {
	if p.SpectrumRef != "" {
		return p.SpectrumRef, false
	}
	if p.SourceFileRef != "" && p.ExternalSpectrumID != "" {
		return p.SourceFileRef + ExternalRefSeparator + p.ExternalSpectrumID, true
	}
	return "", false
}

// IsolationWindowBounds reports the target m/z and the lower and upper offsets.
func (p *Precursor) IsolationWindowBounds() (target, lower, upper float64, ok bool) {
	if p.IsolationWindow == nil {
		return 0, 0, 0, false
	}
	target, ok = p.IsolationWindow.float(AccIsolationTarget)
	if !ok {
		return 0, 0, 0, false
	}
	lower, _ = p.IsolationWindow.float(AccIsolationLowerOffset)
	upper, _ = p.IsolationWindow.float(AccIsolationUpperOffset)
	return target, lower, upper, true
}

// SelectedIon describes one ion selected for fragmentation.
type SelectedIon struct {
	MZ     float64
	Charge int
}

// SelectedIons returns the selected ions that declare an m/z.
func (p *Precursor) SelectedIons() []SelectedIon {
	if p.SelectedIonList == nil {
		return nil
	}
	out := make([]SelectedIon, 0, len(p.SelectedIonList.Ions))
	for i := range p.SelectedIonList.Ions {
		ion := &p.SelectedIonList.Ions[i]
		mz, ok := ion.float(AccSelectedIonMZ)
		if !ok {
			continue
		}
		sel := SelectedIon{MZ: mz}
		if c, ok := ion.Param(AccChargeState); ok {
			sel.Charge, _ = c.Int()
		}
		out = append(out, sel)
	}
	return out
}

// CollisionEnergy returns the activation collision energy.
func (p *Precursor) CollisionEnergy() (float64, bool) {
	return p.Activation.float(AccCollisionEnergy)
}
