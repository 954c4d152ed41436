package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/meigma/mzml"
)

type selectedIonView struct {
	MZ     float64 `json:"mz"`
	Charge int     `json:"charge,omitempty"`
}

type precursorView struct {
	Parent          string            `json:"parent,omitempty"`
	External        bool              `json:"external,omitempty"`
	SelectedIons    []selectedIonView `json:"selectedIons,omitempty"`
	IsolationWindow *isolationView    `json:"isolationWindow,omitempty"`
	CollisionEnergy *float64          `json:"collisionEnergy,omitempty"`
}

type isolationView struct {
	Target float64 `json:"target"`
	Lower  float64 `json:"lowerOffset"`
	Upper  float64 `json:"upperOffset"`
}

type spectrumView struct {
	ID                 string          `json:"id"`
	Index              int             `json:"index"`
	MSLevel            int             `json:"msLevel,omitempty"`
	ScanStartTime      *float64        `json:"scanStartTime,omitempty"`
	DefaultArrayLength int             `json:"defaultArrayLength"`
	Precursors         []precursorView `json:"precursors,omitempty"`
	MZ                 []float64       `json:"mz,omitempty"`
	Intensity          []float64       `json:"intensity,omitempty"`
}

type chromatogramView struct {
	ID                 string    `json:"id"`
	Index              int       `json:"index"`
	DefaultArrayLength int       `json:"defaultArrayLength"`
	Time               []float64 `json:"time,omitempty"`
	Intensity          []float64 `json:"intensity,omitempty"`
}

func newGetCommand(a *app) *cobra.Command {
	var (
		chromatogram bool
		arrays       bool
	)
	cmd := &cobra.Command{
		Use:   "get DOCUMENT ID",
		Short: "Print one spectrum or chromatogram as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()

			var view any
			if chromatogram {
				view, err = viewChromatogram(doc.Reader, args[1], arrays)
			} else {
				view, err = viewSpectrum(doc.Reader, args[1], arrays)
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		},
	}
	cmd.Flags().BoolVar(&chromatogram, "chromatogram", false, "ID names a chromatogram")
	cmd.Flags().BoolVar(&arrays, "arrays", false, "include decoded binary arrays")
	return cmd
}

func viewSpectrum(r *mzml.Reader, id string, arrays bool) (*spectrumView, error) {
	s, err := r.Spectrum(id)
	if err != nil {
		return nil, err
	}
	v := &spectrumView{
		ID:                 s.ID,
		Index:              s.Index,
		MSLevel:            s.MSLevel(),
		DefaultArrayLength: s.DefaultArrayLength,
	}
	if rt, ok := s.ScanStartTime(); ok {
		v.ScanStartTime = &rt
	}
	for _, p := range s.Precursors() {
		pv := precursorView{}
		pv.Parent, pv.External = p.ParentID()
		for _, ion := range p.SelectedIons() {
			pv.SelectedIons = append(pv.SelectedIons, selectedIonView{MZ: ion.MZ, Charge: ion.Charge})
		}
		if target, lower, upper, ok := p.IsolationWindowBounds(); ok {
			pv.IsolationWindow = &isolationView{Target: target, Lower: lower, Upper: upper}
		}
		if ce, ok := p.CollisionEnergy(); ok {
			pv.CollisionEnergy = &ce
		}
		v.Precursors = append(v.Precursors, pv)
	}
	if arrays {
		if v.MZ, err = s.MZ(); err != nil {
			return nil, err
		}
		if v.Intensity, err = s.Intensity(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func viewChromatogram(r *mzml.Reader, id string, arrays bool) (*chromatogramView, error) {
	c, err := r.Chromatogram(id)
	if err != nil {
		return nil, err
	}
	v := &chromatogramView{ID: c.ID, Index: c.Index, DefaultArrayLength: c.DefaultArrayLength}
	if arrays {
		if v.Time, err = c.Time(); err != nil {
			return nil, err
		}
		if v.Intensity, err = c.Intensity(); err != nil {
			return nil, err
		}
	}
	return v, nil
}
