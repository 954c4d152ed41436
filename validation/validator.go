// Package validation checks the controlled vocabulary terms of mzML elements
// against per-kind rule sets.
//
// Each element kind has a [RuleSet] of parent accessions in four groups. A
// term is accepted on an element only if it descends from one of those
// parents, so validation is closed-world: a term outside every group is a
// violation even when all mandatory rules hold.
//
// Vocabulary lookups go through a [Lookup], normally an [ontology.Registry].
// Lookup failures are returned as-is and never reported as violations, so
// callers can tell a non-conformant document from an unreachable vocabulary
// with errors.Is(err, ontology.ErrOntologyUnavailable).
package validation

import (
	"fmt"
	"strconv"

	"github.com/meigma/mzml/internal/mzmltype"
	"github.com/meigma/mzml/ontology"
)

// Lookup resolves vocabulary relationships.
type Lookup interface {
	// DescendantsOf returns the transitive is_a descendants of accession.
	DescendantsOf(accession string) (ontology.Set, error)
	// Known reports whether accession is defined.
	Known(accession string) (bool, error)
}

// Validator checks elements against a rule table. It holds no per-document
// state and is safe for concurrent use if its Lookup is.
type Validator struct {
	lookup     Lookup
	rules      Rules
	checkUnits bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithRules replaces the rule table.
func WithRules(rules Rules) Option {
	return func(v *Validator) {
		v.rules = rules
	}
}

// WithoutUnitCheck skips the check that unit accessions are defined.
func WithoutUnitCheck() Option {
	return func(v *Validator) {
		v.checkUnits = false
	}
}

// New returns a validator using lookup. A nil lookup selects the
// process-wide [ontology.Default] registry.
func New(lookup Lookup, opts ...Option) *Validator {
	v := &Validator{
		lookup:     lookup,
		rules:      DefaultRules(),
		checkUnits: true,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.lookup == nil {
		v.lookup = ontology.Default()
	}
	return v
}

// Groups maps referenceableParamGroup ids to their parameters.
type Groups map[string]*mzmltype.ParamGroup

// GroupsOf collects the referenceable parameter groups declared by m.
func GroupsOf(m *mzmltype.MzML) Groups {
	groups := make(Groups)
	if m == nil || m.ReferenceableParamGroupList == nil {
		return groups
	}
	for i := range m.ReferenceableParamGroupList.Groups {
		g := &m.ReferenceableParamGroupList.Groups[i]
		groups[g.ID] = &g.ParamGroup
	}
	return groups
}

// Element checks one element's terms against the rule set for kind. Kinds
// without a rule set pass. path is copied into each violation.
func (v *Validator) Element(kind Kind, path string, g *mzmltype.ParamGroup, groups Groups) ([]Violation, error) {
	rs, ok := v.rules[kind]
	if !ok || g == nil {
		return nil, nil
	}

	params, violations := expand(kind, path, g, groups)
	present := make([]string, 0, len(params))
	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		if _, dup := seen[p.Accession]; !dup {
			seen[p.Accession] = struct{}{}
			present = append(present, p.Accession)
		}
	}

	accepted := make(map[string]struct{})
	groupsInOrder := []struct {
		rule    Rule
		parents []string
	}{
		{RuleExactlyOne, rs.ExactlyOne},
		{RuleAtLeastOne, rs.AtLeastOne},
		{RuleAtMostOne, rs.AtMostOne},
		{"", rs.AnyNumber},
	}
	for _, grp := range groupsInOrder {
		for _, parent := range grp.parents {
			desc, err := v.lookup.DescendantsOf(parent)
			if err != nil {
				return nil, fmt.Errorf("validate %s: %w", path, err)
			}
			for acc := range desc {
				accepted[acc] = struct{}{}
			}

			var matches []string
			for _, acc := range present {
				if desc.Has(acc) {
					matches = append(matches, acc)
				}
			}
			failed := false
			switch grp.rule {
			case RuleExactlyOne:
				failed = len(matches) != 1
			case RuleAtLeastOne:
				failed = len(matches) == 0
			case RuleAtMostOne:
				failed = len(matches) > 1
			}
			if failed {
				violations = append(violations, Violation{
					Path:       path,
					Kind:       kind,
					Rule:       grp.rule,
					Parent:     parent,
					Accessions: matches,
					Allowed:    desc.Sorted(),
				})
			}
		}
	}

	for _, acc := range present {
		if _, ok := accepted[acc]; !ok {
			violations = append(violations, Violation{
				Path:       path,
				Kind:       kind,
				Rule:       RuleDisallowed,
				Accessions: []string{acc},
			})
		}
	}

	if v.checkUnits {
		for _, p := range params {
			if p.UnitAccession == "" {
				continue
			}
			known, err := v.lookup.Known(p.UnitAccession)
			if err != nil {
				return nil, fmt.Errorf("validate %s: unit of %s: %w", path, p.Accession, err)
			}
			if !known {
				violations = append(violations, Violation{
					Path:       path,
					Kind:       kind,
					Rule:       RuleUnknownUnit,
					Accessions: []string{p.UnitAccession},
				})
			}
		}
	}
	return violations, nil
}

// expand returns the element's own terms followed by those of every
// referenced group.
func expand(kind Kind, path string, g *mzmltype.ParamGroup, groups Groups) ([]mzmltype.CvParam, []Violation) {
	if len(g.GroupRefs) == 0 {
		return g.CvParams, nil
	}
	params := append([]mzmltype.CvParam(nil), g.CvParams...)
	var violations []Violation
	for _, ref := range g.GroupRefs {
		group, ok := groups[ref.Ref]
		if !ok {
			violations = append(violations, Violation{
				Path:       path,
				Kind:       kind,
				Rule:       RuleGroupRef,
				Accessions: []string{ref.Ref},
			})
			continue
		}
		params = append(params, group.CvParams...)
	}
	return params, violations
}

// walker accumulates violations across the elements of one record or shell.
type walker struct {
	v          *Validator
	groups     Groups
	violations []Violation
}

func (w *walker) visit(kind Kind, path string, g *mzmltype.ParamGroup) error {
	found, err := w.v.Element(kind, path, g, w.groups)
	if err != nil {
		return err
	}
	w.violations = append(w.violations, found...)
	return nil
}

func (w *walker) result(element string) error {
	if len(w.violations) == 0 {
		return nil
	}
	return &Error{Element: element, Violations: w.violations}
}

// Shell validates the document metadata outside the record lists.
func (v *Validator) Shell(m *mzmltype.MzML) error {
	w := &walker{v: v, groups: GroupsOf(m)}
	if err := w.shell(m); err != nil {
		return err
	}
	return w.result("document shell")
}

func (w *walker) shell(m *mzmltype.MzML) error {
	fd := &m.FileDescription
	if err := w.visit(KindFileContent, "fileDescription/fileContent", &fd.FileContent); err != nil {
		return err
	}
	if fd.SourceFileList != nil {
		for i := range fd.SourceFileList.SourceFiles {
			sf := &fd.SourceFileList.SourceFiles[i]
			if err := w.visit(KindSourceFile, "fileDescription/sourceFileList/sourceFile["+sf.ID+"]", &sf.ParamGroup); err != nil {
				return err
			}
		}
	}
	for i := range fd.Contacts {
		if err := w.visit(KindContact, "fileDescription/contact["+strconv.Itoa(i)+"]", &fd.Contacts[i]); err != nil {
			return err
		}
	}

	for i := range m.SoftwareList.Software {
		sw := &m.SoftwareList.Software[i]
		if err := w.visit(KindSoftware, "softwareList/software["+sw.ID+"]", &sw.ParamGroup); err != nil {
			return err
		}
	}

	for i := range m.InstrumentConfigurationList.Configs {
		ic := &m.InstrumentConfigurationList.Configs[i]
		path := "instrumentConfigurationList/instrumentConfiguration[" + ic.ID + "]"
		if err := w.visit(KindInstrumentConfiguration, path, &ic.ParamGroup); err != nil {
			return err
		}
		if ic.ComponentList == nil {
			continue
		}
		components := []struct {
			kind  Kind
			items []mzmltype.Component
		}{
			{KindSource, ic.ComponentList.Sources},
			{KindAnalyzer, ic.ComponentList.Analyzers},
			{KindDetector, ic.ComponentList.Detectors},
		}
		for _, c := range components {
			for j := range c.items {
				cpath := path + "/componentList/" + string(c.kind) + "[" + strconv.Itoa(c.items[j].Order) + "]"
				if err := w.visit(c.kind, cpath, &c.items[j].ParamGroup); err != nil {
					return err
				}
			}
		}
	}

	for i := range m.DataProcessingList.DataProcessing {
		dp := &m.DataProcessingList.DataProcessing[i]
		for j := range dp.Methods {
			path := "dataProcessingList/dataProcessing[" + dp.ID + "]/processingMethod[" + strconv.Itoa(dp.Methods[j].Order) + "]"
			if err := w.visit(KindProcessingMethod, path, &dp.Methods[j].ParamGroup); err != nil {
				return err
			}
		}
	}
	return nil
}

// Spectrum validates a spectrum and its nested elements. groups resolves
// referenceableParamGroupRef elements; see [GroupsOf].
func (v *Validator) Spectrum(s *mzmltype.Spectrum, groups Groups) error {
	w := &walker{v: v, groups: groups}
	base := "spectrum[" + s.ID + "]"
	if err := w.visit(KindSpectrum, base, &s.ParamGroup); err != nil {
		return err
	}
	if sl := s.ScanList; sl != nil {
		if err := w.visit(KindScanList, base+"/scanList", &sl.ParamGroup); err != nil {
			return err
		}
		for i := range sl.Scans {
			scan := &sl.Scans[i]
			path := base + "/scanList/scan[" + strconv.Itoa(i) + "]"
			if err := w.visit(KindScan, path, &scan.ParamGroup); err != nil {
				return err
			}
			if scan.ScanWindowList == nil {
				continue
			}
			for j := range scan.ScanWindowList.Windows {
				if err := w.visit(KindScanWindow, path+"/scanWindowList/scanWindow["+strconv.Itoa(j)+"]", &scan.ScanWindowList.Windows[j]); err != nil {
					return err
				}
			}
		}
	}
	if pl := s.PrecursorList; pl != nil {
		for i := range pl.Precursors {
			if err := w.precursor(base+"/precursorList/precursor["+strconv.Itoa(i)+"]", &pl.Precursors[i]); err != nil {
				return err
			}
		}
	}
	if pl := s.ProductList; pl != nil {
		for i := range pl.Products {
			if err := w.product(base+"/productList/product["+strconv.Itoa(i)+"]", &pl.Products[i]); err != nil {
				return err
			}
		}
	}
	if err := w.arrays(base, s.BinaryDataArrayList); err != nil {
		return err
	}
	return w.result(fmt.Sprintf("spectrum %q", s.ID))
}

// Chromatogram validates a chromatogram and its nested elements.
func (v *Validator) Chromatogram(c *mzmltype.Chromatogram, groups Groups) error {
	w := &walker{v: v, groups: groups}
	base := "chromatogram[" + c.ID + "]"
	if err := w.visit(KindChromatogram, base, &c.ParamGroup); err != nil {
		return err
	}
	if c.Precursor != nil {
		if err := w.precursor(base+"/precursor", c.Precursor); err != nil {
			return err
		}
	}
	if c.Product != nil {
		if err := w.product(base+"/product", c.Product); err != nil {
			return err
		}
	}
	if err := w.arrays(base, c.BinaryDataArrayList); err != nil {
		return err
	}
	return w.result(fmt.Sprintf("chromatogram %q", c.ID))
}

func (w *walker) precursor(path string, p *mzmltype.Precursor) error {
	if p.IsolationWindow != nil {
		if err := w.visit(KindIsolationWindow, path+"/isolationWindow", p.IsolationWindow); err != nil {
			return err
		}
	}
	if p.SelectedIonList != nil {
		for i := range p.SelectedIonList.Ions {
			if err := w.visit(KindSelectedIon, path+"/selectedIonList/selectedIon["+strconv.Itoa(i)+"]", &p.SelectedIonList.Ions[i]); err != nil {
				return err
			}
		}
	}
	return w.visit(KindActivation, path+"/activation", &p.Activation)
}

func (w *walker) product(path string, p *mzmltype.Product) error {
	if p.IsolationWindow == nil {
		return nil
	}
	return w.visit(KindIsolationWindow, path+"/isolationWindow", p.IsolationWindow)
}

func (w *walker) arrays(base string, l *mzmltype.BinaryDataArrayList) error {
	if l == nil {
		return nil
	}
	for i := range l.Arrays {
		path := base + "/binaryDataArrayList/binaryDataArray[" + strconv.Itoa(i) + "]"
		if err := w.visit(KindBinaryDataArray, path, &l.Arrays[i].ParamGroup); err != nil {
			return err
		}
	}
	return nil
}
