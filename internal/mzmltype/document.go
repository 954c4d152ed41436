package mzmltype

import (
	"encoding/xml"
	"strings"
)

// Namespace and schema constants for emitted documents.
const (
	Namespace         = "http://psi.hupo.org/ms/mzml"
	XSINamespace      = "http://www.w3.org/2001/XMLSchema-instance"
	IdxSchemaLocation = "http://psi.hupo.org/ms/mzml http://psidev.info/files/ms/mzML/xsd/mzML1.1.2_idx.xsd"
)

// Root element names.
const (
	RootPlain   = "mzML"
	RootIndexed = "indexedmzML"
)

// Variant identifies the container shape of a document.
type Variant uint8

const (
	// VariantPlain is a bare mzML document.
	VariantPlain Variant = iota
	// VariantIndexed is an indexedmzML wrapper with an offset table and checksum.
	VariantIndexed
)

func (v Variant) String() string {
	if v == VariantIndexed {
		return RootIndexed
	}
	return RootPlain
}

// Document is either a *PlainDocument or an *IndexedDocument.
type Document interface {
	// Root returns the mzML element.
	Root() *MzML
	// Variant reports the container shape.
	Variant() Variant

	isDocument()
}

// PlainDocument is a bare mzML document.
type PlainDocument struct {
	MzML MzML
}

// Root returns the mzML element.
func (d *PlainDocument) Root() *MzML { return &d.MzML }

// Variant returns VariantPlain.
func (d *PlainDocument) Variant() Variant { return VariantPlain }

func (d *PlainDocument) isDocument() {}

// IndexedDocument is an mzML document wrapped with a trailing offset index.
type IndexedDocument struct {
	Attrs           []xml.Attr `xml:",any,attr"`
	MzML            MzML       `xml:"mzML"`
	IndexList       IndexList  `xml:"indexList"`
	IndexListOffset uint64     `xml:"indexListOffset"`
	FileChecksum    string     `xml:"fileChecksum"`
}

// Root returns the mzML element.
func (d *IndexedDocument) Root() *MzML { return &d.MzML }

// Variant returns VariantIndexed.
func (d *IndexedDocument) Variant() Variant { return VariantIndexed }

func (d *IndexedDocument) isDocument() {}

// ToPlain returns doc without its offset index. The result shares nested
// values with doc; neither may be mutated in place.
func ToPlain(doc Document) *PlainDocument {
	switch d := doc.(type) {
	case *PlainDocument:
		return &PlainDocument{MzML: d.MzML}
	case *IndexedDocument:
		m := d.MzML
		m.Attrs = standaloneAttrs(m.Attrs)
		return &PlainDocument{MzML: m}
	default:
		return nil
	}
}

// ToIndexed returns doc wrapped in an indexedmzML container with an empty
// offset index. Index contents, offset and checksum are filled in when the
// document is serialized.
func ToIndexed(doc Document) *IndexedDocument {
	switch d := doc.(type) {
	case *IndexedDocument:
		out := *d
		out.IndexList = IndexList{}
		out.IndexListOffset = 0
		out.FileChecksum = ""
		return &out
	case *PlainDocument:
		return &IndexedDocument{
			Attrs: defaultRootAttrs(IdxSchemaLocation),
			MzML:  d.MzML,
		}
	default:
		return nil
	}
}

// WithRecords returns a copy of doc whose run holds exactly the given
// records. List headers are taken from the shell lists; a list with no
// records is omitted.
func WithRecords(doc Document, spectra []Spectrum, chromatograms []Chromatogram) Document {
	m := *doc.Root()
	run := m.Run
	run.SpectrumList = nil
	run.ChromatogramList = nil
	if len(spectra) > 0 {
		list := SpectrumList{}
		if src := doc.Root().Run.SpectrumList; src != nil {
			list.DefaultDataProcessingRef = src.DefaultDataProcessingRef
		}
		list.Count = len(spectra)
		list.Spectra = spectra
		run.SpectrumList = &list
	}
	if len(chromatograms) > 0 {
		list := ChromatogramList{}
		if src := doc.Root().Run.ChromatogramList; src != nil {
			list.DefaultDataProcessingRef = src.DefaultDataProcessingRef
		}
		list.Count = len(chromatograms)
		list.Chromatograms = chromatograms
		run.ChromatogramList = &list
	}
	m.Run = run

	switch d := doc.(type) {
	case *IndexedDocument:
		out := *d
		out.MzML = m
		return &out
	default:
		return &PlainDocument{MzML: m}
	}
}

func defaultRootAttrs(schemaLocation string) []xml.Attr {
	return []xml.Attr{
		{Name: xml.Name{Local: "xmlns"}, Value: Namespace},
		{Name: xml.Name{Local: "xmlns:xsi"}, Value: XSINamespace},
		{Name: xml.Name{Local: "xsi:schemaLocation"}, Value: schemaLocation},
	}
}

// standaloneAttrs adds the namespace declarations an mzML element needs once
// it is no longer nested inside indexedmzML.
func standaloneAttrs(attrs []xml.Attr) []xml.Attr {
	var decls []xml.Attr
	if !hasAttr(attrs, "xmlns") {
		decls = append(decls, xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: Namespace})
	}
	if !hasAttr(attrs, "xmlns:xsi") {
		for _, a := range attrs {
			if strings.HasPrefix(a.Name.Local, "xsi:") {
				decls = append(decls, xml.Attr{Name: xml.Name{Local: "xmlns:xsi"}, Value: XSINamespace})
				break
			}
		}
	}
	if len(decls) == 0 {
		return attrs
	}
	return append(decls, attrs...)
}

func hasAttr(attrs []xml.Attr, local string) bool {
	for _, a := range attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			return true
		}
	}
	return false
}

// LiteralAttrs rewrites namespace-resolved attribute names back to their
// prefixed source form so they serialize unchanged. prefixes maps namespace
// URLs declared by enclosing elements to their prefix; the returned map adds
// the declarations found in attrs.
func LiteralAttrs(attrs []xml.Attr, prefixes map[string]string) ([]xml.Attr, map[string]string) {
	scope := make(map[string]string, len(prefixes)+2)
	for url, prefix := range prefixes {
		scope[url] = prefix
	}
	for _, a := range attrs {
		if a.Name.Space == "xmlns" {
			scope[a.Value] = a.Name.Local
		}
	}

	out := make([]xml.Attr, 0, len(attrs))
	for _, a := range attrs {
		name := a.Name
		switch {
		case name.Space == "":
		case name.Space == "xmlns":
			name = xml.Name{Local: "xmlns:" + name.Local}
		default:
			prefix, ok := scope[name.Space]
			if !ok {
				prefix = name.Space[strings.LastIndexAny(name.Space, "/:")+1:]
			}
			name = xml.Name{Local: prefix + ":" + name.Local}
		}
		out = append(out, xml.Attr{Name: name, Value: a.Value})
	}
	return out, scope
}
