package mzml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/meigma/mzml/internal/index"
	"github.com/meigma/mzml/internal/mzmltype"
	"github.com/meigma/mzml/internal/scan"
)

var (
	markerSpectrumList     = []byte("<spectrumList")
	markerChromatogramList = []byte("<chromatogramList")
	markerRunClose         = []byte("</run>")
)

// shell is the document metadata with empty record lists, plus the byte
// positions needed to finish it once the index is known.
type shell struct {
	doc mzmltype.Document
	// listPos is the offset of the first record list open tag, or -1 when
	// the run holds no record lists.
	listPos int64
	// runEnd is the offset of </run>.
	runEnd int64
	// spectrumList reports whether the first list is a spectrumList.
	spectrumList bool
}

// readShell parses everything outside the record lists without tokenizing
// them: the bytes before the first list and the bytes from </run> to EOF.
func readShell(src ByteSource, chunk int) (*shell, error) {
	size := src.Size()
	listPos, which, found, err := scan.IndexAny(src, 0, size, chunk, markerSpectrumList, markerChromatogramList)
	if err != nil {
		return nil, fmt.Errorf("locate record lists: %w", err)
	}
	sh := &shell{listPos: -1, runEnd: size}
	head := size
	if found {
		sh.listPos = listPos
		sh.spectrumList = which == 0
		runEnd, ok, err := scan.LastIndex(src, listPos, size, chunk, markerRunClose)
		if err != nil {
			return nil, fmt.Errorf("locate </run>: %w", err)
		}
		if !ok {
			return nil, &mzmltype.StructuralError{Element: "run", Expected: "</run>", Found: "end of input", Offset: listPos}
		}
		sh.runEnd = runEnd
		head = listPos
	}

	r := io.MultiReader(io.NewSectionReader(src, 0, head), io.NewSectionReader(src, sh.runEnd, size-sh.runEnd))
	doc, err := decodeDocument(r)
	if err != nil {
		return nil, err
	}
	sh.doc = doc

	if found && sh.spectrumList {
		var list mzmltype.SpectrumList
		if err := decodeListHeader(src, listPos, sh.runEnd, chunk, "spectrumList", &list); err != nil {
			return nil, err
		}
		list.Spectra = nil
		doc.Root().Run.SpectrumList = &list
	}
	return sh, nil
}

// attachChromatogramList finds the chromatogramList open tag, which sits
// after the last spectrum and before the first chromatogram, and decodes it
// into the shell.
func (sh *shell) attachChromatogramList(src ByteSource, idx *index.Index, chunk int) error {
	if sh.listPos < 0 {
		return nil
	}
	var pos int64
	if !sh.spectrumList {
		pos = sh.listPos
	} else {
		lo := sh.listPos
		for _, off := range idx.Entries(mzmltype.KindSpectrum) {
			lo = max(lo, int64(off)) //nolint:gosec // offsets come from this source
		}
		hi := sh.runEnd
		for _, off := range idx.Entries(mzmltype.KindChromatogram) {
			hi = min(hi, int64(off)) //nolint:gosec // offsets come from this source
		}
		if hi < lo {
			return &mzmltype.StructuralError{
				Element:  "chromatogramList",
				Expected: "chromatograms after the last spectrum",
				Found:    fmt.Sprintf("chromatogram at offset %d", hi),
				Offset:   lo,
			}
		}
		found, ok, err := scan.LastIndex(src, lo, hi, chunk, markerChromatogramList)
		if err != nil {
			return fmt.Errorf("locate chromatogramList: %w", err)
		}
		if !ok {
			if idx.Len(mzmltype.KindChromatogram) > 0 {
				return &mzmltype.StructuralError{Element: "chromatogramList", Expected: "<chromatogramList", Found: "chromatograms outside a list", Offset: hi}
			}
			return nil
		}
		pos = found
	}

	var list mzmltype.ChromatogramList
	if err := decodeListHeader(src, pos, sh.runEnd, chunk, "chromatogramList", &list); err != nil {
		return err
	}
	list.Chromatograms = nil
	sh.doc.Root().Run.ChromatogramList = &list
	return nil
}

// decodeListHeader decodes the attributes of the list open tag at pos.
func decodeListHeader(src ByteSource, pos, limit int64, chunk int, name string, v any) error {
	end, _, ok, err := scan.IndexAny(src, pos, limit, chunk, []byte(">"))
	if err != nil {
		return fmt.Errorf("read %s tag: %w", name, err)
	}
	if !ok {
		return &mzmltype.StructuralError{Element: name, Expected: ">", Found: "end of run", Offset: pos}
	}
	tag := make([]byte, end+1-pos)
	if _, err := src.ReadAt(tag, pos); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read %s tag: %w", name, err)
	}
	if !bytes.HasSuffix(tag, []byte("/>")) {
		tag = append(tag, "</"+name+">"...)
	}
	if err := xml.Unmarshal(tag, v); err != nil {
		return fmt.Errorf("%w: %s tag at offset %d: %w", mzmltype.ErrStructure, name, pos, err)
	}
	return nil
}

// decodeDocument decodes a plain or indexed root from r. Root attributes are
// rewritten to their literal prefixed form so they serialize unchanged.
func decodeDocument(r io.Reader) (mzmltype.Document, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &mzmltype.StructuralError{Element: "document", Expected: "<mzML> or <indexedmzML>", Found: "end of input"}
			}
			return nil, fmt.Errorf("%w: document shell: %w", mzmltype.ErrStructure, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case mzmltype.RootPlain:
			d := &mzmltype.PlainDocument{}
			if err := dec.DecodeElement(&d.MzML, &start); err != nil {
				return nil, fmt.Errorf("%w: document shell: %w", mzmltype.ErrStructure, err)
			}
			d.MzML.Attrs, _ = mzmltype.LiteralAttrs(d.MzML.Attrs, nil)
			return d, nil
		case mzmltype.RootIndexed:
			d := &mzmltype.IndexedDocument{}
			if err := dec.DecodeElement(d, &start); err != nil {
				return nil, fmt.Errorf("%w: document shell: %w", mzmltype.ErrStructure, err)
			}
			var scope map[string]string
			d.Attrs, scope = mzmltype.LiteralAttrs(d.Attrs, nil)
			d.MzML.Attrs, _ = mzmltype.LiteralAttrs(d.MzML.Attrs, scope)
			return d, nil
		default:
			return nil, &mzmltype.StructuralError{Element: "document", Expected: "<mzML> or <indexedmzML>", Found: "<" + start.Name.Local + ">"}
		}
	}
}
