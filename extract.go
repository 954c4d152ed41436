package mzml

import (
	"bytes"
	"cmp"
	"crypto/sha1" //nolint:gosec // indexedmzML checksums are SHA-1
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/meigma/mzml/internal/index"
	"github.com/meigma/mzml/internal/mzmltype"
)

var (
	markerIndexList        = []byte("<indexList ")
	markerIndexListOffset  = []byte("<indexListOffset>")
	markerIndexListOffsetE = []byte("</indexListOffset>")
	markerChecksum         = []byte("<fileChecksum>")
	markerChecksumE        = []byte("</fileChecksum>")
)

// Extract writes a standalone document holding only the requested spectra
// (and, with options, their ancestors and chosen chromatograms). Records keep
// their original index attribute and appear in that order. The output
// reuses the shell of r; an indexedmzML output carries a fresh offset index
// and checksum. The checksum is the lowercase hex SHA-1 of the output bytes
// from the start of the document up to and including the <fileChecksum>
// open tag.
func Extract(r *Reader, ids []string, opts ...ExtractOption) ([]byte, error) {
	cfg := extractConfig{variant: r.Variant()}
	for _, opt := range opts {
		opt(&cfg)
	}

	out, err := extract(r, ids, &cfg)
	status := "ok"
	if err != nil {
		status = "error"
	}
	if m := r.metrics; m != nil {
		m.ExtractionsTotal.WithLabelValues(cfg.variant.String(), status).Inc()
	}
	return out, err
}

func extract(r *Reader, ids []string, cfg *extractConfig) ([]byte, error) {
	spectra, err := collectSpectra(r, ids, cfg.ancestors)
	if err != nil {
		return nil, err
	}
	chromatograms := make([]mzmltype.Chromatogram, 0, len(cfg.chromatograms))
	seen := make(map[string]bool, len(cfg.chromatograms))
	for _, id := range cfg.chromatograms {
		if seen[id] {
			continue
		}
		seen[id] = true
		c, err := r.Chromatogram(id)
		if err != nil {
			return nil, err
		}
		chromatograms = append(chromatograms, *c)
	}
	slices.SortStableFunc(chromatograms, func(a, b mzmltype.Chromatogram) int { return cmp.Compare(a.Index, b.Index) })

	doc := mzmltype.WithRecords(r.Document(), spectra, chromatograms)
	if cfg.variant == VariantIndexed {
		return writeIndexed(r, mzmltype.ToIndexed(doc))
	}
	out, err := marshalDocument(mzmltype.ToPlain(doc))
	if err != nil {
		return nil, err
	}
	r.log().Debug("extracted document",
		slog.Int("spectra", len(spectra)),
		slog.Int("chromatograms", len(chromatograms)),
		slog.Int("bytes", len(out)))
	return out, nil
}

// collectSpectra reads the requested spectra and, when ancestors is set,
// every spectrum their precursors refer to. The result is ordered by the
// original index attribute.
func collectSpectra(r *Reader, ids []string, ancestors bool) ([]mzmltype.Spectrum, error) {
	pending := slices.Clone(ids)
	seen := make(map[string]bool, len(ids))
	var out []mzmltype.Spectrum
	for len(pending) > 0 {
		id := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if seen[id] {
			continue
		}
		seen[id] = true

		s, err := r.Spectrum(id)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
		if !ancestors {
			continue
		}
		for _, p := range s.Precursors() {
			parent, external := p.ParentID()
			if parent == "" || external {
				continue
			}
			pending = append(pending, parent)
		}
	}
	slices.SortStableFunc(out, func(a, b mzmltype.Spectrum) int { return cmp.Compare(a.Index, b.Index) })
	return out, nil
}

// writeIndexed serializes doc twice: the first pass fixes record offsets,
// the second embeds the index built from them. Record offsets do not move
// between passes because the index list follows the mzML element. The list
// offset and checksum are then patched into the text.
func writeIndexed(r *Reader, doc *mzmltype.IndexedDocument) ([]byte, error) {
	first, err := marshalDocument(doc)
	if err != nil {
		return nil, err
	}
	idx, _, err := index.Build(bytes.NewReader(first), r.chunkSize)
	if err != nil {
		return nil, fmt.Errorf("%w: index first pass: %w", ErrExtraction, err)
	}

	doc.IndexList = idx.IndexList()
	out, err := marshalDocument(doc)
	if err != nil {
		return nil, err
	}
	out, err = patchIndexListOffset(out)
	if err != nil {
		return nil, err
	}
	out, err = patchChecksum(out)
	if err != nil {
		return nil, err
	}
	r.log().Debug("extracted indexed document",
		slog.Int("spectra", idx.Len(KindSpectrum)),
		slog.Int("chromatograms", idx.Len(KindChromatogram)),
		slog.Int("bytes", len(out)))
	return out, nil
}

// marshalDocument writes doc with an XML declaration and two-space indent.
func marshalDocument(doc mzmltype.Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	var err error
	switch d := doc.(type) {
	case *mzmltype.PlainDocument:
		err = enc.EncodeElement(&d.MzML, xml.StartElement{Name: xml.Name{Local: mzmltype.RootPlain}})
	case *mzmltype.IndexedDocument:
		err = enc.EncodeElement(d, xml.StartElement{Name: xml.Name{Local: mzmltype.RootIndexed}})
	default:
		err = fmt.Errorf("unsupported document type %T", doc)
	}
	if err == nil {
		err = enc.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: serialize: %w", ErrExtraction, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// patchIndexListOffset writes the byte offset of <indexList> into the
// indexListOffset element.
func patchIndexListOffset(out []byte) ([]byte, error) {
	listPos := bytes.Index(out, markerIndexList)
	if listPos < 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrExtraction, markerIndexList)
	}
	return splice(out, markerIndexListOffset, markerIndexListOffsetE, []byte(strconv.Itoa(listPos)))
}

// patchChecksum writes the SHA-1 of every byte up to and including the
// <fileChecksum> tag into the fileChecksum element.
func patchChecksum(out []byte) ([]byte, error) {
	open := bytes.LastIndex(out, markerChecksum)
	if open < 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrExtraction, markerChecksum)
	}
	sum := sha1.Sum(out[:open+len(markerChecksum)]) //nolint:gosec // format-mandated
	return splice(out, markerChecksum, markerChecksumE, []byte(hex.EncodeToString(sum[:])))
}

// splice replaces the text between the last open marker and the close marker
// that follows it.
func splice(out, open, closing, value []byte) ([]byte, error) {
	start := bytes.LastIndex(out, open)
	if start < 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrExtraction, open)
	}
	start += len(open)
	end := bytes.Index(out[start:], closing)
	if end < 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrExtraction, closing)
	}
	end += start

	patched := make([]byte, 0, len(out)-(end-start)+len(value))
	patched = append(patched, out[:start]...)
	patched = append(patched, value...)
	patched = append(patched, out[end:]...)
	return patched, nil
}
