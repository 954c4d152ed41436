package mzml

import (
	"io"

	"github.com/meigma/mzml/internal/index"
	"github.com/meigma/mzml/internal/mzmltype"
)

// Re-export element types from internal/mzmltype for public API.
type (
	// Document is a parsed document shell, either *PlainDocument or *IndexedDocument.
	Document = mzmltype.Document

	// PlainDocument is a bare mzML document.
	PlainDocument = mzmltype.PlainDocument

	// IndexedDocument is an mzML document wrapped with an offset index and checksum.
	IndexedDocument = mzmltype.IndexedDocument

	// MzML is the mzML root element.
	MzML = mzmltype.MzML

	// Spectrum is a single mass spectrum.
	Spectrum = mzmltype.Spectrum

	// Chromatogram is a single chromatogram.
	Chromatogram = mzmltype.Chromatogram

	// SpectrumList holds spectra. In a document shell it holds none.
	SpectrumList = mzmltype.SpectrumList

	// ChromatogramList holds chromatograms. In a document shell it holds none.
	ChromatogramList = mzmltype.ChromatogramList

	// Precursor describes the parent ion selection of a fragment spectrum.
	Precursor = mzmltype.Precursor

	// SelectedIon is one ion selected for fragmentation.
	SelectedIon = mzmltype.SelectedIon

	// CvParam is a controlled vocabulary annotation.
	CvParam = mzmltype.CvParam

	// ParamGroup is the set of annotations attached to an element.
	ParamGroup = mzmltype.ParamGroup

	// BinaryDataArray is one encoded numeric array.
	BinaryDataArray = mzmltype.BinaryDataArray

	// Variant identifies the container shape of a document.
	Variant = mzmltype.Variant

	// Kind identifies a bulk record kind.
	Kind = mzmltype.Kind

	// StructuralError describes a missing or unexpected marker in the document.
	StructuralError = mzmltype.StructuralError

	// Index maps record ids to the byte offsets of their opening tags.
	Index = index.Index
)

// Re-export variant and kind constants.
const (
	VariantPlain   = mzmltype.VariantPlain
	VariantIndexed = mzmltype.VariantIndexed

	KindSpectrum     = mzmltype.KindSpectrum
	KindChromatogram = mzmltype.KindChromatogram
)

// ByteSource provides random access to an mzML document.
//
// Implementations exist for local files and HTTP range requests.
// SourceID must return a stable identifier for the underlying content.
type ByteSource interface {
	io.ReaderAt
	Size() int64
	SourceID() string
}
