// Package mzml provides random access to the spectra and chromatograms of
// mzML and indexedmzML mass spectrometry documents.
//
// Opening a document parses only its shell (everything outside the spectrum
// and chromatogram lists) and resolves an offset index. Each record read then
// decodes a single element, so the cost of reading a spectrum depends on its
// size and not on its position in the file.
//
// # Quick Start
//
// Open a local file and read a spectrum:
//
//	f, err := mzml.OpenFile("run.mzML")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	s, err := f.Spectrum("controllerType=0 controllerNumber=1 scan=42")
//	if err != nil {
//	    return err
//	}
//	mz, err := s.MZ()
//
// Any [ByteSource] works; the http subpackage reads remote documents with
// range requests.
//
// # Indexes
//
// The index comes from, in order: an index passed with [WithIndex], the
// indexList embedded in an indexedmzML document, or a scan of the whole
// document. Scanning large documents is slow, so indexes can be persisted:
//
//	idx, err := mzml.BuildIndex(src, 0)
//	err = mzml.SaveIndex(mzml.IndexPath("run.mzML"), idx)
//
// A persisted index records the size and a fingerprint of its document;
// [Open] rejects it with [ErrStaleIndex] once the document changes.
//
// # Extraction
//
// [Extract] writes a standalone document holding selected spectra,
// optionally with the spectra their precursors came from and chosen
// chromatograms:
//
//	out, err := mzml.Extract(f.Reader, ids,
//	    mzml.WithAncestors(),
//	    mzml.WithVariant(mzml.VariantIndexed),
//	)
//
// Indexed output carries a fresh offset index and SHA-1 file checksum.
//
// # Validation
//
// [WithValidation] checks the document shell against the PSI-MS controlled
// vocabulary rules on open, and [WithRecordValidation] extends the checks to
// every record read. [Reader.Validate] checks a whole document and reports
// all violations at once. Vocabularies are loaded by the ontology subpackage.
package mzml
