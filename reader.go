package mzml

import (
	"bufio"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/meigma/mzml/internal/batch"
	"github.com/meigma/mzml/internal/index"
	"github.com/meigma/mzml/internal/mzmltype"
	"github.com/meigma/mzml/internal/sizing"
	"github.com/meigma/mzml/validation"
)

const (
	// DefaultChunkSize is the read size used by index scans.
	DefaultChunkSize = 1 << 20

	// DefaultMaxRecordSize is the default limit on bytes read for one record.
	DefaultMaxRecordSize = 256 << 20

	// maxReadAhead caps the decoder buffer for record reads.
	maxReadAhead = 64 << 10
)

// Index resolution strategies, as reported in logs and metrics.
const (
	strategySupplied = "supplied"
	strategyEmbedded = "embedded"
	strategyScan     = "scan"
)

// Reader provides random access to the spectra and chromatograms of an mzML
// or indexedmzML document.
//
// Opening a reader parses the document shell and resolves the index; record
// reads then cost O(record size) regardless of where the record sits in the
// file. A Reader is immutable after Open and safe for concurrent use when its
// ByteSource is.
type Reader struct {
	src    ByteSource
	doc    mzmltype.Document
	idx    *index.Index
	groups validation.Groups

	reindex         bool
	supplied        *index.Index
	validator       *validation.Validator
	validateRecords bool
	chunkSize       int
	maxRecordSize   uint64
	workers         int
	logger          *slog.Logger
	metrics         *Metrics
}

// Open parses the document shell of src and resolves its index.
//
// The index is taken, in order of preference, from WithIndex, from the
// embedded indexList of an indexedmzML document, or from a full scan of src.
// WithReindex skips the embedded index.
func Open(src ByteSource, opts ...Option) (*Reader, error) {
	r := &Reader{
		src:           src,
		chunkSize:     DefaultChunkSize,
		maxRecordSize: DefaultMaxRecordSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.chunkSize <= 0 {
		r.chunkSize = DefaultChunkSize
	}

	start := time.Now()
	sh, err := readShell(src, r.chunkSize)
	if err != nil {
		return nil, fmt.Errorf("read document shell: %w", err)
	}
	r.log().Debug("document shell parsed",
		slog.String("source", src.SourceID()),
		slog.String("variant", sh.doc.Variant().String()),
		slog.Int64("list_offset", sh.listPos),
		slog.Int64("run_end", sh.runEnd))

	idx, strategy, err := r.resolveIndex(sh)
	if err != nil {
		return nil, err
	}
	if err := sh.attachChromatogramList(src, idx, r.chunkSize); err != nil {
		return nil, fmt.Errorf("read document shell: %w", err)
	}
	if err := checkListCounts(sh.doc.Root().Run, idx); err != nil {
		return nil, fmt.Errorf("read document shell: %w", err)
	}
	r.doc = sh.doc
	r.idx = idx
	r.groups = validation.GroupsOf(sh.doc.Root())

	if m := r.metrics; m != nil {
		m.IndexBuildsTotal.WithLabelValues(strategy).Inc()
	}
	r.log().Info("index resolved",
		slog.String("source", src.SourceID()),
		slog.String("strategy", strategy),
		slog.Int("spectra", idx.Len(KindSpectrum)),
		slog.Int("chromatograms", idx.Len(KindChromatogram)),
		slog.Duration("duration", time.Since(start)))

	if r.validator != nil {
		if err := r.validator.Shell(sh.doc.Root()); err != nil {
			r.validationFailed("shell", err)
			return nil, err
		}
	}
	return r, nil
}

func (r *Reader) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// checkListCounts compares the count attribute of each record list with
// the number of records the index located for it.
func checkListCounts(run mzmltype.Run, idx *index.Index) error {
	if l := run.SpectrumList; l != nil && l.Count != idx.Len(mzmltype.KindSpectrum) {
		return listCountError("spectrumList", l.Count, idx.Len(mzmltype.KindSpectrum))
	}
	if l := run.ChromatogramList; l != nil && l.Count != idx.Len(mzmltype.KindChromatogram) {
		return listCountError("chromatogramList", l.Count, idx.Len(mzmltype.KindChromatogram))
	}
	return nil
}

func listCountError(element string, count, indexed int) error {
	return &mzmltype.StructuralError{
		Element:  element,
		Expected: fmt.Sprintf("count=%d", count),
		Found:    fmt.Sprintf("%d indexed", indexed),
	}
}

func (r *Reader) resolveIndex(sh *shell) (*index.Index, string, error) {
	if r.supplied != nil {
		if err := r.supplied.Verify(r.src, r.src.Size()); err != nil {
			return nil, "", err
		}
		return r.supplied, strategySupplied, nil
	}
	if d, ok := sh.doc.(*mzmltype.IndexedDocument); ok && !r.reindex && len(d.IndexList.Indexes) > 0 {
		idx, err := index.FromIndexList(d.IndexList)
		if err != nil {
			return nil, "", fmt.Errorf("embedded index: %w", err)
		}
		return idx, strategyEmbedded, nil
	}

	idx, stats, err := index.Build(io.NewSectionReader(r.src, 0, r.src.Size()), r.chunkSize)
	if err != nil {
		return nil, "", fmt.Errorf("scan index: %w", err)
	}
	if m := r.metrics; m != nil {
		m.IndexBytesScannedTotal.Add(float64(stats.BytesRead))
	}
	return idx, strategyScan, nil
}

// Source returns the byte source the reader was opened on.
func (r *Reader) Source() ByteSource {
	return r.src
}

// Document returns the parsed document shell. Its record lists carry their
// attributes but no records. The result must not be modified.
func (r *Reader) Document() Document {
	return r.doc
}

// Variant reports whether the source is plain mzML or indexedmzML.
func (r *Reader) Variant() Variant {
	return r.doc.Variant()
}

// Index returns the resolved index.
func (r *Reader) Index() *Index {
	return r.idx
}

// Size returns the size of the source in bytes.
func (r *Reader) Size() int64 {
	return r.src.Size()
}

// SpectrumIDs returns the spectrum ids in document order.
func (r *Reader) SpectrumIDs() []string {
	return r.idx.IDs(KindSpectrum)
}

// ChromatogramIDs returns the chromatogram ids in document order.
func (r *Reader) ChromatogramIDs() []string {
	return r.idx.IDs(KindChromatogram)
}

// Spectrum reads the spectrum with the given id.
// It returns ErrNotFound if the id is not indexed.
func (r *Reader) Spectrum(id string) (*Spectrum, error) {
	s := &mzmltype.Spectrum{}
	if err := r.read(KindSpectrum, id, s, func() string { return s.ID }); err != nil {
		return nil, err
	}
	if r.validator != nil && r.validateRecords {
		if err := r.validator.Spectrum(s, r.groups); err != nil {
			r.validationFailed("spectrum", err)
			r.readFailed(KindSpectrum, "validation")
			return nil, err
		}
	}
	return s, nil
}

// Chromatogram reads the chromatogram with the given id.
// It returns ErrNotFound if the id is not indexed.
func (r *Reader) Chromatogram(id string) (*Chromatogram, error) {
	c := &mzmltype.Chromatogram{}
	if err := r.read(KindChromatogram, id, c, func() string { return c.ID }); err != nil {
		return nil, err
	}
	if r.validator != nil && r.validateRecords {
		if err := r.validator.Chromatogram(c, r.groups); err != nil {
			r.validationFailed("chromatogram", err)
			r.readFailed(KindChromatogram, "validation")
			return nil, err
		}
	}
	return c, nil
}

// Spectra yields every spectrum in document order. Iteration continues past
// records that fail to read; the error is yielded in their place.
func (r *Reader) Spectra() iter.Seq2[*Spectrum, error] {
	return func(yield func(*Spectrum, error) bool) {
		for _, id := range r.SpectrumIDs() {
			if !yield(r.Spectrum(id)) {
				return
			}
		}
	}
}

// Chromatograms yields every chromatogram in document order.
func (r *Reader) Chromatograms() iter.Seq2[*Chromatogram, error] {
	return func(yield func(*Chromatogram, error) bool) {
		for _, id := range r.ChromatogramIDs() {
			if !yield(r.Chromatogram(id)) {
				return
			}
		}
	}
}

// read decodes the element of the given kind at the indexed offset of id
// into v. gotID reports the id of the decoded element.
func (r *Reader) read(kind Kind, id string, v any, gotID func() string) error {
	start := time.Now()
	off, ok := r.idx.Offset(kind, id)
	if !ok {
		r.readFailed(kind, "not_found")
		return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
	}
	pos, err := sizing.ToInt64(off, ErrSizeOverflow)
	if err != nil {
		r.readFailed(kind, "parse")
		return err
	}
	size := r.src.Size()
	if pos >= size {
		r.readFailed(kind, "parse")
		return fmt.Errorf("%w: %s %q: offset %d beyond end of source (%d bytes)", ErrElementParse, kind, id, pos, size)
	}

	n := size - pos
	limited := false
	if r.maxRecordSize > 0 && uint64(n) > r.maxRecordSize { //nolint:gosec // n is positive
		n = int64(r.maxRecordSize) //nolint:gosec // bounded by n
		limited = true
	}
	cr := &countingReader{r: io.NewSectionReader(r.src, pos, n)}
	dec := xml.NewDecoder(bufio.NewReaderSize(cr, min(r.chunkSize, maxReadAhead)))

	if err := decodeRecord(dec, kind, v); err != nil {
		var ioErr *sourceError
		switch {
		case errors.As(err, &ioErr):
			r.readFailed(kind, "io")
			return fmt.Errorf("read %s %q: %w", kind, id, ioErr.err)
		case limited && cr.n.Load() >= n:
			r.readFailed(kind, "too_large")
			return fmt.Errorf("%w: %s %q exceeds %d bytes", ErrRecordTooLarge, kind, id, r.maxRecordSize)
		default:
			r.readFailed(kind, "parse")
			return fmt.Errorf("%w: %s %q at offset %d: %w", ErrElementParse, kind, id, pos, err)
		}
	}
	if got := gotID(); got != id {
		r.readFailed(kind, "parse")
		return fmt.Errorf("%w: %s at offset %d has id %q, want %q", ErrElementParse, kind, pos, got, id)
	}

	if m := r.metrics; m != nil {
		m.RecordsReadTotal.WithLabelValues(kind.String()).Inc()
		m.RecordReadDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())
	}
	return nil
}

// decodeRecord decodes the first element from dec, which must be named after
// kind.
func decodeRecord(dec *xml.Decoder, kind Kind, v any) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	startEl, ok := tok.(xml.StartElement)
	if !ok || startEl.Name.Local != kind.String() {
		return fmt.Errorf("offset does not point at a <%s> tag", kind)
	}
	return dec.DecodeElement(v, &startEl)
}

func (r *Reader) readFailed(kind Kind, reason string) {
	if m := r.metrics; m != nil {
		m.RecordReadFailuresTotal.WithLabelValues(kind.String(), reason).Inc()
	}
}

func (r *Reader) validationFailed(scope string, err error) {
	if !errors.Is(err, ErrValidation) {
		return
	}
	if m := r.metrics; m != nil {
		m.ValidationFailuresTotal.WithLabelValues(scope).Inc()
	}
	r.log().Warn("vocabulary validation failed", slog.String("scope", scope), slog.String("error", err.Error()))
}

// Validate checks the shell and every record against the vocabulary rules
// of v, or the default vocabularies when v is nil. Records are read on the
// workers set by WithWorkers. Violations from all elements are joined in
// document order; a read or lookup failure such as ErrOntologyUnavailable
// stops validation and is returned.
func (r *Reader) Validate(ctx context.Context, v *validation.Validator) error {
	if v == nil {
		v = validation.New(nil)
	}
	if err := v.Shell(r.doc.Root()); err != nil {
		if !errors.Is(err, ErrValidation) {
			return err
		}
		r.validationFailed("shell", err)
		return errors.Join(err, r.checkRecords(ctx, v))
	}
	return r.checkRecords(ctx, v)
}

func (r *Reader) checkRecords(ctx context.Context, v *validation.Validator) error {
	spectra, chromatograms := r.SpectrumIDs(), r.ChromatogramIDs()
	n := len(spectra) + len(chromatograms)
	found := make([]error, n)

	check := func(i int) error {
		var scope string
		var err error
		if i < len(spectra) {
			scope = "spectrum"
			s := &mzmltype.Spectrum{}
			if err := r.read(KindSpectrum, spectra[i], s, func() string { return s.ID }); err != nil {
				return err
			}
			err = v.Spectrum(s, r.groups)
		} else {
			scope = "chromatogram"
			c := &mzmltype.Chromatogram{}
			if err := r.read(KindChromatogram, chromatograms[i-len(spectra)], c, func() string { return c.ID }); err != nil {
				return err
			}
			err = v.Chromatogram(c, r.groups)
		}
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrValidation) {
			return err
		}
		r.validationFailed(scope, err)
		found[i] = err
		return nil
	}

	workers := batch.Workers(r.workers, n)
	r.log().Debug("validating records", slog.Int("records", n), slog.Int("workers", workers))
	if err := batch.Run(ctx, n, workers, check); err != nil {
		return err
	}
	return errors.Join(found...)
}

// countingReader counts bytes read from the source and marks source errors
// so they can be told apart from XML syntax errors.
type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	if err != nil && !errors.Is(err, io.EOF) {
		err = &sourceError{err: err}
	}
	return n, err
}

type sourceError struct {
	err error
}

func (e *sourceError) Error() string { return e.err.Error() }

func (e *sourceError) Unwrap() error { return e.err }
