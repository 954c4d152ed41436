package mzml

import (
	"log/slog"

	"github.com/meigma/mzml/internal/index"
	"github.com/meigma/mzml/validation"
)

// Option configures a Reader.
type Option func(*Reader)

// WithReindex forces a full scan of the document even when it carries an
// embedded index.
func WithReindex() Option {
	return func(r *Reader) {
		r.reindex = true
	}
}

// WithIndex supplies a previously built index. When the index records a
// source fingerprint, Open verifies it and fails with ErrStaleIndex if the
// source has changed. A supplied index takes precedence over WithReindex.
func WithIndex(idx *index.Index) Option {
	return func(r *Reader) {
		r.supplied = idx
	}
}

// WithValidation checks the document shell against the vocabulary rules when
// the reader is opened. A nil validator uses the process-wide default
// vocabularies.
func WithValidation(v *validation.Validator) Option {
	return func(r *Reader) {
		if v == nil {
			v = validation.New(nil)
		}
		r.validator = v
	}
}

// WithRecordValidation also validates every spectrum and chromatogram as it
// is read. It has no effect without WithValidation.
func WithRecordValidation() Option {
	return func(r *Reader) {
		r.validateRecords = true
	}
}

// WithWorkers sets how many records Validate reads concurrently. Values < 0
// force serial validation; zero, the default, picks a count from GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Reader) {
		r.workers = n
	}
}

// WithChunkSize sets the read size used by index scans and marker searches,
// and bounds read-ahead when decoding a record. Values <= 0 select
// DefaultChunkSize.
func WithChunkSize(n int) Option {
	return func(r *Reader) {
		r.chunkSize = n
	}
}

// WithMaxRecordSize limits the bytes read for a single record.
// Set limit to 0 to disable the limit.
func WithMaxRecordSize(limit uint64) Option {
	return func(r *Reader) {
		r.maxRecordSize = limit
	}
}

// WithLogger sets the logger for reader operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// WithMetrics records index resolution and record reads in m.
func WithMetrics(m *Metrics) Option {
	return func(r *Reader) {
		r.metrics = m
	}
}
