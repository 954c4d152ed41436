package mzml

import (
	"github.com/meigma/mzml/internal/mzmltype"
	"github.com/meigma/mzml/internal/payload"
	"github.com/meigma/mzml/ontology"
	"github.com/meigma/mzml/validation"
)

// Errors re-exported from internal/mzmltype.
var (
	// ErrNotFound is returned when an id is not present in the index.
	ErrNotFound = mzmltype.ErrNotFound

	// ErrStructure is returned when expected document markers are missing or malformed.
	ErrStructure = mzmltype.ErrStructure

	// ErrTagNotClosed is returned when the input ends inside a spectrum or chromatogram.
	ErrTagNotClosed = mzmltype.ErrTagNotClosed

	// ErrElementParse is returned when the element at an indexed offset cannot be parsed.
	ErrElementParse = mzmltype.ErrElementParse

	// ErrExtraction is returned when extraction output lacks an expected marker.
	ErrExtraction = mzmltype.ErrExtraction

	// ErrStaleIndex is returned when a supplied index was built from different content.
	ErrStaleIndex = mzmltype.ErrStaleIndex

	// ErrRecordTooLarge is returned when a record exceeds the configured size limit.
	ErrRecordTooLarge = mzmltype.ErrRecordTooLarge

	// ErrSizeOverflow is returned when offsets or sizes exceed supported limits.
	ErrSizeOverflow = mzmltype.ErrSizeOverflow
)

// Errors re-exported from internal/payload.
var (
	// ErrCompressionUndeclared is returned when a binary array names no compression term.
	ErrCompressionUndeclared = payload.ErrCompressionUndeclared

	// ErrUnknownCodec is returned for an unsupported compression accession.
	ErrUnknownCodec = payload.ErrUnknownCodec

	// ErrDataTypeUndeclared is returned when a binary array names no value type.
	ErrDataTypeUndeclared = payload.ErrDataTypeUndeclared

	// ErrUnknownDataType is returned for an unsupported value type accession.
	ErrUnknownDataType = payload.ErrUnknownDataType

	// ErrPayloadSize is returned when decoded bytes do not divide into whole values.
	ErrPayloadSize = payload.ErrPayloadSize

	// ErrDecompression is returned when a zlib payload cannot be inflated.
	ErrDecompression = payload.ErrDecompression

	// ErrPayloadTooLarge is returned when an inflated payload exceeds its limit.
	ErrPayloadTooLarge = payload.ErrPayloadTooLarge
)

// Errors re-exported from ontology and validation.
var (
	// ErrOntologyUnavailable is returned when a vocabulary cannot be loaded.
	ErrOntologyUnavailable = ontology.ErrOntologyUnavailable

	// ErrValidation is returned when an element violates the vocabulary rules.
	ErrValidation = validation.ErrValidation
)
