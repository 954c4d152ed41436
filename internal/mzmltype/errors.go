package mzmltype

import (
	"errors"
	"fmt"
)

// Sentinel errors for mzML operations.
var (
	// ErrNotFound is returned when an id is not present in the index.
	ErrNotFound = errors.New("mzml: record not found")

	// ErrStructure is returned when expected document markers are missing or malformed.
	ErrStructure = errors.New("mzml: malformed document structure")

	// ErrTagNotClosed is returned when the input ends inside a spectrum or chromatogram.
	ErrTagNotClosed = errors.New("mzml: tag not closed")

	// ErrElementParse is returned when the element at an indexed offset cannot be parsed.
	ErrElementParse = errors.New("mzml: element parse failed")

	// ErrExtraction is returned when serialized extraction output lacks an expected marker.
	ErrExtraction = errors.New("mzml: extraction failed")

	// ErrStaleIndex is returned when a supplied index was built from different content.
	ErrStaleIndex = errors.New("mzml: index does not match source")

	// ErrRecordTooLarge is returned when a record exceeds the configured size limit.
	ErrRecordTooLarge = errors.New("mzml: record exceeds size limit")

	// ErrSizeOverflow is returned when offsets or sizes exceed supported limits.
	ErrSizeOverflow = errors.New("mzml: size overflow")
)

// StructuralError describes a missing or unexpected marker in the document.
// It matches ErrStructure with errors.Is.
type StructuralError struct {
	Element  string
	Expected string
	Found    string
	Offset   int64
}

func (e *StructuralError) Error() string {
	msg := fmt.Sprintf("mzml: malformed %s at offset %d: expected %s", e.Element, e.Offset, e.Expected)
	if e.Found != "" {
		msg += ", found " + e.Found
	}
	return msg
}

// Is reports whether target is ErrStructure.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructure
}
