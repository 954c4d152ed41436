package ontology

import "errors"

var (
	// ErrOntologyUnavailable is returned when a vocabulary cannot be fetched
	// or parsed. It is never a validation failure; callers may skip
	// validation when they see it.
	ErrOntologyUnavailable = errors.New("mzml: ontology unavailable")

	// ErrUnknownNamespace is returned when an accession's prefix has no
	// registered vocabulary.
	ErrUnknownNamespace = errors.New("mzml: unknown ontology namespace")
)
