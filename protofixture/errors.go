package protofixture

import "errors"

// Sentinel errors for field states.
var (
	ErrUnknownField     = errors.New("field not defined")
	ErrUnsupportedField = errors.New("unsupported field")
	ErrFieldValue       = errors.New("field value mismatch")
)
