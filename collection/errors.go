package collection

import "errors"

// Sentinel errors for collection access.
var (
	ErrInvalidValue    = errors.New("value is not a structured instance")
	ErrInvalidOffset   = errors.New("invalid offset")
	ErrOffsetNotFound  = errors.New("offset not found")
	ErrEmptyCollection = errors.New("collection is empty")
)
