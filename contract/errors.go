package contract

import "errors"

// Sentinel errors for signature inspection and validation.
var (
	ErrNotFunc              = errors.New("not a function")
	ErrUnsupportedSignature = errors.New("unsupported function signature")
	ErrNoResult             = errors.New("function declares no result")
	ErrAbsentResult         = errors.New("function result may be absent")
	ErrResultMismatch       = errors.New("declared result type mismatch")
	ErrParamMismatch        = errors.New("parameter mismatch")
)
