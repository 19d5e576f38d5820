package factory

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for registration and building.
var (
	ErrUnknownType           = errors.New("factory not defined")
	ErrDuplicateRegistration = errors.New("already registered")
	ErrUnknownState          = errors.New("state not defined")
	ErrInvalidConstructor    = errors.New("invalid constructor")
	ErrInvalidStateFunction  = errors.New("invalid state function")
	ErrInvalidCount          = errors.New("invalid count")
	ErrInvalidConfig         = errors.New("invalid config")
)

// UnknownStateError lists every requested state an entity does not define.
// It matches ErrUnknownState with errors.Is.
type UnknownStateError struct {
	Entity  string
	Missing []string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("states [%s] not defined for %s", strings.Join(e.Missing, " "), e.Entity)
}

func (e *UnknownStateError) Unwrap() error {
	return ErrUnknownState
}
