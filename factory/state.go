package factory

import (
	"reflect"

	"github.com/tailored-agentic-units/fixtures/contract"
)

// Constructor produces a fresh instance of T. It is called once for every
// instance a Builder produces and must never return a shared value.
type Constructor[T any] func() T

// State is a mutation applied to an instance during a build. It either
// changes the instance in place or hands back a replacement that is used
// for every later step.
//
// Build States with Mutate, Replace, or MaybeReplace; the zero State does
// nothing and is rejected by RegisterState.
type State[T any] struct {
	effect contract.Effect
	fn     func(T) (T, bool)
}

// Mutate declares a state that changes the instance in place. RegisterState
// rejects it for entity types passed by value, such as plain structs, where
// the change would be made to a copy.
func Mutate[T any](fn func(T)) State[T] {
	if fn == nil {
		return State[T]{}
	}
	return State[T]{
		effect: contract.Mutates,
		fn: func(obj T) (T, bool) {
			fn(obj)
			return obj, false
		},
	}
}

// Replace declares a state whose result replaces the instance. A nil result
// keeps the current instance.
func Replace[T any](fn func(T) T) State[T] {
	if fn == nil {
		return State[T]{}
	}
	return State[T]{
		effect: contract.Replaces,
		fn: func(obj T) (T, bool) {
			return fn(obj), true
		},
	}
}

// MaybeReplace declares a state that replaces the instance only when it
// reports true.
func MaybeReplace[T any](fn func(T) (T, bool)) State[T] {
	if fn == nil {
		return State[T]{}
	}
	return State[T]{effect: contract.MayReplace, fn: fn}
}

// Effect returns the declared effect, or zero for the zero State.
func (s State[T]) Effect() contract.Effect {
	return s.effect
}

// IsZero reports whether s was built without a function.
func (s State[T]) IsZero() bool {
	return s.fn == nil
}

// Signature returns the contract s declares over T.
func (s State[T]) Signature() contract.Signature {
	return contract.Of[T](s.effect, reflect.TypeFor[T]())
}

func (s State[T]) apply(obj T) T {
	if s.fn == nil {
		return obj
	}
	next, replaced := s.fn(obj)
	if !replaced || contract.IsAbsent(next) {
		return obj
	}
	return next
}

func (s State[T]) erase() stateFunc {
	return stateFunc{
		sig: s.Signature(),
		apply: func(obj any) (any, bool) {
			next, replaced := s.fn(obj.(T))
			return next, replaced
		},
	}
}

// stateFunc is a state with its entity type erased.
type stateFunc struct {
	sig   contract.Signature
	apply func(obj any) (any, bool)
}
