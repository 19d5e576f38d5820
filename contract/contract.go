// Package contract describes what fixture functions promise to return.
//
// Typed registrations declare their contract up front through an Effect.
// Untyped registrations are inspected with Inspect, which reads the declared
// parameter and result types of an arbitrary function value:
//
//	func() T          constructor, Replaces
//	func(T)           state, Mutates
//	func(T) T         state, Replaces
//	func(T) (T, bool) state or constructor, MayReplace
//
// The package also owns the value-shape rules shared by the factory and the
// collection: which values count as structured instances and which count as
// absent results.
package contract

import (
	"fmt"
	"reflect"
)

// Effect declares how a fixture function affects the instance it receives.
type Effect uint8

const (
	// Mutates changes the instance in place and produces no result.
	Mutates Effect = iota + 1
	// Replaces always produces a replacement instance.
	Replaces
	// MayReplace produces a replacement only when it reports one.
	MayReplace
)

// String returns the lowercase name of the effect.
func (e Effect) String() string {
	switch e {
	case Mutates:
		return "mutates"
	case Replaces:
		return "replaces"
	case MayReplace:
		return "may-replace"
	default:
		return fmt.Sprintf("effect(%d)", uint8(e))
	}
}

// Valid reports whether e is one of the declared effects.
func (e Effect) Valid() bool {
	return e >= Mutates && e <= MayReplace
}

// Signature is the declared shape of a fixture function.
type Signature struct {
	Params []reflect.Type
	Result reflect.Type // nil when the function declares no result
	Effect Effect
}

// Of returns the signature declared by a typed function over T with the
// given effect. Mutates signatures carry no result type.
func Of[T any](effect Effect, params ...reflect.Type) Signature {
	sig := Signature{Params: params, Effect: effect}
	if effect != Mutates {
		sig.Result = reflect.TypeFor[T]()
	}
	return sig
}

// IsVoid reports whether the function declares no result.
func (s Signature) IsVoid() bool {
	return s.Result == nil
}

// AllowsAbsent reports whether the function may finish without producing
// a value of its result type.
func (s Signature) AllowsAbsent() bool {
	return s.IsVoid() || s.Effect == MayReplace
}

// Returns reports whether the declared result type is exactly t.
func (s Signature) Returns(t reflect.Type) bool {
	return s.Result != nil && s.Result == t
}

func (s Signature) String() string {
	result := "void"
	if s.Result != nil {
		result = s.Result.String()
	}
	return fmt.Sprintf("(%d params) -> %s [%s]", len(s.Params), result, s.Effect)
}

// CheckConstructor validates s as a zero-argument producer of entity.
// In strict mode the declared result must be exactly entity; otherwise it
// must be assignable to entity.
func (s Signature) CheckConstructor(entity reflect.Type, strict bool) error {
	if len(s.Params) != 0 {
		return fmt.Errorf("%w: constructor takes %d arguments", ErrParamMismatch, len(s.Params))
	}
	if s.IsVoid() {
		return ErrNoResult
	}
	if s.AllowsAbsent() {
		return fmt.Errorf("%w: %s", ErrAbsentResult, s.Result)
	}
	return s.checkResult(entity, strict)
}

// CheckState validates s as a one-argument mutate-or-replace function over
// entity. A void result is always accepted.
func (s Signature) CheckState(entity reflect.Type, strict bool) error {
	if len(s.Params) != 1 {
		return fmt.Errorf("%w: state takes %d arguments", ErrParamMismatch, len(s.Params))
	}
	if !entity.AssignableTo(s.Params[0]) {
		return fmt.Errorf("%w: %s does not accept %s", ErrParamMismatch, s.Params[0], entity)
	}
	if s.IsVoid() {
		return nil
	}
	return s.checkResult(entity, strict)
}

func (s Signature) checkResult(entity reflect.Type, strict bool) error {
	if strict && !s.Returns(entity) {
		return fmt.Errorf("%w: declared %s, want %s", ErrResultMismatch, s.Result, entity)
	}
	if !strict && !s.Result.AssignableTo(entity) {
		return fmt.Errorf("%w: %s is not assignable to %s", ErrResultMismatch, s.Result, entity)
	}
	return nil
}

var boolType = reflect.TypeFor[bool]()

// Inspect reads the declared signature of fn.
func Inspect(fn any) (Signature, error) {
	if fn == nil {
		return Signature{}, ErrNotFunc
	}

	t := reflect.TypeOf(fn)
	if t.Kind() != reflect.Func {
		return Signature{}, fmt.Errorf("%w: %s", ErrNotFunc, t)
	}
	if reflect.ValueOf(fn).IsNil() {
		return Signature{}, fmt.Errorf("%w: nil %s", ErrNotFunc, t)
	}
	if t.IsVariadic() {
		return Signature{}, fmt.Errorf("%w: variadic %s", ErrUnsupportedSignature, t)
	}

	sig := Signature{Params: make([]reflect.Type, t.NumIn())}
	for i := range t.NumIn() {
		sig.Params[i] = t.In(i)
	}

	switch {
	case t.NumOut() == 0:
		sig.Effect = Mutates
	case t.NumOut() == 1:
		sig.Result = t.Out(0)
		sig.Effect = Replaces
	case t.NumOut() == 2 && t.Out(1) == boolType:
		sig.Result = t.Out(0)
		sig.Effect = MayReplace
	default:
		return Signature{}, fmt.Errorf("%w: %s", ErrUnsupportedSignature, t)
	}

	return sig, nil
}
