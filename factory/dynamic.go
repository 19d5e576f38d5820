package factory

import (
	"fmt"
	"reflect"

	"github.com/tailored-agentic-units/fixtures/contract"
)

// RegisterFunc records fn as the constructor for entity. fn must be a
// function value taking no arguments and returning a single value whose
// declared type is entity (strict) or assignable to it (permissive).
//
// RegisterFunc serves callers that only hold a reflect.Type. Prefer the typed
// Register when T is known at compile time.
func (m *Manager) RegisterFunc(entity reflect.Type, fn any) error {
	const source = "factory.Manager.RegisterFunc"
	if entity == nil {
		return m.fail(source, fmt.Errorf("%w: nil entity type", ErrInvalidConstructor))
	}

	sig, err := contract.Inspect(fn)
	if err != nil {
		return m.fail(source, fmt.Errorf("%w: %s: %w", ErrInvalidConstructor, entity, err))
	}
	if err := sig.CheckConstructor(entity, m.strict); err != nil {
		return m.fail(source, fmt.Errorf("%w: %s: %w", ErrInvalidConstructor, entity, err))
	}

	call := reflect.ValueOf(fn)
	construct := func() any {
		return assign(call.Call(nil)[0], entity)
	}
	return m.register(source, entity, sig, construct)
}

// RegisterStateFunc records fn as a state called name for entity. fn takes
// one argument that accepts entity and returns nothing, a replacement, or a
// replacement and a bool reporting whether to use it.
func (m *Manager) RegisterStateFunc(entity reflect.Type, name string, fn any) error {
	const source = "factory.Manager.RegisterStateFunc"
	if entity == nil || !m.HasType(entity) {
		return m.fail(source, fmt.Errorf("%w: %v", ErrUnknownType, entity))
	}

	sig, err := contract.Inspect(fn)
	if err != nil {
		return m.fail(source, fmt.Errorf("%w: %s: state %q: %w", ErrInvalidStateFunction, entity, name, err))
	}

	call := reflect.ValueOf(fn)
	state := stateFunc{
		sig: sig,
		apply: func(obj any) (any, bool) {
			arg := reflect.New(entity).Elem()
			if obj != nil {
				arg.Set(reflect.ValueOf(obj))
			}
			out := call.Call([]reflect.Value{arg})
			switch sig.Effect {
			case contract.Replaces:
				return assign(out[0], entity), true
			case contract.MayReplace:
				return assign(out[0], entity), out[1].Bool()
			default:
				return obj, false
			}
		},
	}
	return m.registerState(source, entity, name, state)
}

// assign converts v to a value of type to and returns it boxed. Results whose
// declared type differs from to are only accepted in permissive mode, where
// assignability has already been checked at registration.
func assign(v reflect.Value, to reflect.Type) any {
	if v.Kind() == reflect.Interface && v.IsNil() {
		return nil
	}
	if v.Type() == to {
		return v.Interface()
	}
	out := reflect.New(to).Elem()
	out.Set(v)
	return out.Interface()
}
