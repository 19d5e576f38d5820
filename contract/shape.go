package contract

import "reflect"

// IsAbsent reports whether v carries no instance: a nil interface or a nil
// pointer, map, slice, channel, function, or interface value.
func IsAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// IsStructured reports whether v is an object-shaped instance: a struct, a
// non-nil map, or a non-nil pointer chain ending in one of those.
func IsStructured(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		return true
	case reflect.Map:
		return !rv.IsNil()
	}
	return false
}

// IsStructuredType reports whether values of t can be structured instances.
// Interface types qualify; their values are checked individually.
func IsStructuredType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map, reflect.Interface:
		return true
	}
	return false
}

// IsMutableType reports whether a value of t passed to a function shares
// its contents with the caller: a pointer, a map, or an interface.
func IsMutableType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return true
	}
	return false
}
