// Package protofixture adapts protobuf messages to the factory build
// pipeline. Constructors clone a prototype message so every build starts
// from an independent copy, and states merge, reset, or set fields on the
// instance through protobuf reflection.
package protofixture

import (
	"fmt"
	"slices"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/tailored-agentic-units/fixtures/factory"
)

// Prototype returns a constructor producing a deep copy of prototype on every
// call. Later changes to prototype are visible to later builds.
func Prototype[M proto.Message](prototype M) factory.Constructor[M] {
	return func() M {
		return clone(prototype)
	}
}

// Merge returns a state that merges a copy of patch into the instance.
// Populated scalar fields in patch overwrite, repeated fields append, and
// map entries are added or replaced.
func Merge[M proto.Message](patch M) factory.State[M] {
	return factory.Mutate(func(msg M) {
		proto.Merge(msg, clone(patch))
	})
}

// Reset returns a state that clears every field of the instance.
func Reset[M proto.Message]() factory.State[M] {
	return factory.Mutate(func(msg M) {
		proto.Reset(msg)
	})
}

// Substitute returns a state that replaces the instance with a copy of m.
func Substitute[M proto.Message](m M) factory.State[M] {
	return factory.Replace(func(M) M {
		return clone(m)
	})
}

// SetField returns a state that sets the singular field called name to value.
// The field and value are checked against the descriptor of M up front.
func SetField[M proto.Message](name string, value protoreflect.Value) (factory.State[M], error) {
	var zero M
	desc := zero.ProtoReflect().Descriptor()

	fd := desc.Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		return factory.State[M]{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, desc.FullName(), name)
	}
	if fd.IsList() || fd.IsMap() {
		return factory.State[M]{}, fmt.Errorf("%w: %s is repeated", ErrUnsupportedField, fd.FullName())
	}
	if !compatible(fd, value) {
		return factory.State[M]{}, fmt.Errorf("%w: %s is %s, got %T", ErrFieldValue, fd.FullName(), fd.Kind(), value.Interface())
	}

	return factory.Mutate(func(msg M) {
		v := value
		if fd.Message() != nil {
			v = protoreflect.ValueOfMessage(proto.Clone(value.Message().Interface()).ProtoReflect())
		}
		msg.ProtoReflect().Set(fd, v)
	}), nil
}

// Define registers prototype as the constructor for M and a Merge state for
// each entry of states, in name order.
func Define[M proto.Message](m *factory.Manager, prototype M, states map[string]M) error {
	if err := factory.Register(m, Prototype(prototype)); err != nil {
		return err
	}

	names := make([]string, 0, len(states))
	for name := range states {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if err := factory.RegisterState(m, name, Merge(states[name])); err != nil {
			return err
		}
	}
	return nil
}

func clone[M proto.Message](m M) M {
	c, _ := proto.Clone(m).(M)
	return c
}

func compatible(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
	if !v.IsValid() {
		return false
	}

	var ok bool
	switch fd.Kind() {
	case protoreflect.BoolKind:
		_, ok = v.Interface().(bool)
	case protoreflect.EnumKind:
		_, ok = v.Interface().(protoreflect.EnumNumber)
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		_, ok = v.Interface().(int32)
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		_, ok = v.Interface().(int64)
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		_, ok = v.Interface().(uint32)
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		_, ok = v.Interface().(uint64)
	case protoreflect.FloatKind:
		_, ok = v.Interface().(float32)
	case protoreflect.DoubleKind:
		_, ok = v.Interface().(float64)
	case protoreflect.StringKind:
		_, ok = v.Interface().(string)
	case protoreflect.BytesKind:
		_, ok = v.Interface().([]byte)
	case protoreflect.MessageKind, protoreflect.GroupKind:
		var msg protoreflect.Message
		msg, ok = v.Interface().(protoreflect.Message)
		ok = ok && msg.Descriptor().FullName() == fd.Message().FullName()
	}
	return ok
}
