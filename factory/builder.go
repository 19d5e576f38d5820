package factory

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/fixtures/collection"
	"github.com/tailored-agentic-units/fixtures/contract"
	"github.com/tailored-agentic-units/fixtures/observability"
)

// Builder produces instances of T through the build pipeline. It holds its
// own copy of the states T defined when the Builder was created.
//
// A Builder can be reused for any number of builds. It is not safe for
// concurrent use.
type Builder[T any] struct {
	id        string
	registry  string
	entity    reflect.Type
	construct func() any
	states    map[string]stateFunc
	order     []string
	selected  []string
	err       error
	observer  observability.Observer
	seed      uint64
}

// ID returns the identifier attached to this Builder's events.
func (b *Builder[T]) ID() string {
	return b.id
}

// Entity returns the type this Builder produces.
func (b *Builder[T]) Entity() reflect.Type {
	return b.entity
}

// AvailableStates returns the state names known to this Builder in
// registration order.
func (b *Builder[T]) AvailableStates() []string {
	return slices.Clone(b.order)
}

// Selected returns the states applied by subsequent builds, in order.
func (b *Builder[T]) Selected() []string {
	return slices.Clone(b.selected)
}

// State selects the states applied by subsequent builds, replacing any
// earlier selection. Every name is checked before the selection changes:
// when any is unknown the selection is kept and the next build fails with
// an *UnknownStateError listing all of them.
func (b *Builder[T]) State(name string, more ...string) *Builder[T] {
	names := append([]string{name}, more...)

	var missing []string
	for _, n := range names {
		if _, exists := b.states[n]; !exists {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		b.err = &UnknownStateError{Entity: b.entity.String(), Missing: missing}
		b.emit("factory.Builder.State", EventError, observability.LevelWarning, map[string]any{
			"error": b.err.Error(),
		})
		return b
	}

	b.selected = names
	b.err = nil
	return b
}

// Reset clears the selection and any error recorded by State.
func (b *Builder[T]) Reset() *Builder[T] {
	b.selected = nil
	b.err = nil
	return b
}

// Err returns the error recorded by the last State call, if any.
func (b *Builder[T]) Err() error {
	return b.err
}

// One builds a single instance, applying the selected states and then each
// override in order. If the last State call named an unknown state, One
// returns that *UnknownStateError without building.
func (b *Builder[T]) One(overrides ...State[T]) (T, error) {
	var zero T
	if b.err != nil {
		return zero, b.err
	}

	obj, err := b.make(overrides)
	if err != nil {
		return zero, b.fail("factory.Builder.One", err)
	}

	b.emit("factory.Builder.One", EventBuild, observability.LevelVerbose, map[string]any{
		"count":     1,
		"states":    slices.Clone(b.selected),
		"overrides": len(overrides),
	})
	return obj, nil
}

// Many builds count independent instances into a new Collection. A count of
// zero returns an empty Collection without calling the constructor. Like
// One, it returns the *UnknownStateError recorded by State, if any.
func (b *Builder[T]) Many(count int, overrides ...State[T]) (*collection.Collection[T], error) {
	if b.err != nil {
		return nil, b.err
	}
	if count < 0 {
		return nil, b.fail("factory.Builder.Many", fmt.Errorf("%w: %d", ErrInvalidCount, count))
	}

	var opts []collection.Option
	if b.seed != 0 {
		opts = append(opts, collection.WithSeed(b.seed))
	}
	c := collection.New[T](opts...)

	for range count {
		obj, err := b.make(overrides)
		if err != nil {
			return nil, b.fail("factory.Builder.Many", err)
		}
		if err := c.Add(obj); err != nil {
			return nil, b.fail("factory.Builder.Many", fmt.Errorf("%w: %s: %w", ErrInvalidConstructor, b.entity, err))
		}
	}

	b.emit("factory.Builder.Many", EventBuild, observability.LevelVerbose, map[string]any{
		"count":     count,
		"states":    slices.Clone(b.selected),
		"overrides": len(overrides),
	})
	return c, nil
}

// MustOne is like One but panics on error.
func (b *Builder[T]) MustOne(overrides ...State[T]) T {
	obj, err := b.One(overrides...)
	if err != nil {
		panic(err)
	}
	return obj
}

// MustMany is like Many but panics on error.
func (b *Builder[T]) MustMany(count int, overrides ...State[T]) *collection.Collection[T] {
	c, err := b.Many(count, overrides...)
	if err != nil {
		panic(err)
	}
	return c
}

func (b *Builder[T]) make(overrides []State[T]) (T, error) {
	var zero T

	raw := b.construct()
	if contract.IsAbsent(raw) {
		return zero, fmt.Errorf("%w: %s constructor returned nil", ErrInvalidConstructor, b.entity)
	}
	obj, ok := raw.(T)
	if !ok || !contract.IsStructured(raw) {
		return zero, fmt.Errorf("%w: %s constructor returned %T", ErrInvalidConstructor, b.entity, raw)
	}

	for _, name := range b.selected {
		next, replaced := b.states[name].apply(obj)
		if !replaced || contract.IsAbsent(next) {
			continue
		}
		typed, ok := next.(T)
		if !ok {
			return zero, fmt.Errorf("%w: state %q returned %T for %s", ErrInvalidStateFunction, name, next, b.entity)
		}
		obj = typed
	}

	for _, override := range overrides {
		obj = override.apply(obj)
	}
	if !contract.IsStructured(obj) {
		return zero, fmt.Errorf("%w: %s build produced %T", ErrInvalidStateFunction, b.entity, obj)
	}
	return obj, nil
}

func (b *Builder[T]) emit(source string, typ observability.EventType, level observability.Level, data map[string]any) {
	data["registry"] = b.registry
	data["builder"] = b.id
	data["entity"] = b.entity.String()
	observability.Emit(context.Background(), b.observer, observability.NewEvent(typ, level, source, data))
}

func (b *Builder[T]) fail(source string, err error) error {
	b.emit(source, EventError, observability.LevelWarning, map[string]any{
		"error": err.Error(),
	})
	return err
}

// Fresh returns a new Builder sharing b's snapshot with an empty selection.
func (b *Builder[T]) Fresh() *Builder[T] {
	return &Builder[T]{
		id:        uuid.Must(uuid.NewV7()).String(),
		registry:  b.registry,
		entity:    b.entity,
		construct: b.construct,
		states:    b.states,
		order:     b.order,
		observer:  b.observer,
		seed:      b.seed,
	}
}
