// Package factory builds test fixtures from registered constructors and
// named states.
//
// A Manager maps entity types to a constructor and a set of named states.
// A Builder, obtained from the Manager per entity type, runs the build
// pipeline: constructor, then each selected state in order, then any
// per-call overrides. States either mutate the instance in place or return
// a replacement that is used for the rest of the pipeline.
//
//	m := factory.NewManager()
//	factory.Register(m, func() *Widget { return &Widget{Enabled: true} })
//	factory.RegisterState(m, "disabled", factory.Mutate(func(w *Widget) { w.Enabled = false }))
//
//	b, _ := factory.NewBuilder[*Widget](m)
//	w, err := b.State("disabled").One()
//	ws, err := b.Many(3)
package factory

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/fixtures/contract"
	"github.com/tailored-agentic-units/fixtures/observability"
)

type entry struct {
	entity    reflect.Type
	construct func() any
	states    map[string]stateFunc
	order     []string
}

// Manager holds the constructors and states registered per entity type.
// Registrations cannot be removed. Safe for concurrent use.
type Manager struct {
	id       string
	mu       sync.RWMutex
	entries  map[reflect.Type]*entry
	types    []reflect.Type
	observer observability.Observer
	strict   bool
	seed     uint64
}

// NewManager creates an empty Manager. Strict validation is on unless
// disabled with WithStrict(false).
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		id:       uuid.Must(uuid.NewV7()).String(),
		entries:  make(map[reflect.Type]*entry),
		observer: observability.NoOpObserver{},
		strict:   true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewManagerFromConfig creates a Manager from cfg, resolving the observer by
// name. Options override values taken from cfg.
func NewManagerFromConfig(cfg *Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	obs, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	base := []Option{
		WithObserver(obs),
		WithStrict(cfg.IsStrict()),
		WithSeed(cfg.Seed),
	}
	return NewManager(append(base, opts...)...), nil
}

// ID returns the unique identifier attached to this Manager's events.
func (m *Manager) ID() string {
	return m.id
}

// Strict reports whether registrations are validated against the exact
// entity type.
func (m *Manager) Strict() bool {
	return m.strict
}

// Register records ctor as the constructor for T.
// Returns ErrDuplicateRegistration if T already has a constructor.
func Register[T any](m *Manager, ctor Constructor[T]) error {
	entity := reflect.TypeFor[T]()
	if ctor == nil {
		return m.fail("factory.Register", fmt.Errorf("%w: %s: nil constructor", ErrInvalidConstructor, entity))
	}
	construct := func() any { return ctor() }
	return m.register("factory.Register", entity, contract.Of[T](contract.Replaces), construct)
}

// RegisterState records state under name for T.
// Returns ErrUnknownType if T has no constructor and ErrDuplicateRegistration
// if T already defines name.
func RegisterState[T any](m *Manager, name string, state State[T]) error {
	entity := reflect.TypeFor[T]()
	if state.IsZero() {
		if !m.HasType(entity) {
			return m.fail("factory.RegisterState", fmt.Errorf("%w: %s", ErrUnknownType, entity))
		}
		return m.fail("factory.RegisterState", fmt.Errorf("%w: %s: state %q has no function", ErrInvalidStateFunction, entity, name))
	}
	return m.registerState("factory.RegisterState", entity, name, state.erase())
}

// Has reports whether T has a registered constructor.
func Has[T any](m *Manager) bool {
	return m.HasType(reflect.TypeFor[T]())
}

// HasState reports whether T defines a state called name.
func HasState[T any](m *Manager, name string) bool {
	return m.HasStateOf(reflect.TypeFor[T](), name)
}

// HasType reports whether entity has a registered constructor.
func (m *Manager) HasType(entity reflect.Type) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.entries[entity]
	return exists
}

// HasStateOf reports whether entity defines a state called name.
func (m *Manager) HasStateOf(entity reflect.Type, name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, exists := m.entries[entity]
	if !exists {
		return false
	}
	_, exists = e.states[name]
	return exists
}

// Types returns the registered entity types in registration order.
func (m *Manager) Types() []reflect.Type {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.types)
}

// NewBuilder returns a Builder for T bound to the constructor and states
// registered at the time of the call. Later registrations for T are not
// visible to the returned Builder.
func NewBuilder[T any](m *Manager) (*Builder[T], error) {
	entity := reflect.TypeFor[T]()

	m.mu.RLock()
	e, exists := m.entries[entity]
	if !exists {
		m.mu.RUnlock()
		return nil, m.fail("factory.NewBuilder", fmt.Errorf("%w: %s", ErrUnknownType, entity))
	}
	b := &Builder[T]{
		id:        uuid.Must(uuid.NewV7()).String(),
		registry:  m.id,
		entity:    entity,
		construct: e.construct,
		states:    make(map[string]stateFunc, len(e.states)),
		order:     slices.Clone(e.order),
		observer:  m.observer,
		seed:      m.seed,
	}
	for name, fn := range e.states {
		b.states[name] = fn
	}
	m.mu.RUnlock()

	m.emit("factory.NewBuilder", EventBuilderNew, observability.LevelVerbose, map[string]any{
		"entity":  entity.String(),
		"builder": b.id,
		"states":  len(b.order),
	})

	return b, nil
}

func (m *Manager) register(source string, entity reflect.Type, sig contract.Signature, construct func() any) error {
	if !contract.IsStructuredType(entity) {
		return m.fail(source, fmt.Errorf("%w: %s is not a structured type", ErrInvalidConstructor, entity))
	}
	if err := sig.CheckConstructor(entity, m.strict); err != nil {
		return m.fail(source, fmt.Errorf("%w: %s: %w", ErrInvalidConstructor, entity, err))
	}

	m.mu.Lock()
	if _, exists := m.entries[entity]; exists {
		m.mu.Unlock()
		return m.fail(source, fmt.Errorf("%w: %s", ErrDuplicateRegistration, entity))
	}
	m.entries[entity] = &entry{
		entity:    entity,
		construct: construct,
		states:    make(map[string]stateFunc),
	}
	m.types = append(m.types, entity)
	m.mu.Unlock()

	m.emit(source, EventRegister, observability.LevelVerbose, map[string]any{
		"entity": entity.String(),
	})
	return nil
}

func (m *Manager) registerState(source string, entity reflect.Type, name string, fn stateFunc) error {
	m.mu.Lock()
	e, exists := m.entries[entity]
	if !exists {
		m.mu.Unlock()
		return m.fail(source, fmt.Errorf("%w: %s", ErrUnknownType, entity))
	}
	if err := checkState(entity, name, fn.sig, m.strict); err != nil {
		m.mu.Unlock()
		return m.fail(source, err)
	}
	if _, dup := e.states[name]; dup {
		m.mu.Unlock()
		return m.fail(source, fmt.Errorf("%w: state %q for %s", ErrDuplicateRegistration, name, entity))
	}
	e.states[name] = fn
	e.order = append(e.order, name)
	m.mu.Unlock()

	m.emit(source, EventRegisterState, observability.LevelVerbose, map[string]any{
		"entity": entity.String(),
		"state":  name,
		"effect": fn.sig.Effect.String(),
	})
	return nil
}

func checkState(entity reflect.Type, name string, sig contract.Signature, strict bool) error {
	if name == "" {
		return fmt.Errorf("%w: %s: empty state name", ErrInvalidStateFunction, entity)
	}
	if err := sig.CheckState(entity, strict); err != nil {
		return fmt.Errorf("%w: %s: state %q: %w", ErrInvalidStateFunction, entity, name, err)
	}
	if sig.Effect == contract.Mutates && !contract.IsMutableType(entity) {
		return fmt.Errorf("%w: %s: state %q mutates a copy; use a pointer entity or return the result", ErrInvalidStateFunction, entity, name)
	}
	return nil
}

func (m *Manager) emit(source string, typ observability.EventType, level observability.Level, data map[string]any) {
	data["registry"] = m.id
	observability.Emit(context.Background(), m.observer, observability.NewEvent(typ, level, source, data))
}

func (m *Manager) fail(source string, err error) error {
	m.emit(source, EventError, observability.LevelWarning, map[string]any{
		"error": err.Error(),
	})
	return err
}
