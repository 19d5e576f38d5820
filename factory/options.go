package factory

import "github.com/tailored-agentic-units/fixtures/observability"

// Option configures a Manager. Options passed to NewManagerFromConfig are
// applied after the config, so they take precedence.
type Option func(*Manager)

// WithObserver routes factory events to o. A nil observer discards them.
func WithObserver(o observability.Observer) Option {
	return func(m *Manager) {
		if o == nil {
			o = observability.NoOpObserver{}
		}
		m.observer = o
	}
}

// WithStrict toggles exact result-type validation at registration.
func WithStrict(strict bool) Option {
	return func(m *Manager) { m.strict = strict }
}

// WithSeed seeds the random source of every Collection built by Many.
// Zero leaves collections nondeterministic.
func WithSeed(seed uint64) Option {
	return func(m *Manager) { m.seed = seed }
}
