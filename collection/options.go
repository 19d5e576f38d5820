package collection

import "math/rand/v2"

type config struct {
	rng *rand.Rand
}

// Option configures a Collection created by New.
type Option func(*config)

// WithRand sets the random source used by Random. A nil source falls back
// to the package-level generator.
func WithRand(r *rand.Rand) Option {
	return func(c *config) { c.rng = r }
}

// WithSeed makes Random deterministic for the given seed.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.rng = rand.New(rand.NewPCG(seed, seed)) }
}
