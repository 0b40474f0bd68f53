// Package pool produces deduplicated candidate ticket pools biased by a
// probability vector.
package pool

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSeed sets the seed for the call-scoped random source. The same
// seed and inputs always reproduce the same pool.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithAttemptFactor sets the attempt budget multiplier: generation
// gives up after attemptFactor*poolSize draws.
func WithAttemptFactor(factor int) Option {
	return func(g *Generator) {
		if factor > 0 {
			g.attemptFactor = factor
		}
	}
}
