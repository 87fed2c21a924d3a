package rng

// RNG is a random number generator
type RNG interface {
	Rand() float64
}

// Option configures a generator
type Option func(*options)

type options struct {
	seed    int64
	hasSeed bool
}

// WithSeed makes the generator reproducible.  Without it, generators are seeded from the clock.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.hasSeed = true
	}
}
