// Package twinkle schedules independently twinkling particles on a loop.
package twinkle

import (
	"math/rand"
	"time"
)

// Source is the random source used for particle draws. *rand.Rand satisfies it.
type Source interface {
	// Float64 returns a pseudo-random number in [0.0, 1.0).
	Float64() float64
}

// Option applies a configuration option to a Schedule call.
type Option func(*options)

type options struct {
	source Source
}

// WithSource sets the random source. A nil source is ignored.
func WithSource(src Source) Option {
	return func(o *options) {
		if src != nil {
			o.source = src
		}
	}
}

// WithSeed uses a math/rand source seeded with seed. Zero keeps the default
// time-seeded source.
func WithSeed(seed int64) Option {
	return func(o *options) {
		if seed != 0 {
			o.source = rand.New(rand.NewSource(seed)) //nolint:gosec // visual jitter, not security sensitive
		}
	}
}

func newOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.source == nil {
		o.source = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // visual jitter, not security sensitive
	}
	return o
}
