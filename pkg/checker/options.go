package checker

import (
	"math/rand/v2"

	"digital.vasic.praspel/pkg/assertion"
	"digital.vasic.praspel/pkg/logging"
	"digital.vasic.praspel/pkg/render"
)

// Option configures a Base.
type Option func(*Base)

// WithGenerateData sets generate mode. Default off.
func WithGenerateData(on bool) Option {
	return func(b *Base) {
		b.generate = on
	}
}

// WithSeed seeds the generation source. Without WithSeed or
// WithRand a fixed seed is used, so generation is reproducible.
func WithSeed(seed uint64) Option {
	return func(b *Base) {
		b.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithRand sets the generation source.
func WithRand(r *rand.Rand) Option {
	return func(b *Base) {
		if r != nil {
			b.rng = r
		}
	}
}

// WithMaxGenerationAttempts bounds rejection sampling. Values
// below one are raised to one.
func WithMaxGenerationAttempts(n int) Option {
	return func(b *Base) {
		if n < 1 {
			n = 1
		}
		b.maxAttempts = n
	}
}

// WithCallablePolicy sets how callable failures are reported.
func WithCallablePolicy(p CallablePolicy) Option {
	return func(b *Base) {
		b.policy = p
	}
}

// WithLogger sets the logger. Default is logging.NullLogger.
func WithLogger(l logging.Logger) Option {
	return func(b *Base) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithRunID tags every evaluation log record with id.
func WithRunID(id string) Option {
	return func(b *Base) {
		b.runID = id
	}
}

// WithEngine sets the predicate engine, for custom evaluators.
func WithEngine(e assertion.Engine) Option {
	return func(b *Base) {
		if e != nil {
			b.engine = e
		}
	}
}

// WithRendererFactory sets the function that creates the renderer
// on first use.
func WithRendererFactory(f func() render.Renderer) Option {
	return func(b *Base) {
		if f != nil {
			b.newRenderer = f
		}
	}
}
