package runner

import (
	"time"

	"digital.vasic.praspel/pkg/checker"
	"digital.vasic.praspel/pkg/logging"
	"digital.vasic.praspel/pkg/metrics"
	"digital.vasic.praspel/pkg/monitor"
	"digital.vasic.praspel/pkg/registry"
)

// RunnerOption configures a DefaultRunner.
type RunnerOption func(*DefaultRunner)

// WithRegistry sets the subject registry used by the runner.
func WithRegistry(reg registry.Registry) RunnerOption {
	return func(r *DefaultRunner) {
		r.registry = reg
	}
}

// WithLogger sets the logger used by the runner and handed to
// every checker it builds.
func WithLogger(logger logging.Logger) RunnerOption {
	return func(r *DefaultRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.RunMetrics) RunnerOption {
	return func(r *DefaultRunner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithCollector emits run and trial events to c.
func WithCollector(c *monitor.EventCollector) RunnerOption {
	return func(r *DefaultRunner) {
		r.collector = c
	}
}

// WithTrials sets how many evaluations each run performs.
func WithTrials(n int) RunnerOption {
	return func(r *DefaultRunner) {
		if n > 0 {
			r.trials = n
		}
	}
}

// WithTimeout sets the per-trial timeout. The context handed to
// the callable carries the deadline.
func WithTimeout(timeout time.Duration) RunnerOption {
	return func(r *DefaultRunner) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithSeed sets the base seed. Each subject derives its own seed
// from it, so runs are reproducible per subject regardless of
// order or concurrency.
func WithSeed(seed uint64) RunnerOption {
	return func(r *DefaultRunner) {
		r.seed = seed
	}
}

// WithConcurrency sets the limit RunParallel uses when called
// with maxConcurrency <= 0.
func WithConcurrency(n int) RunnerOption {
	return func(r *DefaultRunner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithDefaultKind sets the checker kind for subjects that do not
// name one.
func WithDefaultKind(kind checker.Kind) RunnerOption {
	return func(r *DefaultRunner) {
		if kind != "" {
			r.kind = kind
		}
	}
}

// WithCheckerOptions adds options applied to every checker the
// runner builds. Generate mode, seed, logger and run id are always
// set by the runner.
func WithCheckerOptions(opts ...checker.Option) RunnerOption {
	return func(r *DefaultRunner) {
		r.checkerOpts = append(r.checkerOpts, opts...)
	}
}

// WithMaxRecordedFailures bounds Result.Failures.
func WithMaxRecordedFailures(n int) RunnerOption {
	return func(r *DefaultRunner) {
		if n >= 0 {
			r.maxFailures = n
		}
	}
}

// WithStopOnFailure ends a run at its first failing trial.
func WithStopOnFailure(stop bool) RunnerOption {
	return func(r *DefaultRunner) {
		r.stopOnFailure = stop
	}
}

// WithRunID fixes the run id instead of generating one per call.
func WithRunID(id string) RunnerOption {
	return func(r *DefaultRunner) {
		r.runID = id
	}
}

// WithPreHook adds a pre-execution hook to the runner.
func WithPreHook(h Hook) RunnerOption {
	return func(r *DefaultRunner) {
		r.preHooks = append(r.preHooks, h)
	}
}

// WithPostHook adds a post-execution hook to the runner.
func WithPostHook(h Hook) RunnerOption {
	return func(r *DefaultRunner) {
		r.postHooks = append(r.postHooks, h)
	}
}
