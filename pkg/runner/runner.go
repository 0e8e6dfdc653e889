// Package runner provides the trial execution engine. Each run
// builds a checker in generate mode for one registered subject and
// evaluates it repeatedly on generated data, in single, sequential
// or parallel mode.
package runner

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"digital.vasic.praspel/pkg/checker"
	"digital.vasic.praspel/pkg/logging"
	"digital.vasic.praspel/pkg/metrics"
	"digital.vasic.praspel/pkg/monitor"
	"digital.vasic.praspel/pkg/registry"
)

// ErrSkip may be returned (or wrapped) by a pre-hook to skip a
// subject. The run is reported with StatusSkipped.
var ErrSkip = errors.New("subject skipped")

// Runner defines the interface for subject execution.
type Runner interface {
	// Run executes the trials of a single subject.
	Run(ctx context.Context, id registry.ID) (*Result, error)

	// RunAll executes every registered subject in ID order.
	RunAll(ctx context.Context) ([]*Result, error)

	// RunSequence executes the given subjects in order.
	RunSequence(
		ctx context.Context,
		ids []registry.ID,
	) ([]*Result, error)

	// RunParallel executes subjects concurrently with the given
	// concurrency limit.
	RunParallel(
		ctx context.Context,
		ids []registry.ID,
		maxConcurrency int,
	) ([]*Result, error)
}

// Hook is a function invoked before or after a subject run. It
// receives the subject and its result, which is still running for
// pre-hooks.
type Hook func(
	ctx context.Context,
	s *registry.Subject,
	result *Result,
) error

// DefaultRunner is the standard Runner implementation. Checkers
// are never shared between goroutines: every run builds its own.
type DefaultRunner struct {
	registry      registry.Registry
	logger        logging.Logger
	metrics       metrics.RunMetrics
	collector     *monitor.EventCollector
	trials        int
	timeout       time.Duration
	seed          uint64
	kind          checker.Kind
	checkerOpts   []checker.Option
	maxFailures   int
	concurrency   int
	stopOnFailure bool
	runID         string
	preHooks      []Hook
	postHooks     []Hook
	active        atomic.Int64
}

// NewRunner creates a DefaultRunner with the supplied options.
func NewRunner(opts ...RunnerOption) *DefaultRunner {
	r := &DefaultRunner{
		registry:    registry.Default,
		logger:      logging.NullLogger{},
		metrics:     metrics.NoopMetrics{},
		trials:      100,
		timeout:     5 * time.Second,
		kind:        checker.KindRuntime,
		maxFailures: 10,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a single subject by ID.
func (r *DefaultRunner) Run(
	ctx context.Context,
	id registry.ID,
) (*Result, error) {
	s, err := r.registry.Get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return r.executeSubject(ctx, r.newRunID(), s)
}

// RunAll executes all registered subjects in ID order.
func (r *DefaultRunner) RunAll(ctx context.Context) ([]*Result, error) {
	subjects := r.registry.List()
	ids := make([]registry.ID, len(subjects))
	for i, s := range subjects {
		ids[i] = s.ID
	}
	return r.RunSequence(ctx, ids)
}

// RunSequence executes subjects in the given order. It stops at
// the first subject that cannot be found or whose run is
// cancelled.
func (r *DefaultRunner) RunSequence(
	ctx context.Context,
	ids []registry.ID,
) ([]*Result, error) {
	runID := r.newRunID()
	results := make([]*Result, 0, len(ids))

	for _, id := range ids {
		s, err := r.registry.Get(id)
		if err != nil {
			return results, fmt.Errorf(
				"failed to get subject %s: %w", id, err,
			)
		}

		result, execErr := r.executeSubject(ctx, runID, s)
		if result != nil {
			results = append(results, result)
		}
		if execErr != nil {
			return results, fmt.Errorf(
				"subject %s failed: %w", id, execErr,
			)
		}
	}

	return results, nil
}

// RunParallel executes the given subjects concurrently using at
// most maxConcurrency goroutines. A limit <= 0 falls back to the
// runner's configured concurrency.
func (r *DefaultRunner) RunParallel(
	ctx context.Context,
	ids []registry.ID,
	maxConcurrency int,
) ([]*Result, error) {
	if maxConcurrency <= 0 {
		maxConcurrency = r.concurrency
	}
	return runParallel(ctx, r, r.newRunID(), ids, maxConcurrency)
}

// Concurrency returns the default RunParallel limit.
func (r *DefaultRunner) Concurrency() int { return r.concurrency }

func (r *DefaultRunner) newRunID() string {
	if r.runID != "" {
		return r.runID
	}
	return uuid.NewString()
}

// SubjectSeed derives the generation seed of a subject from the
// base seed.
func SubjectSeed(base uint64, id registry.ID) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return base ^ h.Sum64()
}

// executeSubject runs one subject through its lifecycle:
// pre-hooks -> build checker -> trials -> post-hooks. Setup
// problems are reported in the result; an error is returned only
// when ctx ends the run early.
func (r *DefaultRunner) executeSubject(
	ctx context.Context,
	runID string,
	s *registry.Subject,
) (*Result, error) {
	kind := s.Kind
	if kind == "" {
		kind = r.kind
	}

	result := &Result{
		RunID:     runID,
		SubjectID: s.ID,
		Checker:   string(kind),
		Status:    StatusRunning,
		Seed:      SubjectSeed(r.seed, s.ID),
		StartTime: time.Now(),
	}

	logger := r.logger.WithFields(
		logging.RunIDField(runID),
		logging.SubjectField(string(s.ID)),
		logging.CheckerField(string(kind)),
	)

	r.metrics.IncrementRunTotal()
	r.metrics.SetActiveRuns(int(r.active.Add(1)))
	defer func() { r.metrics.SetActiveRuns(int(r.active.Add(-1))) }()

	if r.collector != nil {
		r.collector.EmitStarted(runID, string(s.ID), string(kind))
	}
	logger.Info("run started", logging.IntField("trials", r.trials))

	for _, hook := range r.preHooks {
		if err := hook(ctx, s, result); err != nil {
			if errors.Is(err, ErrSkip) {
				result.Status = StatusSkipped
			} else {
				result.Status = StatusError
			}
			result.Error = fmt.Sprintf("pre-hook failed: %v", err)
			r.complete(ctx, s, result, logger)
			return result, nil
		}
	}

	opts := append([]checker.Option{}, r.checkerOpts...)
	opts = append(opts,
		checker.WithGenerateData(true),
		checker.WithSeed(result.Seed),
		checker.WithLogger(logger),
		checker.WithRunID(runID),
	)
	c, err := checker.New(kind, s.Specification, s.Callable, opts...)
	if err != nil {
		result.Status = StatusError
		result.Error = fmt.Sprintf("checker setup failed: %v", err)
		r.complete(ctx, s, result, logger)
		return result, nil
	}

	for i := 1; i <= r.trials; i++ {
		if err := ctx.Err(); err != nil {
			return r.abort(ctx, s, result, logger, err)
		}

		t, trace := r.runTrial(ctx, c, i)
		if err := ctx.Err(); err != nil {
			return r.abort(ctx, s, result, logger, err)
		}
		if result.Specification == "" {
			result.Specification = trace.Rendered
		}
		result.add(t, r.maxFailures)
		r.recordTrial(runID, s, t, trace)

		if r.stopOnFailure && !t.Passed() {
			break
		}
	}

	result.settle()
	r.complete(ctx, s, result, logger)
	return result, nil
}

// runTrial performs one evaluation under the per-trial timeout.
func (r *DefaultRunner) runTrial(
	ctx context.Context,
	c checker.AssertionChecker,
	index int,
) (TrialResult, *checker.Trace) {
	trialCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	var trace checker.Trace
	ok, err := c.Evaluate(trialCtx, &trace)

	t := TrialResult{
		Index:    index,
		Data:     trace.Data,
		Result:   trace.Result,
		Duration: time.Since(start),
	}
	for _, f := range trace.Failures() {
		t.Failures = append(t.Failures, f.String())
	}

	var (
		v *checker.Violation
		g *checker.GroupViolation
	)
	switch {
	case err == nil && ok:
		t.Outcome = OutcomePassed
	case err == nil:
		t.Outcome = OutcomeFailed
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		t.Outcome = OutcomeTimedOut
		t.Error = fmt.Sprintf("trial timed out after %s", r.timeout)
	case errors.Is(err, checker.ErrGeneration):
		// The callable never ran, so nothing was violated.
		t.Outcome = OutcomeError
		t.Error = err.Error()
	case errors.As(err, &v), errors.As(err, &g):
		t.Outcome = OutcomeFailed
		t.Error = err.Error()
	default:
		t.Outcome = OutcomeError
		t.Error = err.Error()
	}
	return t, &trace
}

func (r *DefaultRunner) recordTrial(
	runID string,
	s *registry.Subject,
	t TrialResult,
	trace *checker.Trace,
) {
	r.metrics.RecordTrial(string(s.ID), t.Passed(), t.Duration)
	for _, f := range trace.Failures() {
		clause := f.Clause
		if clause == "" {
			clause = string(f.Phase)
		}
		r.metrics.RecordViolation(string(s.ID), clause)
	}

	if r.collector != nil {
		msg := t.Error
		if msg == "" && len(t.Failures) > 0 {
			msg = t.Failures[0]
		}
		r.collector.EmitTrial(
			runID, string(s.ID), t.Index, t.Passed(), t.Duration, msg,
		)
	}
}

// abort ends a run cancelled through ctx.
func (r *DefaultRunner) abort(
	ctx context.Context,
	s *registry.Subject,
	result *Result,
	logger logging.Logger,
	cause error,
) (*Result, error) {
	result.Status = StatusError
	result.Error = fmt.Sprintf("run cancelled: %v", cause)
	r.complete(ctx, s, result, logger)
	return result, cause
}

// complete finalizes timing, runs post-hooks and reports the
// result.
func (r *DefaultRunner) complete(
	ctx context.Context,
	s *registry.Subject,
	result *Result,
	logger logging.Logger,
) {
	result.finish()

	for _, hook := range r.postHooks {
		if err := hook(ctx, s, result); err != nil {
			logger.Warn("post-hook failed", logging.ErrorField(err))
		}
	}

	r.metrics.RecordRun(string(s.ID), result.Status, result.Duration)

	if r.collector != nil {
		r.collector.EmitFinished(
			result.RunID, string(s.ID), result.Status,
			result.Duration, result.Error,
		)
	}

	fields := []logging.Field{
		logging.StringField("status", result.Status),
		logging.IntField("trials", result.Trials),
		logging.IntField("failed", result.FailedTrials),
		logging.DurationField(result.Duration),
	}
	if result.Status == StatusPassed || result.Status == StatusSkipped {
		logger.Info("run completed", fields...)
	} else {
		if result.Error != "" {
			fields = append(fields, logging.StringField("error", result.Error))
		}
		logger.Warn("run completed", fields...)
	}
}
