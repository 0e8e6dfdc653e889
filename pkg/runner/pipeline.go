package runner

import (
	"context"
	"time"

	"digital.vasic.praspel/pkg/logging"
	"digital.vasic.praspel/pkg/registry"
)

// Pipeline wraps a runner with an additional set of hooks, for
// subjects that are not in the runner's registry.
type Pipeline struct {
	runner    *DefaultRunner
	preHooks  []Hook
	postHooks []Hook
}

// NewPipeline creates a Pipeline wrapping the given runner.
func NewPipeline(runner *DefaultRunner) *Pipeline {
	return &Pipeline{
		runner: runner,
	}
}

// AddPreHook appends a pre-execution hook to the pipeline.
func (p *Pipeline) AddPreHook(h Hook) {
	p.preHooks = append(p.preHooks, h)
}

// AddPostHook appends a post-execution hook to the pipeline.
func (p *Pipeline) AddPostHook(h Hook) {
	p.postHooks = append(p.postHooks, h)
}

// Execute runs a subject through the pipeline:
// pre-hooks -> runner.executeSubject -> post-hooks.
func (p *Pipeline) Execute(
	ctx context.Context,
	runID string,
	s *registry.Subject,
) (*Result, error) {
	pending := &Result{
		RunID:     runID,
		SubjectID: s.ID,
		Status:    StatusRunning,
		StartTime: time.Now(),
	}
	for _, hook := range p.preHooks {
		if err := hook(ctx, s, pending); err != nil {
			pending.Status = StatusError
			pending.Error = "pipeline pre-hook failed: " + err.Error()
			pending.finish()
			return pending, nil
		}
	}

	result, err := p.runner.executeSubject(ctx, runID, s)
	if err != nil {
		return result, err
	}

	for _, hook := range p.postHooks {
		if hookErr := hook(ctx, s, result); hookErr != nil {
			p.runner.logger.Warn("pipeline post-hook failed",
				logging.SubjectField(string(s.ID)),
				logging.ErrorField(hookErr),
			)
		}
	}

	return result, nil
}

// ExecuteSequence runs multiple subjects through the pipeline in
// order under one run id.
func (p *Pipeline) ExecuteSequence(
	ctx context.Context,
	subjects []*registry.Subject,
) ([]*Result, error) {
	runID := p.runner.newRunID()
	results := make([]*Result, 0, len(subjects))

	for _, s := range subjects {
		result, err := p.Execute(ctx, runID, s)
		if result != nil {
			results = append(results, result)
		}
		if err != nil {
			return results, err
		}
	}

	return results, nil
}
