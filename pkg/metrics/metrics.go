// Package metrics records run and trial counters for contract
// evaluation.
package metrics

import "time"

// RunMetrics defines the interface for recording evaluation
// metrics.
type RunMetrics interface {
	// RecordRun records a finished subject run.
	RecordRun(subjectID, status string, duration time.Duration)
	// RecordTrial records one evaluation within a run.
	RecordTrial(subjectID string, passed bool, duration time.Duration)
	// RecordViolation records a failed check in clause.
	RecordViolation(subjectID, clause string)
	// IncrementRunTotal increments the total run counter.
	IncrementRunTotal()
	// SetActiveRuns sets the gauge of runs in progress.
	SetActiveRuns(count int)
}

// NoopMetrics is a no-op implementation of RunMetrics
// useful for testing or when metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordRun(_, _ string, _ time.Duration)        {}
func (NoopMetrics) RecordTrial(_ string, _ bool, _ time.Duration) {}
func (NoopMetrics) RecordViolation(_, _ string)                   {}
func (NoopMetrics) IncrementRunTotal()                            {}
func (NoopMetrics) SetActiveRuns(_ int)                           {}
