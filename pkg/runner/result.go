package runner

import (
	"time"

	"digital.vasic.praspel/pkg/registry"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusPassed   = "passed"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
	StatusTimedOut = "timed_out"
	StatusError    = "error"
)

// Trial outcomes.
const (
	OutcomePassed   = "passed"
	OutcomeFailed   = "failed"
	OutcomeTimedOut = "timed_out"
	OutcomeError    = "error"
)

// TrialResult is one evaluation of a subject on generated data.
type TrialResult struct {
	Index    int            `json:"index"`
	Outcome  string         `json:"outcome"`
	Data     map[string]any `json:"data,omitempty"`
	Result   any            `json:"result,omitempty"`
	Failures []string       `json:"failures,omitempty"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// Passed reports whether the trial satisfied the contract.
func (t TrialResult) Passed() bool { return t.Outcome == OutcomePassed }

// Result aggregates the trials of one subject run.
type Result struct {
	RunID     string      `json:"run_id"`
	SubjectID registry.ID `json:"subject_id"`
	Checker   string      `json:"checker"`
	Status    string      `json:"status"`
	Seed      uint64      `json:"seed"`

	Trials         int `json:"trials"`
	PassedTrials   int `json:"passed_trials"`
	FailedTrials   int `json:"failed_trials"`
	TimedOutTrials int `json:"timed_out_trials"`
	ErroredTrials  int `json:"errored_trials"`

	// Failures holds the first non-passing trials, up to the
	// runner's failure limit.
	Failures      []TrialResult `json:"failures,omitempty"`
	Specification string        `json:"specification,omitempty"`
	Error         string        `json:"error,omitempty"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// PassRate returns the fraction of trials that passed.
func (r *Result) PassRate() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.PassedTrials) / float64(r.Trials)
}

func (r *Result) add(t TrialResult, maxFailures int) {
	r.Trials++
	switch t.Outcome {
	case OutcomePassed:
		r.PassedTrials++
		return
	case OutcomeFailed:
		r.FailedTrials++
	case OutcomeTimedOut:
		r.TimedOutTrials++
	default:
		r.ErroredTrials++
	}
	if len(r.Failures) < maxFailures {
		r.Failures = append(r.Failures, t)
	}
}

// settle derives the final status from the trial counters.
func (r *Result) settle() {
	switch {
	case r.FailedTrials > 0:
		r.Status = StatusFailed
	case r.TimedOutTrials > 0:
		r.Status = StatusTimedOut
	case r.ErroredTrials > 0:
		r.Status = StatusError
	default:
		r.Status = StatusPassed
	}
}

func (r *Result) finish() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}
