package report

import (
	"time"

	"digital.vasic.praspel/pkg/runner"
)

func makeTestResults() []*runner.Result {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []*runner.Result{
		{
			RunID:         "run-1",
			SubjectID:     "add",
			Checker:       "runtime",
			Status:        runner.StatusPassed,
			Seed:          42,
			Trials:        10,
			PassedTrials:  10,
			Specification: "@requires x: integer(0, 10);\n",
			StartTime:     start,
			EndTime:       start.Add(2 * time.Second),
			Duration:      2 * time.Second,
		},
		{
			RunID:        "run-1",
			SubjectID:    "sub",
			Checker:      "runtime",
			Status:       runner.StatusFailed,
			Seed:         1<<63 + 5,
			Trials:       10,
			PassedTrials: 6,
			FailedTrials: 4,
			Failures: []runner.TrialResult{
				{
					Index:    2,
					Outcome:  runner.OutcomeFailed,
					Data:     map[string]any{"y": 3, "x": 1},
					Result:   -2,
					Failures: []string{`ensures \result greater_or_equal: -2 < 1`},
				},
				{
					Index:   5,
					Outcome: runner.OutcomeFailed,
					Data:    map[string]any{"x": 0, "y": 9},
					Error:   "contract violation in ensures",
				},
			},
			StartTime: start.Add(3 * time.Second),
			EndTime:   start.Add(4 * time.Second),
			Duration:  time.Second,
		},
	}
}
