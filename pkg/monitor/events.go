package monitor

import "time"

// EventType represents the type of run event.
type EventType string

const (
	EventStarted  EventType = "started"
	EventTrial    EventType = "trial"
	EventPassed   EventType = "passed"
	EventFailed   EventType = "failed"
	EventSkipped  EventType = "skipped"
	EventTimedOut EventType = "timed_out"
	EventError    EventType = "error"
)

// Event is a lifecycle event of a subject run. Trial events carry
// the trial index and whether it passed.
type Event struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id,omitempty"`
	SubjectID string         `json:"subject_id"`
	Checker   string         `json:"checker,omitempty"`
	Status    string         `json:"status,omitempty"`
	Message   string         `json:"message,omitempty"`
	Trial     int            `json:"trial,omitempty"`
	Passed    bool           `json:"passed"`
	Duration  time.Duration  `json:"duration,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// finishedType maps a run status to the event that reports it.
func finishedType(status string) EventType {
	switch status {
	case "passed":
		return EventPassed
	case "failed":
		return EventFailed
	case "skipped":
		return EventSkipped
	case "timed_out":
		return EventTimedOut
	default:
		return EventError
	}
}
