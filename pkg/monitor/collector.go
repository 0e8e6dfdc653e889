package monitor

import (
	"sync"
	"time"
)

// EventCollector captures run events and timing data. It is safe
// for concurrent use.
type EventCollector struct {
	mu       sync.RWMutex
	events   []Event
	handlers []func(Event)
	stats    CollectorStats
}

// CollectorStats holds aggregate statistics. Run counters count
// finished runs; trial counters count trial events.
type CollectorStats struct {
	Runs         int           `json:"runs"`
	Passed       int           `json:"passed"`
	Failed       int           `json:"failed"`
	Skipped      int           `json:"skipped"`
	TimedOut     int           `json:"timed_out"`
	Errors       int           `json:"errors"`
	Trials       int           `json:"trials"`
	FailedTrials int           `json:"failed_trials"`
	StartTime    time.Time     `json:"start_time"`
	Duration     time.Duration `json:"duration"`
}

// NewEventCollector creates a new event collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{
		events: make([]Event, 0, 64),
		stats:  CollectorStats{StartTime: time.Now()},
	}
}

// OnEvent registers a handler to be called for each event.
// Handlers run on the emitting goroutine, outside the lock.
func (c *EventCollector) OnEvent(handler func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Emit records an event and notifies all handlers.
func (c *EventCollector) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	switch event.Type {
	case EventTrial:
		c.stats.Trials++
		if !event.Passed {
			c.stats.FailedTrials++
		}
	case EventPassed:
		c.stats.Runs++
		c.stats.Passed++
	case EventFailed:
		c.stats.Runs++
		c.stats.Failed++
	case EventSkipped:
		c.stats.Runs++
		c.stats.Skipped++
	case EventTimedOut:
		c.stats.Runs++
		c.stats.TimedOut++
	case EventError:
		c.stats.Runs++
		c.stats.Errors++
	}
	c.stats.Duration = time.Since(c.stats.StartTime)
	handlers := make([]func(Event), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// EmitStarted emits a run started event.
func (c *EventCollector) EmitStarted(runID, subjectID, checker string) {
	c.Emit(Event{
		Type:      EventStarted,
		RunID:     runID,
		SubjectID: subjectID,
		Checker:   checker,
		Status:    "running",
	})
}

// EmitTrial emits the outcome of one trial.
func (c *EventCollector) EmitTrial(
	runID, subjectID string,
	trial int,
	passed bool,
	duration time.Duration,
	msg string,
) {
	c.Emit(Event{
		Type:      EventTrial,
		RunID:     runID,
		SubjectID: subjectID,
		Trial:     trial,
		Passed:    passed,
		Duration:  duration,
		Message:   msg,
	})
}

// EmitFinished emits the final status of a run.
func (c *EventCollector) EmitFinished(
	runID, subjectID, status string,
	duration time.Duration,
	msg string,
) {
	c.Emit(Event{
		Type:      finishedType(status),
		RunID:     runID,
		SubjectID: subjectID,
		Status:    status,
		Passed:    status == "passed",
		Duration:  duration,
		Message:   msg,
	})
}

// Events returns a copy of all collected events.
func (c *EventCollector) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Event, len(c.events))
	copy(result, c.events)
	return result
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.stats = CollectorStats{StartTime: time.Now()}
}
