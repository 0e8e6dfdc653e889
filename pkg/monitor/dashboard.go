package monitor

import (
	"maps"
	"sync"
	"time"
)

// DashboardData tracks the live state of every subject in a run.
type DashboardData struct {
	mu        sync.RWMutex
	runID     string
	startTime time.Time
	status    string
	subjects  map[string]SubjectState
	summary   DashboardSummary
}

// Dashboard is a point-in-time copy of DashboardData.
type Dashboard struct {
	RunID     string                  `json:"run_id"`
	StartTime time.Time               `json:"start_time"`
	Status    string                  `json:"status"` // running, completed, failed
	Subjects  map[string]SubjectState `json:"subjects"`
	Summary   DashboardSummary        `json:"summary"`
}

// SubjectState represents the current state of a subject.
type SubjectState struct {
	ID           string        `json:"id"`
	Checker      string        `json:"checker,omitempty"`
	Status       string        `json:"status"`
	Trials       int           `json:"trials"`
	FailedTrials int           `json:"failed_trials"`
	StartTime    *time.Time    `json:"start_time,omitempty"`
	EndTime      *time.Time    `json:"end_time,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Message      string        `json:"message,omitempty"`
}

// DashboardSummary holds aggregate stats for the dashboard.
type DashboardSummary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Skipped  int     `json:"skipped"`
	Errors   int     `json:"errors"`
	Running  int     `json:"running"`
	Trials   int     `json:"trials"`
	PassRate float64 `json:"pass_rate"`
	Elapsed  string  `json:"elapsed"`
}

// NewDashboardData creates a new dashboard data instance.
func NewDashboardData(runID string) *DashboardData {
	return &DashboardData{
		runID:     runID,
		startTime: time.Now(),
		status:    "running",
		subjects:  make(map[string]SubjectState),
	}
}

// UpdateFromEvent updates dashboard state from a run event.
func (d *DashboardData) UpdateFromEvent(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	state, exists := d.subjects[event.SubjectID]
	if !exists {
		state = SubjectState{ID: event.SubjectID}
	}
	if event.Checker != "" {
		state.Checker = event.Checker
	}

	switch event.Type {
	case EventStarted:
		state.Status = "running"
		state.StartTime = &now
		state.Trials = 0
		state.FailedTrials = 0
	case EventTrial:
		state.Trials++
		if !event.Passed {
			state.FailedTrials++
		}
	default:
		state.Status = string(event.Type)
		state.EndTime = &now
		state.Duration = event.Duration
		state.Message = event.Message
	}

	d.subjects[event.SubjectID] = state
	d.recalcSummary()
}

func (d *DashboardData) recalcSummary() {
	s := DashboardSummary{}
	for _, st := range d.subjects {
		s.Total++
		s.Trials += st.Trials
		switch EventType(st.Status) {
		case EventPassed:
			s.Passed++
		case EventFailed:
			s.Failed++
		case EventSkipped:
			s.Skipped++
		case EventError, EventTimedOut:
			s.Errors++
		default:
			s.Running++
		}
	}
	if completed := s.Passed + s.Failed + s.Errors; completed > 0 {
		s.PassRate = float64(s.Passed) / float64(completed) * 100
	}
	s.Elapsed = time.Since(d.startTime).Round(time.Millisecond).String()
	d.summary = s
}

// Snapshot returns a copy of the current dashboard state.
func (d *DashboardData) Snapshot() Dashboard {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Dashboard{
		RunID:     d.runID,
		StartTime: d.startTime,
		Status:    d.status,
		Subjects:  maps.Clone(d.subjects),
		Summary:   d.summary,
	}
}

// SetStatus sets the overall run status.
func (d *DashboardData) SetStatus(status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = status
}

// BuildDashboardData creates a DashboardData from an
// EventCollector by replaying all collected events.
func BuildDashboardData(
	collector *EventCollector,
	runID string,
) *DashboardData {
	data := NewDashboardData(runID)
	for _, event := range collector.Events() {
		data.UpdateFromEvent(event)
	}
	return data
}
