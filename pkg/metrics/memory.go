package metrics

import (
	"maps"
	"sync"
	"time"
)

// MemoryMetrics implements RunMetrics with in-memory counters. It
// is safe for concurrent use; hosts that export metrics read the
// Snapshot.
type MemoryMetrics struct {
	mu         sync.RWMutex
	runs       map[string]int
	trials     map[string]int
	violations map[string]int
	durations  map[string][]time.Duration
	runTotal   int
	active     int
}

// Snapshot is a point-in-time copy of MemoryMetrics.
type Snapshot struct {
	Runs       map[string]int `json:"runs"`
	Trials     map[string]int `json:"trials"`
	Violations map[string]int `json:"violations"`
	RunTotal   int            `json:"run_total"`
	ActiveRuns int            `json:"active_runs"`
}

// NewMemoryMetrics creates a new MemoryMetrics instance.
func NewMemoryMetrics() *MemoryMetrics {
	return &MemoryMetrics{
		runs:       make(map[string]int),
		trials:     make(map[string]int),
		violations: make(map[string]int),
		durations:  make(map[string][]time.Duration),
	}
}

func (m *MemoryMetrics) RecordRun(subjectID, status string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[subjectID+":"+status]++
	m.durations[subjectID] = append(m.durations[subjectID], duration)
}

func (m *MemoryMetrics) RecordTrial(subjectID string, passed bool, _ time.Duration) {
	status := "failed"
	if passed {
		status = "passed"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trials[subjectID+":"+status]++
}

func (m *MemoryMetrics) RecordViolation(subjectID, clause string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.violations[subjectID+":"+clause]++
}

func (m *MemoryMetrics) IncrementRunTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runTotal++
}

func (m *MemoryMetrics) SetActiveRuns(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = count
}

// RunCount returns the count for a subject+status combination.
func (m *MemoryMetrics) RunCount(subjectID, status string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runs[subjectID+":"+status]
}

// TrialCount returns how many trials of subjectID passed or failed.
func (m *MemoryMetrics) TrialCount(subjectID string, passed bool) int {
	status := "failed"
	if passed {
		status = "passed"
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trials[subjectID+":"+status]
}

// ViolationCount returns the failed checks recorded for a clause.
func (m *MemoryMetrics) ViolationCount(subjectID, clause string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.violations[subjectID+":"+clause]
}

// Durations returns the recorded run durations of subjectID.
func (m *MemoryMetrics) Durations(subjectID string) []time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]time.Duration(nil), m.durations[subjectID]...)
}

// RunTotal returns the total number of runs.
func (m *MemoryMetrics) RunTotal() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runTotal
}

// ActiveRuns returns the current active runs gauge.
func (m *MemoryMetrics) ActiveRuns() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Snapshot copies the counters.
func (m *MemoryMetrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		Runs:       maps.Clone(m.runs),
		Trials:     maps.Clone(m.trials),
		Violations: maps.Clone(m.violations),
		RunTotal:   m.runTotal,
		ActiveRuns: m.active,
	}
}
