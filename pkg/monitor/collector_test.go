package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCollector_EmitAndStats(t *testing.T) {
	c := NewEventCollector()

	c.EmitStarted("run-1", "add", "runtime")
	c.EmitTrial("run-1", "add", 1, true, time.Millisecond, "")
	c.EmitTrial("run-1", "add", 2, false, time.Millisecond, "ensures failed")
	c.EmitFinished("run-1", "add", "failed", time.Second, "1 of 2 trials failed")
	c.EmitFinished("run-1", "sub", "passed", time.Second, "")
	c.EmitFinished("run-1", "div", "timed_out", time.Second, "")
	c.EmitFinished("run-1", "mod", "skipped", 0, "")
	c.EmitFinished("run-1", "pow", "error", 0, "hook failed")

	events := c.Events()
	require.Len(t, events, 8)
	assert.Equal(t, EventStarted, events[0].Type)
	assert.Equal(t, "runtime", events[0].Checker)
	assert.Equal(t, 2, events[2].Trial)
	assert.False(t, events[2].Passed)
	assert.Equal(t, EventFailed, events[3].Type)
	assert.Equal(t, EventPassed, events[4].Type)
	assert.True(t, events[4].Passed)
	assert.Equal(t, EventTimedOut, events[5].Type)
	assert.Equal(t, EventSkipped, events[6].Type)
	assert.Equal(t, EventError, events[7].Type)

	stats := c.Stats()
	assert.Equal(t, 5, stats.Runs)
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.TimedOut)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 2, stats.Trials)
	assert.Equal(t, 1, stats.FailedTrials)
	for _, e := range events {
		assert.False(t, e.Timestamp.IsZero())
	}
}

func TestEventCollector_Handlers(t *testing.T) {
	c := NewEventCollector()
	var got []EventType
	c.OnEvent(func(e Event) { got = append(got, e.Type) })

	c.EmitStarted("r", "add", "")
	c.EmitFinished("r", "add", "passed", 0, "")

	assert.Equal(t, []EventType{EventStarted, EventPassed}, got)
}

func TestEventCollector_EventsIsCopy(t *testing.T) {
	c := NewEventCollector()
	c.EmitStarted("r", "add", "")

	events := c.Events()
	events[0].SubjectID = "changed"
	assert.Equal(t, "add", c.Events()[0].SubjectID)
}

func TestEventCollector_Reset(t *testing.T) {
	c := NewEventCollector()
	c.EmitFinished("r", "add", "passed", 0, "")
	c.Reset()

	assert.Empty(t, c.Events())
	assert.Zero(t, c.Stats().Runs)
}

func TestEventCollector_Concurrent(t *testing.T) {
	c := NewEventCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.EmitTrial("r", "add", i, i%2 == 0, 0, "")
		}(i)
	}
	wg.Wait()

	stats := c.Stats()
	assert.Equal(t, 50, stats.Trials)
	assert.Equal(t, 25, stats.FailedTrials)
}
