package logging

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestConsoleLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l *ConsoleLogger)
		level string
		msg   string
	}{
		{"info", func(l *ConsoleLogger) { l.Info("hello world") }, "INFO", "hello world"},
		{"warn", func(l *ConsoleLogger) { l.Warn("careful") }, "WARN", "careful"},
		{"error", func(l *ConsoleLogger) { l.Error("boom") }, "ERROR", "boom"},
		{"debug", func(l *ConsoleLogger) { l.Debug("trace") }, "DEBUG", "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewConsoleLoggerTo(&buf, true))

			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), tt.msg)
		})
	}
}

func TestConsoleLogger_DebugSuppressedWhenQuiet(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLoggerTo(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestConsoleLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewConsoleLoggerTo(&buf, false)

	child := base.WithFields(SubjectField("add"))
	child.Info("checked", IntField("n", 3))

	out := buf.String()
	assert.Contains(t, out, "subject=add")
	assert.Contains(t, out, "n=3")

	buf.Reset()
	base.Info("plain")
	assert.NotContains(t, buf.String(), "subject=add")
}

func TestConsoleLogger_LogEvaluation(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLoggerTo(&buf, false)

	l.LogEvaluation(EvaluationLog{
		Checker: "runtime", Subject: "add", Passed: true,
	})
	assert.Contains(t, buf.String(), "PASS add")

	buf.Reset()
	l.LogEvaluation(EvaluationLog{
		Checker:  "runtime",
		Subject:  "div",
		Passed:   false,
		Failures: []string{"requires: y not_equals 0"},
	})
	out := buf.String()
	assert.Contains(t, out, "FAIL div")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "  - requires: y not_equals 0")
}

func TestConsoleLogger_Close(t *testing.T) {
	assert.NoError(t, NewConsoleLogger(false).Close())
}
