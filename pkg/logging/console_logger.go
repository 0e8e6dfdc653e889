package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	colorTime  = color.New(color.FgHiBlack)
	colorDebug = color.New(color.FgHiBlack)
	colorInfo  = color.New(color.FgBlue)
	colorWarn  = color.New(color.FgYellow)
	colorError = color.New(color.FgRed)
	colorPass  = color.New(color.FgGreen, color.Bold)
	colorFail  = color.New(color.FgRed, color.Bold)
)

// ConsoleLogger provides colored console output. Colors are
// dropped automatically when the output is not a terminal.
type ConsoleLogger struct {
	mu      *sync.Mutex
	output  io.Writer
	verbose bool
	fields  map[string]any
}

// NewConsoleLogger creates a console logger writing to stdout.
// When verbose is true, debug messages are emitted.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleLoggerTo(os.Stdout, verbose)
}

// NewConsoleLoggerTo creates a console logger writing to w.
func NewConsoleLoggerTo(w io.Writer, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{
		mu:      &sync.Mutex{},
		output:  w,
		verbose: verbose,
		fields:  make(map[string]any),
	}
}

func (c *ConsoleLogger) log(
	level LogLevel, paint *color.Color, msg string, fields ...Field,
) {
	c.mu.Lock()
	defer c.mu.Unlock()

	merged := make(map[string]any, len(c.fields)+len(fields))
	for k, v := range c.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}

	var fieldStr string
	if len(merged) > 0 {
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, merged[k]))
		}
		fieldStr = " " + colorTime.Sprintf("{%s}", strings.Join(parts, ", "))
	}

	fmt.Fprintf(
		c.output, "%s [%s] %s%s\n",
		colorTime.Sprint(time.Now().Format("15:04:05")),
		paint.Sprintf("%-5s", level.String()),
		msg, fieldStr,
	)
}

// Info logs an informational message.
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.log(LevelInfo, colorInfo, msg, fields...)
}

// Warn logs a warning message.
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.log(LevelWarn, colorWarn, msg, fields...)
}

// Error logs an error message.
func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.log(LevelError, colorError, msg, fields...)
}

// Debug logs a debug message only if verbose is enabled.
func (c *ConsoleLogger) Debug(msg string, fields ...Field) {
	if c.verbose {
		c.log(LevelDebug, colorDebug, msg, fields...)
	}
}

// WithFields returns a new Logger with additional default
// fields. The returned logger shares the output and its lock.
func (c *ConsoleLogger) WithFields(
	fields ...Field,
) Logger {
	newFields := make(map[string]any, len(c.fields)+len(fields))
	for k, v := range c.fields {
		newFields[k] = v
	}
	for _, f := range fields {
		newFields[f.Key] = f.Value
	}
	return &ConsoleLogger{
		mu:      c.mu,
		output:  c.output,
		verbose: c.verbose,
		fields:  newFields,
	}
}

// LogEvaluation prints a one-line PASS/FAIL summary followed by
// the failures, if any.
func (c *ConsoleLogger) LogEvaluation(evaluation EvaluationLog) {
	verdict := colorPass.Sprint("PASS")
	level := LevelInfo
	paint := colorInfo
	if !evaluation.Passed {
		verdict = colorFail.Sprint("FAIL")
		level = LevelWarn
		paint = colorWarn
	}

	fields := []Field{
		CheckerField(evaluation.Checker),
		SubjectField(evaluation.Subject),
		DurationMsField(evaluation.DurationMs),
	}
	if evaluation.Error != "" {
		fields = append(fields, StringField("error", evaluation.Error))
	}
	c.log(level, paint, verdict+" "+evaluation.Subject, fields...)

	for _, f := range evaluation.Failures {
		c.log(level, paint, "  - "+f)
	}
}

// Close is a no-op for ConsoleLogger.
func (c *ConsoleLogger) Close() error {
	return nil
}
