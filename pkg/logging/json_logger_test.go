package logging

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitNonEmpty(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestJSONLogger_NewJSONLogger_Stdout(t *testing.T) {
	logger, err := NewJSONLogger(LoggerConfig{Level: LevelInfo})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NoError(t, logger.Close())
}

func TestJSONLogger_NewJSONLogger_File(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "nested", "test.log")

	logger, err := NewJSONLogger(LoggerConfig{
		OutputPath: logPath,
		Level:      LevelDebug,
		Verbose:    true,
	})
	require.NoError(t, err)

	logger.Info("hello", LogField("key", "val"))
	logger.Debug("debug msg")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	lines := splitNonEmpty(string(data))
	require.Len(t, lines, 2)

	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "hello", entry.Message)
	assert.Equal(t, "val", entry.Fields["key"])
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")

	logger, err := NewJSONLogger(LoggerConfig{
		OutputPath: logPath,
		Level:      LevelWarn,
		Verbose:    true,
	})
	require.NoError(t, err)

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Len(t, splitNonEmpty(string(data)), 2)
}

func TestJSONLogger_WithFieldsSharesOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fields.log")

	logger, err := NewJSONLogger(LoggerConfig{
		OutputPath: logPath,
		Fields:     map[string]any{"app": "praspel"},
	})
	require.NoError(t, err)

	child := logger.WithFields(RunIDField("r-1"))
	child.Info("from child")
	require.NoError(t, logger.Close())

	// The child shares the closed state with its parent.
	child.Info("after close")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := splitNonEmpty(string(data))
	require.Len(t, lines, 1)

	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "praspel", entry.Fields["app"])
	assert.Equal(t, "r-1", entry.Fields["run_id"])
}

func TestJSONLogger_LogEvaluation(t *testing.T) {
	dir := t.TempDir()
	logger, err := SetupLogging(dir, false)
	require.NoError(t, err)

	logger.LogEvaluation(EvaluationLog{
		Checker:    "runtime",
		Subject:    "add",
		Data:       map[string]any{"x": 1},
		Passed:     false,
		Failures:   []string{"ensures failed"},
		DurationMs: 3,
	})
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, "evaluations.log"))
	require.NoError(t, err)
	lines := splitNonEmpty(string(data))
	require.Len(t, lines, 1)

	var got EvaluationLog
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "add", got.Subject)
	assert.NotEmpty(t, got.Timestamp)
	assert.Equal(t, []string{"ensures failed"}, got.Failures)

	main, err := os.ReadFile(filepath.Join(dir, "praspel.log"))
	require.NoError(t, err)
	assert.Contains(t, string(main), "contract violated")
}

func TestJSONLogger_MarshalFailureIsSilent(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "marshal.log")
	logger, err := NewJSONLogger(LoggerConfig{OutputPath: logPath})
	require.NoError(t, err)

	orig := jsonMarshal
	jsonMarshal = func(any) ([]byte, error) {
		return nil, errors.New("marshal failed")
	}
	defer func() { jsonMarshal = orig }()

	logger.Info("dropped")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Empty(t, splitNonEmpty(string(data)))
}

func TestJSONLogger_CloseTwice(t *testing.T) {
	logger, err := NewJSONLogger(LoggerConfig{
		OutputPath: filepath.Join(t.TempDir(), "x.log"),
	})
	require.NoError(t, err)
	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}
