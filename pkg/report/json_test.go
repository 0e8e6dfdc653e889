package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.praspel/pkg/runner"
)

func TestJSONReporter_GenerateReport(t *testing.T) {
	results := makeTestResults()

	tests := []struct {
		name   string
		pretty bool
	}{
		{"compact", false},
		{"pretty", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewJSONReporter(t.TempDir(), tt.pretty)
			data, err := r.GenerateReport(results[1])
			require.NoError(t, err)
			assert.Equal(t, tt.pretty, bytes.Contains(data, []byte("\n  ")))

			var decoded runner.Result
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, results[1].SubjectID, decoded.SubjectID)
			assert.Equal(t, results[1].Seed, decoded.Seed)
			require.Len(t, decoded.Failures, 2)
			assert.Equal(t, 2, decoded.Failures[0].Index)
		})
	}
}

func TestJSONReporter_GenerateMasterSummary(t *testing.T) {
	r := NewJSONReporter("", false)
	data, err := r.GenerateMasterSummary(makeTestResults())
	require.NoError(t, err)

	var summary MasterSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 2, summary.TotalSubjects)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
}

func TestJSONReporter_WriteReport(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporter("", false)
	require.NoError(t, r.WriteReport(&buf, makeTestResults()[0]))
	assert.Contains(t, buf.String(), `"subject_id":"add"`)
}

func TestJSONReporter_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r := NewJSONReporter(dir, true)

	path, err := r.Save(makeTestResults()[0])
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "add_run-1.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status": "passed"`)
}
