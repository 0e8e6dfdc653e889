package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.praspel/pkg/registry"
	"digital.vasic.praspel/pkg/runner"
)

func TestBuildMasterSummary_Basic(t *testing.T) {
	summary := BuildMasterSummary(makeTestResults())

	_, err := uuid.Parse(summary.ID)
	assert.NoError(t, err)
	assert.NotZero(t, summary.GeneratedAt)
	assert.Equal(t, 2, summary.TotalSubjects)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 20, summary.TotalTrials)
	assert.Equal(t, 4, summary.FailedTrials)
	assert.InDelta(t, 0.8, summary.AveragePassRate, 1e-9)
	require.Len(t, summary.Subjects, 2)
	assert.Equal(t, registry.ID("sub"), summary.Subjects[1].SubjectID)
	assert.Equal(t, uint64(1<<63+5), summary.Subjects[1].Seed)
}

func TestBuildMasterSummary_Empty(t *testing.T) {
	summary := BuildMasterSummary(nil)

	assert.Equal(t, 0, summary.TotalSubjects)
	assert.Equal(t, float64(0), summary.AveragePassRate)
	assert.Empty(t, summary.Subjects)
}

func TestBuildMasterSummary_StatusCounts(t *testing.T) {
	results := []*runner.Result{
		{SubjectID: "a", Status: runner.StatusSkipped},
		{SubjectID: "b", Status: runner.StatusTimedOut, Trials: 2},
		{SubjectID: "c", Status: runner.StatusError, Error: "boom"},
	}

	summary := BuildMasterSummary(results)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.TimedOut)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 2, summary.FailedTrials)
	// Only "b" ran trials and none passed.
	assert.Equal(t, float64(0), summary.AveragePassRate)

	md := summaryMarkdown(summary)
	assert.Contains(t, md, "| Skipped | 1 |")
	assert.Contains(t, md, "| Timed Out | 1 |")
	assert.Contains(t, md, "- **c**: boom")
}

func TestSaveMasterSummary(t *testing.T) {
	dir := t.TempDir()
	summary := BuildMasterSummary(makeTestResults())

	require.NoError(t, SaveMasterSummary(summary, dir))

	matches, err := filepath.Glob(filepath.Join(dir, "master_summary_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	var decoded MasterSummary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, summary.ID, decoded.ID)

	md, err := filepath.Glob(filepath.Join(dir, "master_summary_*.md"))
	require.NoError(t, err)
	assert.Len(t, md, 1)

	latest, err := os.Readlink(filepath.Join(dir, "latest_summary.json"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(matches[0]), latest)
}

func TestSaveMasterSummary_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	err := SaveMasterSummary(BuildMasterSummary(nil), filepath.Join(file, "sub"))
	assert.ErrorContains(t, err, "failed to create output directory")
}
