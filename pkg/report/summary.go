package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"digital.vasic.praspel/pkg/registry"
	"digital.vasic.praspel/pkg/runner"
)

// MasterSummary represents an aggregated summary of subject runs.
type MasterSummary struct {
	ID            string           `json:"id"`
	GeneratedAt   time.Time        `json:"generated_at"`
	Subjects      []SubjectSummary `json:"subjects"`
	TotalSubjects int              `json:"total_subjects"`
	Passed        int              `json:"passed"`
	Failed        int              `json:"failed"`
	Skipped       int              `json:"skipped"`
	TimedOut      int              `json:"timed_out"`
	Errors        int              `json:"errors"`
	TotalTrials   int              `json:"total_trials"`
	FailedTrials  int              `json:"failed_trials"`
	TotalDuration time.Duration    `json:"total_duration"`
	// AveragePassRate is the mean trial pass rate over the
	// subjects that ran at least one trial.
	AveragePassRate float64 `json:"average_pass_rate"`
}

// SubjectSummary represents a summary of a single subject run.
type SubjectSummary struct {
	SubjectID    registry.ID   `json:"subject_id"`
	RunID        string        `json:"run_id"`
	Checker      string        `json:"checker"`
	Status       string        `json:"status"`
	Duration     time.Duration `json:"duration"`
	Trials       int           `json:"trials"`
	PassedTrials int           `json:"passed_trials"`
	Seed         uint64        `json:"seed"`
	Error        string        `json:"error,omitempty"`
}

// BuildMasterSummary creates a master summary from run results.
func BuildMasterSummary(results []*runner.Result) *MasterSummary {
	summary := &MasterSummary{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		Subjects:    make([]SubjectSummary, 0, len(results)),
	}

	var rateSum float64
	rated := 0
	for _, r := range results {
		summary.Subjects = append(summary.Subjects, SubjectSummary{
			SubjectID:    r.SubjectID,
			RunID:        r.RunID,
			Checker:      r.Checker,
			Status:       r.Status,
			Duration:     r.Duration,
			Trials:       r.Trials,
			PassedTrials: r.PassedTrials,
			Seed:         r.Seed,
			Error:        r.Error,
		})
		summary.TotalSubjects++
		summary.TotalDuration += r.Duration
		summary.TotalTrials += r.Trials
		summary.FailedTrials += r.Trials - r.PassedTrials

		switch r.Status {
		case runner.StatusPassed:
			summary.Passed++
		case runner.StatusFailed:
			summary.Failed++
		case runner.StatusSkipped:
			summary.Skipped++
		case runner.StatusTimedOut:
			summary.TimedOut++
		default:
			summary.Errors++
		}

		if r.Trials > 0 {
			rateSum += r.PassRate()
			rated++
		}
	}

	if rated > 0 {
		summary.AveragePassRate = rateSum / float64(rated)
	}

	return summary
}

// SaveMasterSummary saves the master summary to both JSON and
// Markdown files in the given output directory, and points
// latest_summary.{json,md} at them.
func SaveMasterSummary(
	summary *MasterSummary,
	outputDir string,
) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf(
			"failed to create output directory: %w", err,
		)
	}

	ts := summary.GeneratedAt.Format("20060102_150405")

	jsonPath := filepath.Join(
		outputDir,
		fmt.Sprintf("master_summary_%s.json", ts),
	)
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf(
			"failed to marshal summary: %w", err,
		)
	}
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return fmt.Errorf(
			"failed to write JSON summary: %w", err,
		)
	}

	mdPath := filepath.Join(
		outputDir,
		fmt.Sprintf("master_summary_%s.md", ts),
	)
	if err := os.WriteFile(
		mdPath, []byte(summaryMarkdown(summary)), 0644,
	); err != nil {
		return fmt.Errorf(
			"failed to write Markdown summary: %w", err,
		)
	}

	latestJSON := filepath.Join(outputDir, "latest_summary.json")
	latestMD := filepath.Join(outputDir, "latest_summary.md")

	_ = os.Remove(latestJSON)
	_ = os.Remove(latestMD)
	_ = os.Symlink(filepath.Base(jsonPath), latestJSON)
	_ = os.Symlink(filepath.Base(mdPath), latestMD)

	return nil
}

// summaryMarkdown creates markdown from a master summary.
func summaryMarkdown(summary *MasterSummary) string {
	var sb strings.Builder

	sb.WriteString("# Contract Runs - Master Summary\n\n")
	fmt.Fprintf(&sb, "**Summary ID:** %s\n\n", summary.ID)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n",
		summary.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Overview\n\n")
	sb.WriteString("| Subject | Checker | Status | Trials | Duration |\n")
	sb.WriteString("|---------|---------|--------|--------|----------|\n")
	for _, s := range summary.Subjects {
		fmt.Fprintf(&sb, "| %s | %s | %s | %d/%d | %v |\n",
			cell(string(s.SubjectID)), s.Checker,
			strings.ToUpper(s.Status),
			s.PassedTrials, s.Trials, s.Duration,
		)
	}

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Total Subjects | %d |\n", summary.TotalSubjects)
	fmt.Fprintf(&sb, "| Passed | %d |\n", summary.Passed)
	fmt.Fprintf(&sb, "| Failed | %d |\n", summary.Failed)
	if summary.Skipped > 0 {
		fmt.Fprintf(&sb, "| Skipped | %d |\n", summary.Skipped)
	}
	if summary.TimedOut > 0 {
		fmt.Fprintf(&sb, "| Timed Out | %d |\n", summary.TimedOut)
	}
	if summary.Errors > 0 {
		fmt.Fprintf(&sb, "| Errors | %d |\n", summary.Errors)
	}
	fmt.Fprintf(&sb, "| Trials | %d |\n", summary.TotalTrials)
	fmt.Fprintf(&sb, "| Failed Trials | %d |\n", summary.FailedTrials)
	fmt.Fprintf(&sb, "| Pass Rate | %.0f%% |\n",
		summary.AveragePassRate*100)
	fmt.Fprintf(&sb, "| Total Duration | %v |\n", summary.TotalDuration)

	var broken []SubjectSummary
	for _, s := range summary.Subjects {
		if s.Error != "" {
			broken = append(broken, s)
		}
	}
	if len(broken) > 0 {
		sb.WriteString("\n## Errors\n\n")
		for _, s := range broken {
			fmt.Fprintf(&sb, "- **%s**: %s\n", s.SubjectID, s.Error)
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString("*Generated by praspel*\n")

	return sb.String()
}

// cell escapes pipes so a value stays inside its table cell.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
