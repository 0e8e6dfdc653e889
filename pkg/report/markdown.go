package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"digital.vasic.praspel/pkg/runner"
)

// MarkdownReporter generates Markdown reports from run results.
type MarkdownReporter struct {
	outputDir string
}

// NewMarkdownReporter creates a new Markdown reporter.
func NewMarkdownReporter(outputDir string) *MarkdownReporter {
	return &MarkdownReporter{outputDir: outputDir}
}

// GenerateReport creates a Markdown report for a single run.
func (r *MarkdownReporter) GenerateReport(
	result *runner.Result,
) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteReport(&buf, result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteReport writes a Markdown report to the specified writer.
func (r *MarkdownReporter) WriteReport(
	w io.Writer,
	result *runner.Result,
) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Contract Report: %s\n\n", result.SubjectID)
	fmt.Fprintf(&sb, "**Run ID:** %s\n\n", result.RunID)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n",
		result.EndTime.Format(time.RFC3339))

	writeSummaryTable(&sb, result)
	writeSpecification(&sb, result)
	if err := writeFailures(&sb, result); err != nil {
		return err
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// GenerateMasterSummary creates a Markdown summary of all
// results.
func (r *MarkdownReporter) GenerateMasterSummary(
	results []*runner.Result,
) ([]byte, error) {
	return []byte(summaryMarkdown(BuildMasterSummary(results))), nil
}

// Save writes the report for result into the output directory
// and returns the file path.
func (r *MarkdownReporter) Save(result *runner.Result) (string, error) {
	data, err := r.GenerateReport(result)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return "", fmt.Errorf(
			"failed to create output directory: %w", err,
		)
	}

	path := filepath.Join(r.outputDir, reportName(result)+".md")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func writeSummaryTable(sb *strings.Builder, result *runner.Result) {
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(sb, "| Status | **%s** |\n", strings.ToUpper(result.Status))
	fmt.Fprintf(sb, "| Checker | %s |\n", result.Checker)
	fmt.Fprintf(sb, "| Seed | %d |\n", result.Seed)
	fmt.Fprintf(sb, "| Trials | %d |\n", result.Trials)
	fmt.Fprintf(sb, "| Passed | %d |\n", result.PassedTrials)
	fmt.Fprintf(sb, "| Failed | %d |\n", result.FailedTrials)
	if result.TimedOutTrials > 0 {
		fmt.Fprintf(sb, "| Timed Out | %d |\n", result.TimedOutTrials)
	}
	if result.ErroredTrials > 0 {
		fmt.Fprintf(sb, "| Errored | %d |\n", result.ErroredTrials)
	}
	fmt.Fprintf(sb, "| Pass Rate | %.0f%% |\n", result.PassRate()*100)
	fmt.Fprintf(sb, "| Duration | %v |\n", result.Duration)
	if result.Error != "" {
		fmt.Fprintf(sb, "| Error | %s |\n", cell(result.Error))
	}
}

func writeSpecification(sb *strings.Builder, result *runner.Result) {
	if result.Specification == "" {
		return
	}
	sb.WriteString("\n## Contract\n\n```\n")
	sb.WriteString(result.Specification)
	if !strings.HasSuffix(result.Specification, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
}

func writeFailures(sb *strings.Builder, result *runner.Result) error {
	if len(result.Failures) == 0 {
		return nil
	}

	sb.WriteString("\n## Failing Trials\n")
	for _, t := range result.Failures {
		fmt.Fprintf(sb, "\n### Trial %d (%s)\n\n", t.Index, t.Outcome)

		data, err := formatData(t.Data)
		if err != nil {
			return fmt.Errorf("trial %d: %w", t.Index, err)
		}
		fmt.Fprintf(sb, "- **Data:** `%s`\n", data)
		if t.Result != nil {
			fmt.Fprintf(sb, "- **Result:** `%v`\n", t.Result)
		}
		if t.Error != "" {
			fmt.Fprintf(sb, "- **Error:** %s\n", t.Error)
		}
		for _, f := range t.Failures {
			fmt.Fprintf(sb, "- %s\n", f)
		}
	}

	shown := len(result.Failures)
	total := result.Trials - result.PassedTrials
	if total > shown {
		fmt.Fprintf(sb, "\n*%d more failing trials not recorded.*\n",
			total-shown)
	}
	return nil
}

// formatData renders trial data as compact JSON. Map keys come
// out sorted.
func formatData(data map[string]any) (string, error) {
	if len(data) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode data: %w", err)
	}
	return string(b), nil
}
