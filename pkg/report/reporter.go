// Package report renders run results as JSON or Markdown,
// aggregates them into master summaries and keeps a queryable
// run history.
package report

import (
	"io"

	"digital.vasic.praspel/pkg/runner"
)

// Reporter defines the interface for generating run reports.
type Reporter interface {
	// GenerateReport creates a report for a single subject run.
	GenerateReport(result *runner.Result) ([]byte, error)

	// GenerateMasterSummary creates a summary of several runs.
	GenerateMasterSummary(
		results []*runner.Result,
	) ([]byte, error)

	// WriteReport writes a report to the specified writer.
	WriteReport(w io.Writer, result *runner.Result) error
}

// reportName is the base file name of a saved report.
func reportName(result *runner.Result) string {
	name := string(result.SubjectID)
	if result.RunID != "" {
		name += "_" + result.RunID
	}
	return name
}
