package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"digital.vasic.praspel/pkg/runner"
)

// JSONReporter generates JSON reports from run results.
type JSONReporter struct {
	outputDir string
	pretty    bool
}

// NewJSONReporter creates a new JSON reporter. When pretty is
// true, output is indented for readability.
func NewJSONReporter(
	outputDir string,
	pretty bool,
) *JSONReporter {
	return &JSONReporter{
		outputDir: outputDir,
		pretty:    pretty,
	}
}

// GenerateReport creates a JSON report for a single run.
func (r *JSONReporter) GenerateReport(
	result *runner.Result,
) ([]byte, error) {
	return r.marshal(result)
}

// GenerateMasterSummary creates a JSON master summary of all
// results.
func (r *JSONReporter) GenerateMasterSummary(
	results []*runner.Result,
) ([]byte, error) {
	return r.marshal(BuildMasterSummary(results))
}

// WriteReport writes a JSON report to the specified writer.
func (r *JSONReporter) WriteReport(
	w io.Writer,
	result *runner.Result,
) error {
	data, err := r.GenerateReport(result)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Save writes the report for result into the output directory
// and returns the file path.
func (r *JSONReporter) Save(result *runner.Result) (string, error) {
	data, err := r.GenerateReport(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return "", fmt.Errorf(
			"failed to create output directory: %w", err,
		)
	}

	path := filepath.Join(r.outputDir, reportName(result)+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func (r *JSONReporter) marshal(v any) ([]byte, error) {
	if r.pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
