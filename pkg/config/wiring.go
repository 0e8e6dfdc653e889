package config

import (
	"fmt"
	"path/filepath"
	"slices"

	"digital.vasic.praspel/pkg/bank"
	"digital.vasic.praspel/pkg/logging"
	"digital.vasic.praspel/pkg/monitor"
	"digital.vasic.praspel/pkg/report"
)

// LoadBank loads every bank file matching the bank glob. When
// watching is enabled it also returns a watcher over the
// directories of the loaded files; the caller runs and closes it.
func (c *Config) LoadBank(logger logging.Logger) (*bank.Bank, *bank.Watcher, error) {
	b := bank.New()
	paths, err := b.LoadGlob(c.Bank.Glob)
	if err != nil {
		return nil, nil, err
	}
	if !c.Bank.Watch {
		return b, nil, nil
	}

	w, err := bank.NewWatcher(b, bank.WithWatcherLogger(logger))
	if err != nil {
		return nil, nil, err
	}

	var dirs []string
	for _, p := range paths {
		if dir := filepath.Dir(p); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, nil, err
		}
	}
	return b, w, nil
}

// Reporters returns the JSON and Markdown reporters for the
// report directory.
func (c *Config) Reporters() (*report.JSONReporter, *report.MarkdownReporter) {
	return report.NewJSONReporter(c.Report.Dir, c.Report.Pretty),
		report.NewMarkdownReporter(c.Report.Dir)
}

// OpenHistory opens the run history database. It returns nil
// without error when no history path is configured.
func (c *Config) OpenHistory() (*report.HistoryStore, error) {
	if c.Report.History == "" {
		return nil, nil
	}
	h, err := report.OpenHistory(c.Report.History)
	if err != nil {
		return nil, fmt.Errorf("report.history: %w", err)
	}
	return h, nil
}

// NewMonitor returns the live monitor server for collector, or nil
// when the monitor is disabled.
func (c *Config) NewMonitor(
	collector *monitor.EventCollector,
	logger logging.Logger,
) *monitor.Server {
	if !c.Monitor.Enabled {
		return nil
	}
	return monitor.NewServer(
		c.Monitor.Addr,
		collector,
		monitor.NewDashboardData(""),
		monitor.WithServerLogger(logger),
	)
}
