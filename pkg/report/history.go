package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"digital.vasic.praspel/pkg/registry"
	"digital.vasic.praspel/pkg/runner"
)

// HistoryEntry is one recorded subject run.
type HistoryEntry struct {
	ID             int64         `json:"id"`
	RunID          string        `json:"run_id"`
	SubjectID      registry.ID   `json:"subject_id"`
	Checker        string        `json:"checker"`
	Status         string        `json:"status"`
	Seed           uint64        `json:"seed"`
	Trials         int           `json:"trials"`
	PassedTrials   int           `json:"passed_trials"`
	FailedTrials   int           `json:"failed_trials"`
	TimedOutTrials int           `json:"timed_out_trials"`
	ErroredTrials  int           `json:"errored_trials"`
	Error          string        `json:"error,omitempty"`
	StartTime      time.Time     `json:"start_time"`
	Duration       time.Duration `json:"duration"`
}

// StoredFailure is a recorded non-passing trial.
type StoredFailure struct {
	Trial   int            `json:"trial"`
	Outcome string         `json:"outcome"`
	Data    map[string]any `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
}

// HistoryStore keeps run results in an SQLite database.
type HistoryStore struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// OpenHistory opens the history database at path, creating the
// parent directories and applying pending migrations.
func OpenHistory(path string) (*HistoryStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// A single connection keeps ":memory:" databases intact.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	h := &HistoryStore{conn: conn, path: path}
	if err := h.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return h, nil
}

// Path returns the database file path.
func (h *HistoryStore) Path() string { return h.path }

// Close closes the database connection.
func (h *HistoryStore) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn.Close()
}

func (h *HistoryStore) migrate() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	row := h.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Runs},
		{2, migrationV2Failures},
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := h.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_version (version) VALUES (?)", m.version,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Seeds are stored as decimal text since they may exceed int64.
// Times are unix nanoseconds.
const migrationV1Runs = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	subject_id TEXT NOT NULL,
	checker TEXT NOT NULL,
	status TEXT NOT NULL,
	seed TEXT NOT NULL,
	trials INTEGER NOT NULL DEFAULT 0,
	passed INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	timed_out INTEGER NOT NULL DEFAULT 0,
	errored INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	started_at INTEGER NOT NULL,
	duration_ns INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_subject ON runs(subject_id, started_at);
CREATE INDEX IF NOT EXISTS idx_runs_run_id ON runs(run_id);
`

const migrationV2Failures = `
CREATE TABLE IF NOT EXISTS failures (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	trial INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	data TEXT,
	message TEXT
);

CREATE INDEX IF NOT EXISTS idx_failures_run ON failures(run);
`

// Record stores result and its recorded failing trials and
// returns the entry id.
func (h *HistoryStore) Record(
	ctx context.Context,
	result *runner.Result,
) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tx, err := h.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, subject_id, checker, status, seed,
			trials, passed, failed, timed_out, errored,
			error, started_at, duration_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, string(result.SubjectID), result.Checker,
		result.Status, strconv.FormatUint(result.Seed, 10),
		result.Trials, result.PassedTrials, result.FailedTrials,
		result.TimedOutTrials, result.ErroredTrials,
		result.Error, result.StartTime.UnixNano(),
		int64(result.Duration),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, t := range result.Failures {
		data, err := json.Marshal(t.Data)
		if err != nil {
			return 0, fmt.Errorf("encode trial %d data: %w", t.Index, err)
		}
		msg := t.Error
		if msg == "" && len(t.Failures) > 0 {
			msg = t.Failures[0]
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO failures (run, trial, outcome, data, message)
			VALUES (?, ?, ?, ?, ?)`,
			id, t.Index, t.Outcome, string(data), msg,
		); err != nil {
			return 0, fmt.Errorf("insert trial %d: %w", t.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return id, nil
}

// History returns the most recent runs of a subject, newest
// first. A limit <= 0 returns every run.
func (h *HistoryStore) History(
	ctx context.Context,
	subjectID registry.ID,
	limit int,
) ([]HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := h.conn.QueryContext(ctx, `
		SELECT id, run_id, subject_id, checker, status, seed,
			trials, passed, failed, timed_out, errored,
			COALESCE(error, ''), started_at, duration_ns
		FROM runs
		WHERE subject_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?`,
		string(subjectID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var (
			e        HistoryEntry
			subject  string
			seed     string
			started  int64
			duration int64
		)
		if err := rows.Scan(
			&e.ID, &e.RunID, &subject, &e.Checker, &e.Status, &seed,
			&e.Trials, &e.PassedTrials, &e.FailedTrials,
			&e.TimedOutTrials, &e.ErroredTrials,
			&e.Error, &started, &duration,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Seed, err = strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse seed of run %d: %w", e.ID, err)
		}
		e.SubjectID = registry.ID(subject)
		e.StartTime = time.Unix(0, started)
		e.Duration = time.Duration(duration)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Failures returns the stored failing trials of a history entry
// in trial order.
func (h *HistoryStore) Failures(
	ctx context.Context,
	entryID int64,
) ([]StoredFailure, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rows, err := h.conn.QueryContext(ctx, `
		SELECT trial, outcome, COALESCE(data, ''), COALESCE(message, '')
		FROM failures
		WHERE run = ?
		ORDER BY trial`,
		entryID,
	)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	var out []StoredFailure
	for rows.Next() {
		var (
			f    StoredFailure
			data string
		)
		if err := rows.Scan(&f.Trial, &f.Outcome, &data, &f.Message); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		if data != "" && data != "null" {
			if err := json.Unmarshal([]byte(data), &f.Data); err != nil {
				return nil, fmt.Errorf("decode trial %d data: %w", f.Trial, err)
			}
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// PostHook returns a runner hook that records every finished run.
func (h *HistoryStore) PostHook() runner.Hook {
	return func(ctx context.Context, _ *registry.Subject, result *runner.Result) error {
		_, err := h.Record(ctx, result)
		return err
	}
}
