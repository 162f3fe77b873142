package db

import (
	"database/sql"
	"fmt"
)

// ScanRun represents a row in the scan_runs table.
type ScanRun struct {
	ID         int
	Repo       string
	PR         int
	Command    string
	Mode       string
	ExitCode   int
	ReportURL  string
	URLSource  string
	Truncated  bool
	Passed     bool
	DurationMs int
	Timestamp  string
}

// ActionEvent represents a row in the action_events table.
type ActionEvent struct {
	ID        int
	RunID     int
	Event     string
	Detail    string
	Timestamp string
}

// Stats aggregates run history for a repo (or everything when repo is empty).
type Stats struct {
	Runs           int
	Passed         int
	URLsRecovered  int
	MeanDurationMs int
}

// PassRate returns the fraction of runs that passed the gate.
func (s Stats) PassRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Runs)
}

// URLRecoveryRate returns the fraction of runs that yielded a report URL.
func (s Stats) URLRecoveryRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.URLsRecovered) / float64(s.Runs)
}

// InsertRun records one scanner run and returns its row id.
func (d *DB) InsertRun(r *ScanRun) (int, error) {
	res, err := d.conn.Exec(
		`INSERT INTO scan_runs (repo, pr, command, mode, exit_code, report_url, url_source, truncated, passed, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Repo, r.PR, r.Command, r.Mode, r.ExitCode, r.ReportURL, r.URLSource, r.Truncated, r.Passed, r.DurationMs,
	)
	if err != nil {
		return 0, fmt.Errorf("insert scan run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("scan run id: %w", err)
	}
	return int(id), nil
}

// LogEvent appends a lifecycle event, optionally attached to a run.
func (d *DB) LogEvent(runID int, event, detail string) error {
	var run any
	if runID > 0 {
		run = runID
	}
	_, err := d.conn.Exec(
		`INSERT INTO action_events (run_id, event, detail) VALUES (?, ?, ?)`,
		run, event, detail,
	)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// LatestRun returns the most recent run for a repo/PR, nil if none. Zero
// values for repo/pr match everything.
func (d *DB) LatestRun(repo string, pr int) (*ScanRun, error) {
	rows, err := d.Runs(repo, pr, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Runs returns the most recent runs for a repo/PR, newest first. Empty repo
// and zero pr act as wildcards.
func (d *DB) Runs(repo string, pr int, limit int) ([]ScanRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(
		`SELECT id, repo, pr, command, mode, exit_code, report_url, url_source, truncated, passed, duration_ms, timestamp
		 FROM scan_runs
		 WHERE (? = '' OR repo = ?) AND (? = 0 OR pr = ?)
		 ORDER BY timestamp DESC, id DESC LIMIT ?`,
		repo, repo, pr, pr, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []ScanRun
	for rows.Next() {
		var r ScanRun
		if err := rows.Scan(&r.ID, &r.Repo, &r.PR, &r.Command, &r.Mode, &r.ExitCode,
			&r.ReportURL, &r.URLSource, &r.Truncated, &r.Passed, &r.DurationMs, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun returns one run by id, nil if not found.
func (d *DB) GetRun(id int) (*ScanRun, error) {
	row := d.conn.QueryRow(
		`SELECT id, repo, pr, command, mode, exit_code, report_url, url_source, truncated, passed, duration_ms, timestamp
		 FROM scan_runs WHERE id = ?`, id)
	var r ScanRun
	err := row.Scan(&r.ID, &r.Repo, &r.PR, &r.Command, &r.Mode, &r.ExitCode,
		&r.ReportURL, &r.URLSource, &r.Truncated, &r.Passed, &r.DurationMs, &r.Timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &r, nil
}

// Events returns the lifecycle events for a run, oldest first.
func (d *DB) Events(runID int) ([]ActionEvent, error) {
	rows, err := d.conn.Query(
		`SELECT id, COALESCE(run_id, 0), event, COALESCE(detail, ''), timestamp
		 FROM action_events WHERE run_id = ? ORDER BY timestamp, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []ActionEvent
	for rows.Next() {
		var e ActionEvent
		if err := rows.Scan(&e.ID, &e.RunID, &e.Event, &e.Detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetStats aggregates history for a repo; empty repo aggregates everything.
func (d *DB) GetStats(repo string) (*Stats, error) {
	row := d.conn.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(passed), 0),
		        COALESCE(SUM(report_url != ''), 0),
		        COALESCE(CAST(AVG(duration_ms) AS INTEGER), 0)
		 FROM scan_runs WHERE (? = '' OR repo = ?)`,
		repo, repo,
	)
	var s Stats
	if err := row.Scan(&s.Runs, &s.Passed, &s.URLsRecovered, &s.MeanDurationMs); err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return &s, nil
}
