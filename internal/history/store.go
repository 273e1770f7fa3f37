// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package history persists run results in a SQLite database so that past
// runs can be listed, inspected and pruned.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tombee/gherkit/pkg/errors"
)

// Run is one stored test run.
type Run struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Status    string        `json:"status"`
	Scenarios int           `json:"scenarios"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Undefined int           `json:"undefined"`
	Pending   int           `json:"pending"`
	Skipped   int           `json:"skipped"`

	// Results is only populated by GetRun.
	Results []ScenarioRecord `json:"results,omitempty"`
}

// ScenarioRecord is the stored outcome of one scenario.
type ScenarioRecord struct {
	Feature  string        `json:"feature"`
	Scenario string        `json:"scenario"`
	Line     int           `json:"line"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

// Config configures the store.
type Config struct {
	// Path is the database file, or ":memory:".
	Path string

	// MaxOpenConns caps the connection pool. Defaults to 5.
	MaxOpenConns int
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database and applies
// migrations.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, &errors.ConfigError{Key: "history.path", Reason: "database path is empty"}
	}

	connStr := cfg.Path
	if cfg.Path != ":memory:" {
		connStr += "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	maxConns := cfg.MaxOpenConns
	if maxConns == 0 {
		maxConns = 5
	}
	// every :memory: connection gets its own database
	if cfg.Path == ":memory:" {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL,
			status TEXT NOT NULL,
			scenarios INTEGER NOT NULL,
			passed INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			undefined INTEGER NOT NULL,
			pending INTEGER NOT NULL,
			skipped INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE TABLE IF NOT EXISTS scenario_results (
			run_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			feature TEXT NOT NULL,
			scenario TEXT NOT NULL,
			line INTEGER NOT NULL,
			status TEXT NOT NULL,
			duration_ns INTEGER NOT NULL,
			error TEXT,
			PRIMARY KEY (run_id, position),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scenario_results_status ON scenario_results(status)`,
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveRun stores a run and its scenario records in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		return &errors.ValidationError{Field: "id", Message: "run id is required"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, duration_ns, status, scenarios,
			passed, failed, undefined, pending, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixNano(), int64(run.Duration), run.Status, run.Scenarios,
		run.Passed, run.Failed, run.Undefined, run.Pending, run.Skipped,
	)
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}

	for i, r := range run.Results {
		var errText *string
		if r.Error != "" {
			errText = &r.Error
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO scenario_results (run_id, position, feature, scenario, line,
				status, duration_ns, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, r.Feature, r.Scenario, r.Line, r.Status, int64(r.Duration), errText,
		)
		if err != nil {
			return fmt.Errorf("failed to store scenario result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, duration_ns, status, scenarios, passed, failed, undefined, pending, skipped`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run       Run
		startedAt int64
		duration  int64
	)
	err := row.Scan(&run.ID, &startedAt, &duration, &run.Status, &run.Scenarios,
		&run.Passed, &run.Failed, &run.Undefined, &run.Pending, &run.Skipped)
	if err != nil {
		return nil, err
	}
	run.StartedAt = time.Unix(0, startedAt)
	run.Duration = time.Duration(duration)
	return &run, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns the run whose id starts with prefix, with its scenario
// records. A prefix matching several runs is rejected.
func (s *Store) GetRun(ctx context.Context, prefix string) (*Run, error) {
	if prefix == "" {
		return nil, &errors.ValidationError{Field: "id", Message: "run id is required"}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`,
		escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, &errors.NotFoundError{Resource: "run", ID: prefix}
	case 2:
		return nil, &errors.ValidationError{
			Field:       "id",
			Message:     fmt.Sprintf("run id prefix %q is ambiguous", prefix),
			SuggestText: "Use more characters of the run id",
		}
	}

	run := matches[0]
	run.Results, err = s.scenarioRecords(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) scenarioRecords(ctx context.Context, runID string) ([]ScenarioRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT feature, scenario, line, status, duration_ns, error
		FROM scenario_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenario results: %w", err)
	}
	defer rows.Close()

	var records []ScenarioRecord
	for rows.Next() {
		var (
			r        ScenarioRecord
			duration int64
			errText  sql.NullString
		)
		if err := rows.Scan(&r.Feature, &r.Scenario, &r.Line, &r.Status, &duration, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan scenario result: %w", err)
		}
		r.Duration = time.Duration(duration)
		r.Error = errText.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// Prune deletes all but the newest keep runs and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, &errors.ValidationError{Field: "keep", Message: "must not be negative"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// foreign_keys is per connection, so child rows are removed explicitly
	const stale = `SELECT id FROM runs ORDER BY started_at DESC, id LIMIT -1 OFFSET ?`
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM scenario_results WHERE run_id IN (`+stale+`)`, keep); err != nil {
		return 0, fmt.Errorf("failed to prune scenario results: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id IN (`+stale+`)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
