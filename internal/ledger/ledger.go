// Package ledger keeps a SQLite history of sweeps: one row per run and one
// per WorkItem outcome, so results can be queried across many executions.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run describes one sweep execution.
type Run struct {
	ID           string
	StartedAt    time.Time
	Solver       string
	Corpus       string
	Combinations int
	WorkItems    int
}

// Outcome is the result of one WorkItem.
type Outcome struct {
	RunID       string
	Combination string
	Instance    string
	Outcome     string
	Kind        string
	Cause       string
	Duration    time.Duration
	MinCost     string
}

// Ledger is a handle to the ledger database. It is safe for concurrent use.
type Ledger struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	solver TEXT NOT NULL,
	corpus TEXT NOT NULL,
	combinations INTEGER NOT NULL,
	work_items INTEGER NOT NULL,
	failures INTEGER
);
CREATE TABLE IF NOT EXISTS outcomes (
	run_id TEXT NOT NULL REFERENCES runs(id),
	combination TEXT NOT NULL,
	instance TEXT NOT NULL,
	outcome TEXT NOT NULL,
	kind TEXT,
	cause TEXT,
	duration_ms INTEGER NOT NULL,
	min_cost TEXT,
	PRIMARY KEY (run_id, combination, instance)
);
CREATE INDEX IF NOT EXISTS idx_outcomes_instance ON outcomes(instance);
`

// Open opens or creates the ledger at path.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	// Workers write concurrently; SQLite takes one writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// BeginRun inserts the run row.
func (l *Ledger) BeginRun(ctx context.Context, r Run) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, solver, corpus, combinations, work_items) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC().Format(time.RFC3339Nano), r.Solver, r.Corpus, r.Combinations, r.WorkItems)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	return nil
}

// FinishRun stamps the run with its end time and failure count.
func (l *Ledger) FinishRun(ctx context.Context, id string, finishedAt time.Time, failures int) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, failures = ? WHERE id = ?`,
		finishedAt.UTC().Format(time.RFC3339Nano), failures, id)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", id, err)
	}
	return nil
}

// RecordOutcome stores a WorkItem outcome, replacing an earlier one for the
// same run, combination and instance.
func (l *Ledger) RecordOutcome(ctx context.Context, o Outcome) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO outcomes (run_id, combination, instance, outcome, kind, cause, duration_ms, min_cost)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.RunID, o.Combination, o.Instance, o.Outcome, o.Kind, o.Cause, o.Duration.Milliseconds(), o.MinCost)
	if err != nil {
		return fmt.Errorf("recording outcome for %s/%s: %w", o.Combination, o.Instance, err)
	}
	return nil
}

// Outcomes returns the outcomes of a run ordered by combination and instance.
func (l *Ledger) Outcomes(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, combination, instance, outcome, kind, cause, duration_ms, min_cost
		 FROM outcomes WHERE run_id = ? ORDER BY combination, instance`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var kind, cause, cost sql.NullString
		var ms int64
		if err := rows.Scan(&o.RunID, &o.Combination, &o.Instance, &o.Outcome, &kind, &cause, &ms, &cost); err != nil {
			return nil, err
		}
		o.Kind, o.Cause, o.MinCost = kind.String, cause.String, cost.String
		o.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, o)
	}
	return out, rows.Err()
}

// Failures returns the recorded failure count of a run, or -1 while the run
// is unfinished.
func (l *Ledger) Failures(ctx context.Context, runID string) (int, error) {
	var n sql.NullInt64
	err := l.db.QueryRowContext(ctx, `SELECT failures FROM runs WHERE id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, err
	}
	if !n.Valid {
		return -1, nil
	}
	return int(n.Int64), nil
}
