// Package report keeps a ledger of suite runs in SQLite, exports run metrics
// in the Prometheus text format and renders run summaries as XLSX or HTML.
package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/gotrs-io/recruitment-e2e/internal/scenario"
)

// ErrRunNotFound is returned when no run matches an ID or prefix.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	suite       TEXT NOT NULL,
	engine      TEXT NOT NULL,
	base_url    TEXT NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP
);
CREATE TABLE IF NOT EXISTS results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	case_id     TEXT NOT NULL,
	test        TEXT NOT NULL,
	priority    TEXT NOT NULL,
	status      TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL,
	started_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
`

// Run is one invocation of the suite.
type Run struct {
	ID         string       `db:"id"`
	Suite      string       `db:"suite"`
	Engine     string       `db:"engine"`
	BaseURL    string       `db:"base_url"`
	StartedAt  time.Time    `db:"started_at"`
	FinishedAt sql.NullTime `db:"finished_at"`
}

// RunSummary is a run with its result counts.
type RunSummary struct {
	Run
	Passed  int `db:"passed"`
	Skipped int `db:"skipped"`
	Failed  int `db:"failed"`
}

// Total is the number of recorded cases.
func (r RunSummary) Total() int { return r.Passed + r.Skipped + r.Failed }

// Result is one recorded case outcome.
type Result struct {
	RunID      string    `db:"run_id"`
	CaseID     string    `db:"case_id"`
	Test       string    `db:"test"`
	Priority   string    `db:"priority"`
	Status     string    `db:"status"`
	Reason     string    `db:"reason"`
	DurationMS int64     `db:"duration_ms"`
	StartedAt  time.Time `db:"started_at"`
}

func (r Result) Duration() time.Duration { return time.Duration(r.DurationMS) * time.Millisecond }

// Store is the SQLite run ledger.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the ledger at path. ":memory:" gives a private
// in-memory ledger.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create ledger dir: %w", err)
		}
		dsn = "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
	}
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	// Every connection to ":memory:" is a different database.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate ledger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// StartRun inserts a new run with a fresh ID.
func (s *Store) StartRun(ctx context.Context, suite, engine, baseURL string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Suite:     suite,
		Engine:    engine,
		BaseURL:   baseURL,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO runs (id, suite, engine, base_url, started_at)
		VALUES (:id, :suite, :engine, :base_url, :started_at)`, run)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return run, nil
}

// FinishRun stamps the run's end time.
func (s *Store) FinishRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET finished_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// AddResult records o against run id.
func (s *Store) AddResult(ctx context.Context, runID string, o scenario.Outcome) error {
	r := Result{
		RunID:      runID,
		CaseID:     o.ID,
		Test:       o.Test,
		Priority:   o.Priority,
		Status:     string(o.Status),
		Reason:     o.Reason,
		DurationMS: o.Duration.Milliseconds(),
		StartedAt:  o.Started.UTC(),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO results (run_id, case_id, test, priority, status, reason, duration_ms, started_at)
		VALUES (:run_id, :case_id, :test, :priority, :status, :reason, :duration_ms, :started_at)`, r)
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", o.ID, err)
	}
	return nil
}

const summaryColumns = `
	r.id, r.suite, r.engine, r.base_url, r.started_at, r.finished_at,
	COALESCE(SUM(x.status = 'passed'), 0)  AS passed,
	COALESCE(SUM(x.status = 'skipped'), 0) AS skipped,
	COALESCE(SUM(x.status = 'failed'), 0)  AS failed`

// Runs lists the most recent runs first. limit <= 0 lists all.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	q := `SELECT` + summaryColumns + `
		FROM runs r LEFT JOIN results x ON x.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	var runs []RunSummary
	if err := s.db.SelectContext(ctx, &runs, q, args...); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Run finds a run by ID or unique ID prefix.
func (s *Store) Run(ctx context.Context, idOrPrefix string) (*RunSummary, error) {
	var runs []RunSummary
	err := s.db.SelectContext(ctx, &runs, `SELECT`+summaryColumns+`
		FROM runs r LEFT JOIN results x ON x.run_id = r.id
		WHERE substr(r.id, 1, length(?)) = ?
		GROUP BY r.id
		LIMIT 2`, idOrPrefix, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}
	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return &runs[0], nil
	default:
		return nil, fmt.Errorf("run prefix %q is ambiguous", idOrPrefix)
	}
}

// Latest returns the most recent run.
func (s *Store) Latest(ctx context.Context) (*RunSummary, error) {
	runs, err := s.Runs(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return &runs[0], nil
}

// Results returns the outcomes of a run in recording order.
func (s *Store) Results(ctx context.Context, runID string) ([]Result, error) {
	var out []Result
	err := s.db.SelectContext(ctx, &out, `
		SELECT run_id, case_id, test, priority, status, reason, duration_ms, started_at
		FROM results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	return out, nil
}
