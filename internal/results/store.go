// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package results persists fit runs in a SQLite database and tabulates
// parameter estimates across engines and methods. This is where the
// two-toolchain comparison is assembled: each run is recorded with its
// engine, method, and objective value, and Compare pivots the estimates
// into one row per parameter. Implements: prd004-results;
//
//	docs/ARCHITECTURE § Results Store.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/kinetics-engine/pkg/types"
)

const (
	indexDir  = "index"
	chartsDir = "charts"
	dbFile    = "results.db"

	// Fixed-width fractional seconds keep textual ORDER BY chronological.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store manages the fit results SQLite database.
type Store struct {
	db         *sql.DB
	resultsDir string
	maxResults int
}

// NewStore opens or creates the results database at
// resultsDir/index/results.db, creating the schema if needed.
func NewStore(cfg types.ResultsConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.ResultsDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	s := &Store{
		db:         db,
		resultsDir: cfg.ResultsDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			engine TEXT NOT NULL,
			method TEXT NOT NULL,
			objective REAL,
			duration_ms INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS estimates (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			reaction_id TEXT,
			parameter TEXT NOT NULL,
			value REAL NOT NULL,
			std_dev REAL,
			unit TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_estimates_run_id ON estimates(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_estimates_parameter ON estimates(parameter)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_document ON runs(document)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a fit run and its estimates, assigning a run ID when the
// result carries none. Returns the run ID.
func (s *Store) Record(ctx context.Context, result types.FitResult) (string, error) {
	runID := result.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	// Stored in UTC; mixed offsets would break the textual ordering.
	ts := result.Timestamp.UTC()
	if result.Timestamp.IsZero() {
		ts = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, document, engine, method, objective, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, result.Document, result.Engine, result.Method,
		result.Objective, result.Duration.Milliseconds(), ts.Format(timestampLayout),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO estimates (run_id, reaction_id, parameter, value, std_dev, unit)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range result.Estimates {
		if _, err := stmt.ExecContext(ctx,
			runID, e.ReactionID, e.Parameter, e.Value, e.StdDev, e.Unit,
		); err != nil {
			return "", fmt.Errorf("inserting estimate %s: %w", e.Parameter, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// QueryOptions filters result retrieval.
type QueryOptions struct {
	// Document filters by document name.
	Document string

	// Engine filters by engine name.
	Engine string

	// Method filters by optimization method.
	Method string

	// Parameter keeps only runs that estimated the named parameter.
	Parameter string

	// MaxResults limits run count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether no filters are set.
func (q QueryOptions) IsEmpty() bool {
	return q.Document == "" && q.Engine == "" && q.Method == "" && q.Parameter == ""
}

// Retrieve returns recorded runs, newest first, with their estimates
// loaded.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.FitResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	query := `SELECT id, document, engine, method, objective, duration_ms, created_at
		FROM runs WHERE 1=1`
	var args []any

	if opts.Document != "" {
		query += ` AND document = ?`
		args = append(args, opts.Document)
	}
	if opts.Engine != "" {
		query += ` AND engine = ?`
		args = append(args, opts.Engine)
	}
	if opts.Method != "" {
		query += ` AND method = ?`
		args = append(args, opts.Method)
	}
	if opts.Parameter != "" {
		query += ` AND EXISTS (SELECT 1 FROM estimates e WHERE e.run_id = runs.id AND e.parameter = ?)`
		args = append(args, opts.Parameter)
	}

	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var results []types.FitResult
	for rows.Next() {
		var (
			r          types.FitResult
			durationMS int64
			createdAt  string
		)
		if err := rows.Scan(&r.RunID, &r.Document, &r.Engine, &r.Method,
			&r.Objective, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		ts, err := time.Parse(timestampLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing run timestamp %q: %w", createdAt, err)
		}
		r.Timestamp = ts
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range results {
		estimates, err := s.estimatesForRun(ctx, results[i].RunID)
		if err != nil {
			return nil, err
		}
		results[i].Estimates = estimates
	}

	return results, nil
}

func (s *Store) estimatesForRun(ctx context.Context, runID string) ([]types.ParameterEstimate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT reaction_id, parameter, value, std_dev, unit
		 FROM estimates WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying estimates: %w", err)
	}
	defer rows.Close()

	var estimates []types.ParameterEstimate
	for rows.Next() {
		var (
			e        types.ParameterEstimate
			reaction sql.NullString
			unit     sql.NullString
		)
		if err := rows.Scan(&reaction, &e.Parameter, &e.Value, &e.StdDev, &unit); err != nil {
			return nil, fmt.Errorf("scanning estimate: %w", err)
		}
		e.ReactionID = reaction.String
		e.Unit = unit.String
		estimates = append(estimates, e)
	}
	return estimates, rows.Err()
}
