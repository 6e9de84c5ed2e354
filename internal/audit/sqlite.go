package audit

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/leapstack-labs/ledgerpipe/internal/resolver"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite audit store instance.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SQLiteStore{logger: logger}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open audit database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping audit database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("audit store opened", "path", path)
	return nil
}

// InitSchema initializes the audit tables.
func (s *SQLiteStore) InitSchema() error {
	if s.db == nil {
		return fmt.Errorf("audit database not opened")
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize audit schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginRun creates a new run and returns its ID.
func (s *SQLiteStore) BeginRun(projectID string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(
		"INSERT INTO runs (id, project_id, created_at) VALUES (?, ?, ?)",
		id, projectID, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	s.logger.Debug("run started", "run_id", id, "project_id", projectID)
	return id, nil
}

// RecordResult persists a successful resolution with its locations in a
// single transaction: either the whole record lands or none of it does.
func (s *SQLiteStore) RecordResult(runID string, req resolver.Request, result *resolver.Result) (string, error) {
	ruleName := ""
	if len(result.Locations) > 0 {
		ruleName = result.Locations[0].RuleName
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := insertResolution(tx, runID, req, result.Diagnostic, ruleName)
	if err != nil {
		return "", err
	}

	for i, loc := range result.Locations {
		_, err := tx.Exec(
			`INSERT INTO locations (resolution_id, seq, datasource_id, path, table_name, schema_name, period_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, loc.DatasourceID, loc.Path, loc.Table, loc.Schema, loc.PeriodID)
		if err != nil {
			return "", fmt.Errorf("failed to record location %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit resolution: %w", err)
	}

	return id, nil
}

// RecordFailure persists a failed resolution using the diagnostic the
// resolution error carries. Errors without a diagnostic are rejected:
// only resolver errors belong in the audit record.
func (s *SQLiteStore) RecordFailure(runID string, req resolver.Request, resErr error) (string, error) {
	diag, ok := resolver.DiagnosticOf(resErr)
	if !ok {
		return "", fmt.Errorf("error carries no resolution diagnostic: %w", resErr)
	}
	return insertResolution(s.db, runID, req, diag, "")
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertResolution(db execer, runID string, req resolver.Request, diag resolver.Diagnostic, ruleName string) (string, error) {
	raw, err := json.Marshal(diag)
	if err != nil {
		return "", fmt.Errorf("failed to encode diagnostic: %w", err)
	}

	id := uuid.New().String()
	_, err = db.Exec(
		`INSERT INTO resolutions (id, run_id, dataset_id, table_name, period_id, resolver_id, rule_name, outcome, diagnostic, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, runID, req.DatasetID, req.TableName, req.PeriodID,
		diag.ResolverID, ruleName, string(diag.Outcome), string(raw), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to record resolution: %w", err)
	}
	return id, nil
}

// ListRuns returns all runs, newest first.
func (s *SQLiteStore) ListRuns() ([]Run, error) {
	rows, err := s.db.Query("SELECT id, project_id, created_at FROM runs ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListResolutions returns a run's resolutions in recording order.
func (s *SQLiteStore) ListResolutions(runID string) ([]Resolution, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, dataset_id, table_name, period_id, resolver_id, rule_name, outcome, diagnostic, created_at
		 FROM resolutions WHERE run_id = ? ORDER BY created_at, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resolutions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var resolutions []Resolution
	for rows.Next() {
		var r Resolution
		var rawDiag string
		var outcome string
		if err := rows.Scan(&r.ID, &r.RunID, &r.DatasetID, &r.TableName, &r.PeriodID,
			&r.ResolverID, &r.RuleName, &outcome, &rawDiag, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resolution: %w", err)
		}
		r.Outcome = resolver.Outcome(outcome)
		if err := json.Unmarshal([]byte(rawDiag), &r.Diagnostic); err != nil {
			return nil, fmt.Errorf("failed to decode diagnostic for resolution %s: %w", r.ID, err)
		}
		resolutions = append(resolutions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range resolutions {
		locations, err := s.listLocations(resolutions[i].ID)
		if err != nil {
			return nil, err
		}
		// Traceability fields are stored once per resolution.
		for j := range locations {
			locations[j].ResolverID = resolutions[i].ResolverID
			locations[j].RuleName = resolutions[i].RuleName
		}
		resolutions[i].Locations = locations
	}
	return resolutions, nil
}

func (s *SQLiteStore) listLocations(resolutionID string) ([]resolver.Location, error) {
	rows, err := s.db.Query(
		`SELECT datasource_id, path, table_name, schema_name, period_id
		 FROM locations WHERE resolution_id = ? ORDER BY seq`, resolutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var locations []resolver.Location
	for rows.Next() {
		var loc resolver.Location
		if err := rows.Scan(&loc.DatasourceID, &loc.Path, &loc.Table, &loc.Schema, &loc.PeriodID); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}
