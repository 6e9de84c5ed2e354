// Package audit persists resolution results and diagnostics into a
// run-scoped SQLite record. The resolver engine itself never writes here;
// recording is a caller decision, made after resolve returns.
package audit

import (
	"time"

	"github.com/leapstack-labs/ledgerpipe/internal/resolver"
)

// Run is one recorded pipeline run.
type Run struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Resolution is one recorded resolve call, success or failure.
type Resolution struct {
	ID         string              `json:"id"`
	RunID      string              `json:"run_id"`
	DatasetID  string              `json:"dataset_id"`
	TableName  string              `json:"table_name"`
	PeriodID   string              `json:"period_id"`
	ResolverID string              `json:"resolver_id,omitempty"`
	RuleName   string              `json:"rule_name,omitempty"`
	Outcome    resolver.Outcome    `json:"outcome"`
	Diagnostic resolver.Diagnostic `json:"diagnostic"`
	Locations  []resolver.Location `json:"locations,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// Store records runs and resolutions.
type Store interface {
	// Open opens the store at the given path (":memory:" supported).
	Open(path string) error
	// InitSchema creates the audit tables if they do not exist.
	InitSchema() error
	// Close releases the underlying database.
	Close() error

	// BeginRun creates a new run and returns its ID.
	BeginRun(projectID string) (string, error)
	// RecordResult persists a successful resolution with its locations.
	RecordResult(runID string, req resolver.Request, result *resolver.Result) (string, error)
	// RecordFailure persists a failed resolution with the diagnostic
	// carried by the resolution error.
	RecordFailure(runID string, req resolver.Request, resErr error) (string, error)

	// ListRuns returns all runs, newest first.
	ListRuns() ([]Run, error)
	// ListResolutions returns a run's resolutions in recording order,
	// including their locations.
	ListResolutions(runID string) ([]Resolution, error)
}
