package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/ledgerpipe/internal/audit"
	"github.com/leapstack-labs/ledgerpipe/internal/cli/output"
	"github.com/leapstack-labs/ledgerpipe/internal/resolver"
)

// ResolveOptions holds options for the resolve command.
type ResolveOptions struct {
	Record bool
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand() *cobra.Command {
	opts := &ResolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve <dataset> <period> <table> [table...]",
		Short: "Resolve tables to physical locations",
		Long: `Resolve one or more tables of a dataset for a period.

The resolver is selected by precedence: a project override (--project),
the dataset's own resolver reference, then the system default. Each
resolution prints the resolved locations and the full rule-evaluation
trail. Multiple tables are resolved concurrently.`,
		Example: `  # Resolve one table
  ledgerpipe resolve sales 2024-Q1 orders

  # Resolve several tables at once
  ledgerpipe resolve sales 2024-Q1 orders refunds invoices

  # Resolve under a project override and record to the audit store
  ledgerpipe resolve sales 2024-Q1 orders --project restatement-2024 --record

  # JSON output
  ledgerpipe resolve sales 2024-Q1 orders -o json`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args[0], args[1], args[2:], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Record, "record", false, "Record results in the audit store")

	return cmd
}

// tableResolution is the outcome of resolving one table.
type tableResolution struct {
	Table      string               `json:"table"`
	Result     *resolver.Result     `json:"result,omitempty"`
	Err        error                `json:"-"`
	Error      string               `json:"error,omitempty"`
	Diagnostic *resolver.Diagnostic `json:"diagnostic,omitempty"`
}

func runResolve(cmd *cobra.Command, datasetID, periodID string, tables []string, opts *ResolveOptions) error {
	c, err := FromCommand(cmd)
	if err != nil {
		return err
	}

	store, err := loadMetadata(c)
	if err != nil {
		return err
	}

	projectID := c.Config.Project
	res, source, err := store.SelectResolver(datasetID, projectID)
	if err != nil {
		return fmt.Errorf("resolver selection failed: %w", err)
	}
	c.Logger.Debug("resolver selected", "resolver_id", res.ID, "source", string(source))

	cal, err := store.CalendarFor(datasetID)
	if err != nil {
		return err
	}
	periods, err := store.PeriodsFor(periodID)
	if err != nil {
		return err
	}

	// Resolve is pure, so tables can run concurrently against the shared
	// store. Results land in input order.
	results := make([]tableResolution, len(tables))
	g, _ := errgroup.WithContext(cmd.Context())
	for i, tbl := range tables {
		i, tbl := i, tbl
		g.Go(func() error {
			req := resolver.Request{
				DatasetID: datasetID,
				TableName: tbl,
				PeriodID:  periodID,
				ProjectID: projectID,
			}
			result, err := resolver.Resolve(req, res, source, cal, periods)
			results[i] = tableResolution{Table: tbl, Result: result, Err: err}
			if err != nil {
				results[i].Error = err.Error()
				if diag, ok := resolver.DiagnosticOf(err); ok {
					results[i].Diagnostic = &diag
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if opts.Record {
		if err := recordResults(c, datasetID, periodID, projectID, results); err != nil {
			return err
		}
	}

	failures := 0
	for _, tr := range results {
		if tr.Err != nil {
			failures++
		}
	}

	if c.Renderer.Mode() == output.ModeJSON {
		if err := c.Renderer.JSON(map[string]any{
			"dataset":         datasetID,
			"period":          periodID,
			"resolver_id":     res.ID,
			"resolver_source": source,
			"tables":          results,
		}); err != nil {
			return err
		}
	} else {
		for _, tr := range results {
			printResolution(c.Renderer, tr)
		}
	}

	// The exit status reflects failures in either output mode.
	if failures > 0 {
		return fmt.Errorf("%d of %d tables failed to resolve", failures, len(results))
	}
	return nil
}

// printResolution renders one table's locations and its diagnostic trail.
func printResolution(r *output.Renderer, tr tableResolution) {
	if tr.Err != nil {
		r.Printf("table %s: FAILED: %v\n", tr.Table, tr.Err)
		if tr.Diagnostic != nil {
			printTrail(r, *tr.Diagnostic)
		}
		r.Println()
		return
	}

	result := tr.Result
	r.Printf("table %s: %d location(s) via resolver %s\n",
		tr.Table, len(result.Locations), result.Diagnostic.ResolverID)

	rows := make([]table.Row, 0, len(result.Locations))
	for _, loc := range result.Locations {
		rows = append(rows, table.Row{
			loc.PeriodID, loc.DatasourceID, loc.Path, loc.Schema, loc.Table, loc.RuleName,
		})
	}
	r.Table(table.Row{"period", "datasource", "path", "schema", "table", "rule"}, rows)

	printTrail(r, result.Diagnostic)
	r.Println()
}

// printTrail renders the rule-evaluation trail of a diagnostic.
func printTrail(r *output.Renderer, diag resolver.Diagnostic) {
	r.Printf("rule trail (%s, source %s, outcome %s):\n",
		diag.ResolverID, diag.Source, diag.Outcome)
	for _, rd := range diag.EvaluatedRules {
		mark := " "
		if rd.Matched {
			mark = "*"
		}
		r.Printf("  %s %-24s %s\n", mark, rd.RuleName, rd.Reason)
	}
}

// recordResults writes every resolution of this invocation under one run.
func recordResults(c *Context, datasetID, periodID, projectID string, results []tableResolution) error {
	auditPath := c.Config.AuditPath
	if dir := filepath.Dir(auditPath); dir != "." && auditPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}

	store := audit.NewSQLiteStore(c.Logger)
	if err := store.Open(auditPath); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	if err := store.InitSchema(); err != nil {
		return err
	}

	runID, err := store.BeginRun(projectID)
	if err != nil {
		return err
	}

	for _, tr := range results {
		req := resolver.Request{
			DatasetID: datasetID,
			TableName: tr.Table,
			PeriodID:  periodID,
			ProjectID: projectID,
		}
		if tr.Err != nil {
			if _, err := store.RecordFailure(runID, req, tr.Err); err != nil {
				return fmt.Errorf("failed to record failure for table %s: %w", tr.Table, err)
			}
			continue
		}
		if _, err := store.RecordResult(runID, req, tr.Result); err != nil {
			return fmt.Errorf("failed to record result for table %s: %w", tr.Table, err)
		}
	}

	c.Logger.Debug("run recorded", "run_id", runID, "resolutions", len(results))
	c.Renderer.Errorf("recorded run %s (%d resolutions)\n", runID, len(results))
	return nil
}
