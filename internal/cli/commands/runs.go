package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ledgerpipe/internal/audit"
	"github.com/leapstack-labs/ledgerpipe/internal/cli/output"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded runs and their resolutions",
		Long: `List the runs recorded in the audit store, or the resolutions of one
run including every resolved location and outcome.`,
		Example: `  # List all runs
  ledgerpipe runs

  # Show one run's resolutions
  ledgerpipe runs 2f1c9a6e-...

  # JSON output
  ledgerpipe runs -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runRuns(cmd, runID)
		},
	}
}

func runRuns(cmd *cobra.Command, runID string) error {
	c, err := FromCommand(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(c.Config.AuditPath); err != nil {
		return fmt.Errorf("no audit store at %s (run resolve --record first)", c.Config.AuditPath)
	}

	store := audit.NewSQLiteStore(c.Logger)
	if err := store.Open(c.Config.AuditPath); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if runID == "" {
		return listRuns(c, store)
	}
	return listResolutions(c, store, runID)
}

func listRuns(c *Context, store audit.Store) error {
	runs, err := store.ListRuns()
	if err != nil {
		return err
	}

	if c.Renderer.Mode() == output.ModeJSON {
		return c.Renderer.JSON(runs)
	}

	if len(runs) == 0 {
		c.Renderer.Println("no runs recorded")
		return nil
	}
	rows := make([]table.Row, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, table.Row{r.ID, r.ProjectID, r.CreatedAt.Format("2006-01-02 15:04:05")})
	}
	c.Renderer.Table(table.Row{"run", "project", "created"}, rows)
	return nil
}

func listResolutions(c *Context, store audit.Store, runID string) error {
	resolutions, err := store.ListResolutions(runID)
	if err != nil {
		return err
	}
	if len(resolutions) == 0 {
		return fmt.Errorf("no resolutions recorded for run %q", runID)
	}

	if c.Renderer.Mode() == output.ModeJSON {
		return c.Renderer.JSON(resolutions)
	}

	for _, res := range resolutions {
		c.Renderer.Printf("%s %s/%s @ %s: %s (resolver %s)\n",
			res.ID, res.DatasetID, res.TableName, res.PeriodID, res.Outcome, res.ResolverID)
		if len(res.Locations) > 0 {
			rows := make([]table.Row, 0, len(res.Locations))
			for _, loc := range res.Locations {
				rows = append(rows, table.Row{loc.PeriodID, loc.DatasourceID, loc.Path, loc.Schema, loc.Table})
			}
			c.Renderer.Table(table.Row{"period", "datasource", "path", "schema", "table"}, rows)
		}
		c.Renderer.Println()
	}
	return nil
}
