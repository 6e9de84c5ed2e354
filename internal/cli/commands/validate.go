package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ledgerpipe/internal/cli/output"
	"github.com/leapstack-labs/ledgerpipe/internal/metadata"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the project metadata",
		Long: `Check the metadata directory for referential problems: dangling
resolver, calendar, datasource and period references, data levels no
calendar defines, and datasets without any resolver in the precedence
chain.

Parse errors and invalid when-conditions are reported at load time;
validate covers everything a single document cannot see.`,
		Example: `  # Validate the current project
  ledgerpipe validate

  # Machine-readable report
  ledgerpipe validate -o json`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, _ []string) error {
	c, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	store, err := loadMetadata(c)
	if err != nil {
		return err
	}

	issues := store.Validate()

	if c.Renderer.Mode() == output.ModeJSON {
		if err := c.Renderer.JSON(map[string]any{
			"issues": issues,
			"errors": countSeverity(issues, metadata.SeverityError),
		}); err != nil {
			return err
		}
	} else if len(issues) == 0 {
		c.Renderer.Println("metadata OK: no issues found")
	} else {
		rows := make([]table.Row, 0, len(issues))
		for _, issue := range issues {
			rows = append(rows, table.Row{issue.Severity, issue.Subject, issue.Message})
		}
		c.Renderer.Table(table.Row{"severity", "subject", "message"}, rows)
	}

	if metadata.HasErrors(issues) {
		return fmt.Errorf("metadata validation failed: %d error(s)",
			countSeverity(issues, metadata.SeverityError))
	}
	return nil
}

func countSeverity(issues []metadata.Issue, severity metadata.Severity) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}
