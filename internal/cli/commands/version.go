package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ledgerpipe/internal/cli/output"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, buildDate, gitCommit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := FromCommand(cmd)
			if err != nil {
				return err
			}
			if c.Renderer.Mode() == output.ModeJSON {
				return c.Renderer.JSON(map[string]string{
					"version":    version,
					"build_date": buildDate,
					"git_commit": gitCommit,
				})
			}
			c.Renderer.Printf("ledgerpipe %s (built %s, commit %s)\n", version, buildDate, gitCommit)
			return nil
		},
	}
}
