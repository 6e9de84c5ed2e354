// Package cli provides the command-line interface for LedgerPipe.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ledgerpipe/internal/cli/commands"
	"github.com/leapstack-labs/ledgerpipe/internal/cli/output"
	"github.com/leapstack-labs/ledgerpipe/internal/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "ledgerpipe",
		Short: "LedgerPipe - Financial Pipeline Engine",
		Long: `LedgerPipe is a configuration-driven computation engine for financial
and accounting pipelines.

It maps logical dataset requests to physical storage locations through
ordered resolution rules, expands periods along calendar hierarchies, and
keeps a full audit trail of every resolution.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			if cfg.Verbose {
				logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: slog.LevelDebug,
				}))
			}

			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))

			ctx := commands.WithContext(cmd.Context(), &commands.Context{
				Config:   cfg,
				Logger:   logger,
				Renderer: renderer,
			})
			cmd.SetContext(ctx)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ledgerpipe.yaml, searched upward)")
	flags.String("metadata-dir", "", "Metadata directory (default: metadata)")
	flags.String("audit-path", "", "Audit database path (default: .ledgerpipe/audit.db)")
	flags.String("project", "", "Active project for resolver overrides")
	flags.StringP("output", "o", "", "Output format: table, json")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewResolveCommand(),
		commands.NewRulesCommand(),
		commands.NewPeriodsCommand(),
		commands.NewValidateCommand(),
		commands.NewRunsCommand(),
		commands.NewVersionCommand(Version, BuildDate, GitCommit),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
