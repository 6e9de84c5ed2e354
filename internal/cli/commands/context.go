// Package commands implements the LedgerPipe subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ledgerpipe/internal/cli/output"
	"github.com/leapstack-labs/ledgerpipe/internal/config"
	"github.com/leapstack-labs/ledgerpipe/internal/metadata"
)

// Context carries the loaded configuration, logger and renderer from the
// root command into subcommands.
type Context struct {
	Config   *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

type contextKey struct{}

// WithContext attaches the command context.
func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromCommand retrieves the command context set up by the root command.
func FromCommand(cmd *cobra.Command) (*Context, error) {
	c, ok := cmd.Context().Value(contextKey{}).(*Context)
	if !ok || c == nil {
		return nil, fmt.Errorf("command context not initialized")
	}
	return c, nil
}

// loadMetadata loads the metadata store configured for this invocation.
func loadMetadata(c *Context) (*metadata.Store, error) {
	store, err := metadata.Load(c.Config.MetadataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	c.Logger.Debug("metadata loaded",
		"dir", c.Config.MetadataDir,
		"datasets", len(store.Datasets()),
		"resolvers", len(store.Resolvers()),
		"periods", store.Periods().Len())
	return store, nil
}
