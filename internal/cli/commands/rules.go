package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ledgerpipe/internal/cli/output"
	"github.com/leapstack-labs/ledgerpipe/internal/resolver"
)

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules [resolver]",
		Short: "List resolvers and their rules",
		Long: `List every resolver with its ordered rules, or a single resolver.

Rules are shown in evaluation order: the first rule whose condition holds
wins, so order is part of the resolver's meaning.`,
		Example: `  # List all resolvers
  ledgerpipe rules

  # Show one resolver
  ledgerpipe rules sales_rules

  # JSON output
  ledgerpipe rules -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runRules(cmd, name)
		},
	}
}

// ruleView is the JSON shape of one rule.
type ruleView struct {
	Position  int    `json:"position"`
	Name      string `json:"name"`
	When      string `json:"when,omitempty"`
	DataLevel string `json:"data_level"`
	Strategy  string `json:"strategy"`
	Location  string `json:"location_template"`
}

// resolverView is the JSON shape of one resolver.
type resolverView struct {
	ID    string     `json:"id"`
	Rules []ruleView `json:"rules"`
}

func runRules(cmd *cobra.Command, name string) error {
	c, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	store, err := loadMetadata(c)
	if err != nil {
		return err
	}

	var resolvers []resolver.Resolver
	if name != "" {
		res, ok := store.Resolver(name)
		if !ok {
			return fmt.Errorf("unknown resolver %q", name)
		}
		resolvers = []resolver.Resolver{res}
	} else {
		resolvers = store.Resolvers()
	}

	views := make([]resolverView, 0, len(resolvers))
	for _, res := range resolvers {
		view := resolverView{ID: res.ID}
		for i, rule := range res.Rules {
			when := ""
			if rule.When != nil {
				when = rule.When.Source()
			}
			kind, location := describeStrategy(rule.Strategy)
			view.Rules = append(view.Rules, ruleView{
				Position:  i + 1,
				Name:      rule.Name,
				When:      when,
				DataLevel: rule.DataLevel,
				Strategy:  kind,
				Location:  location,
			})
		}
		views = append(views, view)
	}

	if c.Renderer.Mode() == output.ModeJSON {
		return c.Renderer.JSON(views)
	}

	for _, view := range views {
		c.Renderer.Printf("resolver %s (%d rules)\n", view.ID, len(view.Rules))
		rows := make([]table.Row, 0, len(view.Rules))
		for _, r := range view.Rules {
			when := r.When
			if when == "" {
				when = "(unconditional)"
			}
			rows = append(rows, table.Row{r.Position, r.Name, when, r.DataLevel, r.Strategy, r.Location})
		}
		c.Renderer.Table(table.Row{"#", "rule", "when", "data level", "strategy", "template"}, rows)
		c.Renderer.Println()
	}
	return nil
}

// describeStrategy returns the strategy kind and its primary template.
func describeStrategy(s resolver.Strategy) (kind, location string) {
	switch v := s.(type) {
	case resolver.PathStrategy:
		return "path", v.PathTemplate
	case resolver.TableStrategy:
		if v.SchemaTemplate != "" {
			return "table", v.SchemaTemplate + "." + v.TableTemplate
		}
		return "table", v.TableTemplate
	case resolver.CatalogStrategy:
		return "catalog", v.EndpointTemplate
	}
	return "unknown", ""
}
