package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ledgerpipe/internal/calendar"
	"github.com/leapstack-labs/ledgerpipe/internal/cli/output"
)

// NewPeriodsCommand creates the periods command.
func NewPeriodsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "periods <period>",
		Short: "Show a period and its descendants",
		Long: `Display a period's subtree: every descendant period in calendar order,
with levels, date ranges and sequence keys. This is the exact set a
resolution of that period can expand into.`,
		Example: `  # Show a quarter and its months
  ledgerpipe periods 2024-Q1

  # Show a full year
  ledgerpipe periods 2024 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPeriods(cmd, args[0])
		},
	}
}

// periodView is the JSON shape of one period node.
type periodView struct {
	ID       string       `json:"id"`
	Name     string       `json:"name,omitempty"`
	Level    string       `json:"level"`
	Start    string       `json:"start,omitempty"`
	End      string       `json:"end,omitempty"`
	Sequence int          `json:"sequence"`
	Children []periodView `json:"children,omitempty"`
}

func runPeriods(cmd *cobra.Command, periodID string) error {
	c, err := FromCommand(cmd)
	if err != nil {
		return err
	}
	store, err := loadMetadata(c)
	if err != nil {
		return err
	}

	set := store.Periods()
	root, ok := set.Get(periodID)
	if !ok {
		return fmt.Errorf("unknown period %q", periodID)
	}

	if c.Renderer.Mode() == output.ModeJSON {
		return c.Renderer.JSON(buildPeriodView(set, root))
	}

	printPeriodTree(c.Renderer, set, root, 0)
	return nil
}

func buildPeriodView(set *calendar.PeriodSet, p *calendar.Period) periodView {
	view := periodView{
		ID:       p.ID,
		Name:     p.Name,
		Level:    p.Level,
		Start:    formatDate(p.Start),
		End:      formatDate(p.End),
		Sequence: p.Sequence,
	}
	for _, child := range set.Children(p.ID) {
		view.Children = append(view.Children, buildPeriodView(set, child))
	}
	return view
}

func printPeriodTree(r *output.Renderer, set *calendar.PeriodSet, p *calendar.Period, depth int) {
	indent := strings.Repeat("  ", depth)
	span := ""
	if !p.Start.IsZero() || !p.End.IsZero() {
		span = fmt.Sprintf(" [%s .. %s]", formatDate(p.Start), formatDate(p.End))
	}
	r.Printf("%s%s (%s, seq %d)%s\n", indent, p.ID, p.Level, p.Sequence, span)
	for _, child := range set.Children(p.ID) {
		printPeriodTree(r, set, child, depth+1)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
