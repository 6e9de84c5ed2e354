package resolver

import (
	"fmt"

	"github.com/leapstack-labs/ledgerpipe/internal/calendar"
)

// expandPeriods determines the periods a resolution must address for the
// matched rule's data level. Expansion only ever refines: the target level
// is either "any" (no traversal), the requested period's own level, or a
// strictly finer level reachable through the supplied period set. A
// non-empty reason indicates failure.
//
// The returned periods are in chronological order: descent recurses
// through children already sorted by sequence, so a depth-first walk
// yields the leaves in calendar order.
func expandPeriods(cal *calendar.Calendar, periods *calendar.PeriodSet, periodID, dataLevel string) ([]*calendar.Period, string) {
	requested, ok := periods.Get(periodID)
	if !ok {
		return nil, fmt.Sprintf("requested period %q not in supplied period set", periodID)
	}

	if dataLevel == DataLevelAny || dataLevel == requested.Level {
		return []*calendar.Period{requested}, ""
	}

	if !cal.HasLevel(dataLevel) {
		return nil, fmt.Sprintf("data level %q not defined in calendar %q", dataLevel, cal.ID())
	}
	if !cal.HasLevel(requested.Level) {
		return nil, fmt.Sprintf("period %q has level %q not defined in calendar %q",
			requested.ID, requested.Level, cal.ID())
	}
	if !cal.Finer(dataLevel, requested.Level) {
		return nil, fmt.Sprintf("data level %q is coarser than requested period level %q (expansion only refines)",
			dataLevel, requested.Level)
	}

	var out []*calendar.Period
	if reason := collectDescendants(cal, periods, requested, dataLevel, &out); reason != "" {
		return nil, reason
	}
	return out, ""
}

// collectDescendants walks down from period to every descendant at the
// target level, appending leaves in sequence order. Every branch must
// reach the target level: a period with no children before the target is
// a gap in the supplied set and fails the whole expansion.
func collectDescendants(cal *calendar.Calendar, periods *calendar.PeriodSet, period *calendar.Period, target string, out *[]*calendar.Period) string {
	if period.Level == target {
		*out = append(*out, period)
		return ""
	}

	children := periods.Children(period.ID)
	if len(children) == 0 {
		return fmt.Sprintf("period %q has no descendant periods at level %q in the supplied set",
			period.ID, target)
	}

	for _, child := range children {
		// Guard against period sets that descend past the target or
		// wander to a level outside the requested branch.
		if !cal.Finer(child.Level, period.Level) {
			return fmt.Sprintf("period %q has child %q at level %q, which is not finer than %q",
				period.ID, child.ID, child.Level, period.Level)
		}
		if cal.Finer(child.Level, target) {
			return fmt.Sprintf("period %q skips level %q: child %q is at finer level %q",
				period.ID, target, child.ID, child.Level)
		}
		if reason := collectDescendants(cal, periods, child, target, out); reason != "" {
			return reason
		}
	}
	return ""
}
