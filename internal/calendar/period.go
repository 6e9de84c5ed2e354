package calendar

import (
	"fmt"
	"sort"
	"time"
)

// Period is one concrete time span at a calendar level. Periods link to
// their parent by ID; the resolver engine never derives parentage from
// dates.
type Period struct {
	// ID is the unique period identifier, e.g. "2024-Q1".
	ID string
	// Name is the display name, e.g. "Q1 2024". Defaults to ID if empty.
	Name string
	// Level names the calendar level this period belongs to.
	Level string
	// ParentID links to the enclosing coarser period. Empty for roots.
	ParentID string
	// Start and End bound the period (inclusive start, inclusive end).
	Start time.Time
	End   time.Time
	// Sequence orders siblings chronologically. Must be unique among
	// the children of one parent.
	Sequence int
}

// DisplayName returns Name, falling back to ID.
func (p *Period) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// PeriodSet is an immutable, indexed collection of periods supplied by the
// caller for a single resolution: the requested period plus every
// descendant any rule might need.
type PeriodSet struct {
	byID     map[string]*Period
	children map[string][]*Period
}

// NewPeriodSet indexes the given periods. It rejects duplicate period IDs
// and sibling periods with equal sequence keys: the supplied set must have
// a total order, otherwise expansion results would not be reproducible.
func NewPeriodSet(periods []Period) (*PeriodSet, error) {
	set := &PeriodSet{
		byID:     make(map[string]*Period, len(periods)),
		children: make(map[string][]*Period),
	}

	for i := range periods {
		p := periods[i]
		if p.ID == "" {
			return nil, fmt.Errorf("period %d has no id", i)
		}
		if p.Level == "" {
			return nil, fmt.Errorf("period %q has no level", p.ID)
		}
		if _, dup := set.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate period id %q", p.ID)
		}
		set.byID[p.ID] = &p
		if p.ParentID != "" {
			set.children[p.ParentID] = append(set.children[p.ParentID], &p)
		}
	}

	// A cycle in the parent links would make descendant walks loop
	// forever, so reject it up front.
	for id := range set.byID {
		seen := make(map[string]bool)
		for cur := id; cur != ""; {
			if seen[cur] {
				return nil, fmt.Errorf("period parent cycle involving %q", cur)
			}
			seen[cur] = true
			p, ok := set.byID[cur]
			if !ok {
				break
			}
			cur = p.ParentID
		}
	}

	// Sort siblings by sequence and reject ties.
	for parentID, siblings := range set.children {
		sort.SliceStable(siblings, func(i, j int) bool {
			return siblings[i].Sequence < siblings[j].Sequence
		})
		for i := 1; i < len(siblings); i++ {
			if siblings[i].Sequence == siblings[i-1].Sequence {
				return nil, fmt.Errorf(
					"periods %q and %q under parent %q share sequence %d",
					siblings[i-1].ID, siblings[i].ID, parentID, siblings[i].Sequence)
			}
		}
	}

	return set, nil
}

// Get returns the period with the given ID.
func (s *PeriodSet) Get(id string) (*Period, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// Children returns the direct child periods of the given period ID,
// ordered by sequence. Returns nil if the period has no children in the set.
func (s *PeriodSet) Children(id string) []*Period {
	return s.children[id]
}

// Len returns the number of periods in the set.
func (s *PeriodSet) Len() int {
	return len(s.byID)
}
