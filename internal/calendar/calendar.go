// Package calendar provides the period-hierarchy types used by the resolver
// engine: a Calendar of named granularity levels (coarse to fine) and the
// Period instances a caller supplies for one resolution.
package calendar

import "fmt"

// Calendar defines an ordered hierarchy of period levels, coarsest first
// (e.g. year, quarter, month). It holds no period instances; it only
// answers parent/child questions between levels.
type Calendar struct {
	id     string
	levels []string
	depth  map[string]int
}

// New creates a Calendar from an ordered list of levels, coarsest first.
func New(id string, levels []string) (*Calendar, error) {
	if id == "" {
		return nil, fmt.Errorf("calendar id is required")
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("calendar %q has no levels", id)
	}

	depth := make(map[string]int, len(levels))
	for i, level := range levels {
		if level == "" {
			return nil, fmt.Errorf("calendar %q: level %d is empty", id, i)
		}
		if _, dup := depth[level]; dup {
			return nil, fmt.Errorf("calendar %q: duplicate level %q", id, level)
		}
		depth[level] = i
	}

	return &Calendar{
		id:     id,
		levels: append([]string(nil), levels...),
		depth:  depth,
	}, nil
}

// ID returns the calendar identifier.
func (c *Calendar) ID() string {
	return c.id
}

// Levels returns the levels in hierarchy order, coarsest first.
func (c *Calendar) Levels() []string {
	return append([]string(nil), c.levels...)
}

// HasLevel reports whether the named level exists in this calendar.
func (c *Calendar) HasLevel(level string) bool {
	_, ok := c.depth[level]
	return ok
}

// Depth returns the position of a level in the hierarchy (0 = coarsest).
func (c *Calendar) Depth(level string) (int, bool) {
	d, ok := c.depth[level]
	return d, ok
}

// Finer reports whether level a is strictly finer grained than level b.
// Returns false if either level is unknown.
func (c *Calendar) Finer(a, b string) bool {
	da, oka := c.depth[a]
	db, okb := c.depth[b]
	return oka && okb && da > db
}
