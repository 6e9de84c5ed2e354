package metadata

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/ledgerpipe/internal/calendar"
	"github.com/leapstack-labs/ledgerpipe/internal/resolver"
)

// SelectResolver picks the resolver for a dataset, applying the
// precedence chain: project override, then the dataset's own resolver
// reference, then the system default. The returned source records which
// step won, for the resolution audit trail.
func (s *Store) SelectResolver(datasetID, projectID string) (resolver.Resolver, resolver.Source, error) {
	ds, ok := s.datasets[datasetID]
	if !ok {
		return resolver.Resolver{}, "", fmt.Errorf("unknown dataset %q", datasetID)
	}

	if projectID != "" {
		project, ok := s.projects[projectID]
		if !ok {
			return resolver.Resolver{}, "", fmt.Errorf("unknown project %q", projectID)
		}
		if overrideID, ok := project.Overrides[datasetID]; ok {
			res, ok := s.resolvers[overrideID]
			if !ok {
				return resolver.Resolver{}, "", fmt.Errorf(
					"project %q overrides dataset %q with unknown resolver %q",
					projectID, datasetID, overrideID)
			}
			return res, resolver.SourceProjectOverride, nil
		}
	}

	if ds.ResolverID != "" {
		res, ok := s.resolvers[ds.ResolverID]
		if !ok {
			return resolver.Resolver{}, "", fmt.Errorf(
				"dataset %q references unknown resolver %q", datasetID, ds.ResolverID)
		}
		return res, resolver.SourceDatasetReference, nil
	}

	if s.defaultResolver != "" {
		res, ok := s.resolvers[s.defaultResolver]
		if !ok {
			return resolver.Resolver{}, "", fmt.Errorf(
				"default resolver %q is not defined", s.defaultResolver)
		}
		return res, resolver.SourceSystemDefault, nil
	}

	return resolver.Resolver{}, "", fmt.Errorf(
		"no resolver for dataset %q: no project override, dataset reference, or system default", datasetID)
}

// CalendarFor returns the calendar a dataset expands periods against.
// A dataset without an explicit calendar reference uses the project's
// only calendar; multiple calendars make the reference mandatory.
func (s *Store) CalendarFor(datasetID string) (*calendar.Calendar, error) {
	ds, ok := s.datasets[datasetID]
	if !ok {
		return nil, fmt.Errorf("unknown dataset %q", datasetID)
	}

	if ds.CalendarID != "" {
		cal, ok := s.calendars[ds.CalendarID]
		if !ok {
			return nil, fmt.Errorf("dataset %q references unknown calendar %q", datasetID, ds.CalendarID)
		}
		return cal, nil
	}

	if len(s.calendars) == 1 {
		for _, cal := range s.calendars {
			return cal, nil
		}
	}
	if len(s.calendars) == 0 {
		return nil, fmt.Errorf("no calendars defined")
	}
	return nil, fmt.Errorf("dataset %q must reference a calendar (%d defined)", datasetID, len(s.calendars))
}

// PeriodsFor materializes the period set for one request: the requested
// period plus every transitive descendant, per the metadata-store
// contract with the resolver engine.
func (s *Store) PeriodsFor(periodID string) (*calendar.PeriodSet, error) {
	root, ok := s.periodSet.Get(periodID)
	if !ok {
		return nil, fmt.Errorf("unknown period %q", periodID)
	}

	var collected []calendar.Period
	var walk func(p *calendar.Period)
	walk = func(p *calendar.Period) {
		collected = append(collected, *p)
		for _, child := range s.periodSet.Children(p.ID) {
			walk(child)
		}
	}
	walk(root)

	return calendar.NewPeriodSet(collected)
}

// Periods returns the full period set across the project.
func (s *Store) Periods() *calendar.PeriodSet {
	return s.periodSet
}

// Dataset returns a dataset by ID.
func (s *Store) Dataset(id string) (Dataset, bool) {
	ds, ok := s.datasets[id]
	return ds, ok
}

// Datasets returns all datasets in authored order.
func (s *Store) Datasets() []Dataset {
	out := make([]Dataset, 0, len(s.datasetOrder))
	for _, id := range s.datasetOrder {
		out = append(out, s.datasets[id])
	}
	return out
}

// Resolver returns a resolver by ID.
func (s *Store) Resolver(id string) (resolver.Resolver, bool) {
	res, ok := s.resolvers[id]
	return res, ok
}

// Resolvers returns all resolvers in authored order.
func (s *Store) Resolvers() []resolver.Resolver {
	out := make([]resolver.Resolver, 0, len(s.resolverOrder))
	for _, id := range s.resolverOrder {
		out = append(out, s.resolvers[id])
	}
	return out
}

// Datasources returns all datasources sorted by ID.
func (s *Store) Datasources() []Datasource {
	out := make([]Datasource, 0, len(s.datasources))
	for _, d := range s.datasources {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DefaultResolver returns the system default resolver ID, if configured.
func (s *Store) DefaultResolver() string {
	return s.defaultResolver
}
