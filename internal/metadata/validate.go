package metadata

import (
	"fmt"

	"github.com/leapstack-labs/ledgerpipe/internal/resolver"
)

// Severity classifies a validation issue.
type Severity string

// Issue severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one referential-integrity finding from Validate.
type Issue struct {
	Severity Severity `json:"severity"`
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Subject, i.Message)
}

// Validate runs referential checks across the loaded metadata and returns
// every finding. Load already guarantees the documents parse and rule
// conditions compile; Validate covers the cross-references a single
// document cannot see.
func (s *Store) Validate() []Issue {
	var issues []Issue

	errorf := func(subject, format string, args ...any) {
		issues = append(issues, Issue{Severity: SeverityError, Subject: subject, Message: fmt.Sprintf(format, args...)})
	}
	warnf := func(subject, format string, args ...any) {
		issues = append(issues, Issue{Severity: SeverityWarning, Subject: subject, Message: fmt.Sprintf(format, args...)})
	}

	// Dataset references.
	for _, id := range s.datasetOrder {
		ds := s.datasets[id]
		subject := "dataset " + ds.ID
		if ds.ResolverID != "" {
			if _, ok := s.resolvers[ds.ResolverID]; !ok {
				errorf(subject, "references unknown resolver %q", ds.ResolverID)
			}
		} else if s.defaultResolver == "" {
			warnf(subject, "has no resolver and no system default is configured")
		}
		if ds.CalendarID != "" {
			if _, ok := s.calendars[ds.CalendarID]; !ok {
				errorf(subject, "references unknown calendar %q", ds.CalendarID)
			}
		} else if len(s.calendars) > 1 {
			errorf(subject, "must reference a calendar (%d defined)", len(s.calendars))
		}
	}

	// Project overrides.
	for _, project := range s.projects {
		subject := "project " + project.ID
		for datasetID, resolverID := range project.Overrides {
			if _, ok := s.datasets[datasetID]; !ok {
				errorf(subject, "overrides unknown dataset %q", datasetID)
			}
			if _, ok := s.resolvers[resolverID]; !ok {
				errorf(subject, "overrides dataset %q with unknown resolver %q", datasetID, resolverID)
			}
		}
	}

	// System default.
	if s.defaultResolver != "" {
		if _, ok := s.resolvers[s.defaultResolver]; !ok {
			errorf("default_resolver", "resolver %q is not defined", s.defaultResolver)
		}
	}

	// Rule data levels and datasources.
	for _, resolverID := range s.resolverOrder {
		res := s.resolvers[resolverID]
		for _, rule := range res.Rules {
			subject := fmt.Sprintf("resolver %s, rule %s", res.ID, rule.Name)
			if rule.DataLevel != resolver.DataLevelAny && !s.anyCalendarHasLevel(rule.DataLevel) {
				errorf(subject, "data level %q is not defined in any calendar", rule.DataLevel)
			}
			if id := strategyDatasource(rule); id != "" {
				if _, ok := s.datasources[id]; !ok {
					errorf(subject, "references unknown datasource %q", id)
				}
			}
		}
	}

	// Period levels and parents.
	for _, p := range s.periods {
		subject := "period " + p.ID
		if !s.anyCalendarHasLevel(p.Level) {
			errorf(subject, "level %q is not defined in any calendar", p.Level)
		}
		if p.ParentID != "" {
			if _, ok := s.periodSet.Get(p.ParentID); !ok {
				errorf(subject, "references unknown parent period %q", p.ParentID)
			}
		}
	}

	return issues
}

// HasErrors reports whether any issue in the slice is an error.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// strategyDatasource extracts the datasource ID from any strategy variant.
func strategyDatasource(rule resolver.Rule) string {
	switch s := rule.Strategy.(type) {
	case resolver.PathStrategy:
		return s.DatasourceID
	case resolver.TableStrategy:
		return s.DatasourceID
	case resolver.CatalogStrategy:
		return s.DatasourceID
	}
	return ""
}

func (s *Store) anyCalendarHasLevel(level string) bool {
	for _, cal := range s.calendars {
		if cal.HasLevel(level) {
			return true
		}
	}
	return false
}
