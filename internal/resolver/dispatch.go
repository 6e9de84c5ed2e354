package resolver

import (
	"fmt"

	"github.com/leapstack-labs/ledgerpipe/internal/calendar"
)

// dispatch renders the matched rule's strategy templates for one period
// and shapes the result into a Location. The type switch is exhaustive
// over the closed Strategy set.
func dispatch(resolverID string, rule Rule, req Request, period *calendar.Period) (Location, error) {
	loc := Location{
		PeriodID:   period.ID,
		ResolverID: resolverID,
		RuleName:   rule.Name,
	}

	switch s := rule.Strategy.(type) {
	case PathStrategy:
		loc.DatasourceID = s.DatasourceID
		values := tokenValues(req, period, s.DatasourceID)
		path, bad := renderTemplate(s.PathTemplate, values)
		if bad != "" {
			return Location{}, &RenderError{RuleName: rule.Name, Token: bad, Template: s.PathTemplate}
		}
		loc.Path = path

	case TableStrategy:
		loc.DatasourceID = s.DatasourceID
		values := tokenValues(req, period, s.DatasourceID)
		table, bad := renderTemplate(s.TableTemplate, values)
		if bad != "" {
			return Location{}, &RenderError{RuleName: rule.Name, Token: bad, Template: s.TableTemplate}
		}
		loc.Table = table
		if s.SchemaTemplate != "" {
			schema, bad := renderTemplate(s.SchemaTemplate, values)
			if bad != "" {
				return Location{}, &RenderError{RuleName: rule.Name, Token: bad, Template: s.SchemaTemplate}
			}
			loc.Schema = schema
		}

	case CatalogStrategy:
		loc.DatasourceID = s.DatasourceID
		values := tokenValues(req, period, s.DatasourceID)
		// Catalog endpoints travel in the path field.
		endpoint, bad := renderTemplate(s.EndpointTemplate, values)
		if bad != "" {
			return Location{}, &RenderError{RuleName: rule.Name, Token: bad, Template: s.EndpointTemplate}
		}
		loc.Path = endpoint

	default:
		return Location{}, fmt.Errorf("rule %q: unknown strategy type %T", rule.Name, rule.Strategy)
	}

	return loc, nil
}
