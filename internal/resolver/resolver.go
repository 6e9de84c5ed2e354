// Package resolver implements the resolver engine: it maps a logical
// request (dataset, table, period) to one or more physical storage
// locations by evaluating an ordered set of conditional rules, expanding
// the requested period to a finer granularity when a rule asks for one,
// and rendering the matched rule's location templates.
//
// Resolve is a pure function: no I/O, no logging, no shared state. Many
// resolutions may run concurrently against the same Resolver, Calendar
// and PeriodSet.
package resolver

import "github.com/leapstack-labs/ledgerpipe/internal/calendar"

// DataLevelAny is the sentinel data level meaning "resolve the requested
// period as-is, without calendar expansion".
const DataLevelAny = "any"

// Request identifies the logical data being resolved. It is immutable
// and scoped to a single Resolve call.
type Request struct {
	// DatasetID names the logical dataset.
	DatasetID string
	// TableName names the table within the dataset.
	TableName string
	// PeriodID references a period in the supplied PeriodSet.
	PeriodID string
	// ProjectID is carried for diagnostics only; resolver selection by
	// project happens upstream.
	ProjectID string
}

// Resolver is a named, ordered list of rules. Rule order is semantically
// significant: the first rule whose condition holds wins.
type Resolver struct {
	ID    string
	Rules []Rule
}

// Rule is one entry in a Resolver.
type Rule struct {
	// Name is unique within the Resolver.
	Name string
	// When is the optional match condition. A nil When matches
	// unconditionally.
	When Condition
	// DataLevel is the target period granularity, or DataLevelAny.
	DataLevel string
	// Strategy produces the physical location shape.
	Strategy Strategy
}

// Vars are the context variables a rule condition is evaluated against.
// All are strings.
type Vars struct {
	Period  string
	Table   string
	Dataset string
}

// Verdict is the outcome of evaluating a condition. When Matched is
// false, FailedVar/FailedValue identify the variable that caused the
// first failing comparison, for the audit trail.
type Verdict struct {
	Matched     bool
	FailedVar   string
	FailedValue string
}

// Condition is a pre-compiled boolean predicate over Vars. Implementations
// are supplied by the expression compiler; the engine only evaluates them.
type Condition interface {
	// Source returns the original expression text.
	Source() string
	// Eval evaluates the predicate. An error means the expression could
	// not be evaluated at all (not that it evaluated to false).
	Eval(vars Vars) (Verdict, error)
}

// Location is one resolved physical address. Exactly the fields relevant
// to the matched rule's strategy are populated; the rest stay empty.
type Location struct {
	DatasourceID string `json:"datasource_id"`
	Path         string `json:"path,omitempty"`
	Table        string `json:"table,omitempty"`
	Schema       string `json:"schema,omitempty"`
	PeriodID     string `json:"period_id,omitempty"`

	// Traceability: always populated from the winning rule.
	ResolverID string `json:"resolver_id"`
	RuleName   string `json:"rule_name"`
}

// Result is a successful resolution: one Location per expanded period,
// in period sequence order, plus the full diagnostic trail.
type Result struct {
	Locations  []Location `json:"locations"`
	Diagnostic Diagnostic `json:"diagnostic"`
}

// Resolve maps the request to physical locations using the given resolver.
// The calendar and period set are caller-owned and read-only for the
// duration of the call. On failure the returned error is one of
// *NoMatchingRuleError, *ExpressionError, *ExpansionError or *RenderError,
// each carrying the diagnostic accumulated up to the failure point.
func Resolve(req Request, res Resolver, source Source, cal *calendar.Calendar, periods *calendar.PeriodSet) (*Result, error) {
	diag := Diagnostic{
		ResolverID: res.ID,
		Source:     source,
		Outcome:    OutcomeNoMatchingRule,
	}

	rule, ruleDiags, err := evaluateRules(res, req)
	diag.EvaluatedRules = ruleDiags
	if err != nil {
		if exprErr, ok := err.(*ExpressionError); ok {
			diag.Outcome = OutcomeInvalidExpression
			exprErr.Diagnostic = diag
			return nil, exprErr
		}
		return nil, err
	}
	if rule == nil {
		diag.Outcome = OutcomeNoMatchingRule
		return nil, &NoMatchingRuleError{ResolverID: res.ID, Diagnostic: diag}
	}

	expanded, reason := expandPeriods(cal, periods, req.PeriodID, rule.DataLevel)
	if reason != "" {
		diag.Outcome = OutcomeExpansionFailed
		return nil, &ExpansionError{RuleName: rule.Name, Reason: reason, Diagnostic: diag}
	}
	diag.ExpandedPeriods = make([]string, len(expanded))
	for i, p := range expanded {
		diag.ExpandedPeriods[i] = p.ID
	}

	locations := make([]Location, 0, len(expanded))
	for _, period := range expanded {
		loc, err := dispatch(res.ID, *rule, req, period)
		if err != nil {
			if renderErr, ok := err.(*RenderError); ok {
				diag.Outcome = OutcomeRenderFailed
				renderErr.Diagnostic = diag
				return nil, renderErr
			}
			return nil, err
		}
		locations = append(locations, loc)
	}

	diag.Outcome = OutcomeResolved
	return &Result{Locations: locations, Diagnostic: diag}, nil
}
