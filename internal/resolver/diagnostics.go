package resolver

// Source records how the resolver handed to Resolve was selected upstream.
// It is carried through for audit only; precedence logic lives in the
// metadata layer.
type Source string

// Resolver selection sources, in precedence order.
const (
	SourceProjectOverride  Source = "project_override"
	SourceDatasetReference Source = "dataset_reference"
	SourceSystemDefault    Source = "system_default"
)

// Outcome is the terminal state of one Resolve call.
type Outcome string

// Resolution outcomes.
const (
	OutcomeResolved          Outcome = "resolved"
	OutcomeNoMatchingRule    Outcome = "no_matching_rule"
	OutcomeExpansionFailed   Outcome = "expansion_failed"
	OutcomeRenderFailed      Outcome = "render_failed"
	OutcomeInvalidExpression Outcome = "invalid_expression"
)

// RuleDiagnostic records the evaluation of one rule, in resolver order.
// Rules after the winner are still listed, with a reason stating they were
// not evaluated.
type RuleDiagnostic struct {
	RuleName   string `json:"rule_name"`
	Matched    bool   `json:"matched"`
	Reason     string `json:"reason"`
	Expression string `json:"expression,omitempty"`
}

// Diagnostic is the full audit trail of one Resolve call. It is attached
// to the Result on success and to every error variant on failure; the
// engine never discards it.
type Diagnostic struct {
	ResolverID      string           `json:"resolver_id"`
	Source          Source           `json:"resolver_source"`
	EvaluatedRules  []RuleDiagnostic `json:"evaluated_rules"`
	Outcome         Outcome          `json:"outcome"`
	ExpandedPeriods []string         `json:"expanded_periods,omitempty"`
}
