package resolver

import "fmt"

// NoMatchingRuleError indicates no rule's condition held. The diagnostic
// lists every rule with its evaluation reason.
type NoMatchingRuleError struct {
	ResolverID string
	Diagnostic Diagnostic
}

func (e *NoMatchingRuleError) Error() string {
	return fmt.Sprintf("resolver %q: no rule matched (%d rules evaluated)",
		e.ResolverID, len(e.Diagnostic.EvaluatedRules))
}

// ExpansionError indicates the matched rule's data level is unreachable
// from the requested period: coarser than the request, unknown to the
// calendar, or missing descendant periods in the supplied set.
type ExpansionError struct {
	RuleName   string
	Reason     string
	Diagnostic Diagnostic
}

func (e *ExpansionError) Error() string {
	return fmt.Sprintf("rule %q: period expansion failed: %s", e.RuleName, e.Reason)
}

// RenderError indicates a location template referenced a token the engine
// does not recognize. Partial renders are never returned.
type RenderError struct {
	RuleName   string
	Token      string
	Template   string
	Diagnostic Diagnostic
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rule %q: template %q references unknown token %q",
		e.RuleName, e.Template, e.Token)
}

// ExpressionError indicates a when condition could not be evaluated
// against the request context. This is distinct from the condition
// evaluating to false.
type ExpressionError struct {
	RuleName   string
	Reason     string
	Diagnostic Diagnostic
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("rule %q: invalid when expression: %s", e.RuleName, e.Reason)
}

// DiagnosticOf extracts the diagnostic carried by a resolution error.
// Every error returned by Resolve carries one.
func DiagnosticOf(err error) (Diagnostic, bool) {
	switch e := err.(type) {
	case *NoMatchingRuleError:
		return e.Diagnostic, true
	case *ExpansionError:
		return e.Diagnostic, true
	case *RenderError:
		return e.Diagnostic, true
	case *ExpressionError:
		return e.Diagnostic, true
	default:
		return Diagnostic{}, false
	}
}
