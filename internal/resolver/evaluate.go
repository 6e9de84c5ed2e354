package resolver

import "fmt"

// Rule evaluation reasons. These strings are part of the audit contract:
// pipeline runs are explained to reviewers from these diagnostics, so the
// wording is fixed.
const (
	reasonUnconditional = "no when condition (unconditional match)"
	reasonNotEvaluated  = "earlier rule already matched (rule not evaluated)"
)

// evaluateRules walks the resolver's rules strictly in order and stops at
// the first match. It returns the winning rule (nil if none matched) and
// one RuleDiagnostic per rule: evaluation results up to and including the
// winner, then "not evaluated" entries for the rest.
//
// A condition that fails to evaluate aborts the walk with an
// *ExpressionError; the diagnostics collected so far are still returned.
func evaluateRules(res Resolver, req Request) (*Rule, []RuleDiagnostic, error) {
	vars := Vars{
		Period:  req.PeriodID,
		Table:   req.TableName,
		Dataset: req.DatasetID,
	}

	diags := make([]RuleDiagnostic, 0, len(res.Rules))
	for i := range res.Rules {
		rule := &res.Rules[i]
		rd := RuleDiagnostic{RuleName: rule.Name}

		if rule.When == nil {
			rd.Matched = true
			rd.Reason = reasonUnconditional
			diags = append(diags, rd)
			return rule, appendSkipped(diags, res.Rules[i+1:]), nil
		}

		rd.Expression = rule.When.Source()
		verdict, err := rule.When.Eval(vars)
		if err != nil {
			rd.Reason = fmt.Sprintf("when: %s could not be evaluated: %v", rd.Expression, err)
			diags = append(diags, rd)
			return nil, diags, &ExpressionError{RuleName: rule.Name, Reason: err.Error()}
		}

		if verdict.Matched {
			rd.Matched = true
			rd.Reason = fmt.Sprintf("when: %s evaluated to true", rd.Expression)
			diags = append(diags, rd)
			return rule, appendSkipped(diags, res.Rules[i+1:]), nil
		}

		if verdict.FailedVar != "" {
			rd.Reason = fmt.Sprintf("when: %s evaluated to false (%s='%s')",
				rd.Expression, verdict.FailedVar, verdict.FailedValue)
		} else {
			// Constant-false conditions have no failing variable.
			rd.Reason = fmt.Sprintf("when: %s evaluated to false", rd.Expression)
		}
		diags = append(diags, rd)
	}

	return nil, diags, nil
}

// appendSkipped records the rules after the winner as not evaluated.
func appendSkipped(diags []RuleDiagnostic, rest []Rule) []RuleDiagnostic {
	for i := range rest {
		rd := RuleDiagnostic{
			RuleName: rest[i].Name,
			Reason:   reasonNotEvaluated,
		}
		if rest[i].When != nil {
			rd.Expression = rest[i].When.Source()
		}
		diags = append(diags, rd)
	}
	return diags
}
