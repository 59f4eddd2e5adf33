// comply/pkg/engine/checklist.go

package engine

import (
	"rgehrsitz/comply/pkg/expr"
	"rgehrsitz/comply/pkg/logging"
	"rgehrsitz/comply/pkg/rules"
)

// BuildContext flattens a checklist into the expression evaluation context.
// Entries without an id are skipped.
func BuildContext(checks []Check) map[string]interface{} {
	ctx := make(map[string]interface{}, len(checks))
	for _, c := range checks {
		if c.ID == "" {
			continue
		}
		ctx[c.ID] = c.Value
	}
	return ctx
}

// EvaluateChecklist scores a checklist against an expression-form ruleset.
// A rule whose expression fails to parse or evaluate is recorded as ERROR
// and the remaining rules still run.
func EvaluateChecklist(ruleList []rules.ExprRule, checks []Check) ChecklistResult {
	ctx := BuildContext(checks)

	result := ChecklistResult{Total: len(ruleList)}
	for _, rule := range ruleList {
		detail := ChecklistDetail{Control: rule.ControlID, Rule: rule.Rule}

		value, err := expr.Evaluate(rule.Rule, ctx)
		switch {
		case err != nil:
			logging.Logger.Warn().Err(err).Str("control", rule.ControlID).Str("rule", rule.Rule).Msg("Expression evaluation failed")
			detail.Status = StatusError
		case expr.Truthy(value):
			detail.Status = StatusPass
			result.Passed++
		default:
			detail.Status = StatusFail
		}
		result.Details = append(result.Details, detail)
	}

	if result.Total > 0 {
		// Whole-percentage truncation, matching the upload endpoint's
		// historical behavior.
		result.Score = int(float64(result.Passed) / float64(result.Total) * 100)
	}
	return result
}
