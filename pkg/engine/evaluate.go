// comply/pkg/engine/evaluate.go

package engine

import (
	"fmt"
	"math"
	"reflect"

	"rgehrsitz/comply/pkg/logging"
	"rgehrsitz/comply/pkg/rules"
)

// EvaluateRule evaluates one structured rule against one configuration
// document. It never panics out: any unexpected failure during comparison
// becomes an ERROR verdict for this rule alone.
func EvaluateRule(rule rules.Rule, doc map[string]interface{}) (verdict Verdict) {
	verdict = Verdict{
		RuleID:      rule.ID,
		Description: rule.Description,
		Weight:      rule.Weight,
		Remediation: rule.Remediation,
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Logger.Error().Str("rule", rule.ID).Interface("panic", r).Msg("Rule evaluation panicked")
			verdict.Status = StatusError
			verdict.Contribution = 0
			verdict.Message = fmt.Sprintf("%v", r)
		}
	}()

	actual, ok := ResolveField(doc, rule.Field)
	if !ok || actual == nil {
		verdict.Status = StatusWarning
		verdict.Message = fmt.Sprintf("Missing field %s", rule.Field)
		return verdict
	}

	switch rule.Op {
	case rules.OpEqual:
		if equalValues(actual, rule.Value) {
			verdict.Status = StatusPass
			verdict.Contribution = rule.Weight
		} else {
			verdict.Status = StatusFail
			verdict.Message = fmt.Sprintf("Expected %v, got %v", rule.Value, actual)
		}
	case rules.OpGTE:
		holds, err := orderValues(actual, rule.Value, func(a, b float64) bool { return a >= b })
		if err != nil {
			verdict.Status = StatusError
			verdict.Message = err.Error()
		} else if holds {
			verdict.Status = StatusPass
			verdict.Contribution = rule.Weight
		} else {
			verdict.Status = StatusFail
			verdict.Message = fmt.Sprintf("Expected >= %v, got %v", rule.Value, actual)
		}
	case rules.OpLTE:
		holds, err := orderValues(actual, rule.Value, func(a, b float64) bool { return a <= b })
		if err != nil {
			verdict.Status = StatusError
			verdict.Message = err.Error()
		} else if holds {
			verdict.Status = StatusPass
			verdict.Contribution = rule.Weight
		} else {
			verdict.Status = StatusFail
			verdict.Message = fmt.Sprintf("Expected <= %v, got %v", rule.Value, actual)
		}
	case rules.OpNotContains:
		list, isList := actual.([]interface{})
		if !isList {
			verdict.Status = StatusWarning
			verdict.Message = fmt.Sprintf("Field %s not a list", rule.Field)
			return verdict
		}
		if containsValue(list, rule.Value) {
			verdict.Status = StatusFail
			verdict.Message = fmt.Sprintf("Value %v present in list", rule.Value)
		} else {
			verdict.Status = StatusPass
			verdict.Contribution = rule.Weight
		}
	default:
		// Loaders reject unknown operators, but rules may arrive from other
		// producers; downgrade rather than fail.
		verdict.Status = StatusWarning
		verdict.Message = fmt.Sprintf("Unsupported op %s", rule.Op)
	}
	return verdict
}

// EvaluateDocument evaluates every rule against the document and aggregates
// per framework. Pure fold over verdicts: order of evaluation cannot affect
// the sums, and one rule's failure never aborts the rest.
func EvaluateDocument(ruleList []rules.Rule, doc map[string]interface{}) map[string]*FrameworkResult {
	results := make(map[string]*FrameworkResult)

	for _, rule := range ruleList {
		fw, ok := results[rule.Framework]
		if !ok {
			fw = &FrameworkResult{}
			results[rule.Framework] = fw
		}

		verdict := EvaluateRule(rule, doc)
		fw.TotalWeight += rule.Weight
		fw.AchievedWeight += verdict.Contribution
		fw.Details = append(fw.Details, verdict)
	}

	for name, fw := range results {
		if fw.TotalWeight > 0 {
			fw.CompliancePct = round2(fw.AchievedWeight / fw.TotalWeight * 100)
		}
		logging.Logger.Debug().
			Str("framework", name).
			Float64("compliance_pct", fw.CompliancePct).
			Float64("total_weight", fw.TotalWeight).
			Float64("score_weight", fw.AchievedWeight).
			Msg("Framework evaluated")
	}
	return results
}

func equalValues(actual, expected interface{}) bool {
	if af, aok := toFloat(actual); aok {
		if ef, eok := toFloat(expected); eok {
			return af == ef
		}
		return false
	}
	if ab, aok := actual.(bool); aok {
		eb, eok := expected.(bool)
		return eok && ab == eb
	}
	if _, eok := expected.(bool); eok {
		return false
	}
	return reflect.DeepEqual(actual, expected)
}

func orderValues(actual, expected interface{}, cmp func(a, b float64) bool) (bool, error) {
	af, aok := toFloat(actual)
	ef, eok := toFloat(expected)
	if !aok || !eok {
		return false, fmt.Errorf("cannot compare %T with %T", actual, expected)
	}
	return cmp(af, ef), nil
}

func containsValue(list []interface{}, value interface{}) bool {
	for _, item := range list {
		if equalValues(item, value) {
			return true
		}
	}
	return false
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
