// comply/pkg/rules/parser.go

package rules

import (
	"encoding/json"
	"errors"
	"fmt"

	"rgehrsitz/comply/pkg/expr"
	"rgehrsitz/comply/pkg/logging"
)

// Parse parses the provided JSON data and returns a pointer to a Ruleset and an error.
func Parse(jsonData []byte) (*Ruleset, error) {
	logging.Logger.Debug().Int("bytes", len(jsonData)).Msg("Starting to parse ruleset")
	var ruleset Ruleset
	err := json.Unmarshal(jsonData, &ruleset)
	if err != nil {
		logging.Logger.Error().Err(err).Msg("Failed to unmarshal ruleset")
		return nil, fmt.Errorf("invalid JSON format: %v", err)
	}
	if err := Validate(&ruleset); err != nil {
		return nil, err
	}
	return &ruleset, nil
}

// Validate checks every rule in the set and returns an error on the first
// invalid one.
func Validate(ruleset *Ruleset) error {
	if len(ruleset.Rules) == 0 {
		return errors.New("missing rules field")
	}
	seen := make(map[string]bool, len(ruleset.Rules))
	for i := range ruleset.Rules {
		rule := &ruleset.Rules[i]
		if err := validateRule(rule); err != nil {
			logging.Logger.Error().Err(err).Str("rule", rule.ID).Msg("Invalid rule")
			return fmt.Errorf("invalid rule '%s': %v", rule.ID, err)
		}
		if seen[rule.ID] {
			return fmt.Errorf("duplicate rule id '%s'", rule.ID)
		}
		seen[rule.ID] = true
	}
	return nil
}

// validateRule validates a rule and returns an error if any validation fails.
func validateRule(rule *Rule) error {
	logging.Logger.Debug().Str("rule", rule.ID).Msg("Validating rule")
	if rule.ID == "" {
		return errors.New("rule id is required")
	}
	if rule.Framework == "" {
		return errors.New("framework is required")
	}
	if rule.Field == "" {
		return errors.New("empty or missing field")
	}
	if rule.Op == "" {
		return errors.New("empty or missing operator")
	}
	if !isOperatorValid(rule.Op) {
		return fmt.Errorf("invalid operator '%s'", rule.Op)
	}
	if rule.Weight <= 0 {
		return errors.New("weight must be positive")
	}
	if !isValueValid(rule.Op, rule.Value) {
		return fmt.Errorf("invalid value '%v' for operator '%s'", rule.Value, rule.Op)
	}
	return nil
}

// isOperatorValid checks if the given operator is valid.
func isOperatorValid(operator string) bool {
	validOperators := []string{
		OpEqual, OpGTE, OpLTE, OpNotContains,
	}
	for _, op := range validOperators {
		if op == operator {
			return true
		}
	}
	return false
}

func isValueValid(operator string, value interface{}) bool {
	switch operator {
	case OpEqual:
		// Equality accepts any scalar
		return isScalar(value)
	case OpGTE, OpLTE:
		// Ordering operators require a number
		return isNumeric(value)
	case OpNotContains:
		// Membership tests a scalar against a list field
		return isScalar(value)
	default:
		return false
	}
}

func isNumeric(value interface{}) bool {
	switch value.(type) {
	case float64, float32, int, int64, int32:
		return true
	default:
		return false
	}
}

func isScalar(value interface{}) bool {
	switch value.(type) {
	case float64, float32, int, int64, int32, string, bool:
		return true
	default:
		return false
	}
}

// ParseExpr parses an expression-form ruleset. Every expression must parse
// under the restricted grammar: a rule that cannot be parsed is rejected at
// load time rather than surfacing as a per-evaluation error later.
func ParseExpr(jsonData []byte) (*ExprRuleset, error) {
	var ruleset ExprRuleset
	if err := json.Unmarshal(jsonData, &ruleset); err != nil {
		logging.Logger.Error().Err(err).Msg("Failed to unmarshal expression ruleset")
		return nil, fmt.Errorf("invalid JSON format: %v", err)
	}
	if err := validateExprRuleset(&ruleset); err != nil {
		return nil, err
	}
	return &ruleset, nil
}

func validateExprRuleset(ruleset *ExprRuleset) error {
	if len(ruleset.Rules) == 0 {
		return errors.New("missing rules field")
	}
	for _, rule := range ruleset.Rules {
		if rule.ID == "" {
			return errors.New("rule id is required")
		}
		if rule.Rule == "" {
			return fmt.Errorf("rule '%s': empty expression", rule.ID)
		}
		if _, err := expr.Parse(rule.Rule); err != nil {
			return fmt.Errorf("rule '%s': %v", rule.ID, err)
		}
	}
	return nil
}
