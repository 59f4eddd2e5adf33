// comply/pkg/rules/structs.go

package rules

// Operators supported by the structured evaluator. The table is fixed;
// extending it is a code change, not configuration.
const (
	OpEqual       = "=="
	OpGTE         = ">="
	OpLTE         = "<="
	OpNotContains = "not_contains"
)

type Ruleset struct {
	Rules []Rule `json:"rules" yaml:"rules"`
}

// Rule is one structured compliance check: a dot-delimited field path into a
// configuration snapshot, an operator, an expected value and a scoring
// weight within its framework. Immutable once loaded.
type Rule struct {
	ID          string      `json:"id" yaml:"id"`
	Framework   string      `json:"framework" yaml:"framework"`
	Description string      `json:"description" yaml:"description"`
	Field       string      `json:"field" yaml:"field"`
	Op          string      `json:"op" yaml:"op"`
	Value       interface{} `json:"value" yaml:"value"`
	Weight      float64     `json:"weight" yaml:"weight"`
	Remediation string      `json:"remediation" yaml:"remediation"`
}

type ExprRuleset struct {
	Rules []ExprRule `json:"rules" yaml:"rules"`
}

// ExprRule is one expression-form check, scored against a flat checklist
// context rather than a nested snapshot.
type ExprRule struct {
	ID        string `json:"id" yaml:"id"`
	Rule      string `json:"rule" yaml:"rule"`
	ControlID string `json:"control_id" yaml:"control_id"`
}
