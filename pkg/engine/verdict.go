// comply/pkg/engine/verdict.go

package engine

// Status is the outcome of evaluating one rule against one document.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusWarning Status = "WARNING"
	StatusError   Status = "ERROR"
)

// Verdict is the per-rule evaluation record. Contribution is the rule's
// weight on PASS and zero otherwise; Message is empty on PASS.
type Verdict struct {
	RuleID       string  `json:"rule_id"`
	Description  string  `json:"description"`
	Status       Status  `json:"status"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Message      string  `json:"message"`
	Remediation  string  `json:"remediation"`
}

// FrameworkResult aggregates the verdicts of one framework's rules. Every
// rule's weight counts toward TotalWeight regardless of outcome; only PASS
// counts toward AchievedWeight.
type FrameworkResult struct {
	CompliancePct  float64   `json:"compliance_pct"`
	TotalWeight    float64   `json:"total_weight"`
	AchievedWeight float64   `json:"score_weight"`
	Details        []Verdict `json:"details"`
}

// Check is one entry of an uploaded checklist: a context key and its value.
type Check struct {
	ID    string      `json:"id"`
	Value interface{} `json:"value"`
}

// ChecklistDetail is the outcome of one expression-form rule.
type ChecklistDetail struct {
	Control string `json:"control"`
	Status  Status `json:"status"`
	Rule    string `json:"rule"`
}

// ChecklistResult is the outcome of scoring a checklist against an
// expression-form ruleset. Score is truncated to a whole percentage.
type ChecklistResult struct {
	Score   int               `json:"score"`
	Passed  int               `json:"passed"`
	Total   int               `json:"total"`
	Details []ChecklistDetail `json:"details"`
}
