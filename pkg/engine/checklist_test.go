// comply/pkg/engine/checklist_test.go

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgehrsitz/comply/pkg/rules"
)

func TestBuildContext(t *testing.T) {
	checks := []Check{
		{ID: "fw_enabled", Value: true},
		{ID: "patch_age", Value: 12.0},
		{ID: "", Value: "ignored"},
	}
	ctx := BuildContext(checks)
	assert.Len(t, ctx, 2)
	assert.Equal(t, true, ctx["fw_enabled"])
	assert.Equal(t, 12.0, ctx["patch_age"])
}

func TestEvaluateChecklist(t *testing.T) {
	ruleList := []rules.ExprRule{
		{ID: "fw", Rule: "fw_enabled == true", ControlID: "CIS-3"},
		{ID: "patch", Rule: "patch_age <= 30", ControlID: "CIS-8"},
		{ID: "pw", Rule: "pw_len >= 12", ControlID: "CIS-1"},
	}
	checks := []Check{
		{ID: "fw_enabled", Value: true},
		{ID: "patch_age", Value: 45.0},
		{ID: "pw_len", Value: 14.0},
	}

	result := EvaluateChecklist(ruleList, checks)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 66, result.Score) // truncated, not rounded
	require.Len(t, result.Details, 3)
	assert.Equal(t, StatusPass, result.Details[0].Status)
	assert.Equal(t, StatusFail, result.Details[1].Status)
	assert.Equal(t, StatusPass, result.Details[2].Status)
	assert.Equal(t, "CIS-8", result.Details[1].Control)
}

func TestEvaluateChecklistErrorIsolation(t *testing.T) {
	// A rule that cannot evaluate (ordering a missing value) is ERROR; the
	// rest of the batch still runs.
	ruleList := []rules.ExprRule{
		{ID: "bad", Rule: "missing >= 10", ControlID: "X-1"},
		{ID: "good", Rule: "present == true", ControlID: "X-2"},
	}
	checks := []Check{{ID: "present", Value: true}}

	result := EvaluateChecklist(ruleList, checks)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, StatusError, result.Details[0].Status)
	assert.Equal(t, StatusPass, result.Details[1].Status)
}

func TestEvaluateChecklistEmpty(t *testing.T) {
	result := EvaluateChecklist(nil, nil)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Details)
}
