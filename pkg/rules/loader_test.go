// comply/pkg/rules/loader_test.go

package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileJSON(t *testing.T) {
	path := writeTempFile(t, "ruleset.json", `{
        "rules": [
            {"id": "R1", "framework": "CIS", "description": "d", "field": "a.b", "op": "==", "value": true, "weight": 2, "remediation": "r"}
        ]
    }`)

	ruleset, err := LoadFile(path)
	assert.NoError(t, err)
	assert.Len(t, ruleset.Rules, 1)
	assert.Equal(t, "a.b", ruleset.Rules[0].Field)
}

func TestLoadFileYAML(t *testing.T) {
	path := writeTempFile(t, "ruleset.yaml", `
rules:
  - id: R1
    framework: ISO27001
    description: Access reviews within 90 days
    field: access_review_days
    op: "<="
    value: 90
    weight: 5
    remediation: Schedule access reviews.
`)

	ruleset, err := LoadFile(path)
	assert.NoError(t, err)
	require.Len(t, ruleset.Rules, 1)
	assert.Equal(t, "ISO27001", ruleset.Rules[0].Framework)
	assert.Equal(t, "<=", ruleset.Rules[0].Op)
	assert.Equal(t, 5.0, ruleset.Rules[0].Weight)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadExprFile(t *testing.T) {
	path := writeTempFile(t, "checks.json", `{
        "rules": [
            {"id": "mfa", "rule": "mfa == true", "control_id": "RBI-1"}
        ]
    }`)

	ruleset, err := LoadExprFile(path)
	assert.NoError(t, err)
	assert.Len(t, ruleset.Rules, 1)

	yamlPath := writeTempFile(t, "checks.yaml", `
rules:
  - id: mfa
    rule: mfa == true
    control_id: RBI-1
`)
	ruleset, err = LoadExprFile(yamlPath)
	assert.NoError(t, err)
	assert.Len(t, ruleset.Rules, 1)
	assert.Equal(t, "RBI-1", ruleset.Rules[0].ControlID)
}
