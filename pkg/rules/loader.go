// comply/pkg/rules/loader.go

package rules

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"rgehrsitz/comply/pkg/logging"
)

// LoadFile reads a structured ruleset from disk. JSON is the native format;
// .yaml/.yml files are accepted as well.
func LoadFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, logging.NewError(logging.ErrorTypeParse, "failed to read ruleset file", err, map[string]interface{}{"path": path})
	}

	if isYAML(path) {
		var ruleset Ruleset
		if err := yaml.Unmarshal(data, &ruleset); err != nil {
			return nil, logging.NewError(logging.ErrorTypeParse, "invalid YAML format", err, map[string]interface{}{"path": path})
		}
		if err := Validate(&ruleset); err != nil {
			return nil, err
		}
		logging.Logger.Debug().Str("path", path).Int("rules", len(ruleset.Rules)).Msg("Loaded YAML ruleset")
		return &ruleset, nil
	}
	return Parse(data)
}

// LoadExprFile reads an expression-form ruleset from disk.
func LoadExprFile(path string) (*ExprRuleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, logging.NewError(logging.ErrorTypeParse, "failed to read ruleset file", err, map[string]interface{}{"path": path})
	}

	if isYAML(path) {
		var ruleset ExprRuleset
		if err := yaml.Unmarshal(data, &ruleset); err != nil {
			return nil, logging.NewError(logging.ErrorTypeParse, "invalid YAML format", err, map[string]interface{}{"path": path})
		}
		if err := validateExprRuleset(&ruleset); err != nil {
			return nil, err
		}
		return &ruleset, nil
	}
	return ParseExpr(data)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
