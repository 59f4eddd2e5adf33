// comply/pkg/engine/resolve_test.go

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveField(t *testing.T) {
	doc := map[string]interface{}{
		"password_policy": map[string]interface{}{
			"min_length":          14.0,
			"complexity_required": true,
		},
		"firewall_enabled": true,
		"open_ports":       []interface{}{22.0, 80.0, 443.0},
		"services": map[string]interface{}{
			"ftp": map[string]interface{}{"status": "stopped"},
		},
	}

	tests := []struct {
		name     string
		path     string
		expected interface{}
		found    bool
	}{
		{"Top-level scalar", "firewall_enabled", true, true},
		{"Nested scalar", "password_policy.min_length", 14.0, true},
		{"Deeply nested", "services.ftp.status", "stopped", true},
		{"List value", "open_ports", []interface{}{22.0, 80.0, 443.0}, true},
		{"Missing top-level", "disk_encrypted", nil, false},
		{"Missing nested", "password_policy.history", nil, false},
		{"Path through scalar", "firewall_enabled.nested", nil, false},
		{"Path through list", "open_ports.first", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, found := ResolveField(doc, tt.path)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestResolveFieldEmptyDocument(t *testing.T) {
	value, found := ResolveField(map[string]interface{}{}, "a.b.c")
	assert.False(t, found)
	assert.Nil(t, value)
}
