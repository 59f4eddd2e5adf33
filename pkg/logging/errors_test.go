// comply/pkg/logging/errors_test.go

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	tests := []struct {
		name        string
		errType     ErrorType
		message     string
		err         error
		fields      map[string]interface{}
		expectedMsg string
	}{
		{
			name:        "Parse error",
			errType:     ErrorTypeParse,
			message:     "Failed to parse ruleset",
			err:         errors.New("syntax error"),
			fields:      map[string]interface{}{"line": 10},
			expectedMsg: "PARSE: Failed to parse ruleset",
		},
		{
			name:        "Eval error",
			errType:     ErrorTypeEval,
			message:     "Failed to evaluate rule",
			err:         nil,
			fields:      nil,
			expectedMsg: "EVAL: Failed to evaluate rule",
		},
		{
			name:        "Report error",
			errType:     ErrorTypeReport,
			message:     "Failed to write report",
			err:         errors.New("disk full"),
			fields:      map[string]interface{}{"path": "reports/out.json"},
			expectedMsg: "REPORT: Failed to write report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			complyErr := NewError(tt.errType, tt.message, tt.err, tt.fields)

			assert.Equal(t, tt.errType, complyErr.Type)
			assert.Equal(t, tt.message, complyErr.Message)
			assert.Equal(t, tt.err, complyErr.Err)
			assert.Equal(t, tt.fields, complyErr.Fields)
			assert.Equal(t, tt.expectedMsg, complyErr.Error())

			if tt.err != nil {
				assert.Equal(t, tt.err, complyErr.Unwrap())
			} else {
				assert.Nil(t, complyErr.Unwrap())
			}
		})
	}
}

func TestLogError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected map[string]interface{}
	}{
		{
			name: "ComplyError with all fields",
			err: &ComplyError{
				Type:    ErrorTypeEval,
				Message: "Test error",
				Err:     errors.New("underlying error"),
				Fields: map[string]interface{}{
					"key1": "value1",
					"key2": 42,
				},
			},
			expected: map[string]interface{}{
				"error":      "underlying error",
				"error_type": "EVAL",
				"message":    "Test error",
				"key1":       "value1",
				"key2":       float64(42),
				"level":      "error",
			},
		},
		{
			name: "ComplyError without underlying error",
			err: &ComplyError{
				Type:    ErrorTypeParse,
				Message: "Parse error",
				Fields: map[string]interface{}{
					"line": 10,
				},
			},
			expected: map[string]interface{}{
				"error_type": "PARSE",
				"message":    "Parse error",
				"line":       float64(10),
				"level":      "error",
			},
		},
		{
			name: "Standard error",
			err:  errors.New("standard error"),
			expected: map[string]interface{}{
				"error":   "standard error",
				"message": "standard error",
				"level":   "error",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mockLogger := zerolog.New(&buf)

			LogError(mockLogger, tt.err)

			var logged map[string]interface{}
			err := json.Unmarshal(buf.Bytes(), &logged)
			assert.NoError(t, err)

			// Check that all expected fields are present
			for k, v := range tt.expected {
				assert.Equal(t, v, logged[k], "Mismatch for key %s", k)
			}

			// Check that no unexpected fields are present
			for k := range logged {
				_, expected := tt.expected[k]
				if !expected && k != "time" {
					t.Errorf("Unexpected key in logged data: %s", k)
				}
			}
		})
	}
}
