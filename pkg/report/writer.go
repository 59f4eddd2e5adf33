// comply/pkg/report/writer.go

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"rgehrsitz/comply/pkg/logging"
)

// WriteJSON persists a report (or any serializable record) as
// <dir>/<reportID>.json and returns the written path. Flat files are the
// system of record for reports.
func WriteJSON(dir, reportID string, v interface{}) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	path := filepath.Join(dir, reportID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	logging.Logger.Info().Str("path", path).Msg("Report written")
	return path, nil
}
