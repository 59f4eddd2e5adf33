// comply/pkg/report/report.go

package report

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"rgehrsitz/comply/pkg/engine"
)

// Report is the full evaluation record for one asset: per-framework
// aggregates plus an overall weight-weighted percentage. Serializable as-is;
// reporting code downstream only reads it.
type Report struct {
	ReportID   string                             `json:"report_id"`
	Asset      string                             `json:"asset"`
	OverallPct float64                            `json:"overall_pct"`
	Frameworks map[string]*engine.FrameworkResult `json:"frameworks"`
	Timestamp  string                             `json:"timestamp"`
}

// ChecklistReport mirrors the upload endpoint's historical response shape.
type ChecklistReport struct {
	ReportID  string                   `json:"report_id"`
	Asset     string                   `json:"asset"`
	Score     int                      `json:"score"`
	Details   []engine.ChecklistDetail `json:"details"`
	Timestamp string                   `json:"timestamp"`
}

// Build assembles a report from one asset's framework results.
func Build(asset string, results map[string]*engine.FrameworkResult) *Report {
	var total, achieved float64
	for _, fw := range results {
		total += fw.TotalWeight
		achieved += fw.AchievedWeight
	}
	overall := 0.0
	if total > 0 {
		overall = round2(achieved / total * 100)
	}
	return &Report{
		ReportID:   uuid.NewString(),
		Asset:      asset,
		OverallPct: overall,
		Frameworks: results,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

// BuildChecklist assembles a checklist report.
func BuildChecklist(asset string, result engine.ChecklistResult) *ChecklistReport {
	return &ChecklistReport{
		ReportID:  uuid.NewString(),
		Asset:     asset,
		Score:     result.Score,
		Details:   result.Details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Row is one flattened per-rule record for tabular export.
type Row struct {
	Asset       string        `json:"asset"`
	Framework   string        `json:"framework"`
	RuleID      string        `json:"rule_id"`
	Description string        `json:"description"`
	Status      engine.Status `json:"status"`
	Message     string        `json:"message"`
	Remediation string        `json:"remediation"`
	Weight      float64       `json:"weight"`
}

// Flatten turns asset -> framework -> result nesting into sorted per-rule
// rows. Sorting keeps exports stable across runs.
func Flatten(all map[string]map[string]*engine.FrameworkResult) []Row {
	var rows []Row
	for asset, frameworks := range all {
		for framework, fw := range frameworks {
			for _, d := range fw.Details {
				rows = append(rows, Row{
					Asset:       asset,
					Framework:   framework,
					RuleID:      d.RuleID,
					Description: d.Description,
					Status:      d.Status,
					Message:     d.Message,
					Remediation: d.Remediation,
					Weight:      d.Weight,
				})
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Asset != rows[j].Asset {
			return rows[i].Asset < rows[j].Asset
		}
		if rows[i].Framework != rows[j].Framework {
			return rows[i].Framework < rows[j].Framework
		}
		return rows[i].RuleID < rows[j].RuleID
	})
	return rows
}

// HeatmapMatrix builds the framework x asset compliance grid with sorted
// axes.
func HeatmapMatrix(all map[string]map[string]*engine.FrameworkResult) (frameworks []string, assets []string, cells [][]float64) {
	fwSet := make(map[string]bool)
	for asset, byFramework := range all {
		assets = append(assets, asset)
		for fw := range byFramework {
			fwSet[fw] = true
		}
	}
	for fw := range fwSet {
		frameworks = append(frameworks, fw)
	}
	sort.Strings(assets)
	sort.Strings(frameworks)

	cells = make([][]float64, len(frameworks))
	for i, fw := range frameworks {
		cells[i] = make([]float64, len(assets))
		for j, asset := range assets {
			if result, ok := all[asset][fw]; ok {
				cells[i][j] = result.CompliancePct
			}
		}
	}
	return frameworks, assets, cells
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
