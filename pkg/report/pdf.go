// comply/pkg/report/pdf.go

package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"rgehrsitz/comply/pkg/engine"
	"rgehrsitz/comply/pkg/logging"
)

// WritePDF renders the one-page summary: score table, optional heatmap
// image, and the top-N non-compliant rules with their remediation text,
// prioritized by rule weight.
func WritePDF(path string, all map[string]map[string]*engine.FrameworkResult, heatmapPath string, topN int) error {
	frameworks, assets, cells := HeatmapMatrix(all)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Compliance Automation Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated: "+time.Now().UTC().Format(time.RFC3339), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Summary table: one row per asset, one column per framework.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(46, 117, 182)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(50, 8, "Asset", "1", 0, "C", true, 0, "")
	for _, fw := range frameworks {
		pdf.CellFormat(40, 8, fw, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for j, asset := range assets {
		pdf.CellFormat(50, 8, asset, "1", 0, "L", false, 0, "")
		for i := range frameworks {
			pdf.CellFormat(40, 8, fmt.Sprintf("%.1f%%", cells[i][j]), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	if heatmapPath != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 8, "Heatmap: Compliance % (Frameworks vs Assets)", "", 1, "L", false, 0, "")
		pdf.ImageOptions(heatmapPath, 10, pdf.GetY(), 180, 0, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, "Top Non-Compliant Rules & Remediations", "", 1, "L", false, 0, "")

	for _, row := range topNonCompliant(all, topN) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("[%s] %s - %s (%s)", row.Framework, row.RuleID, row.Description, row.Asset), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 5, "Remediation: "+row.Remediation, "", 1, "L", false, 0, "")
		pdf.Ln(1)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	logging.Logger.Info().Str("path", path).Msg("PDF report written")
	return nil
}

// topNonCompliant collects every non-PASS row and orders by weight
// descending, then framework and rule id for stability.
func topNonCompliant(all map[string]map[string]*engine.FrameworkResult, n int) []Row {
	var failed []Row
	for _, row := range Flatten(all) {
		if row.Status != engine.StatusPass {
			failed = append(failed, row)
		}
	}
	sort.SliceStable(failed, func(i, j int) bool {
		if failed[i].Weight != failed[j].Weight {
			return failed[i].Weight > failed[j].Weight
		}
		if failed[i].Framework != failed[j].Framework {
			return failed[i].Framework < failed[j].Framework
		}
		return failed[i].RuleID < failed[j].RuleID
	})
	if n > 0 && len(failed) > n {
		failed = failed[:n]
	}
	return failed
}
