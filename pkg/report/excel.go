// comply/pkg/report/excel.go

package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"rgehrsitz/comply/pkg/engine"
	"rgehrsitz/comply/pkg/logging"
)

// WriteExcel writes the flattened per-rule detail table as a workbook.
func WriteExcel(path string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Details"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []string{"asset", "framework", "rule_id", "description", "status", "message", "remediation", "weight"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.Asset, row.Framework, row.RuleID, row.Description,
			string(row.Status), row.Message, row.Remediation, row.Weight,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	logging.Logger.Info().Str("path", path).Int("rows", len(rows)).Msg("Detail workbook written")
	return nil
}

// WriteSummaryExcel writes one row per (asset, framework) with the aggregate
// scores.
func WriteSummaryExcel(path string, all map[string]map[string]*engine.FrameworkResult) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []string{"asset", "framework", "compliance_pct", "total_weight", "score_weight"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	frameworks, assets, cells := HeatmapMatrix(all)
	rowIdx := 2
	for j, asset := range assets {
		for i, framework := range frameworks {
			result, ok := all[asset][framework]
			if !ok {
				continue
			}
			values := []interface{}{
				asset, framework, cells[i][j], result.TotalWeight, result.AchievedWeight,
			}
			for col, v := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return err
				}
			}
			rowIdx++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	logging.Logger.Info().Str("path", path).Msg("Summary workbook written")
	return nil
}
