// comply/cmd/comply/evaluate.go

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"rgehrsitz/comply/pkg/engine"
	"rgehrsitz/comply/pkg/logging"
	"rgehrsitz/comply/pkg/report"
	"rgehrsitz/comply/pkg/rules"
)

var (
	evalRulesFile string
	evalSnapshots []string
	evalOutDir    string
	evalXLSX      bool
	evalPDF       bool
	evalHeatmap   bool
	evalTopN      int
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate snapshots against a structured ruleset",
	Long: `Loads a structured ruleset, evaluates each snapshot file against it and
writes one JSON report per snapshot. The asset name is the snapshot file
name without its extension. Optional flags add Excel, PDF and heatmap
artifacts covering all evaluated snapshots.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEvaluate()
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&evalRulesFile, "rules", "", "Path to the structured ruleset (JSON or YAML)")
	evaluateCmd.Flags().StringArrayVar(&evalSnapshots, "snapshot", nil, "Snapshot file to evaluate (repeatable)")
	evaluateCmd.Flags().StringVar(&evalOutDir, "out", "reports", "Directory for generated reports")
	evaluateCmd.Flags().BoolVar(&evalXLSX, "xlsx", false, "Write details.xlsx and summary.xlsx")
	evaluateCmd.Flags().BoolVar(&evalPDF, "pdf", false, "Write summary.pdf")
	evaluateCmd.Flags().BoolVar(&evalHeatmap, "heatmap", false, "Write heatmap.png")
	evaluateCmd.Flags().IntVar(&evalTopN, "top", 10, "Number of non-compliant rules listed in the PDF")
	evaluateCmd.MarkFlagRequired("rules")
	evaluateCmd.MarkFlagRequired("snapshot")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate() error {
	ruleset, err := rules.LoadFile(evalRulesFile)
	if err != nil {
		return fmt.Errorf("failed to load ruleset: %w", err)
	}
	logging.Logger.Info().Str("path", evalRulesFile).Int("rules", len(ruleset.Rules)).Msg("Loaded ruleset")

	all := make(map[string]map[string]*engine.FrameworkResult)
	for _, path := range evalSnapshots {
		asset, doc, err := loadSnapshot(path)
		if err != nil {
			return err
		}

		results := engine.EvaluateDocument(ruleset.Rules, doc)
		assetReport := report.Build(asset, results)
		all[asset] = results

		written, err := report.WriteJSON(evalOutDir, assetReport.ReportID, assetReport)
		if err != nil {
			return fmt.Errorf("failed to write report for %s: %w", asset, err)
		}
		logging.Logger.Info().Str("asset", asset).Str("path", written).Msg("Report written")

		printSummary(asset, assetReport)
	}

	return writeArtifacts(all)
}

// loadSnapshot reads one snapshot file. The asset name is the file name
// without its extension.
func loadSnapshot(path string) (string, map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", nil, fmt.Errorf("snapshot %s is not a JSON object: %w", path, err)
	}
	base := filepath.Base(path)
	asset := strings.TrimSuffix(base, filepath.Ext(base))
	return asset, doc, nil
}

func printSummary(asset string, r *report.Report) {
	fmt.Printf("%s: %.2f%% overall\n", asset, r.OverallPct)
	frameworks := make([]string, 0, len(r.Frameworks))
	for fw := range r.Frameworks {
		frameworks = append(frameworks, fw)
	}
	sort.Strings(frameworks)
	for _, fw := range frameworks {
		result := r.Frameworks[fw]
		fmt.Printf("  %-12s %6.2f%%  (%g/%g weight)\n", fw, result.CompliancePct, result.AchievedWeight, result.TotalWeight)
	}
}

func writeArtifacts(all map[string]map[string]*engine.FrameworkResult) error {
	heatmapPath := ""
	if evalHeatmap || evalPDF {
		frameworks, assets, cells := report.HeatmapMatrix(all)
		heatmapPath = filepath.Join(evalOutDir, "heatmap.png")
		if err := report.WriteHeatmapPNG(heatmapPath, frameworks, assets, cells); err != nil {
			return fmt.Errorf("failed to write heatmap: %w", err)
		}
		logging.Logger.Info().Str("path", heatmapPath).Msg("Heatmap written")
	}

	if evalXLSX {
		detailsPath := filepath.Join(evalOutDir, "details.xlsx")
		if err := report.WriteExcel(detailsPath, report.Flatten(all)); err != nil {
			return fmt.Errorf("failed to write details workbook: %w", err)
		}
		summaryPath := filepath.Join(evalOutDir, "summary.xlsx")
		if err := report.WriteSummaryExcel(summaryPath, all); err != nil {
			return fmt.Errorf("failed to write summary workbook: %w", err)
		}
		logging.Logger.Info().Str("details", detailsPath).Str("summary", summaryPath).Msg("Workbooks written")
	}

	if evalPDF {
		pdfPath := filepath.Join(evalOutDir, "summary.pdf")
		if err := report.WritePDF(pdfPath, all, heatmapPath, evalTopN); err != nil {
			return fmt.Errorf("failed to write PDF: %w", err)
		}
		logging.Logger.Info().Str("path", pdfPath).Msg("PDF written")
	}

	// The heatmap was only an ingredient for the PDF; drop it unless asked for.
	if heatmapPath != "" && !evalHeatmap {
		os.Remove(heatmapPath)
	}
	return nil
}
