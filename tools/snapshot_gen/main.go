// comply/tools/snapshot_gen/main.go

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

// Snapshot is one company's configuration posture, shaped like the documents
// the structured ruleset addresses.
type Snapshot map[string]interface{}

func parseFlags(args []string) (int, string, float64, int64) {
	fs := flag.NewFlagSet("snapshot_gen", flag.ExitOnError)
	count := fs.Int("count", 3, "Number of snapshots to generate")
	outDir := fs.String("outdir", "snapshots", "Output directory")
	posture := fs.Float64("posture", 0.7, "Probability that any given control is compliant (0..1)")
	seed := fs.Int64("seed", 0, "Random seed (0 means non-deterministic)")
	fs.Parse(args)
	return *count, *outDir, *posture, *seed
}

// compliantBool returns true with the configured posture probability.
func compliantBool(posture float64) bool {
	return gofakeit.Float64Range(0, 1) < posture
}

// daysWithin returns a value <= limit when compliant, above it otherwise.
func daysWithin(limit int, posture float64) int {
	if compliantBool(posture) {
		return gofakeit.Number(1, limit)
	}
	return gofakeit.Number(limit+1, limit*3)
}

func generateSnapshot(posture float64) Snapshot {
	minLength := gofakeit.Number(8, 16)
	if compliantBool(posture) {
		minLength = gofakeit.Number(12, 20)
	}

	openPorts := []interface{}{22, 443}
	if gofakeit.Bool() {
		openPorts = append(openPorts, 80)
	}
	if !compliantBool(posture) {
		openPorts = append(openPorts, 3306)
	}

	ftpStatus := "stopped"
	if !compliantBool(posture) {
		ftpStatus = "running"
	}

	retentionDays := 365 * gofakeit.Number(1, 4)
	if compliantBool(posture) {
		retentionDays = 365 * gofakeit.Number(5, 8)
	}

	return Snapshot{
		"password_policy": map[string]interface{}{
			"min_length":          minLength,
			"complexity_required": compliantBool(posture),
		},
		"firewall_enabled":    compliantBool(posture),
		"logging":             map[string]interface{}{"audit_enabled": compliantBool(posture)},
		"disk_encrypted":      compliantBool(posture),
		"services":            map[string]interface{}{"ftp": map[string]interface{}{"status": ftpStatus}},
		"ssh_root_login":      !compliantBool(posture),
		"patch_age_days":      daysWithin(30, posture),
		"open_ports":          openPorts,
		"audit_rules_present": compliantBool(posture),
		"access_review_days":  daysWithin(90, posture),
		"backup_policy":       map[string]interface{}{"exists_and_tested": compliantBool(posture)},
		"incident_response": map[string]interface{}{
			"plan_exists":    compliantBool(posture),
			"last_test_days": daysWithin(365, posture),
		},
		"antivirus": map[string]interface{}{"running": compliantBool(posture)},
		"encryption": map[string]interface{}{
			"db_at_rest":    compliantBool(posture),
			"customer_data": compliantBool(posture),
		},
		"baseline": map[string]interface{}{"cis_applied": compliantBool(posture)},
		"iam": map[string]interface{}{
			"separation_of_duties": compliantBool(posture),
			"mfa_for_admins":       compliantBool(posture),
		},
		"change_mgmt":        map[string]interface{}{"process_enforced": compliantBool(posture)},
		"vendor_risk":        map[string]interface{}{"assessments_up_to_date": compliantBool(posture)},
		"data_retention":     map[string]interface{}{"transaction_logs_days": retentionDays},
		"vapt":               map[string]interface{}{"last_days": daysWithin(90, posture)},
		"soc":                map[string]interface{}{"enabled": compliantBool(posture)},
		"incident_reporting": map[string]interface{}{"last_report_days": daysWithin(7, posture)},
		"devsecops":          map[string]interface{}{"sast_enabled": compliantBool(posture)},
		"data_access":        map[string]interface{}{"review_days": daysWithin(30, posture)},
		"dlp":                map[string]interface{}{"enabled": compliantBool(posture)},
		"bcp":                map[string]interface{}{"last_test_days": daysWithin(365, posture)},
	}
}

// assetName derives a filesystem-safe snapshot name from a fake company.
func assetName() string {
	name := strings.ToLower(gofakeit.Company())
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	return "company_" + name
}

func writeSnapshot(dir, name string, snapshot Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func main() {
	count, outDir, posture, seed := parseFlags(os.Args[1:])
	if seed != 0 {
		gofakeit.Seed(seed)
	}

	for i := 0; i < count; i++ {
		path, err := writeSnapshot(outDir, assetName(), generateSnapshot(posture))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Snapshot written to %s\n", path)
	}
}
