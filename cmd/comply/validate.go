// comply/cmd/comply/validate.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rgehrsitz/comply/pkg/rules"
)

var (
	validateRulesFile string
	validateExprForm  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse and validate a ruleset file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateExprForm {
			ruleset, err := rules.LoadExprFile(validateRulesFile)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d expression rules, all valid\n", validateRulesFile, len(ruleset.Rules))
			return nil
		}
		ruleset, err := rules.LoadFile(validateRulesFile)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d rules, all valid\n", validateRulesFile, len(ruleset.Rules))
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateRulesFile, "rules", "", "Path to the ruleset file (JSON or YAML)")
	validateCmd.Flags().BoolVar(&validateExprForm, "expr", false, "Treat the file as an expression-form ruleset")
	validateCmd.MarkFlagRequired("rules")
	rootCmd.AddCommand(validateCmd)
}
