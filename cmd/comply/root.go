// comply/cmd/comply/root.go

package main

import (
	"github.com/spf13/cobra"

	"rgehrsitz/comply/pkg/logging"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "comply",
	Short: "Compliance rule evaluation toolkit",
	Long: `comply evaluates declarative compliance rulesets against configuration
snapshots and produces scored reports in JSON, Excel and PDF form.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.ConfigureLogger(logLevel, "console")
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
