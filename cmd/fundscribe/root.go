package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fundscribe",
	Short: "Adaptive report generator for private lending funds",
	Long: `Fundscribe answers analyst questions and drafts fund documents over
the Anthropic API. Each request is scored for complexity and routed to the
cheapest execution tier that can serve it; slow or failing calls degrade
through a fixed fallback cascade instead of surfacing an error.

With no arguments, launches the interactive analyst chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&debugLogPath, "debug-log", "", "Append dispatch traces to this file")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
