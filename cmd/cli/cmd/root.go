// Package cmd provides the CLI commands for lanewise.
package cmd

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lanewise",
	Short: "Rate auto insurance risks and work with agent tooling offline",
	Long: `lanewise is the offline companion to the quote-and-bind API.

It runs the same premium calculator the server uses, so agents can sanity
check a rate from a JSON file, validate VINs, and mint development tokens
without a running server.

Examples:
  lanewise rate --input quote.json
  lanewise vin 1HGCM82633A004352
  lanewise token --agent agent-42 --role admin`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(vinCmd)
	rootCmd.AddCommand(tokenCmd)
}
