// Package cmd - vin command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"lanewise/pkg/vin"
)

// vinCmd validates a VIN's structure and check digit.
var vinCmd = &cobra.Command{
	Use:   "vin <vin>",
	Short: "Validate a vehicle identification number",
	Long: `Check a 17-character VIN for illegal characters and verify its
check digit. Exits non-zero when the VIN is invalid, so it can gate
scripts.

Examples:
  lanewise vin 1HGCM82633A004352`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := vin.Validate(args[0]); err != nil {
			return err
		}
		fmt.Println("valid")
		return nil
	},
}
