// Package main is the entry point for the lanewise CLI.
package main

import (
	"os"

	"lanewise/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
