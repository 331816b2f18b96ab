// Package main is the entry point for wellness-cli.
package main

import (
	"os"

	"wellness-engine/cmd/wellness-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
