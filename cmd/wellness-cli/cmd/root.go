// Package cmd provides the CLI commands for wellness-cli.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"wellness-engine/internal/common/logger"
)

// Version is overridden at build time with -ldflags.
var Version = "0.1.0"

type rootOptions struct {
	verbose bool
}

func (o *rootOptions) logger() logger.Logger {
	if o.verbose {
		return logger.NewStructured("debug", "console")
	}
	return logger.NewNoOpLogger()
}

// NewRootCmd builds the command tree. Each call returns independent flag
// state, which keeps tests isolated.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "wellness-cli",
		Short: "Score financial wellness assessments offline",
		Long: `wellness-cli runs the financial wellness engine without the server.

Examples:
  wellness-cli evaluate --file request.json --tables configs/reference_tables.yaml
  wellness-cli parse-range "$100,000 - $500,000"
  wellness-cli tables validate configs/reference_tables.yaml
  wellness-cli tables seed configs/reference_tables.yaml --driver sqlite --dsn file:reference.db
  wellness-cli registry show evaluate-wellness-assessment`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log engine decisions to stderr")

	root.AddCommand(newEvaluateCmd(opts))
	root.AddCommand(newParseRangeCmd())
	root.AddCommand(newTablesCmd(opts))
	root.AddCommand(newRegistryCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wellness-cli version %s\n", Version)
		},
	})
	return root
}

// Execute runs the CLI
func Execute() error {
	return NewRootCmd().Execute()
}
