package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"wellness-engine/internal/scoring/rangeparse"
)

func newParseRangeCmd() *cobra.Command {
	var monthly bool

	cmd := &cobra.Command{
		Use:   "parse-range <text>",
		Short: "Show the number a range label parses to",
		Long: `Parse a bucketed range label the way the engine does.

By default open-ended "N+" labels are extended by 1.5 like "Greater than N".
With --monthly they are taken as N, matching how income is read.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := rangeparse.Extend
			if monthly {
				policy = rangeparse.AsIs
			}
			n, ok := rangeparse.ParseText(args[0], policy)
			if !ok {
				return fmt.Errorf("%q matches no range rule", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(n, 'f', -1, 64))
			return nil
		},
	}
	cmd.Flags().BoolVar(&monthly, "monthly", false, "parse as a monthly income value")
	return cmd
}
