package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"wellness-engine/internal/common/database"
	"wellness-engine/internal/scoring/reference"
)

func newTablesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Reference table maintenance",
	}
	cmd.AddCommand(newTablesValidateCmd())
	cmd.AddCommand(newTablesSeedCmd(root))
	return cmd
}

func printRowCounts(cmd *cobra.Command, counts map[string]int) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%-22s %d\n", name, counts[name])
	}
}

func newTablesValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a reference tables YAML file",
		Long: `Validate a reference tables YAML file and report its coverage.

Every age group without income bands and every (age group, net worth range)
cell without a percentile is listed as a LOOKUP_MISS line. With --strict any
miss fails the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := reference.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", args[0])
			printRowCounts(cmd, tables.RowCounts())

			misses := tables.Misses()
			for _, m := range misses {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", m.Code, m.Message, m.Details)
			}
			if strict && len(misses) > 0 {
				return fmt.Errorf("%d lookup misses in %s", len(misses), args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any lookup would miss")
	return cmd
}

func newTablesSeedCmd(root *rootOptions) *cobra.Command {
	var driver, dsn string

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Replace the reference tables in a database with a YAML file",
		Long: `Validate a reference tables YAML file and write it to postgres or sqlite.

The three tables are created when missing and their rows replaced in a
single transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				return fmt.Errorf("--dsn is required")
			}
			if driver != database.DriverPostgres && driver != database.DriverSQLite {
				return fmt.Errorf("--driver must be %s or %s", database.DriverPostgres, database.DriverSQLite)
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			snap, err := reference.NewFileSource(args[0]).Fetch(ctx)
			if err != nil {
				return err
			}

			db, err := database.Open(ctx, driver, dsn, database.Pool{MaxOpen: 1})
			if err != nil {
				return err
			}
			defer db.Close()

			if err := reference.NewSQLWriter(db, driver).Write(ctx, snap); err != nil {
				return err
			}

			tables, err := reference.NewTablesFromSnapshot(snap)
			if err != nil {
				return err
			}
			root.logger().Info("reference tables seeded", map[string]interface{}{"driver": driver})
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", driver)
			printRowCounts(cmd, tables.RowCounts())
			return nil
		},
	}
	cmd.Flags().StringVar(&driver, "driver", database.DriverSQLite, "postgres or sqlite")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database connection string")
	return cmd
}
