package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"wellness-engine/internal/assessment"
	"wellness-engine/internal/common/config"
	"wellness-engine/internal/common/errors"
	"wellness-engine/internal/common/metrics"
	"wellness-engine/internal/scoring"
	"wellness-engine/internal/scoring/reference"
)

type evaluateOptions struct {
	file       string
	tablesFile string
	scoring    config.ScoringConfig
	compact    bool
}

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score one assessment request",
		Long: `Read one JSON assessment request and print the scored result.

The request is read from --file, or from stdin when --file is "-" or omitted.
Without --tables the table-driven subscores fall back to their formulas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "-", "request JSON file")
	f.StringVarP(&opts.tablesFile, "tables", "t", "", "reference tables YAML file")
	f.BoolVar(&opts.compact, "compact", false, "print the result on one line")
	f.BoolVar(&opts.scoring.LegacyScaling, "legacy-scaling", false, "report percentiles x100")
	f.StringVar(&opts.scoring.IncomeMode, "income-mode", "", "auto, table or formula")
	f.StringVar(&opts.scoring.NetWorthMode, "net-worth-mode", "", "auto, table or formula")
	f.StringVar(&opts.scoring.BudgetMode, "budget-mode", "", "table or ratio")
	f.StringVar(&opts.scoring.RetirementCurve, "retirement-curve", "", "logistic or step")
	return cmd
}

// validatePolicyFlags checks the mode flags that were set. Unset flags keep
// the engine defaults.
func validatePolicyFlags(s config.ScoringConfig) error {
	flags := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"--income-mode", s.IncomeMode, []string{"auto", "table", "formula"}},
		{"--net-worth-mode", s.NetWorthMode, []string{"auto", "table", "formula"}},
		{"--budget-mode", s.BudgetMode, []string{"table", "ratio"}},
		{"--retirement-curve", s.RetirementCurve, []string{"logistic", "step"}},
	}
	for _, f := range flags {
		if f.value == "" {
			continue
		}
		if err := config.OneOf(f.name, f.value, f.allowed...); err != nil {
			return err
		}
	}
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func runEvaluate(cmd *cobra.Command, root *rootOptions, opts *evaluateOptions) error {
	if err := validatePolicyFlags(opts.scoring); err != nil {
		return err
	}
	log := root.logger()

	data, err := readInput(cmd, opts.file)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}

	var record map[string]interface{}
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("request is not a JSON object: %w", err)
	}

	tables := reference.Empty()
	if opts.tablesFile != "" {
		if tables, err = reference.LoadFile(opts.tablesFile); err != nil {
			return err
		}
	}

	engine := scoring.NewEngine(tables, scoring.PolicyFromConfig(opts.scoring), log)
	runner := assessment.NewRunner(engine, nil, metrics.TransportCLI)

	result, err := runner.Run(context.Background(), record)
	if err != nil {
		stdErr := errors.AsStandardError(err)
		return fmt.Errorf("%s: %s", stdErr.Code, stdErr.Message)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if !opts.compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}
