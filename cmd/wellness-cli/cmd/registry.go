package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"wellness-engine/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func newRegistryCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the activity registry of job types",
	}
	cmd.PersistentFlags().StringVar(&path, "path", defaultRegistryPath, "path to the registry file")

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check every registry entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d activities, version %s\n", path, len(reg.Activities), reg.Version)
			for _, a := range reg.Activities {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-32s %-12s %s\n", a.TaskType, a.ImplementationStatus, a.Version)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <taskType>",
		Short: "Print one registry entry as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			a, found := reg.Find(args[0])
			if !found {
				return fmt.Errorf("no activity with taskType %q", args[0])
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a)
		},
	})
	return cmd
}
