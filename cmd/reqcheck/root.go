package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reqcheck",
		Short:         "Check, upgrade and visualize pinned Python requirements",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("project", ".", "Project root containing the requirement files")

	cmd.AddCommand(
		newCheckCmd(),
		newUpgradeCmd(),
		newVisualizeCmd(),
		newWheelsCmd(),
		newInitCmd(),
		newDoctorCmd(),
	)

	return cmd
}
