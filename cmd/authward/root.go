package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authward",
		Short: "authward - session token lifecycle operations",
		Long: `authward runs the operational side of an authward deployment:
database schema migration and periodic sweeping of expired refresh
token records.`,
	}

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSweepCmd())

	return cmd
}
