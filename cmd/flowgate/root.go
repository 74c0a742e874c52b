package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func newRootCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "flowgate",
		Short:         "Request approval workflow service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCmd(logger))
	cmd.AddCommand(newMigrateCmd(logger))
	cmd.AddCommand(newTokenCmd())
	return cmd
}
