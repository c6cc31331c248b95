package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the gameshelf CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gameshelf",
		Short: "Gameshelf - game catalog with cookie sessions",
		Long: `Gameshelf serves the login, registration and profile pages together
with the JSON game catalog API. Configuration is read from the environment.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
