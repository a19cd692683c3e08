package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/veyra-inc/veyra/internal/interfaces/cli/migrate"
	"github.com/veyra-inc/veyra/internal/interfaces/cli/server"
	"github.com/veyra-inc/veyra/internal/interfaces/cli/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "veyra",
		Short: "Veyra - tenant entitlement and lifecycle service",
		Long:  `Veyra manages plans, entitlements, usage quotas and the account lifecycle from trial through deletion.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		worker.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
