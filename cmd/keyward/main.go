package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/keyward-io/keyward/internal/interfaces/cli/migrate"
	"github.com/keyward-io/keyward/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "keyward",
		Short: "Keyward - software license verification platform",
		Long:  `Keyward serves license verification, heartbeat, and encrypted release delivery, plus the admin management API.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
