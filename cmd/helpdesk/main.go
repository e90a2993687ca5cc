package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/itops-lab/helpdesk/internal/cli/admin"
	"github.com/itops-lab/helpdesk/internal/cli/migrate"
	"github.com/itops-lab/helpdesk/internal/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "helpdesk",
		Short:        "IT helpdesk service",
		Long:         `Helpdesk serves the reporter and admin APIs and provides migration and account tools.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		admin.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
