package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itops-lab/helpdesk/internal/cli"
	"github.com/itops-lab/helpdesk/internal/persistence"
)

var steps int

// NewCommand returns the migrate command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back or inspect the embedded schema migrations.`,
	}

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}
}

func runUp(_ *cobra.Command, _ []string) error {
	cfg, logger, err := cli.Init()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Postgres.DSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required")
	}
	return persistence.RunMigrations(cfg.Postgres.DSN, logger)
}

func runDown(_ *cobra.Command, _ []string) error {
	cfg, logger, err := cli.Init()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	return persistence.RollbackMigrations(cfg.Postgres.DSN, steps, logger)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := cli.Init()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	version, dirty, err := persistence.MigrationVersion(cfg.Postgres.DSN, logger)
	if err != nil {
		return err
	}
	cmd.Printf("version: %d\ndirty: %t\n", version, dirty)
	return nil
}
