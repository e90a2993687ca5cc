package server

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/itops-lab/helpdesk/internal/app"
	"github.com/itops-lab/helpdesk/internal/cli"
)

// NewCommand returns the serve command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Start the HTTP API, the notification worker and the SLA monitor.`,
		RunE:  run,
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := cli.Init()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
