package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itops-lab/helpdesk/internal/cli"
	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/persistence"
	"github.com/itops-lab/helpdesk/internal/repository"
	"github.com/itops-lab/helpdesk/internal/service"
)

var (
	name     string
	email    string
	password string
)

// NewCommand returns the account bootstrap command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an ADMIN account",
		Long:  `Create the first administrator so the admin console can be used.`,
		RunE:  run,
	}

	cmd.Flags().StringVar(&name, "name", "Administrator", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Login email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Initial password, at least 8 characters (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := cli.Init()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	staff := service.NewStaffService(cfg.Auth, service.StaffDependencies{
		AdminUserRepo: repository.NewAdminUserRepository(pool),
		TeamRepo:      repository.NewTeamRepository(pool),
	})
	user, err := staff.Create(ctx, service.StaffInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.StaffRoleAdmin,
		IsActive: true,
	})
	if err != nil {
		return err
	}
	cmd.Printf("created admin %s (%s)\n", user.Email, user.ID)
	return nil
}
