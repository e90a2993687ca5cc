// Package cli holds bootstrap shared by the command line entry points.
package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/itops-lab/helpdesk/internal/config"
	"github.com/itops-lab/helpdesk/internal/observability"
)

// Init loads configuration and builds the logger.
func Init() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, logger, nil
}
