// Package app assembles the helpdesk service from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/itops-lab/helpdesk/internal/api/http"
	"github.com/itops-lab/helpdesk/internal/api/http/handlers"
	"github.com/itops-lab/helpdesk/internal/assignment"
	"github.com/itops-lab/helpdesk/internal/auth"
	"github.com/itops-lab/helpdesk/internal/config"
	"github.com/itops-lab/helpdesk/internal/events"
	"github.com/itops-lab/helpdesk/internal/identity"
	"github.com/itops-lab/helpdesk/internal/markdown"
	"github.com/itops-lab/helpdesk/internal/observability"
	"github.com/itops-lab/helpdesk/internal/persistence"
	"github.com/itops-lab/helpdesk/internal/repository"
	"github.com/itops-lab/helpdesk/internal/service"
	"github.com/itops-lab/helpdesk/internal/worker"
)

const shutdownTimeout = 10 * time.Second

type closer interface {
	Close()
}

type notifier interface {
	Start(ctx context.Context)
	Stop()
}

type scheduler interface {
	Start(ctx context.Context) error
	Stop()
}

// App owns the HTTP server and its background workers.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	postgres   closer
	redis      closer
	fiber      *fiber.App
	notifier   notifier
	slaMonitor scheduler
}

// New connects to storage and wires every component.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			pg.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	redis := persistence.NewRedis(cfg.Redis, logger)

	guard, err := identity.NewGuard(cfg.EmployeeCode)
	if err != nil {
		pg.Close()
		redis.Close()
		return nil, fmt.Errorf("employee code guard: %w", err)
	}
	if !guard.CanDecrypt() {
		logger.Warn("EMPLOYEE_CODE_ENC_KEY not set, employee codes cannot be revealed")
	}

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	surveyRepo := repository.NewSurveyRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	ruleRepo := repository.NewAssignmentRuleRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	priorityRepo := repository.NewPriorityRepository(pool)
	systemRepo := repository.NewSystemRepository(pool)
	orgUnitRepo := repository.NewOrgUnitRepository(pool)
	adminUserRepo := repository.NewAdminUserRepository(pool)
	articleRepo := repository.NewArticleRepository(pool)
	channelRepo := repository.NewNotificationChannelRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	resolver := assignment.NewResolver(ruleRepo)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		HistoryRepo: historyRepo,
		SurveyRepo:  surveyRepo,
		Resolver:    resolver,
		Guard:       guard,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:    ticketRepo,
		RuleRepo:      ruleRepo,
		TeamRepo:      teamRepo,
		AdminUserRepo: adminUserRepo,
		HistoryRepo:   historyRepo,
		Resolver:      resolver,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	masterDataService := service.NewMasterDataService(service.MasterDataDependencies{
		CategoryRepo: categoryRepo,
		PriorityRepo: priorityRepo,
		SystemRepo:   systemRepo,
		TeamRepo:     teamRepo,
		OrgUnitRepo:  orgUnitRepo,
	})
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{AdminUserRepo: adminUserRepo})
	staffService := service.NewStaffService(cfg.Auth, service.StaffDependencies{
		AdminUserRepo: adminUserRepo,
		TeamRepo:      teamRepo,
	})
	articleService := service.NewArticleService(service.ArticleDependencies{
		ArticleRepo: articleRepo,
		Renderer:    markdown.NewRenderer(),
		Logger:      logger,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		ChannelRepo: channelRepo,
		Dispatcher:  dispatcher,
		Notifier:    service.LogNotifier{Logger: logger.Named("notifier")},
		Logger:      logger,
	})
	reportService := service.NewReportService(service.ReportDependencies{
		TicketRepo: ticketRepo,
		SurveyRepo: surveyRepo,
		Logger:     logger,
	})

	notificationWorker := worker.NewNotificationWorker(notificationService, logger, 256)
	notificationWorker.Subscribe(dispatcher)

	var slaMonitor *worker.SLAMonitor
	if cfg.SLA.MonitorEnabled {
		slaMonitor, err = worker.NewSLAMonitor(reportService, dispatcher, logger, cfg.SLA.MonitorSchedule)
		if err != nil {
			pg.Close()
			redis.Close()
			return nil, err
		}
	}

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.App.BodyLimitBytes,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, metrics),
		Public: handlers.NewPublicHandler(handlers.PublicDependencies{
			Tickets:    ticketService,
			MasterData: masterDataService,
			Articles:   articleService,
		}),
		Tickets:        handlers.NewTicketsHandler(ticketService, assignmentService),
		MasterData:     handlers.NewMasterDataHandler(masterDataService),
		Assignment:     handlers.NewAssignmentHandler(assignmentService),
		Staff:          handlers.NewStaffHandler(authService, staffService),
		Content:        handlers.NewContentHandler(articleService, notificationService),
		Reports:        handlers.NewReportsHandler(reportService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), adminUserRepo),
		RateLimiter:    redis,
		RateLimit:      cfg.RateLimit,
		Logger:         logger,
	})

	a := &App{
		cfg:      cfg,
		logger:   logger,
		postgres: pg,
		redis:    redis,
		fiber:    app,
		notifier: notificationWorker,
	}
	if slaMonitor != nil {
		a.slaMonitor = slaMonitor
	}
	return a, nil
}

// Run serves HTTP until ctx is cancelled, then drains workers and closes
// connections.
func (a *App) Run(ctx context.Context) error {
	a.notifier.Start(ctx)
	if a.slaMonitor != nil {
		if err := a.slaMonitor.Start(ctx); err != nil {
			a.release()
			return fmt.Errorf("start sla monitor: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.cfg.App.Addr()))
		errCh <- a.fiber.Listen(a.cfg.App.Addr())
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
	case serveErr = <-errCh:
		a.logger.Error("http server stopped", zap.Error(serveErr))
	}

	if err := a.fiber.ShutdownWithTimeout(shutdownTimeout); err != nil {
		a.logger.Warn("http shutdown", zap.Error(err))
	}
	if a.slaMonitor != nil {
		a.slaMonitor.Stop()
	}
	a.release()
	return serveErr
}

// release drains the notification queue and closes storage connections.
func (a *App) release() {
	a.notifier.Stop()
	a.redis.Close()
	a.postgres.Close()
}
