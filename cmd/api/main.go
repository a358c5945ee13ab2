package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/process-raci/internal/api/http"
	"github.com/spec-kit/process-raci/internal/api/http/handlers"
	"github.com/spec-kit/process-raci/internal/auth"
	"github.com/spec-kit/process-raci/internal/cache"
	"github.com/spec-kit/process-raci/internal/config"
	"github.com/spec-kit/process-raci/internal/events"
	"github.com/spec-kit/process-raci/internal/observability"
	"github.com/spec-kit/process-raci/internal/persistence"
	"github.com/spec-kit/process-raci/internal/proposal"
	"github.com/spec-kit/process-raci/internal/repository"
	"github.com/spec-kit/process-raci/internal/service"
	"github.com/spec-kit/process-raci/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	store := cache.NewRedisStore(redis.Client, cfg.App.Name)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	processRepo := repository.NewProcessRepository(pool)
	raciRepo := repository.NewRaciRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: userRepo,
		Logger:   logger,
	})
	orgService := service.NewOrgService(service.OrgDependencies{
		DepartmentRepo: departmentRepo,
		ProcessRepo:    processRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	processService := service.NewProcessService(service.ProcessDependencies{
		ProcessRepo:    processRepo,
		DepartmentRepo: departmentRepo,
		Proposer:       proposal.NewClient(cfg.Proposal.URL, cfg.Proposal.APIKey, config.TTL(cfg.Proposal.TimeoutSeconds)),
		Cache:          store,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
		Diagram:        cfg.Diagram,
	})
	raciService := service.NewRaciService(cfg.Raci, service.RaciDependencies{
		ProcessRepo:    processRepo,
		DepartmentRepo: departmentRepo,
		RaciRepo:       raciRepo,
		Cache:          store,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
	})
	activityService := service.NewActivityService(dispatcher, activityRepo, logger)
	worker.StartListeners(
		service.NewInvalidationService(dispatcher, store, logger),
		activityService,
	)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Users:          handlers.NewUsersHandler(authService),
		Processes:      handlers.NewProcessesHandler(processService, activityService),
		Org:            handlers.NewOrgHandler(orgService),
		Raci:           handlers.NewRaciHandler(raciService),
		Metrics:        metrics.Handler(),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
