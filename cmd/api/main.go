package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	appcategory "tasklane/internal/app/category"
	appstats "tasklane/internal/app/stats"
	apptag "tasklane/internal/app/tag"
	apptodo "tasklane/internal/app/todo"
	appuser "tasklane/internal/app/user"
	"tasklane/internal/auth"
	"tasklane/internal/cache"
	"tasklane/internal/config"
	"tasklane/internal/db"
	"tasklane/internal/db/repository"
	"tasklane/internal/events"
	categoryhandler "tasklane/internal/http/handlers/category"
	"tasklane/internal/http/handlers/health"
	statshandler "tasklane/internal/http/handlers/stats"
	taghandler "tasklane/internal/http/handlers/tag"
	todohandler "tasklane/internal/http/handlers/todo"
	userhandler "tasklane/internal/http/handlers/user"
	"tasklane/internal/http/router"
	"tasklane/internal/logging"
	"tasklane/internal/telemetry"
)

func main() {
	// Top-level context with graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1) Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2) Initialize logger
	logger := logging.New(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceEnv,
	)

	logger.Info("starting service",
		"env", cfg.Environment,
	)

	// 3) Initialize telemetry (OpenTelemetry)
	otelShutdown, err := telemetry.Setup(ctx, cfg.Observability, logger)
	if err != nil {
		logger.Error("failed to setup telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown telemetry", "error", err)
		}
	}()

	// 4) Initialize Postgres and run migrations
	dbClient, err := db.NewClient(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := db.Migrate(cfg.Postgres, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// 5) Initialize Redis
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to init redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("failed to close redis", "error", err)
		}
	}()

	// 6) Event producer and consumer. Both degrade to no-ops when Kafka
	// is disabled or unreachable, the API keeps serving without them.
	producer, closeProducer := events.NewProducer(cfg.Kafka, logger)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeProducer(closeCtx); err != nil {
			logger.Error("failed to close event producer", "error", err)
		}
	}()

	consumer := events.NewConsumer(cfg.Kafka, logger)

	// 7) Repositories
	userRepo := repository.NewUserRepository(dbClient, logger)
	todoRepo := repository.NewTodoRepository(dbClient, logger)
	categoryRepo := repository.NewCategoryRepository(dbClient, logger)
	tagRepo := repository.NewTagRepository(dbClient, logger)

	todoCache := cache.NewTodoCache(redisClient)

	// 8) Services
	issuer := auth.NewIssuer(cfg.Auth)

	userService := appuser.NewService(userRepo, issuer, producer, logger)
	todoService := apptodo.NewService(todoRepo, categoryRepo, todoCache, producer, logger)
	categoryService := appcategory.NewService(categoryRepo, producer, logger)
	tagService := apptag.NewService(tagRepo, producer, logger)
	statsService := appstats.NewService(todoRepo, logger)

	// 9) HTTP handlers and router
	handlers := router.Handlers{
		Health:     health.NewHandler(dbClient, redisClient, producer),
		Users:      userhandler.NewHandler(userService, logger),
		Todos:      todohandler.NewHandler(todoService, logger),
		Categories: categoryhandler.NewHandler(categoryService, logger),
		Tags:       taghandler.NewHandler(tagService, logger),
		Stats:      statshandler.NewHandler(statsService, logger),
	}

	httpRouter := router.NewRouter(logger, issuer, handlers)

	// 10) HTTP server
	srv := &http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: otelhttp.NewHandler(
			httpRouter,
			cfg.Observability.ServiceName, // span name prefix
		),
	}

	// 11) Start concurrent processes (HTTP server, event consumer)
	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting",
			"host", cfg.HTTP.Host,
			"port", cfg.HTTP.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go func() {
		if err := consumer.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	// 12) Wait for shutdown signal or an error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		logger.Error("fatal error from subsystem", "error", err)
		stop()
	}

	// 13) Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown http server", "error", err)
	}

	logger.Info("service stopped")
}
