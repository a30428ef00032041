package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"deskqueue/docs"
	"deskqueue/internal/config"
	"deskqueue/internal/database"
	"deskqueue/internal/database/migration"
	handlers "deskqueue/internal/http/handler"
	"deskqueue/internal/http/middleware"
	"deskqueue/internal/logger"
	"deskqueue/internal/otel"
	"deskqueue/internal/repository/postgres"
	"deskqueue/internal/service"
	"deskqueue/internal/servicedesk"
	"deskqueue/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Service Desk Queue API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}

	jira, err := servicedesk.NewClient(cfg.Jira)
	if err != nil {
		log.Fatal("failed to initialize service desk client", zap.Error(err))
	}
	var lister servicedesk.QueueLister = jira
	if cfg.Jira.CacheTTLSec > 0 {
		lister = servicedesk.NewCachedLister(jira, time.Duration(cfg.Jira.CacheTTLSec)*time.Second)
	}

	queueRepo := postgres.NewQueuePostgres(db)
	queueSvc := service.NewQueueService(lister, objStore, queueRepo, time.Duration(cfg.SnapshotURLExpirySec)*time.Second)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		// Request strings end up in caches, spans and metric labels that outlive the request.
		Immutable:    true,
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	app.Get("/metrics", handlers.Metrics(registry))
	handlers.RegisterRoutes(app, db, queueSvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Warn("server shutdown failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	log.Info("server starting", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
