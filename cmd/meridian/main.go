package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-mes/meridian-mes/internal/app"
	"github.com/meridian-mes/meridian-mes/internal/documents"
	"github.com/meridian-mes/meridian-mes/internal/master/companies"
	"github.com/meridian-mes/meridian-mes/internal/master/materials"
	"github.com/meridian-mes/meridian-mes/internal/master/orderitems"
	"github.com/meridian-mes/meridian-mes/internal/movement"
	"github.com/meridian-mes/meridian-mes/internal/observability"
	"github.com/meridian-mes/meridian-mes/internal/platform/cache"
	"github.com/meridian-mes/meridian-mes/internal/platform/db"
	"github.com/meridian-mes/meridian-mes/internal/routing"
	"github.com/meridian-mes/meridian-mes/internal/shared"
	"github.com/meridian-mes/meridian-mes/jobs"
	"github.com/meridian-mes/meridian-mes/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	companyRepo := companies.NewRepository(pool)
	companyService := companies.NewService(companyRepo)
	companyHandler := companies.NewHandler(logger, companyService)

	materialRepo := materials.NewRepository(pool)
	materialService := materials.NewService(materialRepo)
	materialHandler := materials.NewHandler(logger, materialService)

	imageStore, err := orderitems.NewDiskStore(cfg.ImageStorageDir)
	if err != nil {
		logger.Error("init image store", slog.Any("error", err))
		os.Exit(1)
	}
	orderItemRepo := orderitems.NewRepository(pool)
	orderItemService := orderitems.NewService(orderItemRepo, imageStore)
	orderItemHandler := orderitems.NewHandler(logger, orderItemService)

	routingRepo := routing.NewRepository(pool)
	routingService := routing.NewService(routingRepo)
	routingHandler := routing.NewHandler(logger, routingService)

	movementRepo := movement.NewRepository(pool)
	movementService := movement.NewService(movementRepo, auditLogger, idempotencyStore)
	movementHandlers := movement.NewHandlers(logger, movementService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	documentRepo := documents.NewRepository(pool)
	documentService := documents.NewService(documentRepo, reportClient, redisClient)
	documentHandler := documents.NewHandler(logger, documentService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobsClient, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CompanyHandler:   companyHandler,
		MaterialHandler:  materialHandler,
		OrderItemHandler: orderItemHandler,
		RoutingHandler:   routingHandler,
		MovementHandlers: movementHandlers,
		DocumentHandler:  documentHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
