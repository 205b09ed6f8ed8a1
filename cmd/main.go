package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/Dosada05/courtsched/algorithms"
	"github.com/Dosada05/courtsched/config"
	"github.com/Dosada05/courtsched/db"
	"github.com/Dosada05/courtsched/handlers"
	"github.com/Dosada05/courtsched/metrics"
	"github.com/Dosada05/courtsched/middleware"
	"github.com/Dosada05/courtsched/mq"
	"github.com/Dosada05/courtsched/realtime"
	"github.com/Dosada05/courtsched/repositories"
	api "github.com/Dosada05/courtsched/routes"
	"github.com/Dosada05/courtsched/services"
	"github.com/Dosada05/courtsched/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Duration("default_min_rest", cfg.Scheduling.MinRest),
		slog.Bool("operating_hours", cfg.Scheduling.HasOperatingHours()))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 archive enabled", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("Cloudflare R2 archive disabled")
	}
	archiver := storage.NewScheduleArchiver(uploader)

	var publisher mq.EventPublisher = mq.NopPublisher{}
	if cfg.AMQPURL != "" {
		p, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Error("failed to connect to message broker", slog.Any("error", err))
			os.Exit(1)
		}
		publisher = p
		logger.Info("event publishing enabled", slog.String("exchange", cfg.AMQPExchange))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", slog.Any("error", err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	wsHub := realtime.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	if cfg.AlgorithmsURL == "" {
		logger.Warn("ALGORITHMS_URL is not set, schedule generation is disabled")
	}
	scheduler := algorithms.NewClient(cfg.AlgorithmsURL, cfg.AlgorithmsTimeout, cfg.AlgorithmsRPS)

	tx := repositories.NewSQLTransactor(dbConn)
	courtRepo := repositories.NewPostgresCourtRepository(dbConn)
	bookingRepo := repositories.NewPostgresBookingRepository(dbConn)
	scheduleRepo := repositories.NewPostgresScheduleRepository(dbConn)
	logger.Info("Repositories initialized")

	courtService := services.NewCourtService(courtRepo)
	bookingService := services.NewBookingService(tx, bookingRepo, courtRepo, publisher, appMetrics, logger)
	scheduleService := services.NewScheduleService(services.ScheduleServiceDeps{
		Tx:           tx,
		ScheduleRepo: scheduleRepo,
		CourtRepo:    courtRepo,
		Scheduler:    scheduler,
		Archiver:     archiver,
		Publisher:    publisher,
		Broadcaster:  wsHub,
		Metrics:      appMetrics,
		Tracer:       otel.Tracer("github.com/Dosada05/courtsched/services"),
		Logger:       logger,
		Defaults:     cfg.Scheduling,
	})
	logger.Info("Services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		JWTSecret:           cfg.JWTSecretKey,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		AvailabilityLimiter: middleware.NewLimiter(cfg.AvailabilityRPS, cfg.AvailabilityBurst, middleware.RemoteIPKey),
		GenerateLimiter:     middleware.NewLimiter(cfg.GenerateRPS, cfg.GenerateBurst, middleware.ClientKey),
		Gatherer:            registry,
	}, api.Handlers{
		Court:     handlers.NewCourtHandler(courtService, bookingService),
		Booking:   handlers.NewBookingHandler(bookingService),
		Schedule:  handlers.NewScheduleHandler(scheduleService),
		WebSocket: handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
		// Generation waits on the scheduling service, so writes get its timeout plus slack.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AlgorithmsTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}
	stop()
	logger.Info("application exited")
}
