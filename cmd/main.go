package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/tremor/internal/config"
	"github.com/UnknownOlympus/tremor/internal/dispatch"
	"github.com/UnknownOlympus/tremor/internal/feed"
	"github.com/UnknownOlympus/tremor/internal/metrics"
	"github.com/UnknownOlympus/tremor/internal/repository"
	"github.com/UnknownOlympus/tremor/internal/server"
	"github.com/UnknownOlympus/tremor/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the database connection.
	dtb, err := repository.NewDatabase(
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	// Make sure the registration and notification tables exist.
	if err = repository.EnsureSchema(ctx, dtb); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	// Create a new repository instance using the database connection.
	repo := repository.NewRepository(dtb, logger)

	// The USGS feed is the single earthquake source; its search scope is
	// fixed to the monitored region.
	feedProvider := feed.NewUSGSProvider(logger)

	// Firebase Cloud Messaging is the push delivery channel.
	sender, err := dispatch.NewFCMSender(ctx, cfg.FirebaseCredentials, logger)
	if err != nil {
		log.Fatalf("Failed to create FCM sender: %v", err)
	}

	logger.InfoContext(ctx, "Push delivery channel initialized")

	// Init the background alert scheduler.
	alerter := service.NewAlerter(
		logger,
		repo,
		feedProvider,
		sender,
		appMetrics,
		cfg.Interval,
		cfg.EndpointTimeout,
	)

	// Init the public HTTP API.
	apiServer := server.NewServer(logger, repo, feedProvider, cfg.EndpointTimeout)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the monitoring server in a goroutine to allow main to listen for signals.
	go startMonitoringServer(ctx, logger, reg, dtb, cfg.HealthPort)

	go startAPIServer(ctx, logger, apiServer, cfg.APIPort)

	go alerter.Run(ctx)

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// startAPIServer starts the public HTTP API server on the specified port.
func startAPIServer(ctx context.Context, log *slog.Logger, apiServer *server.Server, port int) {
	readTimeout := 5
	writeTimeout := 30
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      apiServer.Router(),
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	log.InfoContext(ctx, "Starting API server", "port", port)
	if err := srv.ListenAndServe(); err != nil {
		log.ErrorContext(ctx, "API server failed", "error", err)
	}
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// It listens on the specified port and logs the server's status and any errors encountered.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - dtb: A pgxpool connector for database methods (ping)
// - port: The port number on which the server will listen.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	dtb *pgxpool.Pool,
	port int,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if err := dtb.Ping(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
		writer.WriteHeader(status)
		_, err := writer.Write([]byte(body))
		if err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
