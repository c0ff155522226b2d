package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	// report timezones must resolve on hosts without a zoneinfo database.
	_ "time/tzdata"

	"github.com/UnknownOlympus/aeolus/internal/auth"
	"github.com/UnknownOlympus/aeolus/internal/client"
	"github.com/UnknownOlympus/aeolus/internal/config"
	"github.com/UnknownOlympus/aeolus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/aeolus/internal/metrics"
	"github.com/UnknownOlympus/aeolus/internal/repository"
	"github.com/UnknownOlympus/aeolus/internal/server"
	"github.com/UnknownOlympus/aeolus/internal/services/attachments"
	"github.com/UnknownOlympus/aeolus/internal/services/employees"
	"github.com/UnknownOlympus/aeolus/internal/services/payments"
	"github.com/UnknownOlympus/aeolus/internal/services/reports"
	"github.com/UnknownOlympus/aeolus/internal/services/tasks"
	"github.com/UnknownOlympus/aeolus/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"

	healthProbeTimeout = 5 * time.Second
	readHeaderTimeout  = 10 * time.Second
)

// main is the entry point of the application.
func main() {
	var wgr sync.WaitGroup

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dtb, err := repository.NewDatabase(
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Dbname)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	reportTZ, err := time.LoadLocation(cfg.Report.DefaultTimezone)
	if err != nil {
		log.Fatalf("Failed to load report timezone: %v", err)
	}

	files := storage.NewLocalStorage(cfg.Storage.Root, cfg.Storage.PublicURL, cfg.Storage.SigningSecret, cfg.Storage.URLTTL)

	taskRepo := repository.NewTaskRepository(dtb, appMetrics)
	activityRepo := repository.NewActivityRepository(dtb, appMetrics)
	paymentRepo := repository.NewPaymentRepository(dtb, appMetrics)
	attachmentRepo := repository.NewAttachmentRepository(dtb, appMetrics)
	employeeRepo := repository.NewEmployeeRepository(dtb, appMetrics)
	reportRepo := repository.NewReportRepository(dtb, appMetrics)

	services := server.Services{
		Tasks: tasks.NewTaskService(logger, taskRepo, activityRepo, appMetrics),
		Payments: payments.NewPaymentService(logger, taskRepo, paymentRepo, files, appMetrics,
			cfg.Storage.MaxUploadSize),
		Attachments: attachments.NewAttachmentService(logger, taskRepo, attachmentRepo, files, appMetrics,
			cfg.Storage.MaxUploadSize, cfg.Features.WorkerUploads),
		Staff:   employees.NewStaff(logger, employeeRepo, appMetrics, cfg.Features.PlaceholderEmails),
		Reports: reports.NewReportService(logger, employeeRepo, reportRepo, appMetrics, reportTZ),
	}
	api := server.NewAPI(logger, services, auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer), files,
		appMetrics, cfg.HTTP, cfg.Storage.MaxUploadSize)

	health := server.NewHealthChecker(dtb, cfg.Auth.Issuer, client.CreateHTTPClient(logger, healthProbeTimeout), logger)

	wgr.Add(2) //nolint:mnd // monitoring and API servers

	go func() {
		defer wgr.Done()
		server.StartMonitoringServer(ctx, logger, cfg.HTTP.MonitoringAddr, server.NewMonitoringHandler(reg, health))
	}()

	go func() {
		defer wgr.Done()
		runAPI(ctx, logger, cfg.HTTP, api.Routes())
	}()

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.", "features", cfg.Features)

	wgr.Wait()

	logger.InfoContext(context.Background(), "Application stopped gracefully...")
}

// runAPI serves the API until ctx is cancelled, then drains in-flight requests.
func runAPI(ctx context.Context, logger *slog.Logger, cfg config.HTTPConfig, handler http.Handler) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "API server started", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "API server failed", sl.Err(err))
		}
		return
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "API server shutdown failed", sl.Err(err))
	}
	logger.InfoContext(shutdownCtx, "API server stopped.")
}

// setupLogger initializes and returns a logger based on the environment provided.
// Credential-like attributes are redacted in every environment.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelDebug,
				AddSource:   false,
				ReplaceAttr: sl.Redact,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelInfo,
				AddSource:   false,
				ReplaceAttr: sl.Redact,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				AddSource:   false,
				ReplaceAttr: withoutTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				AddSource:   false,
				ReplaceAttr: withoutTime,
			}),
		)

		log.Error(
			"The env parameter was not specified, or was invalid. Logging will be minimal, by default." +
				" Please specify the value of `env`: local, development, production")
	}

	return log
}

func withoutTime(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{Key: "", Value: slog.Value{}}
	}
	return sl.Redact(groups, a)
}
