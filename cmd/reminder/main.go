package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mediremind/api/config"
	"github.com/mediremind/api/internal/health"
	"github.com/mediremind/api/internal/infrastructure/postgres"
	ctxlog "github.com/mediremind/api/internal/log"
	"github.com/mediremind/api/internal/metrics"
	"github.com/mediremind/api/internal/reminder"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	medicationRepo := postgres.NewMedicationRepository(pool)
	doseLogRepo := postgres.NewDoseLogRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	verificationRepo := postgres.NewVerificationRepository(pool)

	notifier := reminder.NewNotifier(
		medicationRepo,
		doseLogRepo,
		notificationRepo,
		logger,
		time.Duration(cfg.ReminderIntervalSec)*time.Second,
	)
	go notifier.Start(ctx)

	cleaner := reminder.NewCleaner(verificationRepo, logger)
	go cleaner.Start(ctx)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("reminder worker shut down")
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
