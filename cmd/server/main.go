package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/mediremind/api/config"
	"github.com/mediremind/api/internal/email"
	"github.com/mediremind/api/internal/health"
	"github.com/mediremind/api/internal/infrastructure/postgres"
	ctxlog "github.com/mediremind/api/internal/log"
	"github.com/mediremind/api/internal/metrics"
	"github.com/mediremind/api/internal/ratelimit"
	httptransport "github.com/mediremind/api/internal/transport/http"
	"github.com/mediremind/api/internal/transport/http/handler"
	"github.com/mediremind/api/internal/usecase"
	"github.com/mediremind/api/migrations"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		stop()
		log.Fatalf("migrations: %v", err)
	}
	logger.Info("migrations applied")

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	verificationRepo := postgres.NewVerificationRepository(pool)
	medicationRepo := postgres.NewMedicationRepository(pool)
	doseLogRepo := postgres.NewDoseLogRepository(pool)
	moodRepo := postgres.NewMoodRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)

	limiter := ratelimit.New(cfg.LockoutMaxAttempts, time.Duration(cfg.LockoutMinutes)*time.Minute)
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	authUsecase := usecase.NewAuthUsecase(userRepo, verificationRepo, limiter, sender, []byte(cfg.JWTSecret), logger)
	authUsecase.SetCodeTTL(time.Duration(cfg.CodeTTLMin) * time.Minute)
	userUsecase := usecase.NewUserUsecase(userRepo, doseLogRepo, notificationRepo, logger)
	medicationUsecase := usecase.NewMedicationUsecase(medicationRepo, doseLogRepo)
	moodUsecase := usecase.NewMoodUsecase(moodRepo)
	notificationUsecase := usecase.NewNotificationUsecase(notificationRepo)

	handlers := httptransport.Handlers{
		Auth:         handler.NewAuthHandler(authUsecase, logger),
		User:         handler.NewUserHandler(userUsecase, logger),
		Medication:   handler.NewMedicationHandler(medicationUsecase, logger),
		Mood:         handler.NewMoodHandler(moodUsecase, logger),
		Notification: handler.NewNotificationHandler(notificationUsecase, logger),
	}

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, handlers, []byte(cfg.JWTSecret)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	return migrations.Migrate(db)
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
