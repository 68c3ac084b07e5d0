package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cellarline/cellarline-backend/internal/cellars"
	"github.com/cellarline/cellarline-backend/internal/cron"
	"github.com/cellarline/cellarline-backend/internal/items"
	"github.com/cellarline/cellarline-backend/internal/notify"
	"github.com/cellarline/cellarline-backend/internal/notifylog"
	"github.com/cellarline/cellarline-backend/internal/users"
	"github.com/cellarline/cellarline-backend/pkg/config"
	"github.com/cellarline/cellarline-backend/pkg/db"
	"github.com/cellarline/cellarline-backend/pkg/line"
	"github.com/cellarline/cellarline-backend/pkg/logger"
	"github.com/cellarline/cellarline-backend/pkg/metrics"
	"github.com/cellarline/cellarline-backend/pkg/migrate"
	"github.com/cellarline/cellarline-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	loc, err := cfg.Reminder.Location()
	if err != nil {
		logg.Error(context.Background(), "failed to resolve reference timezone", err)
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	lineClient, err := line.New(cfg.Line)
	if err != nil {
		logg.Error(context.Background(), "failed to create line client", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	cellarsRepo := cellars.NewRepository(dbClient.DB())
	itemsRepo := items.NewRepository(dbClient.DB())
	notifyLogRepo := notifylog.NewRepository(dbClient.DB())

	notifySvc, err := notify.NewService(notify.ServiceParams{
		Logger: logg,
		Pusher: lineClient,
		Log:    notifyLogRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notify service", err)
		os.Exit(1)
	}

	sweepJob, err := cron.NewDrinkBySweepJob(cron.DrinkBySweepJobParams{
		Logger:     logg,
		Recipients: usersRepo,
		Items:      itemsRepo,
		Notifier:   notifySvc,
		Location:   loc,
		Tolerance:  cfg.Reminder.SweepTolerance,
		ItemLimit:  cfg.Reminder.DigestItemLimit,
		WindowDays: cfg.Reminder.WarningWindowDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create drink-by sweep job", err)
		os.Exit(1)
	}

	spaceJob, err := cron.NewSpaceWarningJob(cron.SpaceWarningJobParams{
		Logger:     logg,
		Recipients: usersRepo,
		Usage:      cellarsRepo,
		Notifier:   notifySvc,
		Location:   loc,
		Tolerance:  cfg.Reminder.SweepTolerance,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create space warning job", err)
		os.Exit(1)
	}

	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notifyLogRepo,
		Retention:  cfg.Cron.NotificationRetention,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redis.LockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(sweepJob, spaceJob, cleanupJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	go serveMetrics(ctx, logg, cfg.App.Port)

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func serveMetrics(ctx context.Context, logg *logger.Logger, port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "metrics server stopped unexpectedly", err)
	}
}
