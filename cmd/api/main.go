package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/cellarline/cellarline-backend/api/routes"
	"github.com/cellarline/cellarline-backend/internal/cellars"
	"github.com/cellarline/cellarline-backend/internal/items"
	"github.com/cellarline/cellarline-backend/internal/media"
	"github.com/cellarline/cellarline-backend/internal/notify"
	"github.com/cellarline/cellarline-backend/internal/notifylog"
	"github.com/cellarline/cellarline-backend/internal/reminders"
	"github.com/cellarline/cellarline-backend/internal/settings"
	"github.com/cellarline/cellarline-backend/internal/users"
	"github.com/cellarline/cellarline-backend/internal/vision"
	"github.com/cellarline/cellarline-backend/pkg/config"
	"github.com/cellarline/cellarline-backend/pkg/db"
	"github.com/cellarline/cellarline-backend/pkg/line"
	"github.com/cellarline/cellarline-backend/pkg/logger"
	"github.com/cellarline/cellarline-backend/pkg/migrate"
	"github.com/cellarline/cellarline-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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
	verifier := line.NewTokenVerifier(cfg.Line, redisClient)

	usersRepo := users.NewRepository(dbClient.DB())
	settingsRepo := settings.NewRepository(dbClient.DB())
	cellarsRepo := cellars.NewRepository(dbClient.DB())
	itemsRepo := items.NewRepository(dbClient.DB())
	notifyLogRepo := notifylog.NewRepository(dbClient.DB())

	usersSvc, err := users.NewService(users.ServiceParams{
		Logger:   logg,
		Repo:     usersRepo,
		Settings: settingsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	settingsSvc, err := settings.NewService(settings.ServiceParams{
		Logger: logg,
		Repo:   settingsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	cellarsSvc, err := cellars.NewService(cellars.ServiceParams{
		Logger: logg,
		Repo:   cellarsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cellars service", err)
		os.Exit(1)
	}

	notifySvc, err := notify.NewService(notify.ServiceParams{
		Logger: logg,
		Pusher: lineClient,
		Log:    notifyLogRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notify service", err)
		os.Exit(1)
	}

	timerStore := reminders.NewTimerStore()
	defer timerStore.Stop()

	scheduler, err := reminders.NewScheduler(reminders.SchedulerParams{
		Logger:   logg,
		Store:    timerStore,
		Items:    itemsRepo,
		Notifier: notifySvc,
		Location: loc,
		LeadDays: cfg.Reminder.OpenedLeadDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reminder scheduler", err)
		os.Exit(1)
	}

	itemsSvc, err := items.NewService(items.ServiceParams{
		Logger:    logg,
		DB:        dbClient,
		Repo:      itemsRepo,
		Cellars:   cellarsRepo,
		Users:     usersRepo,
		Settings:  settingsRepo,
		Scheduler: scheduler,
		Location:  loc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create items service", err)
		os.Exit(1)
	}

	// Vision and media are optional integrations; without credentials the
	// routes answer 500 but the rest of the API stays up.
	var visionSvc *vision.Service
	if cfg.OpenAI.APIKey != "" {
		visionSvc, err = vision.NewService(logg, cfg.OpenAI)
		if err != nil {
			logg.Error(context.Background(), "failed to create vision service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "openai api key not set, label recognition disabled")
	}

	var mediaSvc *media.Service
	if cfg.Cloudinary.APIKey != "" {
		mediaSvc, err = media.NewService(logg, cfg.Cloudinary)
		if err != nil {
			logg.Error(context.Background(), "failed to create media service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "cloudinary credentials not set, label upload disabled")
	}

	router := routes.NewRouter(routes.RouterParams{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		LineClient:    lineClient,
		TokenVerifier: verifier,
		Users:         usersSvc,
		Cellars:       cellarsSvc,
		Items:         itemsSvc,
		Settings:      settingsSvc,
		Media:         mediaSvc,
		Vision:        visionSvc,
		NotifyLog:     notifyLogRepo,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down gracefully")
}
