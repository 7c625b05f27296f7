package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnhub/config"
	"learnhub/database"
	"learnhub/routers"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

	database.ConnectDb()
	utils.InitFileStore(cfg)
	utils.InitNotifier(cfg.NotifyWebhook)

	opts := routers.Options{
		CorsOrigins:      cfg.CorsOrigins,
		UploadDir:        cfg.UploadDir,
		MetricsEnabled:   cfg.MetricsEnabled,
		AccessLog:        true,
		LoginRateLimit:   cfg.LoginRateLimit,
		ContactRateLimit: cfg.ContactRateLimit,
	}

	var redisStorage *utils.RedisStorage
	if cfg.RedisURL != "" {
		storage, err := utils.NewRedisStorage(cfg.RedisURL, "learnhub:limiter:")
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, rate limits are per instance")
		} else {
			redisStorage = storage
			opts.LimiterStorage = storage
		}
	}

	scheduler, err := utils.InitializeWebinarScheduler(cfg.ReminderCron)
	if err != nil {
		log.Fatal().Err(err).Str("spec", cfg.ReminderCron).Msg("Invalid REMINDER_CRON")
	}

	app := routers.NewApp(opts)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server is running")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down...")

	shutdown(app, scheduler.Stop(), redisStorage)
}

func shutdown(app *fiber.App, cronDone context.Context, redisStorage *utils.RedisStorage) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	select {
	case <-cronDone.Done():
	case <-ctx.Done():
		log.Warn().Msg("Reminder job still running at shutdown")
	}

	if redisStorage != nil {
		if err := redisStorage.Close(); err != nil {
			log.Error().Err(err).Msg("closing redis")
		}
	}
	database.Close(ctx)
	log.Info().Msg("Shutdown complete")
}
