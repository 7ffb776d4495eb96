package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-news-bot/internal/bot"
	"weather-news-bot/internal/config"
	"weather-news-bot/internal/provider"
	"weather-news-bot/internal/repository"
	"weather-news-bot/internal/server"
	"weather-news-bot/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	store := repository.NewStore(db)
	defer store.Close()

	sources := service.Sources{
		Weather: provider.NewWeatherClient(cfg.WeatherAPIKey,
			provider.WithBaseURL(cfg.WeatherAPIURL), provider.WithLogger(logger)),
		News: provider.NewNewsClient(cfg.NewsAPIKey,
			provider.WithBaseURL(cfg.NewsAPIURL), provider.WithLogger(logger)),
		Events: provider.NewEventsClient(cfg.EventsAPIKey,
			provider.WithBaseURL(cfg.EventsAPIURL), provider.WithLogger(logger)),
	}

	telegramBot, err := bot.New(cfg.TelegramToken, store, sources, logger, cfg.PollRestartDelay)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	digest := service.NewDigestService(store, sources, telegramBot.Sender(), cfg.DigestCity, logger)
	scheduler := service.NewSchedulerService(time.Local, logger)
	job := func() {
		if _, err := digest.Broadcast(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("digest", "error", err)
		}
	}

	switch {
	case cfg.BroadcastTime != "":
		if _, err := scheduler.ScheduleDaily(cfg.BroadcastTime, job); err != nil {
			log.Fatalf("schedule digest: %v", err)
		}
	case cfg.BroadcastInterval > 0:
		if _, err := scheduler.ScheduleInterval(cfg.BroadcastInterval, job); err != nil {
			log.Fatalf("schedule digest: %v", err)
		}
	default:
		logger.Info("digest disabled")
	}
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.HTTPAddr != "" {
		go func() {
			if err := server.Run(ctx, cfg.HTTPAddr, server.NewRouter(store, logger), logger); err != nil {
				logger.Error("operator endpoint", "error", err)
			}
		}()
	}

	logger.Info("info bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	logger.Info("shutdown complete")
}
