package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBroadcastInterval = 24 * time.Hour
	defaultPollRestartDelay  = 5 * time.Second
	defaultDigestCity        = "Москва"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken string
	DatabaseURL   string

	WeatherAPIKey string
	NewsAPIKey    string
	EventsAPIKey  string

	// Provider endpoints; empty means the provider default.
	WeatherAPIURL string
	NewsAPIURL    string
	EventsAPIURL  string

	// BroadcastTime ("HH:MM") wins over BroadcastInterval when set.
	BroadcastInterval time.Duration
	BroadcastTime     string
	DigestCity        string

	PollRestartDelay time.Duration
	HTTPAddr         string
	LogLevel         slog.Level
}

// Load reads configuration from .env (if present) and environment variables.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken: env("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:   env("DATABASE_URL"),
		WeatherAPIKey: env("WEATHER_API_KEY"),
		NewsAPIKey:    env("NEWS_API_KEY"),
		EventsAPIKey:  env("EVENTS_API_KEY"),
		WeatherAPIURL: env("WEATHER_API_URL"),
		NewsAPIURL:    env("NEWS_API_URL"),
		EventsAPIURL:  env("EVENTS_API_URL"),
		BroadcastTime: env("BROADCAST_TIME"),
		DigestCity:    env("DIGEST_CITY"),
		HTTPAddr:      env("HTTP_ADDR"),
	}

	var err error
	if cfg.BroadcastInterval, err = parseDuration("BROADCAST_INTERVAL", defaultBroadcastInterval); err != nil {
		return cfg, err
	}
	if cfg.PollRestartDelay, err = parseDuration("POLL_RESTART_DELAY", defaultPollRestartDelay); err != nil {
		return cfg, err
	}
	if cfg.LogLevel, err = parseLevel(env("LOG_LEVEL")); err != nil {
		return cfg, err
	}
	if cfg.BroadcastTime != "" {
		if _, _, err := ParseClock(cfg.BroadcastTime); err != nil {
			return cfg, fmt.Errorf("BROADCAST_TIME: %w", err)
		}
	}

	if cfg.DigestCity == "" {
		cfg.DigestCity = defaultDigestCity
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// DatabaseURL returns DATABASE_URL after loading .env, for tools that only need storage.
func DatabaseURL() string {
	_ = godotenv.Load()
	return env("DATABASE_URL")
}

// ParseClock parses an "HH:MM" wall-clock time.
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := env(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func parseLevel(raw string) (slog.Level, error) {
	if raw == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
