package config

import (
	"log/slog"
	"testing"
	"time"
)

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	keys := []string{
		"TELEGRAM_BOT_TOKEN", "DATABASE_URL", "WEATHER_API_KEY", "NEWS_API_KEY", "EVENTS_API_KEY",
		"WEATHER_API_URL", "NEWS_API_URL", "EVENTS_API_URL", "BROADCAST_INTERVAL", "BROADCAST_TIME",
		"DIGEST_CITY", "POLL_RESTART_DELAY", "HTTP_ADDR", "LOG_LEVEL",
	}
	for _, k := range keys {
		t.Setenv(k, values[k])
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	setEnv(t, map[string]string{
		"TELEGRAM_BOT_TOKEN": " token ",
		"DATABASE_URL":       "sqlite:///bot.db",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TelegramToken != "token" {
		t.Errorf("TelegramToken = %q, want trimmed value", cfg.TelegramToken)
	}
	if cfg.BroadcastInterval != 24*time.Hour {
		t.Errorf("BroadcastInterval = %v, want 24h", cfg.BroadcastInterval)
	}
	if cfg.PollRestartDelay != 5*time.Second {
		t.Errorf("PollRestartDelay = %v, want 5s", cfg.PollRestartDelay)
	}
	if cfg.DigestCity != "Москва" {
		t.Errorf("DigestCity = %q, want Москва", cfg.DigestCity)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{
			name:   "missing token",
			values: map[string]string{"DATABASE_URL": "bot.db"},
		},
		{
			name:   "missing database url",
			values: map[string]string{"TELEGRAM_BOT_TOKEN": "token"},
		},
		{
			name: "bad interval",
			values: map[string]string{
				"TELEGRAM_BOT_TOKEN": "token",
				"DATABASE_URL":       "bot.db",
				"BROADCAST_INTERVAL": "daily",
			},
		},
		{
			name: "bad broadcast time",
			values: map[string]string{
				"TELEGRAM_BOT_TOKEN": "token",
				"DATABASE_URL":       "bot.db",
				"BROADCAST_TIME":     "25:00",
			},
		},
		{
			name: "bad log level",
			values: map[string]string{
				"TELEGRAM_BOT_TOKEN": "token",
				"DATABASE_URL":       "bot.db",
				"LOG_LEVEL":          "loud",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			setEnv(t, tt.values)
			if _, err := Load(); err == nil {
				t.Error("Load() expected error, got nil")
			}
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	setEnv(t, map[string]string{
		"TELEGRAM_BOT_TOKEN": "token",
		"DATABASE_URL":       "bot.db",
		"BROADCAST_INTERVAL": "1m",
		"BROADCAST_TIME":     "09:30",
		"DIGEST_CITY":        "Казань",
		"LOG_LEVEL":          "debug",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BroadcastInterval != time.Minute {
		t.Errorf("BroadcastInterval = %v, want 1m", cfg.BroadcastInterval)
	}
	if cfg.BroadcastTime != "09:30" {
		t.Errorf("BroadcastTime = %q, want 09:30", cfg.BroadcastTime)
	}
	if cfg.DigestCity != "Казань" {
		t.Errorf("DigestCity = %q, want Казань", cfg.DigestCity)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{input: "09:00", hour: 9, minute: 0},
		{input: "23:59", hour: 23, minute: 59},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "noon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			hour, minute, err := ParseClock(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && (hour != tt.hour || minute != tt.minute) {
				t.Errorf("ParseClock(%q) = %d:%d, want %d:%d", tt.input, hour, minute, tt.hour, tt.minute)
			}
		})
	}
}
