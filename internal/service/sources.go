package service

import (
	"context"

	"weather-news-bot/internal/provider"
)

// WeatherSource returns the current weather for a city.
type WeatherSource interface {
	Current(ctx context.Context, city string) (*provider.Weather, error)
}

// NewsSource returns top headlines.
type NewsSource interface {
	TopHeadlines(ctx context.Context) ([]provider.Article, error)
}

// EventSource returns upcoming events, optionally for one city.
type EventSource interface {
	Upcoming(ctx context.Context, city string) ([]provider.Event, error)
}

// Sources bundles the external data providers.
type Sources struct {
	Weather WeatherSource
	News    NewsSource
	Events  EventSource
}

// MessageSender delivers a text message to a chat.
type MessageSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}
