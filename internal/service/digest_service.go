package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"weather-news-bot/internal/model"
	"weather-news-bot/internal/repository"
)

const digestItems = 3

// ErrDigestRunning is returned when a pass is started while another one is in progress.
var ErrDigestRunning = errors.New("digest pass already running")

const (
	noNewsText   = "Свежих новостей сейчас нет."
	noEventsText = "Ближайших событий не найдено."
)

// DigestReport summarizes one broadcast pass.
type DigestReport struct {
	Total     int
	Delivered int
	Failed    int
}

// DigestService pushes weather, news and events to every subscribed user.
type DigestService struct {
	store   *repository.Store
	sources Sources
	sender  MessageSender
	city    string
	logger  *slog.Logger
	running sync.Mutex
}

func NewDigestService(store *repository.Store, sources Sources, sender MessageSender, city string, logger *slog.Logger) *DigestService {
	return &DigestService{
		store:   store,
		sources: sources,
		sender:  sender,
		city:    city,
		logger:  logger,
	}
}

// Broadcast runs one pass over the subscribed users. Users are processed one
// after another; a failure for one user is logged and the pass moves on.
// Messages already delivered to a failed user stay delivered.
func (s *DigestService) Broadcast(ctx context.Context) (DigestReport, error) {
	if !s.running.TryLock() {
		return DigestReport{}, ErrDigestRunning
	}
	defer s.running.Unlock()

	logger := s.logger.With("pass", uuid.NewString())

	var users []model.User
	err := s.store.Session(ctx, func(sess *repository.Session) error {
		var err error
		users, err = sess.Users.ListSubscribed(ctx)
		return err
	})
	if err != nil {
		return DigestReport{}, fmt.Errorf("list subscribers: %w", err)
	}

	report := DigestReport{Total: len(users)}
	logger.Info("digest pass started", "subscribers", len(users))

	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.deliver(ctx, logger, user); err != nil {
			report.Failed++
			logger.Error("digest delivery failed", "telegram_id", user.TelegramID, "error", err)
			continue
		}
		report.Delivered++
	}

	logger.Info("digest pass finished", "total", report.Total, "delivered", report.Delivered, "failed", report.Failed)
	return report, nil
}

func (s *DigestService) deliver(ctx context.Context, logger *slog.Logger, user model.User) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	chatID := user.TelegramID

	weather, err := s.sources.Weather.Current(ctx, s.city)
	if err != nil {
		return fmt.Errorf("weather: %w", err)
	}
	if err := s.sender.SendText(ctx, chatID, FormatWeather(s.city, *weather)); err != nil {
		return fmt.Errorf("send weather: %w", err)
	}

	// News and events failures degrade to the placeholder text.
	articles, err := s.sources.News.TopHeadlines(ctx)
	if err != nil {
		logger.Warn("digest news unavailable", "telegram_id", chatID, "error", err)
		articles = nil
	}
	newsText := FormatNews(articles, digestItems)
	if newsText == "" {
		newsText = noNewsText
	}
	if err := s.sender.SendText(ctx, chatID, newsText); err != nil {
		return fmt.Errorf("send news: %w", err)
	}

	events, err := s.sources.Events.Upcoming(ctx, s.city)
	if err != nil {
		logger.Warn("digest events unavailable", "telegram_id", chatID, "city", s.city, "error", err)
		events = nil
	}
	if len(events) > digestItems {
		events = events[:digestItems]
	}
	eventsText := FormatEvents(events)
	if eventsText == "" {
		eventsText = noEventsText
	}
	if err := s.sender.SendText(ctx, chatID, eventsText); err != nil {
		return fmt.Errorf("send events: %w", err)
	}

	return nil
}
