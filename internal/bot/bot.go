package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"weather-news-bot/internal/repository"
	"weather-news-bot/internal/service"
)

var errHandlerPanic = errors.New("handler panic")

// Bot aggregates the Telegram API with storage and data sources.
type Bot struct {
	api          *tgbotapi.BotAPI
	sender       service.MessageSender
	store        *repository.Store
	sources      service.Sources
	logger       *slog.Logger
	restartDelay time.Duration
	handlers     map[string]handlerFunc
}

// New authorizes against the Telegram Bot API.
func New(token string, store *repository.Store, sources service.Sources, logger *slog.Logger, restartDelay time.Duration) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Info("bot authorized", "account", api.Self.UserName)

	b := NewWithSender(&apiSender{api: api}, store, sources, logger)
	b.api = api
	b.restartDelay = restartDelay
	return b, nil
}

// NewWithSender builds a bot that replies through sender. It can dispatch
// commands but cannot poll Telegram.
func NewWithSender(sender service.MessageSender, store *repository.Store, sources service.Sources, logger *slog.Logger) *Bot {
	b := &Bot{
		sender:  sender,
		store:   store,
		sources: sources,
		logger:  logger,
	}
	b.handlers = b.routes()
	return b
}

// Sender exposes the outgoing message channel, shared with the digest service.
func (b *Bot) Sender() service.MessageSender {
	return b.sender
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot has no telegram api")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		msg := update.Message
		if msg == nil || msg.From == nil || msg.Chat == nil {
			continue
		}
		err := b.handleMessage(ctx, msg)
		if err == nil {
			continue
		}
		b.logger.Error("handle message", "chat_id", msg.Chat.ID, "text", msg.Text, "error", err)
		if errors.Is(err, errHandlerPanic) {
			if !sleepCtx(ctx, b.restartDelay) {
				break
			}
		}
	}

	return ctx.Err()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errHandlerPanic, r)
		}
	}()

	return b.Dispatch(ctx, Incoming{
		ChatID:     msg.Chat.ID,
		TelegramID: msg.From.ID,
		Name:       msg.From.FirstName,
		Text:       msg.Text,
	})
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// apiSender sends plain text messages through the Bot API.
type apiSender struct {
	api *tgbotapi.BotAPI
}

func (s *apiSender) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := s.api.Send(msg)
	return err
}
