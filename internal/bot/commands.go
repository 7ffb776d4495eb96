package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"weather-news-bot/internal/model"
	"weather-news-bot/internal/provider"
	"weather-news-bot/internal/repository"
	"weather-news-bot/internal/service"
)

const (
	defaultName  = "Пользователь"
	historyLimit = 10
	newsLimit    = 5
)

const (
	helpText = "Доступные команды:\n" +
		"/start - запустить бота\n" +
		"/help - показать это меню\n" +
		"/weather <город> - узнать погоду\n" +
		"/news - свежие новости\n" +
		"/events [город] - события рядом\n" +
		"/subscribe - ежедневная рассылка\n" +
		"/unsubscribe - отписаться от рассылки\n" +
		"/history - последние запросы"
	greetingTail       = "Я твой информационный помощник. \n\nНабери /help, чтобы узнать, что я умею."
	weatherNoCityText  = "Пожалуйста, укажите город. Пример: /weather Москва"
	weatherErrorText   = "Не удалось получить погоду. Попробуйте позже."
	newsEmptyText      = "Не удалось получить новости. Попробуйте позже."
	newsErrorText      = "Произошла ошибка при получении новостей."
	eventsEmptyText    = "Не удалось найти события. Попробуйте позже или укажите другой город."
	eventsErrorText    = "Произошла ошибка при получении событий."
	subscribedText     = "Вы подписались на рассылку: погода, новости и события."
	unsubscribedText   = "Вы отписались от рассылки."
	historyEmptyText   = "История запросов пуста."
	suffixNoCity       = " (без города)"
	suffixCityNotFound = " (город не найден)"
	suffixError        = " (ошибка)"
	suffixFetchFailed  = " (ошибка получения)"
	suffixNothingFound = " (не найдено)"
)

// Incoming is a text message received from a chat.
type Incoming struct {
	ChatID     int64
	TelegramID int64
	Name       string
	Text       string
}

type handlerFunc func(ctx context.Context, s *repository.Session, in Incoming, args string) error

func (b *Bot) routes() map[string]handlerFunc {
	return map[string]handlerFunc{
		"start":       b.handleStart,
		"help":        b.handleHelp,
		"weather":     b.handleWeather,
		"news":        b.handleNews,
		"events":      b.handleEvents,
		"subscribe":   b.handleSubscribe,
		"unsubscribe": b.handleUnsubscribe,
		"history":     b.handleHistory,
	}
}

// Dispatch routes a message to its command handler. Text that is not a known
// command is ignored. Each command runs in its own storage session.
func (b *Bot) Dispatch(ctx context.Context, in Incoming) error {
	name, args, ok := parseCommand(in.Text)
	if !ok {
		return nil
	}
	handler, ok := b.handlers[name]
	if !ok {
		return nil
	}

	b.logger.Info("command", "telegram_id", in.TelegramID, "command", name, "args", args)
	return b.store.Session(ctx, func(s *repository.Session) error {
		return handler(ctx, s, in, args)
	})
}

// parseCommand splits "/name@bot rest" on the first whitespace run.
func parseCommand(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head := text[1:]
	if i := strings.IndexFunc(head, unicode.IsSpace); i >= 0 {
		args = strings.TrimSpace(head[i:])
		head = head[:i]
	}
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	if head == "" {
		return "", "", false
	}
	return head, args, true
}

func displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultName
	}
	return name
}

func (b *Bot) ensureUser(ctx context.Context, s *repository.Session, in Incoming) (*model.User, error) {
	return s.Users.GetOrCreate(ctx, in.TelegramID, displayName(in.Name))
}

func (b *Bot) reply(ctx context.Context, in Incoming, text string) error {
	return b.sender.SendText(ctx, in.ChatID, text)
}

// record writes the log entry for a handled command.
func (b *Bot) record(ctx context.Context, s *repository.Session, user *model.User, command string) error {
	_, err := s.Logs.Create(ctx, user.ID, command)
	return err
}

// recordFailure writes a log entry on a failure path; storage errors are only reported.
func (b *Bot) recordFailure(ctx context.Context, s *repository.Session, user *model.User, command string) {
	if _, err := s.Logs.Create(ctx, user.ID, command); err != nil {
		b.logger.Warn("write failure log", "user_id", user.ID, "command", command, "error", err)
	}
}

func (b *Bot) handleStart(ctx context.Context, s *repository.Session, in Incoming, _ string) error {
	user, err := b.ensureUser(ctx, s, in)
	if err == nil {
		err = b.record(ctx, s, user, "/start")
	}
	if err != nil {
		b.logger.Error("start: storage", "telegram_id", in.TelegramID, "error", err)
		return b.reply(ctx, in, "Привет! "+greetingTail)
	}
	return b.reply(ctx, in, fmt.Sprintf("Привет, %s! %s", user.Name, greetingTail))
}

func (b *Bot) handleHelp(ctx context.Context, s *repository.Session, in Incoming, _ string) error {
	user, err := b.ensureUser(ctx, s, in)
	if err == nil {
		err = b.record(ctx, s, user, "/help")
	}
	if err != nil {
		b.logger.Error("help: storage", "telegram_id", in.TelegramID, "error", err)
	}
	return b.reply(ctx, in, helpText)
}

func (b *Bot) handleWeather(ctx context.Context, s *repository.Session, in Incoming, city string) error {
	user, err := b.ensureUser(ctx, s, in)
	if err != nil {
		return err
	}

	if city == "" {
		if err := b.reply(ctx, in, weatherNoCityText); err != nil {
			return err
		}
		return b.record(ctx, s, user, "/weather"+suffixNoCity)
	}

	command := "/weather " + city
	weather, err := b.sources.Weather.Current(ctx, city)
	switch {
	case errors.Is(err, provider.ErrCityNotFound):
		b.recordFailure(ctx, s, user, command+suffixCityNotFound)
		return b.reply(ctx, in, fmt.Sprintf("Город '%s' не найден. Попробуйте еще раз.", city))
	case err != nil:
		b.logger.Error("weather provider", "city", city, "error", err)
		b.recordFailure(ctx, s, user, command+suffixError)
		return b.reply(ctx, in, weatherErrorText)
	}

	if err := b.reply(ctx, in, service.FormatWeather(city, *weather)); err != nil {
		return err
	}
	return b.record(ctx, s, user, command)
}

func (b *Bot) handleNews(ctx context.Context, s *repository.Session, in Incoming, _ string) error {
	user, err := b.ensureUser(ctx, s, in)
	if err != nil {
		return err
	}

	articles, err := b.sources.News.TopHeadlines(ctx)
	if err != nil {
		b.logger.Error("news provider", "error", err)
		b.recordFailure(ctx, s, user, "/news"+suffixError)
		return b.reply(ctx, in, newsErrorText)
	}
	if len(articles) == 0 {
		b.recordFailure(ctx, s, user, "/news"+suffixFetchFailed)
		return b.reply(ctx, in, newsEmptyText)
	}

	if err := b.reply(ctx, in, service.FormatNews(articles, newsLimit)); err != nil {
		return err
	}
	return b.record(ctx, s, user, "/news")
}

func (b *Bot) handleEvents(ctx context.Context, s *repository.Session, in Incoming, city string) error {
	user, err := b.ensureUser(ctx, s, in)
	if err != nil {
		return err
	}

	events, err := b.sources.Events.Upcoming(ctx, city)
	if err != nil {
		b.logger.Error("events provider", "city", city, "error", err)
		b.recordFailure(ctx, s, user, "/events"+suffixError)
		return b.reply(ctx, in, eventsErrorText)
	}
	if len(events) == 0 {
		b.recordFailure(ctx, s, user, "/events"+suffixNothingFound)
		return b.reply(ctx, in, eventsEmptyText)
	}

	if err := b.reply(ctx, in, service.FormatEvents(events)); err != nil {
		return err
	}
	return b.record(ctx, s, user, "/events")
}

func (b *Bot) handleSubscribe(ctx context.Context, s *repository.Session, in Incoming, _ string) error {
	return b.setSubscription(ctx, s, in, model.Subscribed, subscribedText)
}

func (b *Bot) handleUnsubscribe(ctx context.Context, s *repository.Session, in Incoming, _ string) error {
	return b.setSubscription(ctx, s, in, model.Unsubscribed, unsubscribedText)
}

// setSubscription does not write a command log.
func (b *Bot) setSubscription(ctx context.Context, s *repository.Session, in Incoming, state model.SubscriptionState, confirmation string) error {
	if _, err := b.ensureUser(ctx, s, in); err != nil {
		return err
	}
	if _, err := s.Users.SetSubscription(ctx, in.TelegramID, state); err != nil {
		return err
	}
	b.logger.Info("subscription changed", "telegram_id", in.TelegramID, "state", state)
	return b.reply(ctx, in, confirmation)
}

func (b *Bot) handleHistory(ctx context.Context, s *repository.Session, in Incoming, _ string) error {
	user, err := b.ensureUser(ctx, s, in)
	if err != nil {
		return err
	}

	logs, err := s.Logs.ListByUser(ctx, user.ID, historyLimit)
	if err != nil {
		return err
	}

	text := historyEmptyText
	if len(logs) > 0 {
		var sb strings.Builder
		sb.WriteString("Последние запросы:\n")
		for _, entry := range logs {
			sb.WriteString(fmt.Sprintf("%s  %s\n", entry.Timestamp.Format("02.01.2006 15:04"), entry.Command))
		}
		text = strings.TrimSpace(sb.String())
	}

	if err := b.reply(ctx, in, text); err != nil {
		return err
	}
	return b.record(ctx, s, user, "/history")
}
