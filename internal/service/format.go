package service

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"weather-news-bot/internal/provider"
)

const (
	newsLimit       = 5
	untitledArticle = "Без заголовка"
	untitledEvent   = "Без названия"
	unknownDate     = "Дата неизвестна"
)

// eventDateLayouts are tried in order; TimePad uses an offset without a colon.
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FormatWeather renders a reading for the requested city.
func FormatWeather(city string, w provider.Weather) string {
	return fmt.Sprintf(
		"Погода в городе %s:\n%s\nТемпература: %d°C\nВлажность: %d%%\nВетер: %d м/с",
		city,
		capitalize(w.Description),
		int(math.Round(w.Temp)),
		w.Humidity,
		int(math.Round(w.WindSpeed)),
	)
}

// FormatNews renders at most limit articles as "title\nurl" blocks.
// A non-positive limit falls back to five.
func FormatNews(articles []provider.Article, limit int) string {
	if limit <= 0 {
		limit = newsLimit
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}

	blocks := make([]string, 0, len(articles))
	for _, a := range articles {
		title := strings.TrimSpace(a.Title)
		if title == "" {
			title = untitledArticle
		}
		blocks = append(blocks, title+"\n"+a.URL)
	}
	return strings.Join(blocks, "\n\n")
}

// FormatEvents renders events as "name (city, address)\nДата: date\nurl" blocks.
func FormatEvents(events []provider.Event) string {
	blocks := make([]string, 0, len(events))
	for _, ev := range events {
		name := plainText(ev.Name)
		if name == "" {
			name = untitledEvent
		}

		var location string
		if ev.Location != nil {
			city := strings.TrimSpace(ev.Location.City)
			address := plainText(ev.Location.Address)
			if city != "" || address != "" {
				location = fmt.Sprintf(" (%s, %s)", city, address)
			}
		}

		date := unknownDate
		if ev.StartsAt != "" {
			date = FormatEventDate(ev.StartsAt)
		}

		blocks = append(blocks, fmt.Sprintf("%s%s\nДата: %s\n%s", name, location, date, ev.URL))
	}
	return strings.Join(blocks, "\n\n")
}

// FormatEventDate converts an ISO-8601 timestamp to "dd.mm.yyyy, HH:MM" in the
// timestamp's own offset. Unparseable input is returned unchanged.
func FormatEventDate(raw string) string {
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("02.01.2006, 15:04")
		}
	}
	return raw
}

// plainText decodes HTML entities. Angle brackets are escaped first so text
// that looks like a tag survives parsing.
func plainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.Contains(s, "&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(strings.ReplaceAll(s, "<", "&lt;")))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
