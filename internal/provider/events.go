package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultEventsURL = "https://api.timepad.ru/v1/events/"
	eventsLimit      = 5
	eventsFields     = "name,starts_at,description,url,location"
)

// Location is where an event takes place.
type Location struct {
	City    string `json:"city"`
	Address string `json:"address"`
}

// Event is an upcoming TimePad event. StartsAt is kept as the raw ISO-8601 string.
type Event struct {
	Name     string    `json:"name"`
	StartsAt string    `json:"starts_at"`
	URL      string    `json:"url"`
	Location *Location `json:"location"`
}

// EventsClient queries the TimePad events API.
type EventsClient struct {
	base
}

func NewEventsClient(apiKey string, opts ...Option) *EventsClient {
	return &EventsClient{base: newBase(defaultEventsURL, apiKey, opts)}
}

// Upcoming returns up to five confirmed events sorted by date, optionally
// filtered by city. A non-200 answer is logged and yields an empty slice.
func (c *EventsClient) Upcoming(ctx context.Context, city string) ([]Event, error) {
	query := url.Values{}
	query.Set("sort", "date")
	query.Set("limit", strconv.Itoa(eventsLimit))
	query.Set("fields", eventsFields)
	query.Set("is_deleted", "false")
	query.Set("is_confirmed", "true")
	if city != "" {
		query.Set("cities", city)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.get(ctx, query, header)
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("events provider error", "status", resp.StatusCode, "body", bodySnippet(resp.Body))
		return nil, nil
	}

	var payload struct {
		Values []Event `json:"values"`
	}
	if err := decodeJSON(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	return payload.Values, nil
}
