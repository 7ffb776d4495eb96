package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const defaultNewsURL = "https://newsapi.org/v2/top-headlines"

// Article is a single headline.
type Article struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// NewsClient queries NewsAPI top headlines.
type NewsClient struct {
	base
	country string
}

func NewNewsClient(apiKey string, opts ...Option) *NewsClient {
	return &NewsClient{base: newBase(defaultNewsURL, apiKey, opts), country: "us"}
}

// TopHeadlines returns current headlines in provider order. A non-200 answer
// yields an empty slice and no error; transport and decoding failures are errors.
func (c *NewsClient) TopHeadlines(ctx context.Context) ([]Article, error) {
	query := url.Values{}
	query.Set("country", c.country)
	query.Set("apiKey", c.apiKey)

	resp, err := c.get(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("news provider error", "status", resp.StatusCode, "body", bodySnippet(resp.Body))
		return nil, nil
	}

	var payload struct {
		Articles []Article `json:"articles"`
	}
	if err := decodeJSON(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("news: %w", err)
	}
	return payload.Articles, nil
}
