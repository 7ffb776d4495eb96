package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

const defaultWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// ErrCityNotFound is returned when the weather payload carries a non-200 cod.
var ErrCityNotFound = errors.New("city not found")

// Weather is a current weather reading in metric units.
type Weather struct {
	City        string
	Description string
	Temp        float64
	Humidity    int
	WindSpeed   float64
}

// WeatherClient queries the OpenWeatherMap current weather endpoint.
type WeatherClient struct {
	base
}

func NewWeatherClient(apiKey string, opts ...Option) *WeatherClient {
	return &WeatherClient{base: newBase(defaultWeatherURL, apiKey, opts)}
}

// responseCode accepts cod both as a number (200) and as a string ("404").
type responseCode int

func (c *responseCode) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("invalid cod %q", data)
	}
	*c = responseCode(n)
	return nil
}

type weatherResponse struct {
	Cod     responseCode `json:"cod"`
	Message string       `json:"message"`
	Name    string       `json:"name"`
	Main    struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current fetches the current weather for city. The payload is decoded
// regardless of HTTP status since the provider reports failures in cod.
func (c *WeatherClient) Current(ctx context.Context, city string) (*Weather, error) {
	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")
	query.Set("lang", "ru")

	resp, err := c.get(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}
	defer resp.Body.Close()

	var payload weatherResponse
	if err := decodeJSON(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}

	if payload.Cod != 200 {
		c.logger.Info("weather provider rejected city", "city", city, "cod", int(payload.Cod), "message", payload.Message)
		return nil, fmt.Errorf("weather %q: %w", city, ErrCityNotFound)
	}

	w := &Weather{
		City:      payload.Name,
		Temp:      payload.Main.Temp,
		Humidity:  payload.Main.Humidity,
		WindSpeed: payload.Wind.Speed,
	}
	if len(payload.Weather) > 0 {
		w.Description = payload.Weather[0].Description
	}
	return w, nil
}
