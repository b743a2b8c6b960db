// Package weather consumes the third-party weather API. Responses are
// passed through unmodified; the dashboard renders the provider JSON
// directly.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client fetches current conditions and forecasts.
type Client struct {
	base string
	key  string
	hc   *http.Client
}

// New builds a client for the API rooted at baseURL (e.g.
// https://api.openweathermap.org/data/2.5).
func New(baseURL, key string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), key: key, hc: hc}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	query.Set("appid", c.key)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("weather %s: unexpected status %s", path, resp.Status)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("weather %s: decode: %w", path, err)
	}
	return raw, nil
}

// Current returns the provider's current-conditions JSON for a city.
func (c *Client) Current(ctx context.Context, city string) (json.RawMessage, error) {
	return c.get(ctx, "/weather", url.Values{"q": {city}})
}

// Forecast returns the provider's forecast JSON for coordinates.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	return c.get(ctx, "/forecast", url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	})
}
