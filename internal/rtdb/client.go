// Package rtdb is a narrow REST client for the realtime document store
// that holds live greenhouse state. Paths are namespaced per user, e.g.
// users/{uid}/greenhouse.
package rtdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to the realtime store's REST surface.
type Client struct {
	base   string
	secret string
	hc     *http.Client
}

// New builds a client for the store rooted at baseURL. secret is an
// optional legacy auth token appended to every request.
func New(baseURL, secret string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), secret: secret, hc: hc}
}

func (c *Client) url(path string) string {
	u := c.base + "/" + strings.Trim(path, "/") + ".json"
	if c.secret != "" {
		u += "?auth=" + c.secret
	}
	return u
}

// Get reads the JSON snapshot at path. A missing node comes back as the
// JSON literal null, which is returned as-is.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rtdb get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rtdb get %s: unexpected status %s", path, resp.Status)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("rtdb get %s: decode: %w", path, err)
	}
	return raw, nil
}

// Put replaces the value at path.
func (c *Client) Put(ctx context.Context, path string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url(path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("rtdb put %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("rtdb put %s: unexpected status %s", path, resp.Status)
	}
	return nil
}
