// Package identity delegates authentication to the external identity
// provider's REST API. The service never stores credentials itself.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// AuthError carries the provider's error code (e.g. EMAIL_NOT_FOUND,
// INVALID_PASSWORD, EMAIL_EXISTS).
type AuthError struct {
	Code   string
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("identity: %s (status %d)", e.Code, e.Status)
}

// User is the provider's view of an authenticated account.
type User struct {
	UID          string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// Client calls the identity provider's accounts endpoints.
type Client struct {
	base string
	key  string
	hc   *http.Client
}

// New builds a client. key is the provider API key appended to every
// request.
func New(baseURL, key string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), key: key, hc: hc}
}

func (c *Client) post(ctx context.Context, action string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := c.base + "/accounts:" + action + "?key=" + c.key
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("identity %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		code := failure.Error.Message
		if code == "" {
			code = resp.Status
		}
		return &AuthError{Code: code, Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("identity %s: decode: %w", action, err)
	}
	return nil
}

// SignIn exchanges an email/password pair for an ID token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*User, error) {
	var user User
	err := c.post(ctx, "signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SignUp registers a new email/password account.
func (c *Client) SignUp(ctx context.Context, email, password string) (*User, error) {
	var user User
	err := c.post(ctx, "signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SendPasswordReset asks the provider to email a reset link.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

// Lookup resolves an ID token to the account's uid.
func (c *Client) Lookup(ctx context.Context, idToken string) (string, error) {
	var result struct {
		Users []struct {
			LocalID string `json:"localId"`
		} `json:"users"`
	}
	if err := c.post(ctx, "lookup", map[string]any{"idToken": idToken}, &result); err != nil {
		return "", err
	}
	if len(result.Users) == 0 {
		return "", &AuthError{Code: "USER_NOT_FOUND", Status: http.StatusUnauthorized}
	}
	return result.Users[0].LocalID, nil
}
