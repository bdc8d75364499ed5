package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskdeck/internal/config"
	"taskdeck/internal/logging"
)

// TokenSource supplies the current bearer token and lets the client clear
// it when the server rejects it. The session store implements this.
type TokenSource interface {
	Token() string
	Clear()
}

// Client is the gateway to the task API. Every request carries the bearer
// token when one is present; every 401 response clears the session and
// fires the unauthorized hook, no matter which caller issued the request.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func()
	log            logging.Logger
}

func NewClient(cfg config.ServerConfig, tokens TokenSource, log logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
		tokens: tokens,
		log:    log,
	}
}

// SetUnauthorizedHook registers the callback fired after a 401 has cleared
// the session. The TUI uses it to route back to the sign-in view.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

// do issues an authenticated JSON request. A nil payload sends no body; a
// nil out discards the response body. 401 responses are handled centrally
// and surface as ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	resp, err := c.send(ctx, method, path, payload, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Warn(ctx, "request unauthorized, clearing session", "method", method, "path", path)
		if c.tokens != nil {
			c.tokens.Clear()
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: readDetail(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeJSON(resp.Body, out)
}

func decodeJSON(r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send builds and issues the request. withToken controls whether the
// Authorization header is attached; the auth endpoints go without it.
func (c *Client) send(ctx context.Context, method, path string, payload any, withToken bool) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withToken && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

// readDetail extracts the server's error message. The backend wraps it as
// {"detail": "..."}; anything else falls back to the raw body.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil && strings.TrimSpace(body.Detail) != "" {
		return strings.TrimSpace(body.Detail)
	}
	return strings.TrimSpace(string(data))
}
