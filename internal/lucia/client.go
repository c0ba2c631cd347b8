// Package lucia is a typed client for the Lucia backend REST API.
// The dashboard never talks to model providers or MCP servers itself;
// everything goes through the backend, authenticated with a session
// token derived from the configured API key.
package lucia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"luciadash/internal/version"
)

// Client talks to the Lucia backend.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	apiKey string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// New creates a backend client. baseURL must not have a trailing slash.
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type sessionRequest struct {
	APIKey string `json:"apiKey"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// sessionToken returns a valid backend session token, requesting a new
// one when none is cached or the cached one is about to expire. An
// empty API key disables authentication entirely (open backend).
func (c *Client) sessionToken(ctx context.Context) (string, error) {
	if c.apiKey == "" {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.tokenExpiry) > 30*time.Second {
		return c.token, nil
	}

	body, err := json.Marshal(sessionRequest{APIKey: c.apiKey})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/auth/session", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to open backend session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", parseAPIError(resp)
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("failed to decode session response: %w", err)
	}

	c.token = session.Token
	c.tokenExpiry = session.ExpiresAt
	return c.token, nil
}

// invalidateToken drops the cached session token so the next request
// authenticates again.
func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

// do performs a JSON request against the backend. A nil body sends no
// payload; a nil out discards the response body. A 401 is retried once
// with a fresh session token before being surfaced.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	resp, err := c.roundTrip(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

// doRaw performs a request and hands the raw response to the caller,
// who owns closing the body. Used for streaming export downloads.
func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values) (*http.Response, error) {
	resp, err := c.roundTrip(ctx, method, path, query, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseAPIError(resp)
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	send := func(token string) (*http.Response, error) {
		reqURL := c.BaseURL + path
		if len(query) > 0 {
			reqURL += "?" + query.Encode()
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", version.UserAgent())
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		start := time.Now()
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			requestDuration.WithLabelValues(method, "error").Observe(time.Since(start).Seconds())
			return nil, fmt.Errorf("backend request failed: %w", err)
		}
		requestDuration.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
		return resp, nil
	}

	token, err := c.sessionToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := send(token)
	if err != nil {
		return nil, err
	}

	// The session token may have been revoked server-side; retry once
	// with a fresh one.
	if resp.StatusCode == http.StatusUnauthorized && c.apiKey != "" {
		resp.Body.Close()
		c.invalidateToken()
		token, err = c.sessionToken(ctx)
		if err != nil {
			return nil, err
		}
		return send(token)
	}

	return resp, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// parseAPIError extracts the backend's error message from a non-2xx
// response. Backend errors come as {"error": "..."} or {"message": "..."}.
func parseAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			apiErr.Message = parsed.Error
		} else if parsed.Message != "" {
			apiErr.Message = parsed.Message
		}
	}

	return apiErr
}
