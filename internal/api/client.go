// Package api wraps all outbound requests to the ordering backend: bearer
// token injection, bounded waits, error classification, and centralized 401
// handling.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxResponseSize bounds response bodies read into memory.
const maxResponseSize = 4 * 1024 * 1024

// TokenSource supplies the current session token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Client is the HTTP adapter every component talks to the backend through.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	retry      RetryConfig
	logger     *slog.Logger
	metrics    *Metrics

	// onUnauthorized runs before a 401 error propagates to the caller.
	// Fire-and-forget cleanup: it must not fail the request further.
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) { client.httpClient = c }
}

// WithTimeout bounds every request's wait time.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) { client.httpClient.Timeout = d }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(client *Client) { client.tokens = ts }
}

// WithUnauthorizedHook sets the cleanup run on any 401 response.
func WithUnauthorizedHook(fn func()) Option {
	return func(client *Client) { client.onUnauthorized = fn }
}

// WithRetryConfig sets the retry policy for read operations.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(client *Client) { client.retry = cfg }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) { client.logger = logger }
}

// WithMetrics enables request counters.
func WithMetrics(m *Metrics) Option {
	return func(client *Client) { client.metrics = m }
}

// New creates a Client for the given API base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry:  DefaultRetryConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends one request. body is JSON-encoded when non-nil; the response body
// is decoded into out when out is non-nil. Failures are always classified:
// *TimeoutError, *NetworkError, or *HTTPError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	err := c.doOnce(ctx, method, path, query, body, out)
	c.metrics.observe(method, path, err)
	return err
}

// Get fetches path, decoding the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// GetWithRetry fetches path under the capped retry loop. Only inconclusive
// failures (timeout, network, 5xx) are retried; a definitive status comes back
// immediately.
func (c *Client) GetWithRetry(ctx context.Context, path string, query url.Values, out any) error {
	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		err := c.Do(ctx, http.MethodGet, path, query, nil, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}
		if attempt == c.retry.MaxAttempts {
			break
		}

		backoff := c.retry.backoffFor(attempt)
		c.logger.Debug("request failed, retrying",
			"path", path,
			"attempt", attempt,
			"max_attempts", c.retry.MaxAttempts,
			"backoff", backoff,
			"error", err)
		select {
		case <-ctx.Done():
			// Keep the error classified: a deadline mid-backoff is a
			// timeout like any other.
			return classifyTransport(ctx.Err())
		case <-time.After(backoff):
		}
	}
	return lastErr
}

// Post sends a JSON body to path.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put sends a JSON body to path.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete sends a JSON body to path. The cart contract uses bodied DELETEs.
func (c *Client) Delete(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, body, out)
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.New().String())
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Debug("sending request", "method", method, "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &NetworkError{err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &HTTPError{
			Status:  resp.StatusCode,
			Message: serverMessage(respBody),
			Body:    respBody,
		}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// classifyTransport splits client-side request failures into timeouts and
// everything else that never reached the server.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{err: err}
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return &TimeoutError{err: err}
	}
	return &NetworkError{err: err}
}

// retryable reports whether a failure is worth another read attempt.
// Definitive client errors (4xx) are not; connectivity problems and server
// errors are.
func retryable(err error) bool {
	if IsTimeout(err) || IsNetwork(err) {
		return true
	}
	return StatusOf(err) >= 500
}

// serverMessage pulls the message field out of an error body, tolerating both
// {"message": ...} and {"error": ...} shapes.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	if s, ok := payload.Error.(string); ok {
		return s
	}
	return ""
}
