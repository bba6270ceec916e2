// Package api provides the REST client for the CloudTask service. Requests
// carry bearer-token authentication and JSON bodies, and each request is
// retried with exponential backoff when the failure is transient (transport
// errors, rate limits, server errors).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cloudtask/cloudtask/internal/executor"
	"github.com/cloudtask/cloudtask/internal/types"
)

// DefaultTimeout is the per-request HTTP timeout.
const DefaultTimeout = 30 * time.Second

// Client is a CloudTask API client. Construct one per process and pass it by
// reference; there is no hidden global instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	policy     executor.RetryPolicy
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p executor.RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// WithLogger sets the logger for request/retry diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the given base URL. apiKey may be empty for
// unauthenticated endpoints. The default retry policy retries only failures
// marked retryable (429, 5xx, transport errors).
func New(baseURL, apiKey string, opts ...Option) *Client {
	policy := executor.DefaultPolicy()
	policy.RetryIf = types.IsRetryable

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		policy:     policy,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

// do executes one logical request with the retry policy applied. The body is
// marshaled once; each attempt gets a fresh request. The wait between
// attempts never happens after the final one.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return types.WrapError(types.API_REQUEST_FAILED, "failed to encode request body", err)
		}
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var lastErr error
	attempts := 0
	for attempt := 0; ; attempt++ {
		attempts = attempt + 1
		lastErr = c.attempt(ctx, method, url, payload, out)
		if lastErr == nil {
			return nil
		}

		if !c.policy.ShouldRetry(attempt, lastErr) {
			break
		}

		c.logger.Debug("retrying request",
			"method", method,
			"url", url,
			"attempt", attempt+1,
			"delay", c.policy.Delay(attempt),
			"error", lastErr,
		)
		if err := executor.Wait(ctx, c.policy.Delay(attempt)); err != nil {
			break
		}
	}

	return types.WrapError(types.API_REQUEST_FAILED,
		fmt.Sprintf("request failed after %d attempt(s)", attempts), lastErr)
}

// attempt performs a single HTTP exchange and classifies the outcome.
func (c *Client) attempt(ctx context.Context, method, url string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return types.WrapError(types.API_REQUEST_FAILED, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.WrapRetryableError(types.API_REQUEST_FAILED, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return types.NewRetryableError(types.API_RATE_LIMITED, "rate limited by server")
	case resp.StatusCode >= 500:
		return types.NewRetryableError(types.API_REQUEST_FAILED,
			fmt.Sprintf("server error (status %d)", resp.StatusCode))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return types.NewError(types.API_AUTH_FAILED,
			fmt.Sprintf("authentication failed (status %d)", resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return types.NewError(types.API_NOT_FOUND, "resource not found")
	case resp.StatusCode >= 400:
		return types.NewError(types.API_REQUEST_FAILED,
			fmt.Sprintf("request rejected (status %d)", resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.WrapRetryableError(types.API_REQUEST_FAILED, "failed to read response", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return types.WrapError(types.API_REQUEST_FAILED, "failed to decode response", err)
	}
	return nil
}
