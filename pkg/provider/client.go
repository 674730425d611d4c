package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/zen-systems/serpcoach/pkg/serp"
)

// RetryPolicy controls how transient failures are retried.
type RetryPolicy struct {
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, BaseBackoff: 200 * time.Millisecond, MaxBackoff: 2 * time.Second}
}

// Client POSTs provider requests.
type Client struct {
	httpClient *http.Client
	retry      RetryPolicy
	logger     func(format string, args ...any)
	debug      bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a per-attempt timeout on the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithRetry sets the retry policy.
func WithRetry(p RetryPolicy) ClientOption {
	return func(c *Client) {
		c.retry = p
	}
}

// WithClientLogger sets the logger used for retry notices.
func WithClientLogger(logger func(format string, args ...any), debug bool) ClientOption {
	return func(c *Client) {
		c.logger = logger
		c.debug = debug
	}
}

// NewClient creates a Client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retry:      DefaultRetryPolicy(),
		logger:     log.Printf,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends the request described by cfg and returns the raw response body.
// Every failure is returned as a *RequestError.
func (c *Client) Do(ctx context.Context, cfg Config, secret, input string, competitors []serp.Entry) ([]byte, error) {
	if IsLocal(cfg) || cfg.Endpoint() == "" {
		return nil, &RequestError{Provider: cfg.Name(), Err: fmt.Errorf("provider has no endpoint")}
	}

	payload, err := encodeBody(cfg, input, competitors)
	if err != nil {
		return nil, &RequestError{Provider: cfg.Name(), Err: err}
	}
	headers := cfg.BuildHeaders(secret)

	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		body, err := c.send(ctx, cfg, headers, payload)
		if err == nil {
			return body, nil
		}

		lastErr = err
		if !IsTransient(err) || attempt == c.retry.MaxRetries {
			break
		}

		backoff := computeBackoff(c.retry.BaseBackoff, c.retry.MaxBackoff, attempt)
		c.log("[provider] %s attempt %d failed, retrying in %s", cfg.Name(), attempt+1, backoff)
		if err := sleepWithContext(ctx, backoff); err != nil {
			return nil, &RequestError{Provider: cfg.Name(), Err: err}
		}
	}
	return nil, lastErr
}

func (c *Client) send(ctx context.Context, cfg Config, headers http.Header, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, &RequestError{Provider: cfg.Name(), Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header = headers.Clone()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Provider: cfg.Name(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Provider: cfg.Name(), Status: resp.StatusCode, Temporary: true, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{
			Provider: cfg.Name(),
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200)),
		}
	}
	return body, nil
}

func (c *Client) log(format string, args ...any) {
	if c.debug && c.logger != nil {
		c.logger(format, args...)
	}
}

func encodeBody(cfg Config, input string, competitors []serp.Entry) ([]byte, error) {
	body, err := cfg.BuildRequestBody(input, competitors)
	if err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return data, nil
}

func computeBackoff(base, limit time.Duration, attempt int) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= limit {
			return limit
		}
	}
	if backoff > limit {
		return limit
	}
	return backoff
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
