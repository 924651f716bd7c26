// Package platform holds the social channel adapters used by syndication.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"content_publisher/internal/config"
	"content_publisher/internal/domain"
)

const userAgent = "ContentPublisher/1.0"

// APIError is a non-2xx answer from a platform API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// client is the retrying JSON client shared by every adapter.
type client struct {
	httpClient     *http.Client
	baseURL        string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

func newClient(cfg config.PlatformConfig, defaultBaseURL string, logger *slog.Logger) *client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxAttempts := cfg.Retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        strings.TrimRight(baseURL, "/"),
		maxAttempts:    maxAttempts,
		initialBackoff: cfg.Retry.InitialBackoff,
		maxBackoff:     cfg.Retry.MaxBackoff,
		logger:         logger,
	}
}

// postJSON sends body to path and decodes the response into out. Network
// errors, 429 and 5xx answers are retried with exponential backoff, so it is
// only for requests that are safe to repeat.
func (c *client) postJSON(ctx context.Context, path string, headers map[string]string, body, out interface{}) (http.Header, error) {
	return c.send(ctx, path, headers, body, out, retryTransient)
}

// createJSON is postJSON for requests that create a post. A 5xx or a broken
// connection may come after the platform created it, so only a refused dial
// or a 429 is retried.
func (c *client) createJSON(ctx context.Context, path string, headers map[string]string, body, out interface{}) (http.Header, error) {
	return c.send(ctx, path, headers, body, out, retryUnsent)
}

func retryTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.retryable()
	}
	return true
}

func retryUnsent(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func (c *client) send(ctx context.Context, path string, headers map[string]string, body, out interface{}, retry func(error) bool) (http.Header, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var (
		respHeader http.Header
		lastErr    error
	)
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		respHeader, lastErr = c.doRequest(ctx, c.baseURL+path, headers, payload, out)
		if lastErr == nil {
			return respHeader, nil
		}

		if !retry(lastErr) {
			return nil, lastErr
		}
		if attempt == c.maxAttempts {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("request failed, retrying",
			"path", path,
			"attempt", attempt,
			"backoff", backoff,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *client) doRequest(ctx context.Context, url string, headers map[string]string, payload []byte, out interface{}) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request URL may carry an access token; keep it out of the error.
		var urlErr *neturl.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}

	return resp.Header, nil
}

func (c *client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}

// caption joins title, excerpt, hashtags and link the way every feed-style
// platform shows them.
func caption(post domain.Post, withURL bool) string {
	var parts []string
	if post.Title != "" {
		parts = append(parts, post.Title)
	}
	if post.Excerpt != "" {
		parts = append(parts, post.Excerpt)
	}
	if tags := hashtags(post.Hashtags); tags != "" {
		parts = append(parts, tags)
	}
	if withURL && post.URL != "" {
		parts = append(parts, post.URL)
	}
	return strings.Join(parts, "\n\n")
}

func hashtags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "#") {
			t = "#" + t
		}
		out = append(out, strings.ReplaceAll(t, " ", ""))
	}
	return strings.Join(out, " ")
}
