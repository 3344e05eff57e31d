package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Client is a web search provider.
type Client interface {
	Search(ctx context.Context, query string, opts Options) ([]Result, error)
}

// Options configures a single search call. Zero values fall back to the
// client's configured defaults.
type Options struct {
	MaxResults int
}

// Result is a single ranked hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
	Score   float64
}

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s search returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// httpClient holds what both providers share: the outbound throttle, the
// per-call timeout and the JSON round trip.
type httpClient struct {
	provider string
	baseURL  string
	timeout  time.Duration
	client   *http.Client
	limiter  *rate.Limiter
	logger   *logrus.Logger
}

func newHTTPClient(provider, baseURL string, timeout time.Duration, requestsPerSecond float64, logger *logrus.Logger) httpClient {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return httpClient{
		provider: provider,
		baseURL:  baseURL,
		timeout:  timeout,
		client:   &http.Client{},
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
}

func (c *httpClient) postJSON(ctx context.Context, path string, headers map[string]string, body, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s search throttled: %w", c.provider, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", c.provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", c.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"provider":    c.provider,
		"status_code": resp.StatusCode,
		"latency":     time.Since(start),
	}).Debug("Search provider responded")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Provider: c.provider, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.provider, err)
	}
	return nil
}
