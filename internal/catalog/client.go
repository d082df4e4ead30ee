// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/crescendo-live/crescendo/internal/platform/constants"
	"github.com/crescendo-live/crescendo/internal/platform/syncerr"
)

// RetryPolicy controls per-page retry behavior. Backoff doubles on each
// attempt: with the default base, attempts wait 2s, 4s, then 8s.
type RetryPolicy struct {
	MaxAttempts int
	BackoffBase time.Duration
}

// DefaultRetryPolicy returns the production retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: constants.FetchMaxAttempts,
		BackoffBase: constants.FetchBackoffBase,
	}
}

// Backoff returns the wait before the given retry. attempt is 1-based.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return p.BackoffBase << (attempt - 1)
}

// Config holds the client's connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Retry   RetryPolicy
	// HTTPClient overrides the default client; used by tests.
	HTTPClient *http.Client
}

// Client fetches event pages from the upstream API.
//
// Every request passes through a rate limiter and a circuit breaker. The
// breaker opens after a sustained failure streak so a dead upstream fails
// pages fast instead of burning the full retry budget on each one.
type Client struct {
	baseURL string
	apiKey  string
	retry   RetryPolicy
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*Page]
	logger  *slog.Logger
	calls   atomic.Int64
}

// NewClient creates an upstream API client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.FetchRequestTimeout}
	}
	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryPolicy()
	}

	breaker := gobreaker.NewCircuitBreaker[*Page](gobreaker.Settings{
		Name:        "upstream-events-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit_breaker_state_changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		retry:   retry,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(constants.UpstreamRateLimitRPS), constants.UpstreamRateLimitBurst),
		breaker: breaker,
		logger:  logger,
	}
}

// FetchOptions narrows a page request.
type FetchOptions struct {
	// PerPage is the requested page size, clamped to the upstream maximum.
	PerPage int
	// ModifiedSince restricts results to records changed at or after the
	// given instant. Zero means no restriction.
	ModifiedSince time.Time
}

// Calls returns the number of upstream HTTP requests made so far,
// including retries.
func (c *Client) Calls() int64 {
	return c.calls.Load()
}

// FetchPage retrieves one page from the upstream, retrying transient
// failures per the client's retry policy.
//
// A non-nil error after MaxAttempts means the page is exhausted; callers
// decide whether that aborts the run (page 1) or just records the page.
func (c *Client) FetchPage(ctx context.Context, page int, opts FetchOptions) (*Page, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		result, err := c.fetchOnce(ctx, page, opts)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
		if attempt == c.retry.MaxAttempts {
			break
		}

		wait := c.retry.Backoff(attempt)
		c.logger.Warn("fetch_page_retrying",
			slog.Int("page", page),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

// fetchOnce performs a single rate-limited, breaker-guarded request.
func (c *Client) fetchOnce(ctx context.Context, page int, opts FetchOptions) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.breaker.Execute(func() (*Page, error) {
		return c.doRequest(ctx, page, opts)
	})
}

func (c *Client) doRequest(ctx context.Context, page int, opts FetchOptions) (*Page, error) {
	perPage := opts.PerPage
	if perPage <= 0 || perPage > constants.UpstreamMaxPerPage {
		perPage = constants.UpstreamMaxPerPage
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("expandExternalIdentifiers", "true")
	params.Set("page", strconv.Itoa(page))
	params.Set("perPage", strconv.Itoa(perPage))
	if !opts.ModifiedSince.IsZero() {
		params.Set("dateModifiedFrom", opts.ModifiedSince.UTC().Format(time.RFC3339))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, syncerr.Internal(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Crescendo/1.0")

	c.calls.Add(1)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, syncerr.Transient("upstream request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, syncerr.Transient("reading upstream response failed", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to decode.
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, syncerr.Transient(
			fmt.Sprintf("upstream returned status %d", resp.StatusCode), nil)
	default:
		return nil, syncerr.Internal(
			fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, truncate(body, 200)))
	}

	var result Page
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, syncerr.Transient("decoding upstream response failed", err)
	}
	if !result.Success {
		return nil, syncerr.Transient("upstream returned success=false", nil)
	}
	return &result, nil
}

// retryable reports whether the fetch error is worth another attempt. A
// rejected request while the breaker is open still counts: the backoff may
// outlive the breaker's recovery timeout.
func retryable(err error) bool {
	if syncerr.IsTransient(err) {
		return true
	}
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
