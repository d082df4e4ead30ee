// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

/*
Package enrich implements the third-party artist enrichment client used by
the genre backfill.

The provider uses the OAuth client-credentials flow. Tokens are cached in
Redis so consecutive backfill runs reuse a live token instead of minting a
new one; the cache is an optimization only and the client falls back to the
token endpoint when Redis is empty or unavailable.
*/
package enrich

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"

	"github.com/crescendo-live/crescendo/internal/platform/constants"
	"github.com/crescendo-live/crescendo/internal/platform/syncerr"
)

// Config holds the enrichment provider's credentials and endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	// HTTPClient overrides the default client; used by tests.
	HTTPClient *http.Client
}

// Client fetches artist metadata from the enrichment provider.
type Client struct {
	cfg    Config
	http   *http.Client
	rdb    *goredis.Client
	logger *slog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// RateLimitedError signals a 429 from the provider. Callers pause for
// RetryAfter before the next request.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// NewClient creates an enrichment client. rdb may be nil; the token is then
// cached in memory only.
func NewClient(cfg Config, rdb *goredis.Client, logger *slog.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.BackfillTimeout}
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		rdb:    rdb,
		logger: logger,
	}
}

// ArtistGenres fetches the genre list for an artist by its provider id.
//
// An empty slice with a nil error means the provider knows the artist but
// has no genres for it; the backfill then applies the sentinel genre.
func (c *Client) ArtistGenres(ctx context.Context, providerID string) ([]string, error) {
	body, status, err := c.get(ctx, "/artists/"+url.PathEscape(providerID))
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusOK:
		// Fall through to decode.
	case status == http.StatusTooManyRequests:
		return nil, &RateLimitedError{RetryAfter: retryAfter(body.header)}
	case status == http.StatusNotFound:
		return nil, syncerr.NotFound("Artist")
	case status >= 500:
		return nil, syncerr.Transient(fmt.Sprintf("enrichment provider returned status %d", status), nil)
	default:
		return nil, syncerr.Internal(fmt.Errorf("enrichment provider returned status %d", status))
	}

	var artist struct {
		Genres []string `json:"genres"`
	}
	if err := json.Unmarshal(body.bytes, &artist); err != nil {
		return nil, syncerr.Internal(err)
	}
	return artist.Genres, nil
}

type response struct {
	bytes  []byte
	header http.Header
}

// get performs an authenticated GET, refreshing the token once on a 401.
func (c *Client) get(ctx context.Context, path string) (response, int, error) {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.accessToken(ctx)
		if err != nil {
			return response{}, 0, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
		if err != nil {
			return response{}, 0, syncerr.Internal(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.http.Do(req)
		if err != nil {
			return response{}, 0, syncerr.Transient("enrichment request failed", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return response{}, 0, syncerr.Transient("reading enrichment response failed", err)
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			c.invalidateToken(ctx)
			continue
		}
		return response{bytes: body, header: resp.Header}, resp.StatusCode, nil
	}
	return response{}, 0, syncerr.Internal(fmt.Errorf("enrichment token rejected twice"))
}

// accessToken returns a valid bearer token, in order of preference: the
// in-memory copy, the Redis cache, a fresh token from the token endpoint.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-constants.EnrichTokenExpiryBuffer)) {
		return c.token, nil
	}

	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, constants.RedisPrefixEnrichToken).Result(); err == nil && cached != "" {
			ttl, err := c.rdb.TTL(ctx, constants.RedisPrefixEnrichToken).Result()
			if err == nil && ttl > 0 {
				c.token = cached
				c.tokenExpiry = time.Now().Add(ttl)
				return c.token, nil
			}
		}
	}

	token, expiresIn, err := c.fetchToken(ctx)
	if err != nil {
		return "", err
	}
	c.token = token
	c.tokenExpiry = time.Now().Add(expiresIn)

	if c.rdb != nil {
		ttl := expiresIn - constants.EnrichTokenExpiryBuffer
		if ttl > 0 {
			if err := c.rdb.Set(ctx, constants.RedisPrefixEnrichToken, token, ttl).Err(); err != nil {
				c.logger.Warn("enrich_token_cache_write_failed", slog.String("error", err.Error()))
			}
		}
	}
	return c.token, nil
}

func (c *Client) invalidateToken(ctx context.Context) {
	c.mu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
	if c.rdb != nil {
		c.rdb.Del(ctx, constants.RedisPrefixEnrichToken)
	}
}

// fetchToken mints a new token via the client-credentials flow.
func (c *Client) fetchToken(ctx context.Context) (string, time.Duration, error) {
	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, form)
	if err != nil {
		return "", 0, syncerr.Internal(err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ClientID + ":" + c.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, syncerr.Transient("token request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, syncerr.Transient("reading token response failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, syncerr.Fatal(
			fmt.Sprintf("token endpoint returned status %d", resp.StatusCode), nil)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", 0, syncerr.Internal(err)
	}
	if tok.AccessToken == "" {
		return "", 0, syncerr.Fatal("token endpoint returned an empty token", nil)
	}
	return tok.AccessToken, time.Duration(tok.ExpiresIn) * time.Second, nil
}

// retryAfter parses the Retry-After header, defaulting to 60s.
func retryAfter(h http.Header) time.Duration {
	if secs, err := strconv.Atoi(h.Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Minute
}
