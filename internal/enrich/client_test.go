// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package enrich

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendo-live/crescendo/internal/platform/syncerr"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestClient backs both the token endpoint and the API with a single
// test server.
func newTestClient(t *testing.T, api http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var tokenMints atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "test-id", user)
		assert.Equal(t, "test-secret", pass)

		tokenMints.Add(1)
		w.Write([]byte(`{"access_token": "tok-1", "token_type": "Bearer", "expires_in": 3600}`))
	})
	mux.HandleFunc("/", api)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		BaseURL:      srv.URL,
		TokenURL:     srv.URL + "/token",
	}, nil, testLogger())
	return client, &tokenMints
}

func TestClient_ArtistGenres(t *testing.T) {
	client, mints := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/artists/4Z8W4fKeB5YxbusRsdQVPb", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Write([]byte(`{"genres": ["art rock", "melancholia"], "name": "Radiohead"}`))
	})

	genres, err := client.ArtistGenres(context.Background(), "4Z8W4fKeB5YxbusRsdQVPb")
	require.NoError(t, err)
	assert.Equal(t, []string{"art rock", "melancholia"}, genres)

	// Second call reuses the in-memory token.
	_, err = client.ArtistGenres(context.Background(), "4Z8W4fKeB5YxbusRsdQVPb")
	require.NoError(t, err)
	assert.EqualValues(t, 1, mints.Load())
}

func TestClient_ArtistGenres_Empty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"genres": [], "name": "Obscure Act"}`))
	})

	genres, err := client.ArtistGenres(context.Background(), "abc")
	require.NoError(t, err)
	assert.Empty(t, genres)
}

func TestClient_ArtistGenres_RateLimited(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.ArtistGenres(context.Background(), "abc")
	require.Error(t, err)

	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 30*time.Second, rl.RetryAfter)
}

func TestClient_ArtistGenres_NotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.ArtistGenres(context.Background(), "gone")
	assert.True(t, syncerr.IsNotFound(err))
}

func TestClient_ArtistGenres_RefreshesExpiredToken(t *testing.T) {
	var hits atomic.Int32
	client, mints := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"genres": ["jazz"]}`))
	})

	genres, err := client.ArtistGenres(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"jazz"}, genres)
	assert.EqualValues(t, 2, mints.Load())
}
