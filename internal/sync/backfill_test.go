// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package sync

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendo-live/crescendo/internal/core/artist"
	"github.com/crescendo-live/crescendo/internal/enrich"
	"github.com/crescendo-live/crescendo/internal/platform/constants"
	"github.com/crescendo-live/crescendo/internal/platform/syncerr"
	"github.com/crescendo-live/crescendo/pkg/uuidv7"
)

// fakeGenreFetcher serves genres by provider id and can rate-limit the
// first call.
type fakeGenreFetcher struct {
	genres        map[string][]string
	rateLimitOnce atomic.Bool
	calls         atomic.Int32
}

func (f *fakeGenreFetcher) ArtistGenres(_ context.Context, providerID string) ([]string, error) {
	f.calls.Add(1)
	if f.rateLimitOnce.CompareAndSwap(true, false) {
		return nil, &enrich.RateLimitedError{RetryAfter: time.Microsecond}
	}
	genres, ok := f.genres[providerID]
	if !ok {
		return nil, syncerr.NotFound("Artist")
	}
	return genres, nil
}

func seedArtist(t *testing.T, repo *fakeArtists, externalID string, refs string) *artist.Artist {
	t.Helper()
	a := &artist.Artist{
		ID:         uuidv7.NewUUID(),
		Source:     testSource,
		ExternalID: externalID,
		Name:       "Artist " + externalID,
	}
	if refs != "" {
		a.ExternalRefs = []byte(refs)
	}
	require.NoError(t, repo.UpsertBatch(context.Background(), []*artist.Artist{a}))
	return a
}

func TestBackfill_Run(t *testing.T) {
	artists := newFakeArtists()
	enriched := seedArtist(t, artists, "a1", `[{"source":"spotify","identifier":["sp-1"]}]`)
	unknown := seedArtist(t, artists, "a2", `[{"source":"spotify","identifier":"sp-unknown"}]`)
	noProvider := seedArtist(t, artists, "a3", `[{"source":"musicbrainz","identifier":"mb-1"}]`)

	fetcher := &fakeGenreFetcher{genres: map[string][]string{
		"sp-1": {"art rock", "Art Rock", "melancholia"},
	}}
	backfill := NewBackfill("spotify", artists, fetcher, testLogger())

	report, err := backfill.Run(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Enriched)
	assert.Equal(t, 1, report.Sentinel)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Errors)

	got := artists.get(testSource, enriched.ExternalID)
	assert.Equal(t, []string{"Art Rock", "melancholia"}, got.Genres)
	require.NotNil(t, got.GenreSource)
	assert.Equal(t, artist.GenreSourceBackfill, *got.GenreSource)

	// Provider knows nothing: the sentinel takes the artist out of the
	// next scan.
	assert.Equal(t, []string{constants.SentinelGenre}, artists.get(testSource, unknown.ExternalID).Genres)

	// No matching provider key: left untouched for a future pass.
	assert.Empty(t, artists.get(testSource, noProvider.ExternalID).Genres)
}

func TestBackfill_ZeroLimitScansEverything(t *testing.T) {
	artists := newFakeArtists()
	seedArtist(t, artists, "a1", `[{"source":"spotify","identifier":"sp-1"}]`)
	seedArtist(t, artists, "a2", `[{"source":"spotify","identifier":"sp-2"}]`)
	seedArtist(t, artists, "a3", `[{"source":"spotify","identifier":"sp-3"}]`)

	fetcher := &fakeGenreFetcher{genres: map[string][]string{
		"sp-1": {"jazz"}, "sp-2": {"soul"}, "sp-3": {"funk"},
	}}
	backfill := NewBackfill("spotify", artists, fetcher, testLogger())

	report, err := backfill.Run(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scanned, "zero limit means no cap, not zero rows")
	assert.Equal(t, 3, report.Enriched)
}

func TestBackfill_SentinelStopsRescan(t *testing.T) {
	artists := newFakeArtists()
	seedArtist(t, artists, "a1", `[{"source":"spotify","identifier":"sp-unknown"}]`)

	fetcher := &fakeGenreFetcher{genres: map[string][]string{}}
	backfill := NewBackfill("spotify", artists, fetcher, testLogger())

	_, err := backfill.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.EqualValues(t, 1, fetcher.calls.Load())

	report, err := backfill.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.Zero(t, report.Scanned, "sentinel-marked artists are not rescanned")
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestBackfill_RetriesAfterRateLimit(t *testing.T) {
	artists := newFakeArtists()
	seedArtist(t, artists, "a1", `[{"source":"spotify","identifier":"sp-1"}]`)

	fetcher := &fakeGenreFetcher{genres: map[string][]string{"sp-1": {"jazz"}}}
	fetcher.rateLimitOnce.Store(true)
	backfill := NewBackfill("spotify", artists, fetcher, testLogger())

	report, err := backfill.Run(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Enriched)
	assert.EqualValues(t, 2, fetcher.calls.Load(), "one retry after the rate limit")
	assert.Equal(t, []string{"jazz"}, artists.get(testSource, "a1").Genres)
}
