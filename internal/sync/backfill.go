// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"

	"github.com/crescendo-live/crescendo/internal/catalog"
	"github.com/crescendo-live/crescendo/internal/core/artist"
	"github.com/crescendo-live/crescendo/internal/enrich"
	"github.com/crescendo-live/crescendo/internal/platform/constants"
	"github.com/crescendo-live/crescendo/internal/platform/syncerr"
)

// GenreFetcher looks up artist genres at the enrichment provider.
// *enrich.Client is the production implementation.
type GenreFetcher interface {
	ArtistGenres(ctx context.Context, providerID string) ([]string, error)
}

// BackfillReport summarizes one backfill pass.
type BackfillReport struct {
	Scanned  int `json:"scanned"`
	Enriched int `json:"enriched"`
	Sentinel int `json:"sentinel"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// Backfill fills genres for artists the upstream catalog left blank, using
// the cross-catalog identifiers captured at sync time.
//
// Artists the provider has no genres for receive the sentinel genre, which
// takes them out of future scans: an artist is looked up at most once
// until a real genre arrives and replaces the sentinel.
type Backfill struct {
	providerKey string
	artists     artist.Repository
	fetcher     GenreFetcher
	logger      *slog.Logger
}

// NewBackfill creates a backfill pass reading provider ids stored under
// providerKey (e.g. "spotify") in the artists' cross-catalog identifiers.
func NewBackfill(providerKey string, artists artist.Repository, fetcher GenreFetcher, logger *slog.Logger) *Backfill {
	return &Backfill{
		providerKey: providerKey,
		artists:     artists,
		fetcher:     fetcher,
		logger:      logger,
	}
}

// Run backfills up to limit artists. Per-artist failures are counted and
// skipped; the pass only aborts on context cancellation.
func (b *Backfill) Run(ctx context.Context, limit int) (*BackfillReport, error) {
	candidates, err := b.artists.ListMissingGenres(ctx, limit)
	if err != nil {
		return nil, err
	}

	report := &BackfillReport{Scanned: len(candidates)}
	for _, a := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		b.processArtist(ctx, a, report)
	}

	b.logger.Info("backfill_finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("enriched", report.Enriched),
		slog.Int("sentinel", report.Sentinel),
		slog.Int("skipped", report.Skipped),
		slog.Int("errors", report.Errors),
	)
	return report, nil
}

func (b *Backfill) processArtist(ctx context.Context, a *artist.Artist, report *BackfillReport) {
	providerID := b.providerID(a.ExternalRefs)
	if providerID == "" {
		report.Skipped++
		return
	}

	genres, err := b.fetchGenres(ctx, providerID)
	switch {
	case err == nil:
		// Proceed below.
	case syncerr.IsNotFound(err):
		genres = nil
	default:
		report.Errors++
		b.logger.Warn("backfill_artist_failed",
			slog.String("artist_id", a.ID.String()),
			slog.String("provider_id", providerID),
			slog.String("error", err.Error()),
		)
		return
	}

	sentinel := len(genres) == 0
	if sentinel {
		genres = []string{constants.SentinelGenre}
	} else {
		genres = artist.MergeGenres(nil, genres)
	}

	if err := b.artists.UpdateGenres(ctx, a.ID, genres, artist.GenreSourceBackfill); err != nil {
		report.Errors++
		b.logger.Warn("backfill_update_failed",
			slog.String("artist_id", a.ID.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	if sentinel {
		report.Sentinel++
	} else {
		report.Enriched++
	}
}

// fetchGenres calls the provider, pausing and retrying once when rate
// limited.
func (b *Backfill) fetchGenres(ctx context.Context, providerID string) ([]string, error) {
	genres, err := b.fetcher.ArtistGenres(ctx, providerID)

	var limited *enrich.RateLimitedError
	if errors.As(err, &limited) {
		b.logger.Warn("backfill_rate_limited", slog.Duration("retry_after", limited.RetryAfter))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(limited.RetryAfter):
		}
		genres, err = b.fetcher.ArtistGenres(ctx, providerID)
	}
	return genres, err
}

// providerID extracts the provider's identifier from the stored
// cross-catalog identifiers.
func (b *Backfill) providerID(externalRefs []byte) string {
	if len(externalRefs) == 0 {
		return ""
	}
	var refs []catalog.ExternalIdentifier
	if err := json.Unmarshal(externalRefs, &refs); err != nil {
		return ""
	}
	for _, ref := range refs {
		if ref.Source == b.providerKey {
			return ref.First()
		}
	}
	return ""
}
