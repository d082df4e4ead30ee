// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package sync

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/crescendo-live/crescendo/internal/core/artist"
	"github.com/crescendo-live/crescendo/internal/core/event"
	"github.com/crescendo-live/crescendo/internal/core/ledger"
	"github.com/crescendo-live/crescendo/internal/core/venue"
	"github.com/crescendo-live/crescendo/internal/platform/syncerr"
	"github.com/crescendo-live/crescendo/pkg/slice"
	"github.com/crescendo-live/crescendo/pkg/uuidv7"
)

// WriteStats counts what one page write touched.
type WriteStats struct {
	ArtistsWritten int `json:"artists_written"`
	ArtistsCreated int `json:"artists_created"`
	VenuesWritten  int `json:"venues_written"`
	VenuesCreated  int `json:"venues_created"`
	EventsWritten  int `json:"events_written"`
	EventsCreated  int `json:"events_created"`
}

// Writer persists one extracted page.
//
// Entities land in dependency order — artists, venues, then events — so an
// event's references always point at rows that already exist. All writes
// are idempotent upserts on (source, externalid); re-running a page is a
// no-op apart from refreshed timestamps.
type Writer struct {
	source   string
	resolver *Resolver
	artists  artist.Repository
	venues   venue.Repository
	events   event.Repository
	logger   *slog.Logger
}

// NewWriter creates a page writer.
func NewWriter(source string, resolver *Resolver, artists artist.Repository, venues venue.Repository, events event.Repository, logger *slog.Logger) *Writer {
	return &Writer{
		source:   source,
		resolver: resolver,
		artists:  artists,
		venues:   venues,
		events:   events,
		logger:   logger,
	}
}

// WritePage writes one page's entities in dependency order.
func (w *Writer) WritePage(ctx context.Context, extraction *Extraction) (WriteStats, error) {
	var stats WriteStats

	artistIDs, err := w.writeArtists(ctx, extraction.Artists, &stats)
	if err != nil {
		return stats, err
	}

	venueIDs, err := w.writeVenues(ctx, extraction.Venues, &stats)
	if err != nil {
		return stats, err
	}

	if err := w.writeEvents(ctx, extraction.Events, artistIDs, venueIDs, &stats); err != nil {
		return stats, err
	}
	return stats, nil
}

// writeArtists upserts the page's artists and returns internal ids keyed
// by external id.
//
// Genres merge before the write: the stored list is fetched for every
// already-known artist and combined case-insensitively with the incoming
// list, so a sync can add genres but never remove one.
func (w *Writer) writeArtists(ctx context.Context, artists []*artist.Artist, stats *WriteStats) (map[string]uuid.UUID, error) {
	if len(artists) == 0 {
		return map[string]uuid.UUID{}, nil
	}

	externalIDs := slice.Map(artists, func(a *artist.Artist) string { return a.ExternalID })

	resolved, unregistered, err := w.resolver.Resolve(ctx, ledger.EntityArtist, externalIDs, w.artists.GetIDsByExternalIDs)
	if err != nil {
		return nil, err
	}

	knownIDs := make([]uuid.UUID, 0, len(resolved))
	for _, id := range resolved {
		knownIDs = append(knownIDs, id)
	}
	storedGenres, err := w.artists.GetGenresByIDs(ctx, knownIDs)
	if err != nil {
		return nil, err
	}

	for _, a := range artists {
		if id, ok := resolved[a.ExternalID]; ok {
			a.ID = id
			a.Genres = artist.MergeGenres(storedGenres[id], a.Genres)
		} else {
			a.ID = uuidv7.NewUUID()
			stats.ArtistsCreated++
		}
	}

	if err := retryConflict(func() error {
		return w.artists.UpsertBatch(ctx, artists)
	}); err != nil {
		return nil, err
	}
	stats.ArtistsWritten += len(artists)

	if err := w.repairLedger(ctx, ledger.EntityArtist, unregistered, w.artists.GetIDsByExternalIDs, resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}

func (w *Writer) writeVenues(ctx context.Context, venues []*venue.Venue, stats *WriteStats) (map[string]uuid.UUID, error) {
	if len(venues) == 0 {
		return map[string]uuid.UUID{}, nil
	}

	externalIDs := slice.Map(venues, func(v *venue.Venue) string { return v.ExternalID })

	resolved, unregistered, err := w.resolver.Resolve(ctx, ledger.EntityVenue, externalIDs, w.venues.GetIDsByExternalIDs)
	if err != nil {
		return nil, err
	}

	for _, v := range venues {
		if id, ok := resolved[v.ExternalID]; ok {
			v.ID = id
		} else {
			v.ID = uuidv7.NewUUID()
			stats.VenuesCreated++
		}
	}

	if err := retryConflict(func() error {
		return w.venues.UpsertBatch(ctx, venues)
	}); err != nil {
		return nil, err
	}
	stats.VenuesWritten += len(venues)

	if err := w.repairLedger(ctx, ledger.EntityVenue, unregistered, w.venues.GetIDsByExternalIDs, resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}

func (w *Writer) writeEvents(ctx context.Context, extracted []*ExtractedEvent, artistIDs, venueIDs map[string]uuid.UUID, stats *WriteStats) error {
	if len(extracted) == 0 {
		return nil
	}

	externalIDs := slice.Map(extracted, func(ee *ExtractedEvent) string { return ee.Event.ExternalID })

	resolved, unregistered, err := w.resolver.Resolve(ctx, ledger.EntityEvent, externalIDs, w.events.GetIDsByExternalIDs)
	if err != nil {
		return err
	}

	events := make([]*event.Event, 0, len(extracted))
	for _, ee := range extracted {
		e := ee.Event
		if id, ok := resolved[e.ExternalID]; ok {
			e.ID = id
		} else {
			e.ID = uuidv7.NewUUID()
			stats.EventsCreated++
		}
		if id, ok := artistIDs[ee.ArtistExternalID]; ok && ee.ArtistExternalID != "" {
			e.ArtistID = &id
		}
		if id, ok := venueIDs[ee.VenueExternalID]; ok && ee.VenueExternalID != "" {
			e.VenueID = &id
		}
		events = append(events, e)
	}

	if err := retryConflict(func() error {
		return w.events.UpsertBatch(ctx, events)
	}); err != nil {
		return err
	}
	stats.EventsWritten += len(events)

	return w.repairLedger(ctx, ledger.EntityEvent, unregistered, w.events.GetIDsByExternalIDs, resolved)
}

// repairLedger registers ledger rows for external ids the ledger did not
// know, reading the ids back from the entity table. Reading back rather
// than trusting the minted uuid covers the race where a concurrent worker
// inserted the row first and the upsert kept that row's id.
func (w *Writer) repairLedger(ctx context.Context, entityType string, unregistered []string, lookup IDLookup, resolved map[string]uuid.UUID) error {
	if len(unregistered) == 0 {
		return nil
	}
	actual, err := lookup(ctx, w.source, unregistered)
	if err != nil {
		return err
	}
	if err := w.resolver.Register(ctx, entityType, actual); err != nil {
		return err
	}
	for externalID, id := range actual {
		resolved[externalID] = id
	}
	return nil
}

// retryConflict runs fn, retrying once when it reports a duplicate-insert
// conflict. Concurrent workers landing the same entity resolve on the
// second pass because the row then exists.
func retryConflict(fn func() error) error {
	err := fn()
	if syncerr.IsConflict(err) {
		return fn()
	}
	return err
}
