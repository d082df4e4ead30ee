// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendo-live/crescendo/internal/core/artist"
	"github.com/crescendo-live/crescendo/internal/core/event"
	"github.com/crescendo-live/crescendo/internal/core/venue"
	"github.com/crescendo-live/crescendo/pkg/uuidv7"
)

func newTestWriter() (*Writer, *fakeLedger, *fakeArtists, *fakeVenues, *fakeEvents) {
	logger := testLogger()
	ledgerRepo := newFakeLedger()
	artists := newFakeArtists()
	venues := newFakeVenues()
	events := newFakeEvents()
	resolver := NewResolver(testSource, ledgerRepo, logger)
	writer := NewWriter(testSource, resolver, artists, venues, events, logger)
	return writer, ledgerRepo, artists, venues, events
}

func extractionWithArtist(externalID string, genres ...string) *Extraction {
	a := &artist.Artist{Source: testSource, ExternalID: externalID, Name: "Artist", Genres: genres}
	v := &venue.Venue{Source: testSource, ExternalID: "v1", NameKey: "venue", Name: "Venue"}
	e := &event.Event{Source: testSource, ExternalID: "e1", Title: "Show"}
	return &Extraction{
		Artists: []*artist.Artist{a},
		Venues:  []*venue.Venue{v},
		Events:  []*ExtractedEvent{{Event: e, ArtistExternalID: externalID, VenueExternalID: "v1"}},
	}
}

func TestWriter_WritePage(t *testing.T) {
	writer, ledgerRepo, artists, venues, events := newTestWriter()

	stats, err := writer.WritePage(context.Background(), extractionWithArtist("a1", "rock"))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.ArtistsCreated)
	assert.Equal(t, 1, stats.VenuesCreated)
	assert.Equal(t, 1, stats.EventsCreated)
	assert.Equal(t, 1, artists.size())
	assert.Equal(t, 1, venues.size())
	assert.Equal(t, 1, events.size())
	assert.Equal(t, 3, ledgerRepo.size())

	e := events.get(testSource, "e1")
	require.NotNil(t, e.ArtistID)
	require.NotNil(t, e.VenueID)
	assert.Equal(t, artists.get(testSource, "a1").ID, *e.ArtistID)
}

func TestWriter_HealsMissingLedgerEntries(t *testing.T) {
	writer, ledgerRepo, artists, _, _ := newTestWriter()

	// The artist row exists but its ledger entry was lost.
	existing := &artist.Artist{
		ID:         uuidv7.NewUUID(),
		Source:     testSource,
		ExternalID: "a1",
		Name:       "Artist",
		Genres:     []string{"rock"},
	}
	require.NoError(t, artists.UpsertBatch(context.Background(), []*artist.Artist{existing}))

	stats, err := writer.WritePage(context.Background(), extractionWithArtist("a1", "jazz"))
	require.NoError(t, err)

	assert.Zero(t, stats.ArtistsCreated, "natural key resolves without a ledger row")
	assert.Equal(t, 1, artists.size(), "no duplicate row")
	assert.Equal(t, existing.ID, artists.get(testSource, "a1").ID)
	assert.Equal(t, []string{"rock", "jazz"}, artists.get(testSource, "a1").Genres)

	resolved, err := ledgerRepo.Resolve(context.Background(), testSource, "artist", []string{"a1"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resolved["a1"], "ledger entry is repaired")
}

func TestWriter_EventWithoutReferences(t *testing.T) {
	writer, _, _, _, events := newTestWriter()

	e := &event.Event{Source: testSource, ExternalID: "e9", Title: "Mystery Show"}
	stats, err := writer.WritePage(context.Background(), &Extraction{
		Events: []*ExtractedEvent{{Event: e}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.EventsWritten)
	written := events.get(testSource, "e9")
	require.NotNil(t, written)
	assert.Nil(t, written.ArtistID)
	assert.Nil(t, written.VenueID)
}

func TestWriter_EmptyGenresDoNotShrinkStored(t *testing.T) {
	writer, _, artists, _, _ := newTestWriter()

	_, err := writer.WritePage(context.Background(), extractionWithArtist("a1", "rock", "jam"))
	require.NoError(t, err)

	// Same artist reappears with no genre field at all.
	_, err = writer.WritePage(context.Background(), extractionWithArtist("a1"))
	require.NoError(t, err)

	assert.Equal(t, []string{"rock", "jam"}, artists.get(testSource, "a1").Genres)
}
