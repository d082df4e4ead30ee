// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package sync

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendo-live/crescendo/internal/catalog"
)

func decodeEvents(t *testing.T, payload string) []catalog.Event {
	t.Helper()
	var events []catalog.Event
	require.NoError(t, json.Unmarshal([]byte(payload), &events))
	return events
}

func TestExtractor_ExtractPage(t *testing.T) {
	events := decodeEvents(t, `[{
		"identifier": "showgrid:11070971",
		"name": "Phish New Year's Run",
		"startDate": "2026-12-31T20:00:00-05:00",
		"doorTime": "19:00",
		"description": "Four nights at the Garden.",
		"eventStatus": "scheduled",
		"dateModified": "2026-08-15T10:30:00Z",
		"sameAs": ["https://upstream.example/e/11070971"],
		"partOfTour": {"name": "NYE Run 2026"},
		"performer": [
			{"identifier": "showgrid:100", "name": "Opener"},
			{"identifier": "showgrid:3953048", "name": "Phish", "genre": ["rock", "jam"], "x-isHeadliner": true,
			 "x-externalIdentifiers": [{"source": "spotify", "identifier": ["abc123"]}]}
		],
		"location": {
			"identifier": "showgrid:307511",
			"name": "Madison Square Garden",
			"maximumAttendeeCapacity": 20000,
			"address": {
				"streetAddress": "4 Pennsylvania Plaza",
				"addressLocality": "New York",
				"addressRegion": {"name": "NY"},
				"postalCode": "10001",
				"addressCountry": "US"
			},
			"geo": {"latitude": 40.7505, "longitude": "-73.9934"}
		},
		"offers": [
			{"url": "https://tix.example/1", "availability": "InStock",
			 "priceSpecification": {"minPrice": 85, "maxPrice": 150, "priceCurrency": "USD"}},
			{"url": "https://tix.example/2", "availability": "SoldOut"}
		]
	}]`)

	extraction := NewExtractor("showgrid").ExtractPage(events)

	require.Len(t, extraction.Artists, 1)
	a := extraction.Artists[0]
	assert.Equal(t, "3953048", a.ExternalID, "headliner wins and prefix is stripped")
	assert.Equal(t, "Phish", a.Name)
	assert.Equal(t, []string{"rock", "jam"}, a.Genres)
	require.NotNil(t, a.GenreSource)
	assert.NotEmpty(t, a.ExternalRefs)
	assert.NotEmpty(t, a.Raw)

	require.Len(t, extraction.Venues, 1)
	v := extraction.Venues[0]
	assert.Equal(t, "307511", v.ExternalID)
	assert.Equal(t, "madison-square-garden", v.NameKey)
	assert.Equal(t, "NY", *v.Region)
	assert.Equal(t, "US", *v.Country)
	assert.InDelta(t, 40.7505, *v.Latitude, 0.0001)
	assert.InDelta(t, -73.9934, *v.Longitude, 0.0001)
	assert.Equal(t, 20000, *v.Capacity)

	require.Len(t, extraction.Events, 1)
	ee := extraction.Events[0]
	assert.Equal(t, "3953048", ee.ArtistExternalID)
	assert.Equal(t, "307511", ee.VenueExternalID)

	e := ee.Event
	assert.Equal(t, "11070971", e.ExternalID)
	assert.Equal(t, "Phish New Year's Run", e.Title)
	assert.Equal(t, []string{"rock", "jam"}, e.Genres)
	assert.True(t, e.TicketAvailable)
	assert.Equal(t, []string{"https://tix.example/1", "https://tix.example/2"}, e.TicketURLs)
	assert.Equal(t, "$85 - $150", *e.PriceRange)
	assert.Equal(t, 85.0, *e.PriceMin)
	assert.Equal(t, 150.0, *e.PriceMax)
	assert.Equal(t, "https://upstream.example/e/11070971", *e.ExternalURL)
	assert.Equal(t, "NYE Run 2026", *e.TourName)
	require.NotNil(t, e.LastModifiedAt)
	assert.Equal(t, time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC), *e.LastModifiedAt)

	// "19:00" combines with the start date's date part.
	require.NotNil(t, e.DoorsAt)
	assert.Equal(t, time.Date(2026, 12, 31, 19, 0, 0, 0, time.UTC), *e.DoorsAt)
}

func TestExtractor_DedupesEntitiesWithinPage(t *testing.T) {
	events := decodeEvents(t, `[
		{"identifier": "showgrid:1", "startDate": "2026-09-01T20:00:00Z",
		 "performer": [{"identifier": "showgrid:42", "name": "Wilco", "genre": ["rock"]}],
		 "location": {"identifier": "showgrid:7", "name": "The Vic"}},
		{"identifier": "showgrid:2", "startDate": "2026-09-02T20:00:00Z",
		 "performer": [{"identifier": "showgrid:42", "name": "Wilco", "genre": ["Alt-Country"]}],
		 "location": {"identifier": "showgrid:7", "name": "The Vic"}}
	]`)

	extraction := NewExtractor("showgrid").ExtractPage(events)

	require.Len(t, extraction.Artists, 1)
	assert.Equal(t, []string{"rock", "Alt-Country"}, extraction.Artists[0].Genres,
		"genres from repeated appearances merge")
	assert.Len(t, extraction.Venues, 1)
	assert.Len(t, extraction.Events, 2)
}

func TestExtractor_VenueNameFallback(t *testing.T) {
	events := decodeEvents(t, `[{
		"identifier": "showgrid:5",
		"startDate": "2026-10-01T19:00:00Z",
		"location": {"name": "Joe's Pub"}
	}]`)

	extraction := NewExtractor("showgrid").ExtractPage(events)

	require.Len(t, extraction.Venues, 1)
	assert.Equal(t, "name:joe-s-pub", extraction.Venues[0].ExternalID)
	assert.Equal(t, "joe-s-pub", extraction.Venues[0].NameKey)
}

func TestExtractor_SkipsUnusableRecords(t *testing.T) {
	events := decodeEvents(t, `[
		{"name": "No identifier, dropped"},
		{"identifier": "showgrid:9", "startDate": "2026-10-01T19:00:00Z",
		 "performer": [{"name": "No identifier artist"}],
		 "location": {"identifier": "showgrid:8"}}
	]`)

	extraction := NewExtractor("showgrid").ExtractPage(events)

	assert.Empty(t, extraction.Artists, "performer without identifier is skipped")
	assert.Empty(t, extraction.Venues, "venue without a name is skipped")
	require.Len(t, extraction.Events, 1)
	assert.Empty(t, extraction.Events[0].ArtistExternalID)
	assert.Empty(t, extraction.Events[0].VenueExternalID)
}

func TestExtractor_TitleFallback(t *testing.T) {
	events := decodeEvents(t, `[{
		"identifier": "showgrid:3",
		"startDate": "2026-10-01T19:00:00Z",
		"performer": [{"identifier": "showgrid:55", "name": "Khruangbin"}]
	}]`)

	extraction := NewExtractor("showgrid").ExtractPage(events)
	require.Len(t, extraction.Events, 1)
	assert.Equal(t, "Khruangbin Live", extraction.Events[0].Event.Title)
}

func TestReconcileDoors(t *testing.T) {
	tests := []struct {
		name      string
		doorTime  string
		startDate string
		want      *time.Time
	}{
		{
			name:      "full_timestamp",
			doorTime:  "2026-12-31T19:00:00Z",
			startDate: "2026-12-31T20:00:00Z",
			want:      timePtr(time.Date(2026, 12, 31, 19, 0, 0, 0, time.UTC)),
		},
		{
			name:      "bare_clock_time",
			doorTime:  "18:30",
			startDate: "2026-12-31T20:00:00Z",
			want:      timePtr(time.Date(2026, 12, 31, 18, 30, 0, 0, time.UTC)),
		},
		{
			name:      "bare_time_without_start_date",
			doorTime:  "18:30",
			startDate: "",
			want:      nil,
		},
		{
			name:      "empty",
			doorTime:  "",
			startDate: "2026-12-31T20:00:00Z",
			want:      nil,
		},
		{
			name:      "garbage",
			doorTime:  "doors at dusk-ish",
			startDate: "2026-12-31T20:00:00Z",
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconcileDoors(tt.doorTime, tt.startDate))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$85", formatPrice(85))
	assert.Equal(t, "$85.50", formatPrice(85.5))
}

func timePtr(t time.Time) *time.Time { return &t }
