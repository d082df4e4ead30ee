// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

// Package event holds the live-event entity and its persistence layer.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a live event synced from an upstream catalog.
//
// ArtistID and VenueID reference the already-written artist and venue rows;
// the writer persists events last so both references always resolve. Either
// may be nil when the upstream event carried no usable performer or venue.
type Event struct {
	ID              uuid.UUID  `json:"id"`
	Source          string     `json:"source"`
	ExternalID      string     `json:"external_id"`
	Title           string     `json:"title"`
	StartsAt        time.Time  `json:"starts_at"`
	DoorsAt         *time.Time `json:"doors_at"`
	Description     *string    `json:"description"`
	Genres          []string   `json:"genres"`
	ArtistID        *uuid.UUID `json:"artist_id"`
	VenueID         *uuid.UUID `json:"venue_id"`
	TicketAvailable bool       `json:"ticket_available"`
	PriceMin        *float64   `json:"price_min"`
	PriceMax        *float64   `json:"price_max"`
	PriceRange      *string    `json:"price_range"`
	PriceCurrency   string     `json:"price_currency"`
	TicketURLs      []string   `json:"ticket_urls"`
	ExternalURL     *string    `json:"external_url"`
	TourName        *string    `json:"tour_name"`
	Status          *string    `json:"status"`
	Images          []byte     `json:"-"` // image gallery, jsonb
	LastModifiedAt  *time.Time `json:"last_modified_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
