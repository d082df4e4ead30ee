// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

// Package venue holds the venue entity and its persistence layer.
package venue

import (
	"time"

	"github.com/google/uuid"

	"github.com/crescendo-live/crescendo/pkg/slug"
)

// Venue represents an event location synced from an upstream catalog.
//
// Some upstream venues arrive without an identifier. Those fall back to a
// name-derived key so repeat appearances of the same venue still collapse
// into one row: ExternalID is then "name:" plus the slugged name.
type Venue struct {
	ID           uuid.UUID `json:"id"`
	Source       string    `json:"source"`
	ExternalID   string    `json:"external_id"`
	NameKey      string    `json:"name_key"`
	Name         string    `json:"name"`
	URL          *string   `json:"url"`
	ImageURL     *string   `json:"image_url"`
	Street       *string   `json:"street"`
	Locality     *string   `json:"locality"`
	Region       *string   `json:"region"`
	PostalCode   *string   `json:"postal_code"`
	Country      *string   `json:"country"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	Capacity     *int      `json:"capacity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// NameKey derives the dedup key for a venue name.
func NameKey(name string) string {
	return slug.From(name)
}

// FallbackExternalID builds the external id for a venue the upstream did
// not identify.
func FallbackExternalID(name string) string {
	return "name:" + NameKey(name)
}
