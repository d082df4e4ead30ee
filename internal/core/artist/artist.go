// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

// Package artist holds the performer entity and its persistence layer.
package artist

import (
	"time"

	"github.com/google/uuid"
)

// Artist represents a performer synced from an upstream catalog.
//
// (Source, ExternalID) is the natural key; a unique constraint on it backs
// the idempotent upsert path. Genres only ever grow: an upsert with no
// genres keeps the stored list, and a merge adds without removing.
type Artist struct {
	ID               uuid.UUID  `json:"id"`
	Source           string     `json:"source"`
	ExternalID       string     `json:"external_id"`
	Name             string     `json:"name"`
	URL              *string    `json:"url"`
	ImageURL         *string    `json:"image_url"`
	Genres           []string   `json:"genres"`
	GenreSource      *string    `json:"genre_source"`
	FoundingLocation *string    `json:"founding_location"`
	FoundingDate     *string    `json:"founding_date"`
	Members          []byte     `json:"-"` // upstream member list, jsonb
	ExternalRefs     []byte     `json:"-"` // cross-catalog identifiers, jsonb
	Raw              []byte     `json:"-"` // verbatim upstream payload, jsonb
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	LastSyncedAt     time.Time  `json:"last_synced_at"`
}

// GenreSource values recorded when genres are written.
const (
	GenreSourceCatalog  = "catalog"
	GenreSourceBackfill = "backfill"
)
