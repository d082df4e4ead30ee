// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

/*
Package ledger maps upstream identifiers to internal ids.

One row exists per (source, entitytype, externalid) and is never mutated
after insert. The ledger is a lookup optimization on the hot sync path; the
unique natural keys on the entity tables remain the authoritative dedup
guard, so a missing ledger row degrades to an extra lookup, never to a
duplicate entity.
*/
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Entity types recorded in the ledger.
const (
	EntityArtist = "artist"
	EntityVenue  = "venue"
	EntityEvent  = "event"
)

// Entry links one upstream identifier to an internal entity id.
type Entry struct {
	Source     string    `json:"source"`
	EntityType string    `json:"entity_type"`
	ExternalID string    `json:"external_id"`
	EntityID   uuid.UUID `json:"entity_id"`
	CreatedAt  time.Time `json:"created_at"`
}
