// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package sync

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/crescendo-live/crescendo/internal/core/ledger"
)

// IDLookup resolves internal ids from external ids against an entity
// table's natural key. Each core repository provides one.
type IDLookup func(ctx context.Context, source string, externalIDs []string) (map[string]uuid.UUID, error)

// Resolver maps external ids to internal ids through the external-id
// ledger, healing ledger gaps from the entity tables' natural keys.
type Resolver struct {
	source string
	ledger ledger.Repository
	logger *slog.Logger
}

// NewResolver creates a resolver for one upstream source.
func NewResolver(source string, repo ledger.Repository, logger *slog.Logger) *Resolver {
	return &Resolver{source: source, ledger: repo, logger: logger}
}

// Resolve returns the internal id for every already-known external id and
// the list of external ids missing from the ledger.
//
// An id missing from the ledger but present in the entity table still
// resolves — the table's natural key is authoritative — and is returned in
// unregistered so the caller can repair the ledger after writing.
func (r *Resolver) Resolve(ctx context.Context, entityType string, externalIDs []string, lookup IDLookup) (resolved map[string]uuid.UUID, unregistered []string, err error) {
	resolved, err = r.ledger.Resolve(ctx, r.source, entityType, externalIDs)
	if err != nil {
		return nil, nil, err
	}

	var missing []string
	for _, externalID := range externalIDs {
		if _, ok := resolved[externalID]; !ok {
			missing = append(missing, externalID)
		}
	}
	if len(missing) == 0 {
		return resolved, nil, nil
	}

	healed, err := lookup(ctx, r.source, missing)
	if err != nil {
		return nil, nil, err
	}
	for externalID, id := range healed {
		resolved[externalID] = id
	}
	if len(healed) > 0 {
		r.logger.Warn("ledger_entries_healed",
			slog.String("entity_type", entityType),
			slog.Int("count", len(healed)),
		)
	}

	return resolved, missing, nil
}

// Register repairs the ledger for external ids that were missing during
// Resolve, using the ids the entity table actually holds after the write.
func (r *Resolver) Register(ctx context.Context, entityType string, ids map[string]uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	entries := make([]ledger.Entry, 0, len(ids))
	for externalID, entityID := range ids {
		entries = append(entries, ledger.Entry{
			Source:     r.source,
			EntityType: entityType,
			ExternalID: externalID,
			EntityID:   entityID,
		})
	}
	return r.ledger.Register(ctx, entries)
}
