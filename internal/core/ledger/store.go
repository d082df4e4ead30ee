// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package ledger

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Resolve returns the internal id for each known external id, keyed by
	// external id. Unknown ids are absent from the result.
	Resolve(context context.Context, source, entityType string, externalIDs []string) (map[string]uuid.UUID, error)

	// Register records new mappings. Mappings that already exist are left
	// untouched, so concurrent workers can register the same entity safely.
	Register(context context.Context, entries []Entry) error
}
