// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package venue

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// UpsertBatch inserts or updates venues keyed on (source, externalid).
	UpsertBatch(context context.Context, venues []*Venue) error

	// GetIDsByExternalIDs resolves internal ids from upstream ids,
	// keyed by external id. Unknown ids are absent from the result.
	GetIDsByExternalIDs(context context.Context, source string, externalIDs []string) (map[string]uuid.UUID, error)

	// CountDuplicates counts (source, externalid) pairs stored more than
	// once. A healthy catalog returns zero.
	CountDuplicates(context context.Context) (int, error)
}
