// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// UpsertBatch inserts or updates events keyed on (source, externalid).
	UpsertBatch(context context.Context, events []*Event) error

	// GetIDsByExternalIDs resolves internal ids from upstream ids,
	// keyed by external id. Unknown ids are absent from the result.
	GetIDsByExternalIDs(context context.Context, source string, externalIDs []string) (map[string]uuid.UUID, error)

	// MaxLastModified returns the newest upstream modification instant
	// stored for the source, or nil for an empty catalog. Incremental runs
	// use it as their change watermark.
	MaxLastModified(context context.Context, source string) (*time.Time, error)

	// CountDuplicates counts (source, externalid) pairs stored more than
	// once. A healthy catalog returns zero.
	CountDuplicates(context context.Context) (int, error)
}
