// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package artist

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// UpsertBatch inserts or updates artists keyed on (source, externalid).
	// An upsert whose genre list is empty leaves the stored genres intact.
	UpsertBatch(context context.Context, artists []*Artist) error

	// GetGenresByIDs returns the stored genre list for each given id.
	GetGenresByIDs(context context.Context, ids []uuid.UUID) (map[uuid.UUID][]string, error)

	// GetIDsByExternalIDs resolves internal ids from upstream ids,
	// keyed by external id. Unknown ids are absent from the result.
	GetIDsByExternalIDs(context context.Context, source string, externalIDs []string) (map[string]uuid.UUID, error)

	// UpdateGenres replaces an artist's genre list and records where the
	// genres came from.
	UpdateGenres(context context.Context, id uuid.UUID, genres []string, genreSource string) error

	// ListMissingGenres returns artists with no genres that carry
	// cross-catalog identifiers, oldest first. A limit of zero means no
	// cap.
	ListMissingGenres(context context.Context, limit int) ([]*Artist, error)

	// CountDuplicates counts (source, externalid) pairs stored more than
	// once. A healthy catalog returns zero.
	CountDuplicates(context context.Context) (int, error)
}
