// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package artist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crescendo-live/crescendo/internal/platform/database/schema"
	"github.com/crescendo-live/crescendo/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) UpsertBatch(context context.Context, artists []*Artist) error {
	if len(artists) == 0 {
		return nil
	}

	// The CASE on genres is the database-level backstop for the
	// merge-never-shrink rule: an upsert carrying no genres keeps the
	// stored list even if the caller skipped the in-memory merge.
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW(), NOW())
		ON CONFLICT (%s, %s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = CASE WHEN cardinality(EXCLUDED.%s) = 0 THEN artist.%s ELSE EXCLUDED.%s END,
			%s = COALESCE(EXCLUDED.%s, artist.%s),
			%s = COALESCE(EXCLUDED.%s, artist.%s),
			%s = COALESCE(EXCLUDED.%s, artist.%s),
			%s = COALESCE(EXCLUDED.%s, artist.%s),
			%s = COALESCE(EXCLUDED.%s, artist.%s),
			%s = EXCLUDED.%s,
			%s = NOW(),
			%s = NOW()
	`,
		schema.CatalogArtist.Table,
		schema.CatalogArtist.ID, schema.CatalogArtist.Source, schema.CatalogArtist.ExternalID,
		schema.CatalogArtist.Name, schema.CatalogArtist.URL, schema.CatalogArtist.ImageURL,
		schema.CatalogArtist.Genres, schema.CatalogArtist.GenreSource,
		schema.CatalogArtist.FoundingLocation, schema.CatalogArtist.FoundingDate,
		schema.CatalogArtist.Members, schema.CatalogArtist.ExternalRefs, schema.CatalogArtist.Raw,
		schema.CatalogArtist.CreatedAt, schema.CatalogArtist.UpdatedAt, schema.CatalogArtist.LastSyncedAt,
		schema.CatalogArtist.Source, schema.CatalogArtist.ExternalID,
		schema.CatalogArtist.Name, schema.CatalogArtist.Name,
		schema.CatalogArtist.URL, schema.CatalogArtist.URL,
		schema.CatalogArtist.ImageURL, schema.CatalogArtist.ImageURL,
		schema.CatalogArtist.Genres, schema.CatalogArtist.Genres, schema.CatalogArtist.Genres, schema.CatalogArtist.Genres,
		schema.CatalogArtist.GenreSource, schema.CatalogArtist.GenreSource, schema.CatalogArtist.GenreSource,
		schema.CatalogArtist.FoundingLocation, schema.CatalogArtist.FoundingLocation, schema.CatalogArtist.FoundingLocation,
		schema.CatalogArtist.FoundingDate, schema.CatalogArtist.FoundingDate, schema.CatalogArtist.FoundingDate,
		schema.CatalogArtist.Members, schema.CatalogArtist.Members, schema.CatalogArtist.Members,
		schema.CatalogArtist.ExternalRefs, schema.CatalogArtist.ExternalRefs, schema.CatalogArtist.ExternalRefs,
		schema.CatalogArtist.Raw, schema.CatalogArtist.Raw,
		schema.CatalogArtist.UpdatedAt,
		schema.CatalogArtist.LastSyncedAt,
	)

	batch := &pgx.Batch{}
	for _, a := range artists {
		genres := a.Genres
		if genres == nil {
			genres = []string{}
		}
		batch.Queue(query,
			a.ID, a.Source, a.ExternalID, a.Name, a.URL, a.ImageURL,
			genres, a.GenreSource, a.FoundingLocation, a.FoundingDate,
			a.Members, a.ExternalRefs, a.Raw,
		)
	}

	results := repository.db.SendBatch(context, batch)
	defer results.Close()

	for range artists {
		if _, err := results.Exec(); err != nil {
			return dberr.Wrap(err, "upsert_artists")
		}
	}
	return nil
}

func (repository *PostgresRepository) GetGenresByIDs(context context.Context, ids []uuid.UUID) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = ANY($1)`,
		schema.CatalogArtist.ID, schema.CatalogArtist.Genres,
		schema.CatalogArtist.Table, schema.CatalogArtist.ID,
	)

	rows, err := repository.db.Query(context, query, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "get_artist_genres")
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var genres []string
		if err := rows.Scan(&id, &genres); err != nil {
			return nil, dberr.Wrap(err, "scan_artist_genres")
		}
		out[id] = genres
	}
	return out, rows.Err()
}

func (repository *PostgresRepository) GetIDsByExternalIDs(context context.Context, source string, externalIDs []string) (map[string]uuid.UUID, error) {
	out := make(map[string]uuid.UUID, len(externalIDs))
	if len(externalIDs) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 AND %s = ANY($2)`,
		schema.CatalogArtist.ExternalID, schema.CatalogArtist.ID,
		schema.CatalogArtist.Table, schema.CatalogArtist.Source, schema.CatalogArtist.ExternalID,
	)

	rows, err := repository.db.Query(context, query, source, externalIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "get_artist_ids")
	}
	defer rows.Close()

	for rows.Next() {
		var externalID string
		var id uuid.UUID
		if err := rows.Scan(&externalID, &id); err != nil {
			return nil, dberr.Wrap(err, "scan_artist_ids")
		}
		out[externalID] = id
	}
	return out, rows.Err()
}

func (repository *PostgresRepository) UpdateGenres(context context.Context, id uuid.UUID, genres []string, genreSource string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1
	`,
		schema.CatalogArtist.Table,
		schema.CatalogArtist.Genres, schema.CatalogArtist.GenreSource, schema.CatalogArtist.UpdatedAt,
		schema.CatalogArtist.ID,
	)

	cmd, err := repository.db.Exec(context, query, id, genres, genreSource)
	if err != nil {
		return dberr.Wrap(err, "update_artist_genres")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) ListMissingGenres(context context.Context, limit int) ([]*Artist, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE cardinality(%s) = 0 AND %s IS NOT NULL
		ORDER BY %s ASC
		LIMIT NULLIF($1, 0)
	`,
		schema.CatalogArtist.ID, schema.CatalogArtist.Source, schema.CatalogArtist.ExternalID,
		schema.CatalogArtist.Name, schema.CatalogArtist.ExternalRefs,
		schema.CatalogArtist.Table,
		schema.CatalogArtist.Genres, schema.CatalogArtist.ExternalRefs,
		schema.CatalogArtist.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_artists_missing_genres")
	}
	defer rows.Close()

	var artists []*Artist
	for rows.Next() {
		a := &Artist{}
		if err := rows.Scan(&a.ID, &a.Source, &a.ExternalID, &a.Name, &a.ExternalRefs); err != nil {
			return nil, dberr.Wrap(err, "scan_artist_missing_genres")
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

func (repository *PostgresRepository) CountDuplicates(context context.Context) (int, error) {
	query := fmt.Sprintf(`
		SELECT count(*) FROM (
			SELECT %s, %s FROM %s GROUP BY %s, %s HAVING count(*) > 1
		) dup
	`,
		schema.CatalogArtist.Source, schema.CatalogArtist.ExternalID, schema.CatalogArtist.Table,
		schema.CatalogArtist.Source, schema.CatalogArtist.ExternalID,
	)

	var total int
	err := repository.db.QueryRow(context, query).Scan(&total)
	return total, dberr.Wrap(err, "count_artist_duplicates")
}
