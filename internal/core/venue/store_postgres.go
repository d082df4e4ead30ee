// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package venue

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

func (repository *PostgresRepository) UpsertBatch(context context.Context, venues []*Venue) error {
	if len(venues) == 0 {
		return nil
	}

	// Address fields COALESCE toward the stored row: a later event that
	// embeds the same venue with a sparser address never blanks out the
	// richer copy.
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW(), NOW())
		ON CONFLICT (%s, %s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = COALESCE(EXCLUDED.%s, venue.%s),
			%s = COALESCE(EXCLUDED.%s, venue.%s),
			%s = COALESCE(EXCLUDED.%s, venue.%s),
			%s = COALESCE(EXCLUDED.%s, venue.%s),
			%s = COALESCE(EXCLUDED.%s, venue.%s),
			%s = COALESCE(EXCLUDED.%s, venue.%s),
			%s = COALESCE(EXCLUDED.%s, venue.%s),
			%s = COALESCE(EXCLUDED.%s, venue.%s),
			%s = COALESCE(EXCLUDED.%s, venue.%s),
			%s = COALESCE(EXCLUDED.%s, venue.%s),
			%s = NOW(),
			%s = NOW()
	`,
		schema.CatalogVenue.Table,
		schema.CatalogVenue.ID, schema.CatalogVenue.Source, schema.CatalogVenue.ExternalID,
		schema.CatalogVenue.NameKey, schema.CatalogVenue.Name, schema.CatalogVenue.URL,
		schema.CatalogVenue.ImageURL, schema.CatalogVenue.Street, schema.CatalogVenue.Locality,
		schema.CatalogVenue.Region, schema.CatalogVenue.PostalCode, schema.CatalogVenue.Country,
		schema.CatalogVenue.Latitude, schema.CatalogVenue.Longitude, schema.CatalogVenue.Capacity,
		schema.CatalogVenue.CreatedAt, schema.CatalogVenue.UpdatedAt, schema.CatalogVenue.LastSyncedAt,
		schema.CatalogVenue.Source, schema.CatalogVenue.ExternalID,
		schema.CatalogVenue.NameKey, schema.CatalogVenue.NameKey,
		schema.CatalogVenue.Name, schema.CatalogVenue.Name,
		schema.CatalogVenue.URL, schema.CatalogVenue.URL, schema.CatalogVenue.URL,
		schema.CatalogVenue.ImageURL, schema.CatalogVenue.ImageURL, schema.CatalogVenue.ImageURL,
		schema.CatalogVenue.Street, schema.CatalogVenue.Street, schema.CatalogVenue.Street,
		schema.CatalogVenue.Locality, schema.CatalogVenue.Locality, schema.CatalogVenue.Locality,
		schema.CatalogVenue.Region, schema.CatalogVenue.Region, schema.CatalogVenue.Region,
		schema.CatalogVenue.PostalCode, schema.CatalogVenue.PostalCode, schema.CatalogVenue.PostalCode,
		schema.CatalogVenue.Country, schema.CatalogVenue.Country, schema.CatalogVenue.Country,
		schema.CatalogVenue.Latitude, schema.CatalogVenue.Latitude, schema.CatalogVenue.Latitude,
		schema.CatalogVenue.Longitude, schema.CatalogVenue.Longitude, schema.CatalogVenue.Longitude,
		schema.CatalogVenue.Capacity, schema.CatalogVenue.Capacity, schema.CatalogVenue.Capacity,
		schema.CatalogVenue.UpdatedAt,
		schema.CatalogVenue.LastSyncedAt,
	)

	batch := &pgx.Batch{}
	for _, v := range venues {
		batch.Queue(query,
			v.ID, v.Source, v.ExternalID, v.NameKey, v.Name, v.URL, v.ImageURL,
			v.Street, v.Locality, v.Region, v.PostalCode, v.Country,
			v.Latitude, v.Longitude, v.Capacity,
		)
	}

	results := repository.db.SendBatch(context, batch)
	defer results.Close()

	for range venues {
		if _, err := results.Exec(); err != nil {
			return dberr.Wrap(err, "upsert_venues")
		}
	}
	return nil
}

func (repository *PostgresRepository) GetIDsByExternalIDs(context context.Context, source string, externalIDs []string) (map[string]uuid.UUID, error) {
	out := make(map[string]uuid.UUID, len(externalIDs))
	if len(externalIDs) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 AND %s = ANY($2)`,
		schema.CatalogVenue.ExternalID, schema.CatalogVenue.ID,
		schema.CatalogVenue.Table, schema.CatalogVenue.Source, schema.CatalogVenue.ExternalID,
	)

	rows, err := repository.db.Query(context, query, source, externalIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "get_venue_ids")
	}
	defer rows.Close()

	for rows.Next() {
		var externalID string
		var id uuid.UUID
		if err := rows.Scan(&externalID, &id); err != nil {
			return nil, dberr.Wrap(err, "scan_venue_ids")
		}
		out[externalID] = id
	}
	return out, rows.Err()
}

func (repository *PostgresRepository) CountDuplicates(context context.Context) (int, error) {
	query := fmt.Sprintf(`
		SELECT count(*) FROM (
			SELECT %s, %s FROM %s GROUP BY %s, %s HAVING count(*) > 1
		) dup
	`,
		schema.CatalogVenue.Source, schema.CatalogVenue.ExternalID, schema.CatalogVenue.Table,
		schema.CatalogVenue.Source, schema.CatalogVenue.ExternalID,
	)

	var total int
	err := repository.db.QueryRow(context, query).Scan(&total)
	return total, dberr.Wrap(err, "count_venue_duplicates")
}
