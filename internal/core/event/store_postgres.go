// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package event

import (
	"context"
	"fmt"
	"time"

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

func (repository *PostgresRepository) UpsertBatch(context context.Context, events []*Event) error {
	if len(events) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, NOW(), NOW())
		ON CONFLICT (%s, %s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = COALESCE(EXCLUDED.%s, event.%s),
			%s = COALESCE(EXCLUDED.%s, event.%s),
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = NOW()
	`,
		schema.CatalogEvent.Table,
		schema.CatalogEvent.ID, schema.CatalogEvent.Source, schema.CatalogEvent.ExternalID,
		schema.CatalogEvent.Title, schema.CatalogEvent.StartsAt, schema.CatalogEvent.DoorsAt,
		schema.CatalogEvent.Description, schema.CatalogEvent.Genres, schema.CatalogEvent.ArtistID,
		schema.CatalogEvent.VenueID, schema.CatalogEvent.TicketAvailable, schema.CatalogEvent.PriceMin,
		schema.CatalogEvent.PriceMax, schema.CatalogEvent.PriceRange, schema.CatalogEvent.PriceCurrency,
		schema.CatalogEvent.TicketURLs, schema.CatalogEvent.ExternalURL, schema.CatalogEvent.TourName,
		schema.CatalogEvent.Status, schema.CatalogEvent.Images, schema.CatalogEvent.LastModifiedAt,
		schema.CatalogEvent.CreatedAt, schema.CatalogEvent.UpdatedAt,
		schema.CatalogEvent.Source, schema.CatalogEvent.ExternalID,
		schema.CatalogEvent.Title, schema.CatalogEvent.Title,
		schema.CatalogEvent.StartsAt, schema.CatalogEvent.StartsAt,
		schema.CatalogEvent.DoorsAt, schema.CatalogEvent.DoorsAt,
		schema.CatalogEvent.Description, schema.CatalogEvent.Description,
		schema.CatalogEvent.Genres, schema.CatalogEvent.Genres,
		schema.CatalogEvent.ArtistID, schema.CatalogEvent.ArtistID, schema.CatalogEvent.ArtistID,
		schema.CatalogEvent.VenueID, schema.CatalogEvent.VenueID, schema.CatalogEvent.VenueID,
		schema.CatalogEvent.TicketAvailable, schema.CatalogEvent.TicketAvailable,
		schema.CatalogEvent.PriceMin, schema.CatalogEvent.PriceMin,
		schema.CatalogEvent.PriceMax, schema.CatalogEvent.PriceMax,
		schema.CatalogEvent.PriceRange, schema.CatalogEvent.PriceRange,
		schema.CatalogEvent.PriceCurrency, schema.CatalogEvent.PriceCurrency,
		schema.CatalogEvent.TicketURLs, schema.CatalogEvent.TicketURLs,
		schema.CatalogEvent.ExternalURL, schema.CatalogEvent.ExternalURL,
		schema.CatalogEvent.TourName, schema.CatalogEvent.TourName,
		schema.CatalogEvent.Status, schema.CatalogEvent.Status,
		schema.CatalogEvent.Images, schema.CatalogEvent.Images,
		schema.CatalogEvent.LastModifiedAt, schema.CatalogEvent.LastModifiedAt,
		schema.CatalogEvent.UpdatedAt,
	)

	batch := &pgx.Batch{}
	for _, e := range events {
		genres := e.Genres
		if genres == nil {
			genres = []string{}
		}
		ticketURLs := e.TicketURLs
		if ticketURLs == nil {
			ticketURLs = []string{}
		}
		batch.Queue(query,
			e.ID, e.Source, e.ExternalID, e.Title, e.StartsAt, e.DoorsAt,
			e.Description, genres, e.ArtistID, e.VenueID, e.TicketAvailable,
			e.PriceMin, e.PriceMax, e.PriceRange, e.PriceCurrency, ticketURLs,
			e.ExternalURL, e.TourName, e.Status, e.Images, e.LastModifiedAt,
		)
	}

	results := repository.db.SendBatch(context, batch)
	defer results.Close()

	for range events {
		if _, err := results.Exec(); err != nil {
			return dberr.Wrap(err, "upsert_events")
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
		schema.CatalogEvent.ExternalID, schema.CatalogEvent.ID,
		schema.CatalogEvent.Table, schema.CatalogEvent.Source, schema.CatalogEvent.ExternalID,
	)

	rows, err := repository.db.Query(context, query, source, externalIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "get_event_ids")
	}
	defer rows.Close()

	for rows.Next() {
		var externalID string
		var id uuid.UUID
		if err := rows.Scan(&externalID, &id); err != nil {
			return nil, dberr.Wrap(err, "scan_event_ids")
		}
		out[externalID] = id
	}
	return out, rows.Err()
}

func (repository *PostgresRepository) MaxLastModified(context context.Context, source string) (*time.Time, error) {
	query := fmt.Sprintf(`SELECT max(%s) FROM %s WHERE %s = $1`,
		schema.CatalogEvent.LastModifiedAt, schema.CatalogEvent.Table, schema.CatalogEvent.Source,
	)

	var watermark *time.Time
	if err := repository.db.QueryRow(context, query, source).Scan(&watermark); err != nil {
		return nil, dberr.Wrap(err, "max_event_last_modified")
	}
	return watermark, nil
}

func (repository *PostgresRepository) CountDuplicates(context context.Context) (int, error) {
	query := fmt.Sprintf(`
		SELECT count(*) FROM (
			SELECT %s, %s FROM %s GROUP BY %s, %s HAVING count(*) > 1
		) dup
	`,
		schema.CatalogEvent.Source, schema.CatalogEvent.ExternalID, schema.CatalogEvent.Table,
		schema.CatalogEvent.Source, schema.CatalogEvent.ExternalID,
	)

	var total int
	err := repository.db.QueryRow(context, query).Scan(&total)
	return total, dberr.Wrap(err, "count_event_duplicates")
}
