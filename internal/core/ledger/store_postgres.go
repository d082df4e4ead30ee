// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package ledger

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

func (repository *PostgresRepository) Resolve(context context.Context, source, entityType string, externalIDs []string) (map[string]uuid.UUID, error) {
	out := make(map[string]uuid.UUID, len(externalIDs))
	if len(externalIDs) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`
		SELECT %s, %s FROM %s
		WHERE %s = $1 AND %s = $2 AND %s = ANY($3)
	`,
		schema.CatalogExternalID.ExternalID, schema.CatalogExternalID.EntityID,
		schema.CatalogExternalID.Table,
		schema.CatalogExternalID.Source, schema.CatalogExternalID.EntityType,
		schema.CatalogExternalID.ExternalID,
	)

	rows, err := repository.db.Query(context, query, source, entityType, externalIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "resolve_external_ids")
	}
	defer rows.Close()

	for rows.Next() {
		var externalID string
		var entityID uuid.UUID
		if err := rows.Scan(&externalID, &entityID); err != nil {
			return nil, dberr.Wrap(err, "scan_external_id")
		}
		out[externalID] = entityID
	}
	return out, rows.Err()
}

func (repository *PostgresRepository) Register(context context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (%s, %s, %s) DO NOTHING
	`,
		schema.CatalogExternalID.Table,
		schema.CatalogExternalID.Source, schema.CatalogExternalID.EntityType,
		schema.CatalogExternalID.ExternalID, schema.CatalogExternalID.EntityID,
		schema.CatalogExternalID.CreatedAt,
		schema.CatalogExternalID.Source, schema.CatalogExternalID.EntityType,
		schema.CatalogExternalID.ExternalID,
	)

	batch := &pgx.Batch{}
	for _, entry := range entries {
		batch.Queue(query, entry.Source, entry.EntityType, entry.ExternalID, entry.EntityID)
	}

	results := repository.db.SendBatch(context, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return dberr.Wrap(err, "register_external_ids")
		}
	}
	return nil
}
