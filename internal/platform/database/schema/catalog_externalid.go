// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package schema

// CatalogExternalIDTable represents the 'catalog.externalid' ledger table.
// One row per (source, entitytype, externalid); never mutated after insert.
type CatalogExternalIDTable struct {
	Table      string
	Source     string
	EntityType string
	ExternalID string
	EntityID   string
	CreatedAt  string
}

// CatalogExternalID is the schema definition for catalog.externalid
var CatalogExternalID = CatalogExternalIDTable{
	Table:      "catalog.externalid",
	Source:     "source",
	EntityType: "entitytype",
	ExternalID: "externalid",
	EntityID:   "entityid",
	CreatedAt:  "createdat",
}

func (t CatalogExternalIDTable) Columns() []string {
	return []string{t.Source, t.EntityType, t.ExternalID, t.EntityID, t.CreatedAt}
}
