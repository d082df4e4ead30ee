// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package schema

// CatalogVenueTable represents the 'catalog.venue' table
type CatalogVenueTable struct {
	Table        string
	ID           string
	Source       string
	ExternalID   string
	NameKey      string
	Name         string
	URL          string
	ImageURL     string
	Street       string
	Locality     string
	Region       string
	PostalCode   string
	Country      string
	Latitude     string
	Longitude    string
	Capacity     string
	CreatedAt    string
	UpdatedAt    string
	LastSyncedAt string
}

// CatalogVenue is the schema definition for catalog.venue
var CatalogVenue = CatalogVenueTable{
	Table:        "catalog.venue",
	ID:           "id",
	Source:       "source",
	ExternalID:   "externalid",
	NameKey:      "namekey",
	Name:         "name",
	URL:          "url",
	ImageURL:     "imageurl",
	Street:       "street",
	Locality:     "locality",
	Region:       "region",
	PostalCode:   "postalcode",
	Country:      "country",
	Latitude:     "latitude",
	Longitude:    "longitude",
	Capacity:     "capacity",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
	LastSyncedAt: "lastsyncedat",
}

func (t CatalogVenueTable) Columns() []string {
	return []string{
		t.ID, t.Source, t.ExternalID, t.NameKey, t.Name, t.URL, t.ImageURL,
		t.Street, t.Locality, t.Region, t.PostalCode, t.Country,
		t.Latitude, t.Longitude, t.Capacity, t.CreatedAt, t.UpdatedAt, t.LastSyncedAt,
	}
}
