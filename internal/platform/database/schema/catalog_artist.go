// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package schema

// CatalogArtistTable represents the 'catalog.artist' table
type CatalogArtistTable struct {
	Table            string
	ID               string
	Source           string
	ExternalID       string
	Name             string
	URL              string
	ImageURL         string
	Genres           string
	GenreSource      string
	FoundingLocation string
	FoundingDate     string
	Members          string
	ExternalRefs     string
	Raw              string
	CreatedAt        string
	UpdatedAt        string
	LastSyncedAt     string
}

// CatalogArtist is the schema definition for catalog.artist
var CatalogArtist = CatalogArtistTable{
	Table:            "catalog.artist",
	ID:               "id",
	Source:           "source",
	ExternalID:       "externalid",
	Name:             "name",
	URL:              "url",
	ImageURL:         "imageurl",
	Genres:           "genres",
	GenreSource:      "genresource",
	FoundingLocation: "foundinglocation",
	FoundingDate:     "foundingdate",
	Members:          "members",
	ExternalRefs:     "externalrefs",
	Raw:              "raw",
	CreatedAt:        "createdat",
	UpdatedAt:        "updatedat",
	LastSyncedAt:     "lastsyncedat",
}

func (t CatalogArtistTable) Columns() []string {
	return []string{
		t.ID, t.Source, t.ExternalID, t.Name, t.URL, t.ImageURL, t.Genres, t.GenreSource,
		t.FoundingLocation, t.FoundingDate, t.Members, t.ExternalRefs, t.Raw,
		t.CreatedAt, t.UpdatedAt, t.LastSyncedAt,
	}
}
