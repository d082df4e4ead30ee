// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package schema

// CatalogEventTable represents the 'catalog.event' table
type CatalogEventTable struct {
	Table           string
	ID              string
	Source          string
	ExternalID      string
	Title           string
	StartsAt        string
	DoorsAt         string
	Description     string
	Genres          string
	ArtistID        string
	VenueID         string
	TicketAvailable string
	PriceMin        string
	PriceMax        string
	PriceRange      string
	PriceCurrency   string
	TicketURLs      string
	ExternalURL     string
	TourName        string
	Status          string
	Images          string
	LastModifiedAt  string
	CreatedAt       string
	UpdatedAt       string
}

// CatalogEvent is the schema definition for catalog.event
var CatalogEvent = CatalogEventTable{
	Table:           "catalog.event",
	ID:              "id",
	Source:          "source",
	ExternalID:      "externalid",
	Title:           "title",
	StartsAt:        "startsat",
	DoorsAt:         "doorsat",
	Description:     "description",
	Genres:          "genres",
	ArtistID:        "artistid",
	VenueID:         "venueid",
	TicketAvailable: "ticketavailable",
	PriceMin:        "pricemin",
	PriceMax:        "pricemax",
	PriceRange:      "pricerange",
	PriceCurrency:   "pricecurrency",
	TicketURLs:      "ticketurls",
	ExternalURL:     "externalurl",
	TourName:        "tourname",
	Status:          "status",
	Images:          "images",
	LastModifiedAt:  "lastmodifiedat",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

func (t CatalogEventTable) Columns() []string {
	return []string{
		t.ID, t.Source, t.ExternalID, t.Title, t.StartsAt, t.DoorsAt, t.Description,
		t.Genres, t.ArtistID, t.VenueID, t.TicketAvailable, t.PriceMin, t.PriceMax,
		t.PriceRange, t.PriceCurrency, t.TicketURLs, t.ExternalURL, t.TourName,
		t.Status, t.Images, t.LastModifiedAt, t.CreatedAt, t.UpdatedAt,
	}
}
