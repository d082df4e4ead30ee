// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

/*
Package sync implements the catalog synchronization engine.

A run flows through four stages: fetch (internal/catalog), extract (this
file), resolve (resolver.go) and write (writer.go), coordinated by the
orchestrator. Pages are independent units of work — a failed page never
poisons its neighbors.
*/
package sync

import (
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/crescendo-live/crescendo/internal/catalog"
	"github.com/crescendo-live/crescendo/internal/core/artist"
	"github.com/crescendo-live/crescendo/internal/core/event"
	"github.com/crescendo-live/crescendo/internal/core/venue"
	"github.com/crescendo-live/crescendo/pkg/pointer"
)

// Extraction is the normalized content of one upstream page: deduplicated
// artists and venues plus events that reference them by external id. Ids
// are assigned later by the resolver.
type Extraction struct {
	Artists []*artist.Artist
	Venues  []*venue.Venue
	Events  []*ExtractedEvent
}

// ExtractedEvent pairs an event row with the external ids of its headliner
// and venue. Either id may be empty.
type ExtractedEvent struct {
	Event            *event.Event
	ArtistExternalID string
	VenueExternalID  string
}

// Extractor turns upstream payloads into entity rows.
type Extractor struct {
	source string
}

// NewExtractor creates an extractor tagging rows with the given source.
func NewExtractor(source string) *Extractor {
	return &Extractor{source: source}
}

// ExtractPage normalizes one page of upstream events.
//
// Artists and venues embedded in several events of the page collapse into
// one row each; an artist seen twice keeps the union of its genres.
// Malformed records degrade to nil fields or are skipped, never failing
// the page.
func (x *Extractor) ExtractPage(events []catalog.Event) *Extraction {
	out := &Extraction{}
	artistsByID := map[string]*artist.Artist{}
	venuesByID := map[string]*venue.Venue{}

	for i := range events {
		upstream := &events[i]
		if upstream.Identifier == "" {
			continue
		}

		var artistExternalID string
		if headliner := pickHeadliner(upstream.Performer); headliner != nil {
			if a := x.extractArtist(headliner); a != nil {
				artistExternalID = a.ExternalID
				if seen, ok := artistsByID[a.ExternalID]; ok {
					seen.Genres = artist.MergeGenres(seen.Genres, a.Genres)
				} else {
					artistsByID[a.ExternalID] = a
					out.Artists = append(out.Artists, a)
				}
			}
		}

		var venueExternalID string
		if v := x.extractVenue(upstream.Location); v != nil {
			venueExternalID = v.ExternalID
			if _, ok := venuesByID[v.ExternalID]; !ok {
				venuesByID[v.ExternalID] = v
				out.Venues = append(out.Venues, v)
			}
		}

		out.Events = append(out.Events, &ExtractedEvent{
			Event:            x.extractEvent(upstream),
			ArtistExternalID: artistExternalID,
			VenueExternalID:  venueExternalID,
		})
	}
	return out
}

// pickHeadliner returns the performer flagged as headliner, falling back
// to the first performer.
func pickHeadliner(performers []catalog.Performer) *catalog.Performer {
	for i := range performers {
		if performers[i].IsHeadliner {
			return &performers[i]
		}
	}
	if len(performers) > 0 {
		return &performers[0]
	}
	return nil
}

func (x *Extractor) extractArtist(p *catalog.Performer) *artist.Artist {
	if p.Identifier == "" {
		return nil
	}

	name := p.Name
	if name == "" {
		name = "Unknown Artist"
	}

	genres := artist.MergeGenres(nil, p.Genre)
	a := &artist.Artist{
		Source:           x.source,
		ExternalID:       x.stripPrefix(p.Identifier),
		Name:             name,
		URL:              optional(p.URL),
		ImageURL:         optional(p.ImageURL),
		Genres:           genres,
		FoundingLocation: nil,
		FoundingDate:     optional(p.FoundingDate),
		Members:          rawBytes(p.Member),
		Raw:              rawBytes(p.Raw),
	}
	if len(genres) > 0 {
		a.GenreSource = pointer.To(artist.GenreSourceCatalog)
	}
	if p.FoundingLocation != nil {
		a.FoundingLocation = optional(p.FoundingLocation.Name)
	}
	if len(p.ExternalIdentifiers) > 0 {
		if refs, err := json.Marshal(p.ExternalIdentifiers); err == nil {
			a.ExternalRefs = refs
		}
	}
	return a
}

func (x *Extractor) extractVenue(l *catalog.Location) *venue.Venue {
	if l == nil || l.Name == "" {
		return nil
	}

	externalID := venue.FallbackExternalID(l.Name)
	if l.Identifier != "" {
		externalID = x.stripPrefix(l.Identifier)
	}

	v := &venue.Venue{
		Source:     x.source,
		ExternalID: externalID,
		NameKey:    venue.NameKey(l.Name),
		Name:       l.Name,
		URL:        optional(l.URL),
		ImageURL:   optional(l.ImageURL),
	}
	if l.Capacity > 0 {
		v.Capacity = pointer.To(l.Capacity)
	}
	if addr := l.Address; addr != nil {
		v.Street = optional(addr.StreetAddress)
		v.Locality = optional(addr.AddressLocality)
		v.Region = optional(addr.AddressRegion.String())
		v.PostalCode = optional(addr.PostalCode)
		v.Country = optional(addr.AddressCountry.String())
	}
	if geo := l.Geo; geo != nil {
		v.Latitude = geo.Latitude.Float64Ptr()
		v.Longitude = geo.Longitude.Float64Ptr()
	}
	return v
}

func (x *Extractor) extractEvent(upstream *catalog.Event) *event.Event {
	headliner := pickHeadliner(upstream.Performer)

	title := upstream.Name
	if title == "" {
		if headliner != nil && headliner.Name != "" {
			title = headliner.Name + " Live"
		} else {
			title = "Unknown Artist Live"
		}
	}

	startsAt := time.Now().UTC()
	if ts := parseTimestamp(upstream.StartDate); ts != nil {
		startsAt = *ts
	}

	e := &event.Event{
		Source:        x.source,
		ExternalID:    x.stripPrefix(upstream.Identifier),
		Title:         title,
		StartsAt:      startsAt,
		DoorsAt:       reconcileDoors(upstream.DoorTime, upstream.StartDate),
		Description:   optional(upstream.Description),
		Status:        optional(upstream.EventStatus),
		PriceCurrency: "USD",
	}
	if headliner != nil {
		e.Genres = artist.MergeGenres(nil, headliner.Genre)
	}
	if upstream.PartOfTour != nil {
		e.TourName = optional(upstream.PartOfTour.Name)
	}
	if len(upstream.SameAs) > 0 {
		e.ExternalURL = optional(upstream.SameAs[0])
	}
	if ts := parseTimestamp(upstream.DateModified); ts != nil {
		e.LastModifiedAt = ts
	}
	if len(upstream.Image) > 0 {
		if images, err := json.Marshal(upstream.Image); err == nil {
			e.Images = images
		}
	}

	x.extractOffers(upstream.Offers, e)
	return e
}

// extractOffers fills ticket availability and price fields from the
// event's offers. Price fields come from the first offer carrying a price
// specification; availability is true when any offer is in stock.
func (x *Extractor) extractOffers(offers []catalog.Offer, e *event.Event) {
	for _, offer := range offers {
		if offer.Availability == catalog.AvailabilityInStock {
			e.TicketAvailable = true
		}
		if offer.URL != "" {
			e.TicketURLs = append(e.TicketURLs, offer.URL)
		}
	}

	var spec *catalog.PriceSpec
	for _, offer := range offers {
		if offer.PriceSpecification != nil {
			spec = offer.PriceSpecification
			break
		}
	}
	if spec == nil {
		return
	}

	e.PriceMin = spec.MinPrice.Float64Ptr()
	e.PriceMax = spec.MaxPrice.Float64Ptr()
	if spec.PriceCurrency != "" {
		e.PriceCurrency = spec.PriceCurrency
	}

	switch {
	case e.PriceMin != nil && e.PriceMax != nil:
		e.PriceRange = pointer.To(formatPrice(*e.PriceMin) + " - " + formatPrice(*e.PriceMax))
	case spec.Price != nil:
		e.PriceRange = pointer.To(formatPrice(float64(*spec.Price)))
	}
}

// stripPrefix removes the upstream's own source tag from an identifier,
// e.g. "showgrid:3953048" becomes "3953048".
func (x *Extractor) stripPrefix(identifier string) string {
	return strings.TrimPrefix(identifier, x.source+":")
}

// reconcileDoors interprets the upstream door time, which arrives either
// as a full timestamp or as a bare clock time to be combined with the
// event's start date.
func reconcileDoors(doorTime, startDate string) *time.Time {
	doorTime = strings.TrimSpace(doorTime)
	if doorTime == "" {
		return nil
	}
	if strings.ContainsAny(doorTime, "T-") {
		return parseTimestamp(doorTime)
	}
	if startDate == "" {
		return nil
	}
	datePart, _, _ := strings.Cut(startDate, "T")
	return parseTimestamp(datePart + "T" + doorTime)
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimestamp parses the upstream's timestamp variants, returning nil
// when none match.
func parseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return pointer.To(ts.UTC())
		}
	}
	return nil
}

// formatPrice renders a price the way run reports and listings show it:
// whole dollars without decimals, fractional prices with two.
func formatPrice(v float64) string {
	if v == float64(int64(v)) {
		return "$" + strconv.FormatInt(int64(v), 10)
	}
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

// optional maps "" to nil for nullable text columns.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return pointer.To(s)
}

// rawBytes copies a raw JSON fragment, mapping empty to nil.
func rawBytes(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
