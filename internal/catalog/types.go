// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

/*
Package catalog implements the client for the upstream events API.

The upstream exposes a single paginated listing endpoint. Each page embeds
the full performer and venue objects inside every event, so one fetch yields
all three entity kinds at once.

Payload tolerance: the upstream serializes several fields inconsistently —
genres arrive as a string or an array, coordinates as numbers or strings,
and address sub-fields as plain strings or nested objects. The Flex* types
in this package absorb those shapes at decode time so the extractor only
ever sees normalized Go values.
*/
package catalog

import (
	json "github.com/goccy/go-json"

	"github.com/crescendo-live/crescendo/pkg/convert"
)

// Page is one page of the upstream events listing.
type Page struct {
	Success    bool       `json:"success"`
	Events     []Event    `json:"events"`
	Pagination Pagination `json:"pagination"`
}

// Pagination carries the upstream's page window metadata. TotalPages from
// page 1 establishes the run boundary for a full sync.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Event is a single upstream event with its embedded performers and venue.
type Event struct {
	Type         string      `json:"@type"`
	Identifier   string      `json:"identifier"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	StartDate    string      `json:"startDate"`
	EndDate      string      `json:"endDate"`
	DoorTime     string      `json:"doorTime"`
	EventStatus  string      `json:"eventStatus"`
	Performer    []Performer `json:"performer"`
	Location     *Location   `json:"location"`
	Offers       []Offer     `json:"offers"`
	Image        []Image     `json:"image"`
	SameAs       []string    `json:"sameAs"`
	PartOfTour   *Tour       `json:"partOfTour"`
	DateModified string      `json:"dateModified"`
}

// Tour is the named tour an event belongs to, when the upstream knows it.
type Tour struct {
	Name string `json:"name"`
}

// Image is one entry of an event's image gallery.
type Image struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// Performer is an upstream artist object embedded in an event.
//
// Raw holds the verbatim upstream bytes; the writer persists them alongside
// the extracted columns so re-extraction never needs another upstream call.
type Performer struct {
	Type                string               `json:"@type"`
	Identifier          string               `json:"identifier"`
	Name                string               `json:"name"`
	URL                 string               `json:"url"`
	ImageURL            string               `json:"image"`
	Genre               FlexStrings          `json:"genre"`
	IsHeadliner         bool                 `json:"x-isHeadliner"`
	BandOrMusician      string               `json:"x-bandOrMusician"`
	FoundingLocation    *NamedThing          `json:"foundingLocation"`
	FoundingDate        string               `json:"foundingDate"`
	Member              json.RawMessage      `json:"member"`
	ExternalIdentifiers []ExternalIdentifier `json:"x-externalIdentifiers"`
	SameAs              FlexStrings          `json:"sameAs"`
	DatePublished       string               `json:"datePublished"`
	DateModified        string               `json:"dateModified"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the performer and keeps a verbatim copy of the
// upstream bytes in Raw.
func (p *Performer) UnmarshalJSON(data []byte) error {
	type alias Performer
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Performer(a)
	p.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// ExternalIdentifier is a cross-reference into a third-party catalog,
// e.g. {"source": "spotify", "identifier": ["4Z8W4fKeB5YxbusRsdQVPb"]}.
// The identifier arrives as a string or an array depending on the record.
type ExternalIdentifier struct {
	Source     string      `json:"source"`
	Identifier FlexStrings `json:"identifier"`
}

// First returns the primary identifier, or "" when none is present.
func (e ExternalIdentifier) First() string {
	if len(e.Identifier) == 0 {
		return ""
	}
	return e.Identifier[0]
}

// NamedThing is an upstream object referenced only by its name.
type NamedThing struct {
	Name string `json:"name"`
}

// Location is an upstream venue object embedded in an event.
type Location struct {
	Type          string      `json:"@type"`
	Identifier    string      `json:"identifier"`
	Name          string      `json:"name"`
	URL           string      `json:"url"`
	ImageURL      string      `json:"image"`
	Address       *Address    `json:"address"`
	Geo           *Geo        `json:"geo"`
	Capacity      int         `json:"maximumAttendeeCapacity"`
	SameAs        FlexStrings `json:"sameAs"`
	DatePublished string      `json:"datePublished"`
	DateModified  string      `json:"dateModified"`
}

// Address is a venue's postal address. Region and Country arrive either as
// plain strings or as nested {"name": ...} objects.
type Address struct {
	StreetAddress   string   `json:"streetAddress"`
	AddressLocality string   `json:"addressLocality"`
	AddressRegion   FlexName `json:"addressRegion"`
	PostalCode      string   `json:"postalCode"`
	AddressCountry  FlexName `json:"addressCountry"`
}

// Geo carries a venue's coordinates. The upstream serializes them as
// numbers or strings depending on the record.
type Geo struct {
	Latitude  *FlexFloat `json:"latitude"`
	Longitude *FlexFloat `json:"longitude"`
}

// Offer is a ticket offer attached to an event.
type Offer struct {
	URL                string     `json:"url"`
	Availability       string     `json:"availability"`
	PriceSpecification *PriceSpec `json:"priceSpecification"`
}

// AvailabilityInStock is the offer availability value meaning tickets are
// currently purchasable.
const AvailabilityInStock = "InStock"

// PriceSpec is the price block of an offer.
type PriceSpec struct {
	Price         *FlexFloat `json:"price"`
	MinPrice      *FlexFloat `json:"minPrice"`
	MaxPrice      *FlexFloat `json:"maxPrice"`
	PriceCurrency string     `json:"priceCurrency"`
}

// FlexStrings decodes a JSON field that arrives as either a single string
// or an array of strings. Unrecognized shapes decode to nil rather than
// failing the page.
type FlexStrings []string

func (s *FlexStrings) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*s = arr
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one != "" {
			*s = FlexStrings{one}
		}
		return nil
	}
	*s = nil
	return nil
}

// FlexName decodes a field that arrives as either a plain string or a
// {"name": ...} object.
type FlexName string

func (n *FlexName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = FlexName(s)
		return nil
	}
	var obj NamedThing
	if err := json.Unmarshal(data, &obj); err == nil {
		*n = FlexName(obj.Name)
		return nil
	}
	*n = ""
	return nil
}

// String returns the resolved name.
func (n FlexName) String() string { return string(n) }

// FlexFloat decodes a numeric field that arrives as either a JSON number
// or a quoted string. Unparseable values decode to zero rather than
// failing the page; callers use pointer fields to distinguish absence.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = 0
		return nil
	}
	if p := convert.ToFloat64Ptr(s); p != nil {
		*f = FlexFloat(*p)
	} else {
		*f = 0
	}
	return nil
}

// Float64Ptr converts an optional FlexFloat to an optional float64.
func (f *FlexFloat) Float64Ptr() *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}
