package domain

import (
	"time"
)

// Element source types in the OpenStreetMap data model.
const (
	SourceNode     = "node"
	SourceWay      = "way"
	SourceRelation = "relation"
)

// SourceTypes lists every element type, in the order queries emit them.
var SourceTypes = []string{SourceNode, SourceWay, SourceRelation}

const (
	// Uncategorized is reported for places matching no registered category.
	Uncategorized = "otros"
	// VicinityFallback is used when a place has no address tags.
	VicinityFallback = "Ubicación disponible"
	// AddressFallback is used when a details lookup finds no address tags.
	AddressFallback = "Dirección no disponible"
	// UnnamedPlace is the details name used when the element lacks a name tag.
	UnnamedPlace = "Sin nombre"
)

// LatLon is an optional coordinate pair as reported by Overpass.
type LatLon struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// RawElement is a single element from an Overpass JSON response. Nodes carry
// Lat/Lon directly; ways and relations only carry a Center when the query
// asked for one.
type RawElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *LatLon           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// Position resolves the element's coordinate, preferring the direct lat/lon
// over the center. ok is false when neither is complete.
func (e RawElement) Position() (Coordinate, bool) {
	if e.Lat != nil && e.Lon != nil {
		return Coordinate{Lat: *e.Lat, Lng: *e.Lon}, true
	}
	if e.Center != nil && e.Center.Lat != nil && e.Center.Lon != nil {
		return Coordinate{Lat: *e.Center.Lat, Lng: *e.Center.Lon}, true
	}
	return Coordinate{}, false
}

// Place is the client-facing projection of a RawElement. The nil/empty
// fields (Photos, OpenNow, Rating, UserRatingsTotal, PriceLevel) are not
// available from OpenStreetMap and are always serialized as placeholders.
type Place struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Location         Coordinate        `json:"location"`
	Tags             map[string]string `json:"tags"`
	Distance         int               `json:"distance"`
	Photos           []string          `json:"photos"`
	OpenNow          *bool             `json:"openNow"`
	Rating           *float64          `json:"rating"`
	UserRatingsTotal *int              `json:"userRatingsTotal"`
	PriceLevel       *int              `json:"priceLevel"`
	Vicinity         string            `json:"vicinity"`
	Category         string            `json:"category"`
}

// PlaceDetails is a Place enriched with contact and address data.
type PlaceDetails struct {
	Place
	Address      string  `json:"address"`
	Phone        *string `json:"phone"`
	Website      *string `json:"website"`
	OpeningHours *string `json:"openingHours"`
}

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Name         *string   `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Favorite is a place bookmarked by a user. Name, category and location are
// a snapshot taken when the favorite was saved.
type Favorite struct {
	UserID    string     `json:"-"`
	PlaceID   string     `json:"placeId"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	Location  Coordinate `json:"location"`
	CreatedAt time.Time  `json:"createdAt"`
}

// SearchEvent is published after every successful nearby search.
type SearchEvent struct {
	Origin     Coordinate `json:"origin"`
	Radius     int        `json:"radius"`
	Categories []string   `json:"categories"`
	Results    int        `json:"results"`
	At         time.Time  `json:"at"`
}

// FavoriteEvent is published when a user adds or removes a favorite.
type FavoriteEvent struct {
	Action  string    `json:"action"` // "added" | "removed"
	UserID  string    `json:"user_id"`
	PlaceID string    `json:"place_id"`
	At      time.Time `json:"at"`
}
