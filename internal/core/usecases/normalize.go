package usecases

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/samirrijal/turismap/internal/core/categories"
	"github.com/samirrijal/turismap/internal/core/domain"
	"github.com/samirrijal/turismap/internal/pkg/geospatial"
)

// PlaceID returns the composite id "{type}_{id}".
func PlaceID(sourceType string, id int64) string {
	return sourceType + "_" + strconv.FormatInt(id, 10)
}

// Normalize turns raw Overpass elements into places within radiusMeters of
// origin, sorted by distance. Unnamed or unplaceable elements are dropped,
// and only the first element for each composite id is kept. The bounding box
// sent upstream is wider than the circle, so the radius filter here is
// required.
func Normalize(elements []domain.RawElement, origin domain.Coordinate, radiusMeters float64, registry *categories.Registry) []domain.Place {
	places := make([]domain.Place, 0, len(elements))
	seen := make(map[string]struct{}, len(elements))

	for _, el := range elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}

		id := PlaceID(el.Type, el.ID)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		pos, ok := el.Position()
		if !ok {
			continue
		}

		distance := geospatial.Haversine(origin, pos)
		if distance > radiusMeters {
			continue
		}

		place := newPlace(id, name, pos, el.Tags, registry)
		place.Distance = int(math.Round(distance))
		places = append(places, place)
	}

	sort.SliceStable(places, func(i, j int) bool {
		return places[i].Distance < places[j].Distance
	})
	return places
}

func newPlace(id, name string, pos domain.Coordinate, tags map[string]string, registry *categories.Registry) domain.Place {
	if tags == nil {
		tags = map[string]string{}
	}
	return domain.Place{
		ID:       id,
		Name:     name,
		Location: pos,
		Tags:     tags,
		Photos:   []string{},
		Vicinity: vicinity(tags),
		Category: registry.Classify(tags),
	}
}

func vicinity(tags map[string]string) string {
	if v := tags["addr:street"]; v != "" {
		return v
	}
	if v := tags["addr:city"]; v != "" {
		return v
	}
	return domain.VicinityFallback
}

var addressKeys = []string{"addr:housenumber", "addr:street", "addr:city", "addr:postcode", "addr:country"}

// Address joins the address components present in tags.
func Address(tags map[string]string) string {
	var parts []string
	for _, k := range addressKeys {
		if v := tags[k]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return domain.AddressFallback
	}
	return strings.Join(parts, ", ")
}

// firstTag returns the first non-empty value among keys, or nil.
func firstTag(tags map[string]string, keys ...string) *string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return &v
		}
	}
	return nil
}
