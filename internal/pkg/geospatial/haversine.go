package geospatial

import (
	"math"

	"github.com/samirrijal/turismap/internal/core/domain"
)

const (
	earthRadiusMeters = 6371000.0
	metersPerDegree   = 111320.0
)

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(a, b domain.Coordinate) float64 {
	phi1 := toRad(a.Lat)
	phi2 := toRad(b.Lat)
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

// BoundingBox returns a box around origin that contains every point within
// radiusMeters of it. The longitude delta is scaled by 1/cos(lat), so it
// diverges near the poles; that approximation is left as is.
func BoundingBox(origin domain.Coordinate, radiusMeters float64) domain.BoundingBox {
	latDelta := radiusMeters / metersPerDegree
	lonDelta := radiusMeters / (metersPerDegree * math.Cos(toRad(origin.Lat)))

	return domain.BoundingBox{
		North: origin.Lat + latDelta,
		South: origin.Lat - latDelta,
		East:  origin.Lng + lonDelta,
		West:  origin.Lng - lonDelta,
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
