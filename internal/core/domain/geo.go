package domain

// Coordinate is a WGS 84 point in degrees. Latitude is in [-90, 90] and
// longitude in [-180, 180]; callers at the request boundary enforce this.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is an axis-aligned lat/lng rectangle used as the coarse
// spatial filter sent upstream.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Contains reports whether c lies inside the box (edges included).
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lat >= b.South && c.Lat <= b.North && c.Lng >= b.West && c.Lng <= b.East
}
