package geospatial_test

import (
	"math"
	"testing"

	"github.com/samirrijal/turismap/internal/core/domain"
	"github.com/samirrijal/turismap/internal/pkg/geospatial"
)

var madrid = domain.Coordinate{Lat: 40.4168, Lng: -3.7038}

func TestHaversine_SamePoint(t *testing.T) {
	if d := geospatial.Haversine(madrid, madrid); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	bilbao := domain.Coordinate{Lat: 43.263, Lng: -2.935}
	ab := geospatial.Haversine(madrid, bilbao)
	ba := geospatial.Haversine(bilbao, madrid)
	if math.Abs(ab-ba) > 1e-6 {
		t.Errorf("expected symmetric distance, got %f and %f", ab, ba)
	}
	// Madrid-Bilbao is roughly 320 km as the crow flies
	if ab < 300000 || ab > 340000 {
		t.Errorf("unexpected Madrid-Bilbao distance %f", ab)
	}
}

func TestHaversine_OneDegreeLatitude(t *testing.T) {
	a := domain.Coordinate{Lat: 10, Lng: 20}
	b := domain.Coordinate{Lat: 11, Lng: 20}
	d := geospatial.Haversine(a, b)
	if math.Abs(d-111320)/111320 > 0.01 {
		t.Errorf("expected ~111320m, got %f", d)
	}
}

func TestBoundingBox_ContainsOrigin(t *testing.T) {
	cases := []struct {
		origin domain.Coordinate
		radius float64
	}{
		{madrid, 5000},
		{domain.Coordinate{Lat: 0, Lng: 0}, 1},
		{domain.Coordinate{Lat: -33.86, Lng: 151.21}, 50000},
		{domain.Coordinate{Lat: 64.14, Lng: -21.94}, 1200},
	}

	for _, tc := range cases {
		box := geospatial.BoundingBox(tc.origin, tc.radius)
		if !(box.South < box.North) {
			t.Errorf("%v: south %f not below north %f", tc.origin, box.South, box.North)
		}
		if !(box.West < box.East) {
			t.Errorf("%v: west %f not below east %f", tc.origin, box.West, box.East)
		}
		if !(tc.origin.Lat > box.South && tc.origin.Lat < box.North &&
			tc.origin.Lng > box.West && tc.origin.Lng < box.East) {
			t.Errorf("%v: origin not strictly inside %+v", tc.origin, box)
		}
	}
}

func TestBoundingBox_Deltas(t *testing.T) {
	box := geospatial.BoundingBox(madrid, 5000)

	latDelta := 5000 / 111320.0
	if math.Abs((box.North-madrid.Lat)-latDelta) > 1e-12 || math.Abs((madrid.Lat-box.South)-latDelta) > 1e-12 {
		t.Errorf("unexpected latitude bounds %+v", box)
	}

	// Longitude delta is widened by 1/cos(lat).
	lonDelta := box.East - madrid.Lng
	want := latDelta / math.Cos(madrid.Lat*math.Pi/180)
	if math.Abs(lonDelta-want) > 1e-12 {
		t.Errorf("expected lon delta %f, got %f", want, lonDelta)
	}
	if lonDelta <= latDelta {
		t.Errorf("lon delta %f should exceed lat delta %f away from the equator", lonDelta, latDelta)
	}
}
