package usecases_test

import (
	"math"
	"testing"

	"github.com/samirrijal/turismap/internal/core/categories"
	"github.com/samirrijal/turismap/internal/core/domain"
	"github.com/samirrijal/turismap/internal/core/usecases"
	"github.com/samirrijal/turismap/internal/pkg/geospatial"
)

var madrid = domain.Coordinate{Lat: 40.4168, Lng: -3.7038}

func f(v float64) *float64 { return &v }

func node(id int64, lat, lon float64, tags map[string]string) domain.RawElement {
	return domain.RawElement{Type: "node", ID: id, Lat: f(lat), Lon: f(lon), Tags: tags}
}

func TestNormalize_RetiroExample(t *testing.T) {
	el := node(42, 40.41, -3.70, map[string]string{"name": "Parque Retiro", "leisure": "park"})

	places := usecases.Normalize([]domain.RawElement{el}, madrid, 5000, categories.Default())
	if len(places) != 1 {
		t.Fatalf("expected 1 place, got %d", len(places))
	}

	p := places[0]
	if p.ID != "node_42" {
		t.Errorf("expected node_42, got %s", p.ID)
	}
	if p.Category != "parques" {
		t.Errorf("expected parques, got %s", p.Category)
	}
	if p.Vicinity != "Ubicación disponible" {
		t.Errorf("unexpected vicinity %q", p.Vicinity)
	}
	want := int(math.Round(geospatial.Haversine(madrid, domain.Coordinate{Lat: 40.41, Lng: -3.70})))
	if p.Distance != want {
		t.Errorf("expected distance %d, got %d", want, p.Distance)
	}
	if p.Photos == nil || len(p.Photos) != 0 {
		t.Errorf("expected empty photos slice, got %v", p.Photos)
	}
	if p.OpenNow != nil || p.Rating != nil || p.UserRatingsTotal != nil || p.PriceLevel != nil {
		t.Error("expected placeholder fields to be nil")
	}
}

func TestNormalize_DuplicateFirstWins(t *testing.T) {
	elements := []domain.RawElement{
		node(7, 40.4170, -3.7040, map[string]string{"name": "Primero", "tourism": "museum"}),
		node(7, 40.4170, -3.7040, map[string]string{"name": "Segundo", "amenity": "cafe"}),
	}

	places := usecases.Normalize(elements, madrid, 1000, categories.Default())
	if len(places) != 1 {
		t.Fatalf("expected 1 place, got %d", len(places))
	}
	if places[0].Name != "Primero" || places[0].Category != "museos" {
		t.Errorf("expected first occurrence, got %+v", places[0])
	}
}

func TestNormalize_SameIDDifferentTypeNotMerged(t *testing.T) {
	elements := []domain.RawElement{
		node(9, 40.4170, -3.7040, map[string]string{"name": "A"}),
		{Type: "way", ID: 9, Center: &domain.LatLon{Lat: f(40.4171), Lon: f(-3.7041)}, Tags: map[string]string{"name": "A"}},
	}
	places := usecases.Normalize(elements, madrid, 1000, categories.Default())
	if len(places) != 2 {
		t.Fatalf("expected 2 places, got %d", len(places))
	}
}

func TestNormalize_SkipsUnnamedAndUnplaceable(t *testing.T) {
	elements := []domain.RawElement{
		node(1, 40.4170, -3.7040, map[string]string{"amenity": "bench"}),
		node(2, 40.4170, -3.7040, nil),
		{Type: "way", ID: 3, Tags: map[string]string{"name": "Sin centro"}},
		{Type: "way", ID: 4, Center: &domain.LatLon{Lat: f(40.4171)}, Tags: map[string]string{"name": "Centro incompleto"}},
		{Type: "way", ID: 5, Center: &domain.LatLon{Lat: f(40.4171), Lon: f(-3.7041)}, Tags: map[string]string{"name": "Con centro"}},
	}

	places := usecases.Normalize(elements, madrid, 1000, categories.Default())
	if len(places) != 1 {
		t.Fatalf("expected 1 place, got %d: %+v", len(places), places)
	}
	if places[0].ID != "way_5" {
		t.Errorf("expected way_5, got %s", places[0].ID)
	}
}

func TestNormalize_UnplaceableDuplicateStillConsumesID(t *testing.T) {
	elements := []domain.RawElement{
		{Type: "way", ID: 8, Tags: map[string]string{"name": "Sin posición"}},
		{Type: "way", ID: 8, Center: &domain.LatLon{Lat: f(40.4171), Lon: f(-3.7041)}, Tags: map[string]string{"name": "Con posición"}},
	}
	places := usecases.Normalize(elements, madrid, 1000, categories.Default())
	if len(places) != 0 {
		t.Errorf("expected later duplicate to be dropped, got %+v", places)
	}
}

func TestNormalize_RadiusFilterAndSort(t *testing.T) {
	elements := []domain.RawElement{
		node(1, 40.4268, -3.7038, map[string]string{"name": "Lejos"}),   // ~1.1 km
		node(2, 40.4178, -3.7038, map[string]string{"name": "Cerca"}),   // ~111 m
		node(3, 40.4468, -3.7038, map[string]string{"name": "Fuera"}),   // ~3.3 km
		node(4, 40.4158, -3.7038, map[string]string{"name": "Empate"}),  // ~111 m, south
		node(5, 40.4168, -3.7038, map[string]string{"name": "Encima"}),  // 0 m
	}

	places := usecases.Normalize(elements, madrid, 2000, categories.Default())
	if len(places) != 4 {
		t.Fatalf("expected 4 places, got %d", len(places))
	}

	wantOrder := []string{"Encima", "Cerca", "Empate", "Lejos"}
	for i, want := range wantOrder {
		if places[i].Name != want {
			t.Errorf("position %d: expected %s, got %s", i, want, places[i].Name)
		}
	}
	for _, p := range places {
		if p.Distance > 2000 {
			t.Errorf("%s beyond radius: %d", p.Name, p.Distance)
		}
	}
}

func TestNormalize_BoxCornerExcluded(t *testing.T) {
	box := geospatial.BoundingBox(madrid, 1000)
	corner := node(1, box.North-1e-6, box.East-1e-6, map[string]string{"name": "Esquina"})

	places := usecases.Normalize([]domain.RawElement{corner}, madrid, 1000, categories.Default())
	if len(places) != 0 {
		t.Errorf("expected corner-of-box element to be filtered, got %+v", places)
	}
}

func TestNormalize_Vicinity(t *testing.T) {
	elements := []domain.RawElement{
		node(1, 40.4170, -3.7040, map[string]string{"name": "A", "addr:street": "Calle Mayor", "addr:city": "Madrid"}),
		node(2, 40.4170, -3.7040, map[string]string{"name": "B", "addr:city": "Madrid"}),
	}
	places := usecases.Normalize(elements, madrid, 1000, categories.Default())
	if places[0].Vicinity != "Calle Mayor" {
		t.Errorf("expected street vicinity, got %q", places[0].Vicinity)
	}
	if places[1].Vicinity != "Madrid" {
		t.Errorf("expected city vicinity, got %q", places[1].Vicinity)
	}
}

func TestAddress(t *testing.T) {
	tags := map[string]string{
		"addr:street":      "Calle de Alcalá",
		"addr:housenumber": "42",
		"addr:country":     "ES",
	}
	if got := usecases.Address(tags); got != "42, Calle de Alcalá, ES" {
		t.Errorf("unexpected address %q", got)
	}
	if got := usecases.Address(nil); got != "Dirección no disponible" {
		t.Errorf("unexpected fallback %q", got)
	}
}
