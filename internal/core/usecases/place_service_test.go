package usecases_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/turismap/internal/core/categories"
	"github.com/samirrijal/turismap/internal/core/domain"
	"github.com/samirrijal/turismap/internal/core/usecases"
)

// --- Mock PlaceSource ---

type mockSource struct {
	executeFn func(ctx context.Context, query string) ([]domain.RawElement, error)
	queries   []string
}

func (m *mockSource) Execute(ctx context.Context, query string) ([]domain.RawElement, error) {
	m.queries = append(m.queries, query)
	if m.executeFn != nil {
		return m.executeFn(ctx, query)
	}
	return nil, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	searches  []*domain.SearchEvent
	favorites []*domain.FavoriteEvent
	err       error
	// block, when set, holds every publish until it is closed or ctx ends.
	block chan struct{}
}

func (m *mockPublisher) wait(ctx context.Context) error {
	if m.block == nil {
		return ctx.Err()
	}
	select {
	case <-m.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockPublisher) PublishSearch(ctx context.Context, e *domain.SearchEvent) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, e)
	return m.err
}

func (m *mockPublisher) PublishFavorite(ctx context.Context, e *domain.FavoriteEvent) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favorites = append(m.favorites, e)
	return m.err
}

// --- Tests ---

func TestPlaceService_FindNearby(t *testing.T) {
	src := &mockSource{
		executeFn: func(ctx context.Context, query string) ([]domain.RawElement, error) {
			return []domain.RawElement{
				node(42, 40.41, -3.70, map[string]string{"name": "Parque Retiro", "leisure": "park"}),
			}, nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewPlaceService(src, categories.Default(), pub)

	places, err := svc.FindNearby(context.Background(), madrid, 5000, []string{"parques"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 1 || places[0].ID != "node_42" {
		t.Fatalf("unexpected places %+v", places)
	}
	if len(src.queries) != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", len(src.queries))
	}
	if !strings.Contains(src.queries[0], `node["leisure"="park"]`) {
		t.Errorf("unexpected query %s", src.queries[0])
	}
	svc.Wait()
	if len(pub.searches) != 1 || pub.searches[0].Results != 1 || pub.searches[0].Radius != 5000 {
		t.Errorf("expected one search event, got %+v", pub.searches)
	}
}

func TestPlaceService_FindNearby_PublishFailureIgnored(t *testing.T) {
	pub := &mockPublisher{err: errors.New("nats down")}
	svc := usecases.NewPlaceService(&mockSource{}, categories.Default(), pub)

	places, err := svc.FindNearby(context.Background(), madrid, 1000, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 0 {
		t.Errorf("expected no places, got %d", len(places))
	}
	svc.Wait()
}

func TestPlaceService_FindNearby_SlowBrokerDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	pub := &mockPublisher{block: release}
	svc := usecases.NewPlaceService(&mockSource{}, categories.Default(), pub)

	done := make(chan error, 1)
	go func() {
		_, err := svc.FindNearby(context.Background(), madrid, 1000, []string{"museos"})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("FindNearby waited on the event publisher")
	}

	close(release)
	svc.Wait()
	if len(pub.searches) != 1 {
		t.Errorf("expected the search event once the broker recovers, got %d", len(pub.searches))
	}
}

func TestPlaceService_FindNearby_EventOutlivesRequest(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewPlaceService(&mockSource{}, categories.Default(), pub)

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := svc.FindNearby(ctx, madrid, 1000, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancel()
	svc.Wait()

	if len(pub.searches) != 1 {
		t.Errorf("expected the event to survive request cancellation, got %d", len(pub.searches))
	}
}

func TestPlaceService_FindNearby_EventCategories(t *testing.T) {
	tests := []struct {
		name      string
		requested []string
		want      []string
		published bool
	}{
		{"no filter", nil, nil, true},
		{"known only", []string{"zoos", "parques"}, []string{"zoos", "parques"}, true},
		{"unknown dropped", []string{"parques", "museos.>"}, []string{"parques"}, true},
		{"duplicates collapsed", []string{"museos", "museos"}, []string{"museos"}, true},
		{"all unknown", []string{"foo", "a b"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &mockPublisher{}
			svc := usecases.NewPlaceService(&mockSource{}, categories.Default(), pub)

			if _, err := svc.FindNearby(context.Background(), madrid, 1000, tt.requested); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			svc.Wait()

			if !tt.published {
				if len(pub.searches) != 0 {
					t.Errorf("expected no event, got %+v", pub.searches[0])
				}
				return
			}
			if len(pub.searches) != 1 {
				t.Fatalf("expected one event, got %d", len(pub.searches))
			}
			got := pub.searches[0].Categories
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("categories = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlaceService_FindNearby_DataSourceError(t *testing.T) {
	src := &mockSource{
		executeFn: func(ctx context.Context, query string) ([]domain.RawElement, error) {
			return nil, &domain.DataSourceError{Status: 504, Message: "gateway timeout"}
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewPlaceService(src, categories.Default(), pub)

	_, err := svc.FindNearby(context.Background(), madrid, 1000, nil)
	var dsErr *domain.DataSourceError
	if !errors.As(err, &dsErr) {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
	if dsErr.Status != 504 {
		t.Errorf("expected status 504, got %d", dsErr.Status)
	}
	svc.Wait()
	if len(pub.searches) != 0 {
		t.Error("no event should be published on failure")
	}
}

func TestParsePlaceID(t *testing.T) {
	cases := []struct {
		in     string
		typ    string
		id     int64
		wantOK bool
	}{
		{"node_42", "node", 42, true},
		{"node_12_3", "", 0, false},
		{"way_123456789", "way", 123456789, true},
		{"relation_5", "relation", 5, true},
		{"node", "", 0, false},
		{"_42", "", 0, false},
		{"node_", "", 0, false},
		{"node_4_2", "", 0, false},
		{"area_42", "", 0, false},
		{"node_abc", "", 0, false},
		{"", "", 0, false},
	}
	for _, tc := range cases {
		typ, id, ok := usecases.ParsePlaceID(tc.in)
		if ok != tc.wantOK || typ != tc.typ || id != tc.id {
			t.Errorf("%q: got (%q, %d, %v)", tc.in, typ, id, ok)
		}
	}
}

func TestPlaceService_FindDetails(t *testing.T) {
	src := &mockSource{
		executeFn: func(ctx context.Context, query string) ([]domain.RawElement, error) {
			return []domain.RawElement{{
				Type:   "way",
				ID:     77,
				Center: &domain.LatLon{Lat: f(40.4153), Lon: f(-3.6845)},
				Tags: map[string]string{
					"name":             "Museo del Prado",
					"tourism":          "museum",
					"addr:street":      "Paseo del Prado",
					"addr:city":        "Madrid",
					"contact:phone":    "+34 913 30 28 00",
					"website":          "https://www.museodelprado.es",
					"opening_hours":    "Mo-Sa 10:00-20:00",
					"addr:housenumber": "s/n",
				},
			}}, nil
		},
	}
	svc := usecases.NewPlaceService(src, categories.Default(), nil)

	d, err := svc.FindDetails(context.Background(), "way_77")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.queries[0] != "[out:json][timeout:25];way(77);out center;" {
		t.Errorf("unexpected lookup query %q", src.queries[0])
	}
	if d.ID != "way_77" || d.Name != "Museo del Prado" || d.Category != "museos" {
		t.Errorf("unexpected details %+v", d.Place)
	}
	if d.Address != "s/n, Paseo del Prado, Madrid" {
		t.Errorf("unexpected address %q", d.Address)
	}
	if d.Phone == nil || *d.Phone != "+34 913 30 28 00" {
		t.Errorf("expected phone from contact:phone, got %v", d.Phone)
	}
	if d.Website == nil || d.OpeningHours == nil {
		t.Error("expected website and opening hours")
	}
	if d.Location.Lat != 40.4153 || d.Distance != 0 {
		t.Errorf("unexpected location/distance %+v %d", d.Location, d.Distance)
	}
}

func TestPlaceService_FindDetails_NotFound(t *testing.T) {
	src := &mockSource{}
	svc := usecases.NewPlaceService(src, categories.Default(), nil)

	if _, err := svc.FindDetails(context.Background(), "node_1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.FindDetails(context.Background(), "garbage"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for malformed id, got %v", err)
	}
	if len(src.queries) != 1 {
		t.Errorf("malformed id must not reach upstream, got %d calls", len(src.queries))
	}
}

func TestPlaceService_FindDetails_Unnamed(t *testing.T) {
	src := &mockSource{
		executeFn: func(ctx context.Context, query string) ([]domain.RawElement, error) {
			return []domain.RawElement{node(3, 40.0, -3.0, nil)}, nil
		},
	}
	svc := usecases.NewPlaceService(src, categories.Default(), nil)

	d, err := svc.FindDetails(context.Background(), "node_3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "Sin nombre" || d.Address != "Dirección no disponible" || d.Phone != nil {
		t.Errorf("unexpected fallbacks %+v", d)
	}
	if d.Category != domain.Uncategorized {
		t.Errorf("expected uncategorized, got %s", d.Category)
	}
}

func TestPlaceService_RoundTrip(t *testing.T) {
	retiro := node(42, 40.41, -3.70, map[string]string{"name": "Parque Retiro", "leisure": "park"})
	src := &mockSource{
		executeFn: func(ctx context.Context, query string) ([]domain.RawElement, error) {
			return []domain.RawElement{retiro}, nil
		},
	}
	svc := usecases.NewPlaceService(src, categories.Default(), nil)

	places, err := svc.FindNearby(context.Background(), madrid, 5000, []string{"parques"})
	if err != nil || len(places) != 1 {
		t.Fatalf("nearby failed: %v %v", places, err)
	}
	d, err := svc.FindDetails(context.Background(), places[0].ID)
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}
	if d.ID != places[0].ID || d.Name != places[0].Name {
		t.Errorf("round trip mismatch: %s/%s vs %s/%s", d.ID, d.Name, places[0].ID, places[0].Name)
	}
}
