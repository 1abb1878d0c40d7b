package usecases

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/turismap/internal/core/categories"
	"github.com/samirrijal/turismap/internal/core/domain"
	"github.com/samirrijal/turismap/internal/core/overpassql"
	"github.com/samirrijal/turismap/internal/core/ports"
)

// PlaceService answers nearby and details queries against OpenStreetMap.
// It holds no mutable state; each call makes exactly one upstream request.
type PlaceService struct {
	source   ports.PlaceSource
	registry *categories.Registry
	builder  *overpassql.Builder
	events   *dispatcher
}

// NewPlaceService creates a new PlaceService. publisher may be nil.
func NewPlaceService(source ports.PlaceSource, registry *categories.Registry, publisher ports.EventPublisher) *PlaceService {
	return &PlaceService{
		source:   source,
		registry: registry,
		builder:  overpassql.NewBuilder(registry),
		events:   newDispatcher(publisher),
	}
}

// Categories returns the category registry in priority order.
func (s *PlaceService) Categories() []domain.Category {
	return s.registry.List()
}

// HasCategory reports whether id is a registered category.
func (s *PlaceService) HasCategory(id string) bool {
	_, ok := s.registry.Get(id)
	return ok
}

// FindNearby returns named places within radiusMeters of origin, nearest
// first. Inputs are assumed validated by the caller.
func (s *PlaceService) FindNearby(ctx context.Context, origin domain.Coordinate, radiusMeters float64, categoryIDs []string) ([]domain.Place, error) {
	query := s.builder.Nearby(origin, radiusMeters, categoryIDs)

	elements, err := s.source.Execute(ctx, query)
	if err != nil {
		return nil, err
	}

	places := Normalize(elements, origin, radiusMeters, s.registry)
	slog.DebugContext(ctx, "nearby places resolved",
		"lat", origin.Lat, "lng", origin.Lng, "radius", radiusMeters,
		"categories", categoryIDs, "elements", len(elements), "places", len(places))

	// A search whose categories are all unknown matched nothing and is not reported.
	if known := s.knownCategories(categoryIDs); len(categoryIDs) == 0 || len(known) > 0 {
		event := &domain.SearchEvent{
			Origin:     origin,
			Radius:     int(radiusMeters),
			Categories: known,
			Results:    len(places),
			At:         time.Now().UTC(),
		}
		s.events.dispatch(ctx, "search", func(ctx context.Context, p ports.EventPublisher) error {
			return p.PublishSearch(ctx, event)
		})
	}

	return places, nil
}

// Wait blocks until background event publishes have finished. It is called
// on shutdown.
func (s *PlaceService) Wait() {
	s.events.wait()
}

// knownCategories keeps registered ids in request order, without repeats.
func (s *PlaceService) knownCategories(ids []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := s.registry.Get(id); ok {
			out = append(out, id)
		}
	}
	return out
}

// ParsePlaceID splits a composite id into its source type and numeric id.
// Only node, way and relation with a positive integer id are accepted, so
// "node_12_3" is rejected rather than truncated to node 12.
func ParsePlaceID(placeID string) (string, int64, bool) {
	sourceType, rawID, ok := strings.Cut(placeID, "_")
	if !ok || sourceType == "" || rawID == "" {
		return "", 0, false
	}
	switch sourceType {
	case domain.SourceNode, domain.SourceWay, domain.SourceRelation:
	default:
		return "", 0, false
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return "", 0, false
	}
	return sourceType, id, true
}

// FindDetails looks up a single element by composite id. It returns
// domain.ErrNotFound when the id is malformed or the element does not exist.
func (s *PlaceService) FindDetails(ctx context.Context, placeID string) (*domain.PlaceDetails, error) {
	sourceType, id, ok := ParsePlaceID(placeID)
	if !ok {
		return nil, domain.ErrNotFound
	}

	elements, err := s.source.Execute(ctx, overpassql.Lookup(sourceType, id))
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, domain.ErrNotFound
	}

	el := elements[0]
	name := el.Tags["name"]
	if name == "" {
		name = domain.UnnamedPlace
	}
	pos, _ := el.Position()

	return &domain.PlaceDetails{
		Place:        newPlace(PlaceID(sourceType, id), name, pos, el.Tags, s.registry),
		Address:      Address(el.Tags),
		Phone:        firstTag(el.Tags, "phone", "contact:phone"),
		Website:      firstTag(el.Tags, "website", "contact:website"),
		OpeningHours: firstTag(el.Tags, "opening_hours"),
	}, nil
}
