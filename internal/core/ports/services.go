package ports

import (
	"context"
	"time"

	"github.com/samirrijal/turismap/internal/core/domain"
)

// PlaceSource executes an Overpass QL query and returns the raw elements.
// Failures are reported as *domain.DataSourceError.
type PlaceSource interface {
	Execute(ctx context.Context, query string) ([]domain.RawElement, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSearch(ctx context.Context, event *domain.SearchEvent) error
	PublishFavorite(ctx context.Context, event *domain.FavoriteEvent) error
}

// SessionStore tracks revoked session tokens until they expire.
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
