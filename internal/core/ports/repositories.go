package ports

import (
	"context"

	"github.com/samirrijal/turismap/internal/core/domain"
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// FavoriteRepository persists per-user favorite places.
type FavoriteRepository interface {
	Add(ctx context.Context, fav *domain.Favorite) error
	Remove(ctx context.Context, userID, placeID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error)
}
