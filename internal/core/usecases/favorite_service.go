package usecases

import (
	"context"
	"time"

	"github.com/samirrijal/turismap/internal/core/domain"
	"github.com/samirrijal/turismap/internal/core/ports"
)

// FavoriteService manages a user's saved places.
type FavoriteService struct {
	favorites ports.FavoriteRepository
	events    *dispatcher
}

// NewFavoriteService creates a new FavoriteService. publisher may be nil.
func NewFavoriteService(favorites ports.FavoriteRepository, publisher ports.EventPublisher) *FavoriteService {
	return &FavoriteService{favorites: favorites, events: newDispatcher(publisher)}
}

// List returns the user's favorites, newest first.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]domain.Favorite, error) {
	return s.favorites.ListByUser(ctx, userID)
}

// Add saves a favorite. Saving the same place twice refreshes its snapshot.
func (s *FavoriteService) Add(ctx context.Context, fav *domain.Favorite) error {
	if _, _, ok := ParsePlaceID(fav.PlaceID); !ok {
		return domain.NewValidationError("placeId", "ID de lugar inválido")
	}
	if fav.Category == "" {
		fav.Category = domain.Uncategorized
	}
	fav.CreatedAt = time.Now().UTC()

	if err := s.favorites.Add(ctx, fav); err != nil {
		return err
	}
	s.publish(ctx, "added", fav.UserID, fav.PlaceID)
	return nil
}

// Remove deletes a favorite, returning domain.ErrNotFound if absent.
func (s *FavoriteService) Remove(ctx context.Context, userID, placeID string) error {
	removed, err := s.favorites.Remove(ctx, userID, placeID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotFound
	}
	s.publish(ctx, "removed", userID, placeID)
	return nil
}

// Wait blocks until background event publishes have finished.
func (s *FavoriteService) Wait() {
	s.events.wait()
}

func (s *FavoriteService) publish(ctx context.Context, action, userID, placeID string) {
	event := &domain.FavoriteEvent{Action: action, UserID: userID, PlaceID: placeID, At: time.Now().UTC()}
	s.events.dispatch(ctx, "favorite", func(ctx context.Context, p ports.EventPublisher) error {
		return p.PublishFavorite(ctx, event)
	})
}
