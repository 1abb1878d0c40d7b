package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/turismap/internal/core/domain"
	"github.com/samirrijal/turismap/internal/core/usecases"
)

// --- Mock FavoriteRepository ---

type mockFavoriteRepo struct {
	addFn    func(ctx context.Context, fav *domain.Favorite) error
	removeFn func(ctx context.Context, userID, placeID string) (bool, error)
	listFn   func(ctx context.Context, userID string) ([]domain.Favorite, error)
}

func (m *mockFavoriteRepo) Add(ctx context.Context, fav *domain.Favorite) error {
	if m.addFn != nil {
		return m.addFn(ctx, fav)
	}
	return nil
}

func (m *mockFavoriteRepo) Remove(ctx context.Context, userID, placeID string) (bool, error) {
	if m.removeFn != nil {
		return m.removeFn(ctx, userID, placeID)
	}
	return false, nil
}

func (m *mockFavoriteRepo) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func TestFavoriteService_Add(t *testing.T) {
	var saved *domain.Favorite
	repo := &mockFavoriteRepo{
		addFn: func(ctx context.Context, fav *domain.Favorite) error {
			saved = fav
			return nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewFavoriteService(repo, pub)

	err := svc.Add(context.Background(), &domain.Favorite{UserID: "u1", PlaceID: "node_42", Name: "Parque Retiro"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil || saved.Category != domain.Uncategorized || saved.CreatedAt.IsZero() {
		t.Errorf("unexpected saved favorite %+v", saved)
	}
	svc.Wait()
	if len(pub.favorites) != 1 || pub.favorites[0].Action != "added" {
		t.Errorf("expected added event, got %+v", pub.favorites)
	}
}

func TestFavoriteService_Add_InvalidPlaceID(t *testing.T) {
	svc := usecases.NewFavoriteService(&mockFavoriteRepo{}, nil)
	err := svc.Add(context.Background(), &domain.Favorite{UserID: "u1", PlaceID: "bogus"})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestFavoriteService_Remove(t *testing.T) {
	repo := &mockFavoriteRepo{
		removeFn: func(ctx context.Context, userID, placeID string) (bool, error) {
			return placeID == "node_42", nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewFavoriteService(repo, pub)

	if err := svc.Remove(context.Background(), "u1", "node_42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Remove(context.Background(), "u1", "node_43"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	svc.Wait()
	if len(pub.favorites) != 1 || pub.favorites[0].Action != "removed" {
		t.Errorf("expected one removed event, got %+v", pub.favorites)
	}
}

func TestFavoriteService_List(t *testing.T) {
	repo := &mockFavoriteRepo{
		listFn: func(ctx context.Context, userID string) ([]domain.Favorite, error) {
			if userID != "u1" {
				t.Errorf("expected u1, got %s", userID)
			}
			return []domain.Favorite{{PlaceID: "node_1"}, {PlaceID: "way_2"}}, nil
		},
	}
	svc := usecases.NewFavoriteService(repo, nil)
	favs, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(favs) != 2 {
		t.Errorf("expected 2 favorites, got %d", len(favs))
	}
}
