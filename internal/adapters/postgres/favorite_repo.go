package postgres

import (
	"context"
	"fmt"

	"github.com/samirrijal/turismap/internal/core/domain"
)

// FavoriteRepo implements ports.FavoriteRepository.
type FavoriteRepo struct {
	db *DB
}

func NewFavoriteRepo(db *DB) *FavoriteRepo {
	return &FavoriteRepo{db: db}
}

// Add upserts on (user_id, place_id), refreshing the stored snapshot.
func (r *FavoriteRepo) Add(ctx context.Context, fav *domain.Favorite) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO favorites (user_id, place_id, name, category, lat, lng, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, place_id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng
	`, fav.UserID, fav.PlaceID, fav.Name, fav.Category, fav.Location.Lat, fav.Location.Lng, fav.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert favorite: %w", err)
	}
	return nil
}

func (r *FavoriteRepo) Remove(ctx context.Context, userID, placeID string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		DELETE FROM favorites WHERE user_id = $1::uuid AND place_id = $2
	`, userID, placeID)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FavoriteRepo) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT place_id, name, category, lat, lng, created_at
		FROM favorites WHERE user_id = $1::uuid
		ORDER BY created_at DESC, place_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favs := []domain.Favorite{}
	for rows.Next() {
		f := domain.Favorite{UserID: userID}
		if err := rows.Scan(&f.PlaceID, &f.Name, &f.Category, &f.Location.Lat, &f.Location.Lng, &f.CreatedAt); err != nil {
			return nil, err
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}
