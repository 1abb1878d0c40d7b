package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/turismap/internal/core/domain"
	"github.com/samirrijal/turismap/internal/pkg/validation"
)

type favoriteRequest struct {
	PlaceID  string `json:"placeId" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=200"`
	Category string `json:"category" validate:"omitempty,max=64"`
	Location struct {
		Lat float64 `json:"lat" validate:"latitude"`
		Lng float64 `json:"lng" validate:"longitude"`
	} `json:"location"`
}

// ListFavoritesHandler returns the caller's favorites, newest first.
func ListFavoritesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		favs, err := deps.Favorites.List(c.UserContext(), ClaimsFromCtx(c).Subject)
		if err != nil {
			return respondError(c, deps.Options, err)
		}
		return c.JSON(fiber.Map{"favorites": favs, "count": len(favs)})
	}
}

// AddFavoriteHandler saves a place snapshot for the caller.
func AddFavoriteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req favoriteRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "Cuerpo de la petición inválido")
		}
		if err := validation.Struct(&req); err != nil {
			return respondError(c, deps.Options, err)
		}

		fav := &domain.Favorite{
			UserID:   ClaimsFromCtx(c).Subject,
			PlaceID:  req.PlaceID,
			Name:     req.Name,
			Category: req.Category,
			Location: domain.Coordinate{Lat: req.Location.Lat, Lng: req.Location.Lng},
		}
		if err := deps.Favorites.Add(c.UserContext(), fav); err != nil {
			return respondError(c, deps.Options, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fav)
	}
}

// RemoveFavoriteHandler deletes one of the caller's favorites.
func RemoveFavoriteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := deps.Favorites.Remove(c.UserContext(), ClaimsFromCtx(c).Subject, c.Params("placeId"))
		if errors.Is(err, domain.ErrNotFound) {
			return errNotFound(c, "Favorito no encontrado")
		}
		if err != nil {
			return respondError(c, deps.Options, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
