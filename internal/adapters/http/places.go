package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/turismap/internal/core/domain"
	"github.com/samirrijal/turismap/internal/pkg/metrics"
	"github.com/samirrijal/turismap/internal/pkg/validation"
)

const (
	dataSource    = "OpenStreetMap"
	nearbyExample = "/api/places/nearby?lat=40.4168&lng=-3.7038&radius=5000"
	searchExample = "/api/places/search?lat=40.4168&lng=-3.7038&category=museos&radius=5000"

	msgMissingCoords = "Se requieren las coordenadas lat y lng"
	msgInvalidCoords = "Coordenadas inválidas. Lat debe estar entre -90 y 90, lng entre -180 y 180"
)

// Endpoints lists the public routes, as reported by the index and 404 handlers.
var Endpoints = []string{
	"GET /api",
	"GET /api/health",
	"GET /api/ready",
	"GET /api/places/categories",
	"GET /api/places/nearby",
	"GET /api/places/details/:placeId",
	"GET /api/places/search",
	"POST /api/auth/register",
	"POST /api/auth/login",
	"GET /api/auth/me",
	"POST /api/auth/logout",
	"GET /api/favorites",
	"POST /api/favorites",
	"DELETE /api/favorites/:placeId",
	"POST /graphql",
	"GET /ws/nearby",
}

// coordinates is validated after parsing so range errors get the same message.
type coordinates struct {
	Lat float64 `query:"lat" validate:"latitude"`
	Lng float64 `query:"lng" validate:"longitude"`
}

// QueryEcho repeats the parsed request back to the client.
type QueryEcho struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Radius   int      `json:"radius"`
	Category []string `json:"category"`
}

// NearbyResponse is the body of a nearby or search request.
type NearbyResponse struct {
	Places     []domain.Place `json:"places"`
	Count      int            `json:"count"`
	Category   string         `json:"category,omitempty"`
	Query      QueryEcho      `json:"query"`
	Timestamp  string         `json:"timestamp"`
	DataSource string         `json:"dataSource"`
}

// CategoryView is the wire form of a category; tags render as key=value.
type CategoryView struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Icon  string   `json:"icon"`
	Color string   `json:"color"`
	Tags  []string `json:"tags"`
}

func categoryViews(cats []domain.Category) []CategoryView {
	out := make([]CategoryView, 0, len(cats))
	for _, cat := range cats {
		tags := make([]string, 0, len(cat.Tags))
		for _, t := range cat.Tags {
			tags = append(tags, t.String())
		}
		out = append(out, CategoryView{ID: cat.ID, Name: cat.Name, Icon: cat.Icon, Color: cat.Color, Tags: tags})
	}
	return out
}

// parseOrigin reads and validates lat/lng query parameters.
func parseOrigin(c *fiber.Ctx) (domain.Coordinate, error) {
	latStr, lngStr := strings.TrimSpace(c.Query("lat")), strings.TrimSpace(c.Query("lng"))
	if latStr == "" || lngStr == "" {
		return domain.Coordinate{}, domain.NewValidationError("lat", msgMissingCoords)
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		return domain.Coordinate{}, domain.NewValidationError("lat", msgInvalidCoords)
	}
	if err := validation.Struct(&coordinates{Lat: lat, Lng: lng}); err != nil {
		return domain.Coordinate{}, domain.NewValidationError("lat", msgInvalidCoords)
	}
	return domain.Coordinate{Lat: lat, Lng: lng}, nil
}

// ParseRadius parses an optional radius in meters, bounded by max.
func ParseRadius(raw string, def, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	msg := fmt.Sprintf("Radio inválido. Debe estar entre 1 y %d metros", max)
	radius, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError("radius", msg)
	}
	if err := validation.Var("radius", radius, fmt.Sprintf("gt=0,lte=%d", max)); err != nil {
		return 0, domain.NewValidationError("radius", msg)
	}
	return radius, nil
}

// ParseCategories splits a comma-separated list, lowercasing and dropping
// blanks. It returns nil when nothing remains.
func ParseCategories(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.ToLower(strings.TrimSpace(part)); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// parseCategoryList applies ParseCategories to each entry of a list argument.
func parseCategoryList(raw []string) []string {
	var out []string
	for _, r := range raw {
		out = append(out, ParseCategories(r)...)
	}
	return out
}

// IndexHandler describes the service.
func IndexHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":     "API de TurisMap funcionando (OpenStreetMap)",
			"version":     deps.Options.Version,
			"environment": deps.Options.Environment,
			"dataSource":  "OpenStreetMap + Overpass API",
			"endpoints":   Endpoints,
		})
	}
}

// CategoriesHandler returns the category registry in priority order.
func CategoriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		views := categoryViews(deps.Places.Categories())
		return c.JSON(fiber.Map{"categories": views, "count": len(views)})
	}
}

// NearbyPlacesHandler returns named places around a point, nearest first.
func NearbyPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lng") == "" {
			return sendError(c, APIError{Status: fiber.StatusBadRequest, Code: "bad_request", Error: msgMissingCoords, Example: nearbyExample})
		}
		origin, err := parseOrigin(c)
		if err != nil {
			return respondError(c, deps.Options, err)
		}
		radius, err := ParseRadius(c.Query("radius"), deps.defaultRadius(), deps.maxRadius())
		if err != nil {
			return respondError(c, deps.Options, err)
		}
		cats := ParseCategories(c.Query("category"))

		places, err := deps.Places.FindNearby(c.UserContext(), origin, float64(radius), cats)
		if err != nil {
			return respondError(c, deps.Options, err)
		}
		metrics.ObserveSearch(cats, len(places))

		return c.JSON(NearbyResponse{
			Places:     places,
			Count:      len(places),
			Query:      QueryEcho{Lat: origin.Lat, Lng: origin.Lng, Radius: radius, Category: cats},
			Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
			DataSource: dataSource,
		})
	}
}

// SearchPlacesHandler is the single-category predecessor of the nearby
// endpoint. The category must exist.
func SearchPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category := strings.ToLower(strings.TrimSpace(c.Query("category")))
		if c.Query("lat") == "" || c.Query("lng") == "" || category == "" {
			return sendError(c, APIError{
				Status:  fiber.StatusBadRequest,
				Code:    "bad_request",
				Error:   "Se requieren las coordenadas lat, lng y la categoría",
				Example: searchExample,
			})
		}
		origin, err := parseOrigin(c)
		if err != nil {
			return respondError(c, deps.Options, err)
		}
		radius, err := ParseRadius(c.Query("radius"), deps.defaultRadius(), deps.maxRadius())
		if err != nil {
			return respondError(c, deps.Options, err)
		}
		if !deps.Places.HasCategory(category) {
			ids := make([]string, 0)
			for _, cat := range deps.Places.Categories() {
				ids = append(ids, cat.ID)
			}
			return sendError(c, APIError{
				Status:              fiber.StatusBadRequest,
				Code:                "bad_request",
				Error:               "Categoría no válida",
				AvailableCategories: ids,
			})
		}

		cats := []string{category}
		places, err := deps.Places.FindNearby(c.UserContext(), origin, float64(radius), cats)
		if err != nil {
			return respondError(c, deps.Options, err)
		}
		metrics.ObserveSearch(cats, len(places))

		return c.JSON(NearbyResponse{
			Places:     places,
			Count:      len(places),
			Category:   category,
			Query:      QueryEcho{Lat: origin.Lat, Lng: origin.Lng, Radius: radius, Category: cats},
			Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
			DataSource: dataSource,
		})
	}
}

// PlaceDetailsHandler returns the enriched record for one place.
func PlaceDetailsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		placeID := c.Params("placeId")
		if placeID == "" {
			return errBadRequest(c, "Se requiere el ID del lugar")
		}
		details, err := deps.Places.FindDetails(c.UserContext(), placeID)
		if err != nil {
			return respondError(c, deps.Options, err)
		}
		return c.JSON(details)
	}
}

// NotFoundHandler answers unknown routes with the endpoint list.
func NotFoundHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return sendError(c, APIError{
			Status:             fiber.StatusNotFound,
			Code:               "not_found",
			Error:              "Ruta no encontrada",
			AvailableEndpoints: Endpoints,
		})
	}
}
