package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/turismap/internal/pkg/metrics"
)

// upstreamTimeout bounds handlers that call Overpass. It is above the
// transport timeout so the transport error surfaces first.
const upstreamTimeout = 20 * time.Second

// searchSunset is when the single-category search endpoint goes away.
var searchSunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "Demasiadas peticiones, inténtalo más tarde")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", deps.Options.Version)
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	app.Get("/", IndexHandler(deps))

	api := app.Group("/api")
	api.Get("/", IndexHandler(deps))

	// Health & readiness (no timeout, fast internal checks)
	api.Get("/health", HealthHandler(deps))
	api.Get("/ready", ReadyHandler(deps))

	places := api.Group("/places")
	places.Get("/categories", CategoriesHandler(deps))
	places.Get("/nearby", timeout.NewWithContext(NearbyPlacesHandler(deps), upstreamTimeout))
	places.Get("/details/:placeId", timeout.NewWithContext(PlaceDetailsHandler(deps), upstreamTimeout))
	places.Get("/search",
		DeprecationMiddleware([]DeprecatedRoute{{
			Path:        "/api/places/search",
			SunsetDate:  searchSunset,
			Alternative: "/api/places/nearby",
		}}),
		timeout.NewWithContext(SearchPlacesHandler(deps), upstreamTimeout),
	)

	// Stricter limit on credential endpoints
	credentialLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "auth:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "Demasiados intentos, inténtalo más tarde")
		},
	})

	auth := api.Group("/auth")
	auth.Post("/register", credentialLimiter, RegisterHandler(deps))
	auth.Post("/login", credentialLimiter, LoginHandler(deps))
	auth.Get("/me", AuthMiddleware(deps), MeHandler(deps))
	auth.Post("/logout", AuthMiddleware(deps), LogoutHandler(deps))

	favorites := api.Group("/favorites", AuthMiddleware(deps))
	favorites.Get("/", ListFavoritesHandler(deps))
	favorites.Post("/", AddFavoriteHandler(deps))
	favorites.Delete("/:placeId", RemoveFavoriteHandler(deps))

	// GraphQL
	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), upstreamTimeout))

	// API documentation (Swagger UI)
	SetupDocs(app, DefaultSpecPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/nearby", websocket.New(WebSocketHandler(deps)))

	app.Use(NotFoundHandler())
}
