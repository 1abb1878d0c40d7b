package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}

		// Don't override if already set
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/api/health" || path == "/api/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/api/places/categories":
			ttl = "public, max-age=3600" // Registry is static for the process lifetime

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/api/auth") || strings.HasPrefix(path, "/api/favorites"):
			ttl = "private, no-store" // Per-user data

		case strings.HasPrefix(path, "/api/places/"):
			ttl = "no-cache" // Always revalidate; upstream data is live

		case strings.HasPrefix(path, "/api"):
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
