package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/turismap/internal/pkg/metrics"
	"github.com/samirrijal/turismap/internal/pkg/token"
	"github.com/samirrijal/turismap/internal/pkg/validation"
)

const claimsKey = "claims"

type registerRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthMiddleware requires a valid, unrevoked Bearer token and stores its
// claims in Locals.
func AuthMiddleware(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, raw, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		if !ok || scheme != "Bearer" || raw == "" {
			return errUnauthorized(c, "No autorizado")
		}
		claims, err := deps.Auth.Authenticate(c.UserContext(), raw)
		if err != nil {
			return errUnauthorized(c, "Token inválido o expirado")
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// ClaimsFromCtx returns the claims stored by AuthMiddleware.
func ClaimsFromCtx(c *fiber.Ctx) *token.Claims {
	claims, _ := c.Locals(claimsKey).(*token.Claims)
	return claims
}

// RegisterHandler creates an account and returns a session token.
func RegisterHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "Cuerpo de la petición inválido")
		}
		req.Email = strings.TrimSpace(req.Email)
		if err := validation.Struct(&req); err != nil {
			metrics.AuthEvents.WithLabelValues("register", "invalid").Inc()
			return respondError(c, deps.Options, err)
		}

		res, err := deps.Auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
		if err != nil {
			metrics.AuthEvents.WithLabelValues("register", "error").Inc()
			return respondError(c, deps.Options, err)
		}
		metrics.AuthEvents.WithLabelValues("register", "ok").Inc()
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// LoginHandler verifies credentials and returns a session token.
func LoginHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "Cuerpo de la petición inválido")
		}
		if err := validation.Struct(&req); err != nil {
			metrics.AuthEvents.WithLabelValues("login", "invalid").Inc()
			return respondError(c, deps.Options, err)
		}

		res, err := deps.Auth.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			metrics.AuthEvents.WithLabelValues("login", "error").Inc()
			return respondError(c, deps.Options, err)
		}
		metrics.AuthEvents.WithLabelValues("login", "ok").Inc()
		return c.JSON(res)
	}
}

// MeHandler returns the account behind the session.
func MeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := ClaimsFromCtx(c)
		user, err := deps.Auth.Me(c.UserContext(), claims.Subject)
		if err != nil {
			return respondError(c, deps.Options, err)
		}
		return c.JSON(fiber.Map{"user": user})
	}
}

// LogoutHandler revokes the current token.
func LogoutHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Auth.Logout(c.UserContext(), ClaimsFromCtx(c)); err != nil {
			return respondError(c, deps.Options, err)
		}
		metrics.AuthEvents.WithLabelValues("logout", "ok").Inc()
		return c.SendStatus(fiber.StatusNoContent)
	}
}
