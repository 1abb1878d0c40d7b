package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/turismap/internal/core/domain"
)

// APIError is a structured error response. Error carries the short
// user-facing headline that clients display; Message adds detail.
type APIError struct {
	Status              int      `json:"status"`
	Code                string   `json:"code"` // bad_request, not_found, internal_error, etc.
	Error               string   `json:"error"`
	Message             string   `json:"message,omitempty"`
	RequestID           string   `json:"request_id,omitempty"`
	Example             string   `json:"example,omitempty"`
	AvailableCategories []string `json:"availableCategories,omitempty"`
	AvailableEndpoints  []string `json:"availableEndpoints,omitempty"`
}

func requestID(c *fiber.Ctx) string {
	reqID, _ := c.Locals("requestid").(string)
	return reqID
}

// sendError writes e, filling in the request ID.
func sendError(c *fiber.Ctx, e APIError) error {
	e.RequestID = requestID(c)
	return c.Status(e.Status).JSON(e)
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return sendError(c, APIError{Status: status, Code: code, Error: message})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errUnauthorized returns a 401 error.
func errUnauthorized(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusUnauthorized, "unauthorized", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusConflict, "conflict", msg)
}

// errInternal returns a 500 error; err is only shown outside production.
func errInternal(c *fiber.Ctx, opts Options, err error) error {
	e := APIError{Status: fiber.StatusInternalServerError, Code: "internal_error", Error: "Error interno del servidor", Message: "Error interno"}
	if !opts.Production() && err != nil {
		e.Message = err.Error()
	}
	return sendError(c, e)
}

// respondError maps a domain error to its HTTP representation.
// msgDataSource replaces upstream error detail in production.
const msgDataSource = "Error al consultar datos"

// publicError is the error surfaced by transports that carry only a message
// (GraphQL, websocket). Upstream detail is hidden in production.
func publicError(ctx context.Context, opts Options, err error) error {
	var dsErr *domain.DataSourceError
	if !errors.As(err, &dsErr) {
		return err
	}
	LoggerFromCtx(ctx).Error("data source error", "status", dsErr.Status, "error", err)
	if opts.Production() {
		return errors.New(msgDataSource)
	}
	return err
}

func respondError(c *fiber.Ctx, opts Options, err error) error {
	var vErr *domain.ValidationError
	var dsErr *domain.DataSourceError

	switch {
	case errors.As(err, &vErr):
		return errBadRequest(c, vErr.Message)

	case errors.As(err, &dsErr):
		status := fiber.StatusInternalServerError
		if dsErr.Status >= 400 && dsErr.Status <= 599 {
			status = dsErr.Status
		}
		e := APIError{Status: status, Code: "data_source_error", Error: "Error en servicio de datos", Message: msgDataSource}
		if !opts.Production() {
			e.Message = dsErr.Message
		}
		LoggerFromCtx(c.UserContext()).Error("data source error", "status", dsErr.Status, "error", err)
		return sendError(c, e)

	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, "Lugar no encontrado")
	case errors.Is(err, domain.ErrUserExists):
		return errConflict(c, "El email ya está registrado")
	case errors.Is(err, domain.ErrUserNotFound):
		return errNotFound(c, "Usuario no registrado")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return errUnauthorized(c, "Contraseña incorrecta")
	case errors.Is(err, domain.ErrUnauthorized):
		return errUnauthorized(c, "Token inválido o expirado")
	}

	LoggerFromCtx(c.UserContext()).Error("unhandled error", "error", err)
	return errInternal(c, opts, err)
}
