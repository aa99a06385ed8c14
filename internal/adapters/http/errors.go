package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/jelajah/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, geocode_not_found, ...
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errFromDomain maps a usecase error to its HTTP status and code.
func errFromDomain(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		return errNotFound(c, "session not found")
	case errors.Is(err, domain.ErrGeocodeNotFound):
		return newError(c, fiber.StatusNotFound, "geocode_not_found", "location not found")
	case errors.Is(err, domain.ErrGeocodeTransport):
		LoggerFromCtx(c.UserContext()).Warn("geocoder unavailable", "error", err)
		return newError(c, fiber.StatusBadGateway, "geocode_unavailable", "geocoding service unavailable")
	case errors.Is(err, domain.ErrNoLocation):
		return newError(c, fiber.StatusConflict, "no_location", err.Error())
	case errors.Is(err, domain.ErrStaleSearch):
		return newError(c, fiber.StatusConflict, "stale_search", err.Error())
	}
	LoggerFromCtx(c.UserContext()).Error("request failed", slog.Any("error", err))
	return errInternal(c, "internal error")
}
