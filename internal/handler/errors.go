package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/gitsphere/gitsphere-backend/internal/middleware"
	"github.com/gitsphere/gitsphere-backend/internal/port"
)

// statusFromError maps the port error taxonomy onto HTTP statuses.
func statusFromError(err error) int {
	var upstream *port.UpstreamError
	switch {
	case errors.Is(err, port.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, port.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, port.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, port.ErrTimeout):
		return fiber.StatusRequestTimeout
	case errors.As(err, &upstream):
		return upstream.StatusCode
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c fiber.Ctx, err error) error {
	return c.Status(statusFromError(err)).JSON(fiber.Map{"error": err.Error()})
}

// accessToken pulls the GitHub token the auth gate attached; ok is false
// when the request somehow reached a handler without one.
func accessToken(c fiber.Ctx) (string, bool) {
	t := middleware.GetAccessToken(c)
	return t, t != ""
}

func unauthenticated(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Authentication required. GitHub token not found.",
	})
}
