package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/gitsphere/gitsphere-backend/internal/domain"
	"github.com/gitsphere/gitsphere-backend/internal/middleware"
	"github.com/gitsphere/gitsphere-backend/internal/service"
)

// AuthHandler handles the OAuth callback and token lifecycle endpoints.
// All of its routes sit outside the auth gate.
type AuthHandler struct {
	auth  *service.AuthService
	guard *middleware.TokenGuard
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService, guard *middleware.TokenGuard) *AuthHandler {
	return &AuthHandler{auth: auth, guard: guard}
}

// Register sets up auth routes.
func (h *AuthHandler) Register(app *fiber.App) {
	app.Post("/api/auth/github", h.GitHubCallback)
	app.Post("/api/auth/refresh", h.Refresh)
	app.Get("/api/auth/token/status", h.TokenStatus)
}

// GitHubCallback exchanges the authorization code and returns the signed
// credential with its granted scopes.
func (h *AuthHandler) GitHubCallback(c fiber.Ctx) error {
	var body domain.AuthRequest
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	resp, err := h.auth.Login(c.Context(), body.Code)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

// Refresh validates an existing credential and returns a replacement.
// Anything short of a successful refresh is a 401.
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	res := h.guard.ValidateAndRefresh(c.Context(), body.Token)
	if res.Status != middleware.StatusRefreshed {
		msg := res.Message
		if msg == "" {
			msg = "Token refresh failed"
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
	}

	return c.JSON(domain.AuthResponse{
		AccessToken: res.NewToken,
		Scopes:      res.Claims.Scopes,
	})
}

// TokenStatus reports validity and remaining lifetime of a credential.
func (h *AuthHandler) TokenStatus(c fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "token query parameter required"})
	}

	status, err := h.auth.TokenStatus(tokenStr)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(status)
}
