package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/gitsphere/gitsphere-backend/internal/service"
)

// ProfileHandler handles profile analysis endpoints.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Register sets up profile analyzer routes.
func (h *ProfileHandler) Register(router fiber.Router) {
	group := router.Group("/profile-analyzer")
	group.Get("/analyze/:username", h.Analyze)
	group.Get("/profile/:username", h.Profile)
	group.Get("/insights/:username", h.Insights)
	group.Get("/repositories/:username", h.Repositories)
}

// Analyze returns the full derived analysis for a user.
func (h *ProfileHandler) Analyze(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	analysis, err := h.profiles.AnalyzeProfile(c.Context(), c.Params("username"), ghToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(analysis)
}

// Profile returns the raw user profile.
func (h *ProfileHandler) Profile(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	profile, err := h.profiles.GetProfile(c.Context(), c.Params("username"), ghToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// Insights returns templated insights derived from a fresh analysis.
func (h *ProfileHandler) Insights(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	analysis, err := h.profiles.AnalyzeProfile(c.Context(), c.Params("username"), ghToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(h.profiles.GenerateInsights(analysis))
}

// Repositories lists a user's repositories with an optional limit.
func (h *ProfileHandler) Repositories(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be between 1 and 100"})
		}
		limit = n
	}

	repos, err := h.profiles.GetRepositories(c.Context(), c.Params("username"), ghToken)
	if err != nil {
		return fail(c, err)
	}

	limited := limit > 0
	if limited && len(repos) > limit {
		repos = repos[:limit]
	}

	return c.JSON(fiber.Map{
		"repositories": repos,
		"total_count":  len(repos),
		"limited":      limited,
	})
}
