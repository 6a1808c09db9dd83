package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/gitsphere/gitsphere-backend/internal/domain"
	"github.com/gitsphere/gitsphere-backend/internal/service"
)

const (
	battleMinUsers      = 2
	battleMaxUsers      = 5
	multiBattleMaxUsers = 10
)

// BattleHandler handles profile battle endpoints.
type BattleHandler struct {
	battles *service.BattleService
}

// NewBattleHandler creates a new battle handler.
func NewBattleHandler(battles *service.BattleService) *BattleHandler {
	return &BattleHandler{battles: battles}
}

// Register sets up battle routes.
func (h *BattleHandler) Register(router fiber.Router) {
	group := router.Group("/battle")
	group.Post("/start", h.Start)
	group.Post("/multi-battle", h.MultiBattle)
	group.Post("/quick-battle", h.QuickBattle)
	group.Post("/category-battle/:category", h.CategoryBattle)
	group.Get("/battle-types", h.BattleTypes)
}

// Start runs a battle between 2 to 5 users under one scoring profile.
func (h *BattleHandler) Start(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	var body struct {
		Usernames       []string `json:"usernames"`
		BattleType      string   `json:"battle_type"`
		IncludeInsights *bool    `json:"include_insights"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if len(body.Usernames) < battleMinUsers {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "At least 2 usernames required"})
	}
	if len(body.Usernames) > battleMaxUsers {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Maximum %d users allowed per battle", battleMaxUsers),
		})
	}

	req := domain.BattleRequest{
		Usernames:       body.Usernames,
		BattleType:      body.BattleType,
		IncludeInsights: body.IncludeInsights == nil || *body.IncludeInsights,
	}
	if req.BattleType == "" {
		req.BattleType = domain.BattleComprehensive
	}
	if !validBattleType(req.BattleType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid battle type"})
	}

	result, err := h.battles.ConductBattle(c.Context(), req, ghToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// MultiBattle runs all scoring profiles for 2 to 10 users and returns a
// leaderboard with category winners.
func (h *BattleHandler) MultiBattle(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	var body struct {
		Usernames []string `json:"usernames"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if len(body.Usernames) < battleMinUsers {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "At least 2 usernames required"})
	}
	if len(body.Usernames) > multiBattleMaxUsers {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Maximum %d users allowed per multi-battle", multiBattleMaxUsers),
		})
	}

	result, err := h.battles.MultiUserBattle(c.Context(), body.Usernames, ghToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// QuickBattle runs a comprehensive 1v1 and returns a trimmed result.
func (h *BattleHandler) QuickBattle(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	var body struct {
		User1 string `json:"user1"`
		User2 string `json:"user2"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.User1 == "" || body.User2 == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user1 and user2 are required"})
	}

	req := domain.BattleRequest{
		Usernames:       []string{body.User1, body.User2},
		BattleType:      domain.BattleComprehensive,
		IncludeInsights: true,
	}
	result, err := h.battles.ConductBattle(c.Context(), req, ghToken)
	if err != nil {
		return fail(c, err)
	}

	scores := fiber.Map{}
	for _, p := range result.Participants {
		scores[p.Username] = p.BattleScore.Total
	}
	insights := result.Insights
	if len(insights) > 3 {
		insights = insights[:3]
	}

	return c.JSON(fiber.Map{
		"winner":       result.Winner,
		"scores":       scores,
		"key_insights": insights,
		"battle_id":    result.BattleID,
	})
}

// CategoryBattle runs a battle focused on one non-comprehensive category.
func (h *BattleHandler) CategoryBattle(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	category := c.Params("category")
	if category != domain.BattleTechnical && category != domain.BattleSocial && category != domain.BattleActivity {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid category. Choose: technical, social, or activity",
		})
	}

	var body struct {
		Usernames []string `json:"usernames"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(body.Usernames) < battleMinUsers || len(body.Usernames) > battleMaxUsers {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Between %d and %d usernames required", battleMinUsers, battleMaxUsers),
		})
	}

	req := domain.BattleRequest{
		Usernames:       body.Usernames,
		BattleType:      category,
		IncludeInsights: true,
	}
	result, err := h.battles.ConductBattle(c.Context(), req, ghToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// BattleTypes describes the available scoring profiles.
func (h *BattleHandler) BattleTypes(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"battle_types": fiber.Map{
			domain.BattleComprehensive: "Balanced scoring across all areas",
			domain.BattleTechnical:     "Focus on technical skills and code quality",
			domain.BattleSocial:        "Focus on community engagement and network",
			domain.BattleActivity:      "Focus on coding activity and consistency",
		},
		"max_participants": battleMaxUsers,
		"supported_features": []string{
			"detailed_comparisons",
			"insights_generation",
			"improvement_recommendations",
			"category_breakdowns",
		},
	})
}

func validBattleType(t string) bool {
	switch t {
	case domain.BattleComprehensive, domain.BattleTechnical, domain.BattleSocial, domain.BattleActivity:
		return true
	}
	return false
}
