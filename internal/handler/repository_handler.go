package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/gitsphere/gitsphere-backend/internal/service"
)

const (
	bulkAnalyzeLimit = 5
	treeEntryLimit   = 500
)

// RepositoryHandler handles repository analysis endpoints.
type RepositoryHandler struct {
	repos *service.RepositoryService
}

// NewRepositoryHandler creates a new repository handler.
func NewRepositoryHandler(repos *service.RepositoryService) *RepositoryHandler {
	return &RepositoryHandler{repos: repos}
}

// Register sets up repository analyzer routes.
func (h *RepositoryHandler) Register(router fiber.Router) {
	group := router.Group("/repository-analyzer")
	group.Get("/analyze/:owner/:repo", h.Analyze)
	group.Get("/info/:owner/:repo", h.Info)
	group.Get("/insights/:owner/:repo", h.Insights)
	group.Get("/languages/:owner/:repo", h.Languages)
	group.Get("/contributors/:owner/:repo", h.Contributors)
	group.Get("/file/:owner/:repo/*", h.FileContent)
	group.Get("/tree/:owner/:repo", h.Tree)
	group.Post("/bulk-analyze", h.BulkAnalyze)
}

// Analyze returns the full derived analysis for a repository.
func (h *RepositoryHandler) Analyze(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	analysis, err := h.repos.AnalyzeRepository(c.Context(), c.Params("owner"), c.Params("repo"), ghToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(analysis)
}

// Info returns the base repository record.
func (h *RepositoryHandler) Info(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	info, err := h.repos.GetRepositoryInfo(c.Context(), c.Params("owner"), c.Params("repo"), ghToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(info)
}

// Insights returns templated insights derived from a fresh analysis.
func (h *RepositoryHandler) Insights(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	analysis, err := h.repos.AnalyzeRepository(c.Context(), c.Params("owner"), c.Params("repo"), ghToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(h.repos.GenerateInsights(analysis))
}

// Languages returns the language histogram of a repository.
func (h *RepositoryHandler) Languages(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	langs, err := h.repos.GetLanguages(c.Context(), c.Params("owner"), c.Params("repo"), ghToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(langs)
}

// Contributors returns the top contributors of a repository.
func (h *RepositoryHandler) Contributors(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	contributors, err := h.repos.GetContributors(c.Context(), c.Params("owner"), c.Params("repo"), ghToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(contributors)
}

// FileContent returns the decoded content of a single file.
func (h *RepositoryHandler) FileContent(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	path := c.Params("*")
	content, err := h.repos.GetFileContent(c.Context(), c.Params("owner"), c.Params("repo"), path, ghToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"path": path, "content": content})
}

// Tree returns the repository file tree, capped for response size.
func (h *RepositoryHandler) Tree(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	owner, repo := c.Params("owner"), c.Params("repo")
	tree, err := h.repos.GetTree(c.Context(), owner, repo, ghToken)
	if err != nil {
		return fail(c, err)
	}

	entries := tree.Entries
	if len(entries) > treeEntryLimit {
		entries = entries[:treeEntryLimit]
	}
	return c.JSON(fiber.Map{
		"repository": fmt.Sprintf("%s/%s", owner, repo),
		"tree":       entries,
	})
}

// BulkAnalyze analyzes up to five repositories; a failing repository is
// reported with a failed status instead of aborting the batch.
func (h *RepositoryHandler) BulkAnalyze(c fiber.Ctx) error {
	ghToken, ok := accessToken(c)
	if !ok {
		return unauthenticated(c)
	}

	var targets []struct {
		Owner string `json:"owner"`
		Repo  string `json:"repo"`
	}
	if err := c.Bind().JSON(&targets); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(targets) > bulkAnalyzeLimit {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Maximum %d repositories allowed per request", bulkAnalyzeLimit),
		})
	}

	results := make([]fiber.Map, 0, len(targets))
	succeeded := 0
	for _, target := range targets {
		if target.Owner == "" || target.Repo == "" {
			continue
		}
		name := target.Owner + "/" + target.Repo

		analysis, err := h.repos.AnalyzeRepository(c.Context(), target.Owner, target.Repo, ghToken)
		if err != nil {
			results = append(results, fiber.Map{
				"repository": name,
				"error":      err.Error(),
				"status":     "failed",
			})
			continue
		}
		results = append(results, fiber.Map{
			"repository": name,
			"analysis":   analysis,
			"status":     "success",
		})
		succeeded++
	}

	return c.JSON(fiber.Map{"analyses": results, "total_analyzed": succeeded})
}
