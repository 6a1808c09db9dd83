package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/gitsphere/gitsphere-backend/internal/adapter/github"
	"github.com/gitsphere/gitsphere-backend/internal/handler"
	"github.com/gitsphere/gitsphere-backend/internal/middleware"
	"github.com/gitsphere/gitsphere-backend/internal/scoring"
	"github.com/gitsphere/gitsphere-backend/internal/service"
	"github.com/gitsphere/gitsphere-backend/internal/token"
	"github.com/gitsphere/gitsphere-backend/pkg/config"
)

// Path prefixes that bypass the auth gate: health, OAuth entry, token
// lifecycle and docs.
var excludedPaths = []string{
	"/api/docs",
	"/api/redoc",
	"/openapi.json",
	"/api/auth/github",
	"/api/auth/refresh",
	"/api/auth/login",
	"/api/auth/token",
	"/api/v1/health",
}

func main() {
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		slog.Error("invalid jwt configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("🚀 Starting GitSphere",
		"port", cfg.Port,
		"github_api", cfg.GitHubAPIURL,
		"jwt_algorithm", cfg.JWTAlgorithm,
	)

	// ── Adapters ─────────────────────────────────────────────────────────
	ghTimeout := time.Duration(cfg.GitHubTimeoutSeconds) * time.Second
	ghClient := github.NewClient(cfg.GitHubAPIURL, ghTimeout)
	oauthProvider := github.NewOAuthProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubAPIURL, ghTimeout)

	// ── Auth ─────────────────────────────────────────────────────────────
	guard := middleware.NewTokenGuard(
		codec,
		ghClient,
		time.Duration(cfg.RefreshThresholdMins)*time.Minute,
		time.Duration(cfg.RefreshWindowHours)*time.Hour,
	)

	// ── Services ─────────────────────────────────────────────────────────
	authService := service.NewAuthService(oauthProvider, codec, time.Duration(cfg.JWTExpirationHours)*time.Hour)
	profileService := service.NewProfileService(ghClient)
	repoService := service.NewRepositoryService(ghClient)
	battleService := service.NewBattleService(profileService, scoring.NewEngine())

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  []string{cfg.FrontendURL},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		ExposeHeaders: []string{"X-New-Token", "X-Token-Refreshed"},
	}))

	app.Use(middleware.AuthGate(middleware.GateConfig{
		Guard:        guard,
		ExcludePaths: excludedPaths,
		ExcludeAll:   cfg.AuthDisabled,
	}))

	// ── Public routes ────────────────────────────────────────────────────
	authHandler := handler.NewAuthHandler(authService, guard)
	authHandler.Register(app)

	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"features": []string{"profile-analyzer", "repository-analyzer", "profile-battle"},
			"version":  "1.0.0",
		})
	})

	// ── Protected routes ─────────────────────────────────────────────────
	api := app.Group("/api/v1")

	handler.NewProfileHandler(profileService).Register(api)
	handler.NewRepositoryHandler(repoService).Register(api)
	handler.NewBattleHandler(battleService).Register(api)

	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
