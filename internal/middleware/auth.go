package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/gitsphere/gitsphere-backend/internal/port"
	"github.com/gitsphere/gitsphere-backend/internal/token"
)

// Outcomes of validating a credential. Refresh never raises past the
// guard boundary: every path resolves to one of these tagged results.
const (
	StatusValid     = "valid"
	StatusRefreshed = "refreshed"
	StatusInvalid   = "invalid"
)

// Result is the tagged outcome of ValidateAndRefresh.
type Result struct {
	Status   string
	Claims   *token.Claims
	NewToken string
	Message  string
}

// TokenGuard validates credentials and mints replacements when a
// credential is expired or inside the proactive refresh threshold.
type TokenGuard struct {
	codec            *token.Codec
	validator        port.TokenValidator
	refreshThreshold time.Duration
	refreshWindow    time.Duration
}

// NewTokenGuard creates a guard. threshold is how close to expiry a
// credential may get before a proactive refresh, window is the lifetime
// of refreshed credentials.
func NewTokenGuard(codec *token.Codec, validator port.TokenValidator, threshold, window time.Duration) *TokenGuard {
	return &TokenGuard{
		codec:            codec,
		validator:        validator,
		refreshThreshold: threshold,
		refreshWindow:    window,
	}
}

// ValidateAndRefresh decides what to do with a presented credential:
// reject it, pass it through, or refresh it and pass the replacement
// through. The payload is decoded without expiry verification first so an
// expired credential can still be inspected for a refresh attempt.
func (g *TokenGuard) ValidateAndRefresh(ctx context.Context, tokenStr string) Result {
	claims, err := g.codec.Decode(tokenStr, false)
	if err != nil {
		return Result{Status: StatusInvalid, Message: "Invalid token"}
	}

	exp, ok := claims.Expiry()
	if !ok {
		return Result{Status: StatusInvalid, Message: "Token missing expiration"}
	}

	now := time.Now()

	if now.After(exp) {
		slog.Info("token expired, attempting refresh")
		res := g.Refresh(ctx, claims)
		if res.Status != StatusRefreshed {
			res.Message = "Token expired and cannot be refreshed"
		}
		return res
	}

	if exp.Sub(now) < g.refreshThreshold {
		slog.Info("token near expiration, refreshing proactively")
		return g.Refresh(ctx, claims)
	}

	// Not near expiry: verify strictly, signature and expiration both.
	if _, err := g.codec.Decode(tokenStr, true); err != nil {
		return Result{Status: StatusInvalid, Message: "Invalid token"}
	}
	return Result{Status: StatusValid, Claims: claims}
}

// Refresh re-validates the embedded GitHub token upstream and mints a
// replacement credential. Each failure mode resolves to an invalid result
// with its own message; nothing propagates as an error.
func (g *TokenGuard) Refresh(ctx context.Context, old *token.Claims) Result {
	if old.AccessToken == "" {
		return Result{Status: StatusInvalid, Message: "No GitHub token found in JWT"}
	}

	if err := g.validator.CheckToken(ctx, old.AccessToken); err != nil {
		slog.Info("github token no longer valid", "error", err)
		return Result{Status: StatusInvalid, Message: "GitHub token is no longer valid"}
	}

	fresh := old.Refreshed(g.refreshWindow)
	encoded, err := g.codec.Encode(fresh)
	if err != nil {
		slog.Error("token refresh failed", "error", err)
		return Result{Status: StatusInvalid, Message: "Token refresh failed"}
	}

	slog.Info("token successfully refreshed")
	return Result{Status: StatusRefreshed, Claims: fresh, NewToken: encoded}
}

// GateConfig configures the auth gate middleware.
type GateConfig struct {
	Guard *TokenGuard

	// ExcludePaths are path prefixes forwarded without any auth work.
	ExcludePaths []string

	// ExcludeAll disables the gate entirely. Local development only.
	ExcludeAll bool
}

// AuthGate intercepts every inbound request, validates the bearer
// credential, and attaches the decoded payload to the request context.
// When a refresh happened, the replacement credential rides back on the
// response headers regardless of the handler's own status code.
func AuthGate(cfg GateConfig) fiber.Handler {
	return func(c fiber.Ctx) error {
		if cfg.ExcludeAll {
			return c.Next()
		}
		for _, prefix := range cfg.ExcludePaths {
			if strings.HasPrefix(c.Path(), prefix) {
				return c.Next()
			}
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}
		if !strings.EqualFold(parts[0], "bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authentication scheme. Use Bearer token.",
			})
		}

		res := cfg.Guard.ValidateAndRefresh(c.Context(), parts[1])
		if res.Status == StatusInvalid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": res.Message,
			})
		}

		c.Locals("claims", res.Claims)
		c.Locals("github_token", res.Claims.AccessToken)

		err := c.Next()

		if res.Status == StatusRefreshed {
			c.Set("X-New-Token", res.NewToken)
			c.Set("X-Token-Refreshed", "true")
		}
		return err
	}
}

// GetClaims extracts the decoded credential from Fiber locals.
func GetClaims(c fiber.Ctx) *token.Claims {
	claims, ok := c.Locals("claims").(*token.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetAccessToken extracts the GitHub access token from Fiber locals. It
// is empty when the request did not pass through the gate.
func GetAccessToken(c fiber.Ctx) string {
	t, ok := c.Locals("github_token").(string)
	if !ok {
		return ""
	}
	return t
}
