package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment
// variables. It is built once at startup and treated as immutable.
type Config struct {
	// Server
	Port    string
	AppName string

	// OAuth2 — GitHub
	GitHubClientID     string
	GitHubClientSecret string

	// GitHub REST API
	GitHubAPIURL         string
	GitHubTimeoutSeconds int

	// JWT
	JWTSecret            string
	JWTAlgorithm         string
	JWTExpirationHours   int // initial issuance window
	RefreshWindowHours   int // window for refreshed credentials
	RefreshThresholdMins int // proactive refresh threshold

	// Auth gate
	AuthDisabled bool // exclude-all switch, for local development only

	// Frontend
	FrontendURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envOrDefault("PORT", "8000"),
		AppName: envOrDefault("APP_NAME", "GitSphere"),

		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),

		GitHubAPIURL:         envOrDefault("GITHUB_API_URL", "https://api.github.com"),
		GitHubTimeoutSeconds: envOrDefaultInt("GITHUB_TIMEOUT_SECONDS", 30),

		JWTSecret:            os.Getenv("JWT_SECRET"),
		JWTAlgorithm:         os.Getenv("JWT_ALGORITHM"),
		JWTExpirationHours:   envOrDefaultInt("JWT_EXPIRATION_HOURS", 24*5),
		RefreshWindowHours:   envOrDefaultInt("REFRESH_WINDOW_HOURS", 24),
		RefreshThresholdMins: envOrDefaultInt("REFRESH_THRESHOLD_MINUTES", 30),

		AuthDisabled: envOrDefaultBool("AUTH_DISABLED", false),

		FrontendURL: envOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}
}

// Validate rejects configurations the server must not start with. An unset
// signing secret or algorithm is a fatal configuration error, not something
// to be handled per request.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if c.JWTAlgorithm == "" {
		return fmt.Errorf("JWT_ALGORITHM is not set")
	}
	if c.JWTExpirationHours <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be positive, got %d", c.JWTExpirationHours)
	}
	if c.RefreshWindowHours <= 0 {
		return fmt.Errorf("REFRESH_WINDOW_HOURS must be positive, got %d", c.RefreshWindowHours)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}
