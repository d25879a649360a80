package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerPort int
	ServerURL  string

	// Upstream identity provider configuration
	GithubClientID     string
	GithubClientSecret string
	GithubScope        string

	// Lifetime policy
	AuthCodeTTL    time.Duration
	AccessTokenTTL time.Duration

	// Upstream exchange timeout
	UpstreamTimeout time.Duration

	// Interval between expired-entry sweeps; zero disables sweeping
	SweepInterval time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env from project root
	_ = godotenv.Load()

	authCodeTTL, err := time.ParseDuration(getEnv("AUTH_CODE_TTL", "300s"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_CODE_TTL: %w", err)
	}

	accessTokenTTL, err := time.ParseDuration(getEnv("ACCESS_TOKEN_TTL", "3600s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
	}

	upstreamTimeout, err := time.ParseDuration(getEnv("UPSTREAM_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
	}

	sweepInterval, err := time.ParseDuration(getEnv("STORE_SWEEP_INTERVAL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_SWEEP_INTERVAL: %w", err)
	}

	cfg := &Config{
		ServerPort: getEnvInt("PORT", 8080),
		ServerURL:  strings.TrimRight(getEnv("SERVER_URL", "http://localhost:8080"), "/"),

		GithubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GithubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		GithubScope:        getEnv("GITHUB_SCOPE", "read:user"),

		AuthCodeTTL:     authCodeTTL,
		AccessTokenTTL:  accessTokenTTL,
		UpstreamTimeout: upstreamTimeout,
		SweepInterval:   sweepInterval,
	}

	if cfg.GithubClientID == "" || cfg.GithubClientSecret == "" {
		return nil, fmt.Errorf("GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET are required")
	}

	return cfg, nil
}

// CallbackURL is the fixed internal callback URL registered with the
// upstream provider
func (c *Config) CallbackURL() string {
	return c.ServerURL + "/oauth/callback"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
