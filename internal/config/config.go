// Package config reads application settings from environment variables.
// Both binaries (the API server and the reminder job) load the same
// Config so they agree on the database path and email settings.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration.
type Config struct {
	Port   int
	DBPath string
	// BaseURL is the externally visible origin, used in emails and the
	// default OAuth callback. Example: https://giftwish.example.com
	BaseURL string

	// JWTSecret signs session tokens. If unset, authenticated routes
	// cannot be served and the server refuses to start.
	JWTSecret string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// FromEmail enables outgoing mail (friend-request notices, birthday
	// reminders) when set. Empty means email is disabled — the app runs
	// fine without it.
	FromEmail string

	// ReminderDays is how far ahead the reminder job looks.
	ReminderDays int
}

// Load reads configuration from environment variables with sensible
// defaults.
func Load() (*Config, error) {
	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	reminderDays, err := getEnvInt("REMINDER_DAYS", 7)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:               port,
		DBPath:             getEnv("DB_PATH", "data/giftwish.db"),
		BaseURL:            getEnv("BASE_URL", fmt.Sprintf("http://localhost:%d", port)),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  os.Getenv("GITHUB_CALLBACK_URL"),
		FromEmail:          os.Getenv("SES_FROM_EMAIL"),
		ReminderDays:       reminderDays,
	}

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = cfg.BaseURL + "/auth/github/callback"
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer, got %q", key, value)
	}
	return n, nil
}
