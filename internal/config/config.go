// Package config loads and validates application configuration from
// environment variables, optionally layered over a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all configuration values for the API server.
// Values are populated by Load.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:3000"] (Next.js dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// GeminiAPIKey authenticates plan generation. Required.
	GeminiAPIKey string
	// GeminiModel defaults to "gemini-2.5-flash".
	GeminiModel string
	// GeminiEndpoint overrides the API base URL; empty uses Google's.
	GeminiEndpoint string
	// GeminiRatePerMin caps outbound generation calls. Defaults to 60.
	GeminiRatePerMin int

	// GenerateRatePerMin is the per-client limit on GET /generate-plan.
	// Defaults to 10.
	GenerateRatePerMin int

	// SessionTTL is how long an idle editor session lives. Defaults to 2h.
	SessionTTL time.Duration

	// DefaultOwnerID is used when a request names no owner.
	DefaultOwnerID uuid.UUID

	// MaxBodyBytes limits request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// fileConfig mirrors Config for the optional TOML file named by
// PLANNER_CONFIG. Unset keys keep their defaults.
type fileConfig struct {
	Port        string   `toml:"port"`
	DatabaseURL string   `toml:"database_url"`
	LogLevel    string   `toml:"log_level"`
	CORSOrigins []string `toml:"cors_origins"`
	Gemini      struct {
		APIKey        string `toml:"api_key"`
		Model         string `toml:"model"`
		Endpoint      string `toml:"endpoint"`
		RatePerMinute int    `toml:"rate_per_minute"`
	} `toml:"gemini"`
	GenerateRatePerMin int    `toml:"generate_rate_per_min"`
	SessionTTL         string `toml:"session_ttl"`
	DefaultOwnerID     string `toml:"default_owner_id"`
	MaxBodyBytes       int64  `toml:"max_body_bytes"`
}

// Load reads configuration and returns a Config. Precedence, highest first:
// environment variables, the TOML file named by PLANNER_CONFIG, defaults.
// Returns an error listing any required values that are not set.
func Load() (Config, error) {
	var fc fileConfig
	if path := os.Getenv("PLANNER_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config.Load: %w", err)
		}
		if err := toml.Unmarshal(b, &fc); err != nil {
			return Config{}, fmt.Errorf("config.Load: parse %s: %w", path, err)
		}
	}

	cfg := Config{
		Port:           getEnv("PORT", or(fc.Port, "8080")),
		DatabaseURL:    getEnv("DATABASE_URL", fc.DatabaseURL),
		LogLevel:       getEnv("LOG_LEVEL", or(fc.LogLevel, "info")),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", fc.Gemini.APIKey),
		GeminiModel:    getEnv("GEMINI_MODEL", or(fc.Gemini.Model, "gemini-2.5-flash")),
		GeminiEndpoint: getEnv("GEMINI_ENDPOINT", fc.Gemini.Endpoint),
	}

	cfg.CORSOrigins = []string{"http://localhost:3000"}
	if len(fc.CORSOrigins) > 0 {
		cfg.CORSOrigins = fc.CORSOrigins
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}

	var errs []error
	cfg.GeminiRatePerMin = getInt("GEMINI_RATE_PER_MIN", orInt(fc.Gemini.RatePerMinute, 60), &errs)
	cfg.GenerateRatePerMin = getInt("GENERATE_RATE_PER_MIN", orInt(fc.GenerateRatePerMin, 10), &errs)
	cfg.MaxBodyBytes = int64(getInt("MAX_BODY_BYTES", int(orInt64(fc.MaxBodyBytes, 1<<20)), &errs))

	ttl := getEnv("SESSION_TTL", or(fc.SessionTTL, "2h"))
	d, err := time.ParseDuration(ttl)
	if err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL: invalid duration %q", ttl))
	}
	cfg.SessionTTL = d

	owner := getEnv("DEFAULT_OWNER_ID", or(fc.DefaultOwnerID, uuid.Nil.String()))
	if cfg.DefaultOwnerID, err = uuid.Parse(owner); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_OWNER_ID: invalid uuid %q", owner))
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if len(missing) > 0 {
		errs = append([]error{fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))}, errs...)
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getInt is getEnv for positive integers. Parse failures are appended to errs.
func getInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: must be a positive integer, got %q", key, v))
		return fallback
	}
	return n
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func orInt(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func orInt64(v, fallback int64) int64 {
	if v > 0 {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
