package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agrance/memorylane/internal/journal"
)

// Config contains all runtime settings for the memory journal service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	// DatabaseURL selects the postgres backend when set; otherwise the
	// embedded SQLite file at SQLitePath is used.
	DatabaseURL string
	SQLitePath  string

	// DefaultSort pins the ordering applied when a list request omits the
	// sort parameter. Must be "older" or "newer".
	DefaultSort      string
	DefaultPageLimit int

	RateLimitMax    int
	RateLimitWindow time.Duration

	UploadAPIURL string
	UploadAPIKey string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":4001"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "memorylane"),
		AllowAnyOrigin:   true,
		DatabaseURL:      trimmedEnv("DATABASE_URL"),
		SQLitePath:       envOrDefault("SQLITE_PATH", "memories.db"),
		DefaultSort:      envOrDefault("APP_DEFAULT_SORT", journal.SortOlder),
		DefaultPageLimit: journal.DefaultPageLimit,
		RateLimitMax:     100,
		RateLimitWindow:  15 * time.Minute,
		ShutdownTimeout:  15 * time.Second,
		UploadAPIURL:     trimmedEnv("UPLOAD_API_URL"),
		UploadAPIKey:     trimmedEnv("UPLOAD_API_KEY"),
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.RateLimitWindow, err = durationFromEnv("APP_RATE_LIMIT_WINDOW", cfg.RateLimitWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.RateLimitMax, err = intFromEnv("APP_RATE_LIMIT_MAX", cfg.RateLimitMax)
	if err != nil {
		return Config{}, err
	}
	cfg.DefaultPageLimit, err = intFromEnv("APP_DEFAULT_PAGE_LIMIT", cfg.DefaultPageLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.DefaultSort != journal.SortOlder && cfg.DefaultSort != journal.SortNewer {
		return Config{}, fmt.Errorf("APP_DEFAULT_SORT must be %q or %q", journal.SortOlder, journal.SortNewer)
	}
	if cfg.DefaultPageLimit <= 0 {
		return Config{}, fmt.Errorf("APP_DEFAULT_PAGE_LIMIT must be positive")
	}
	if cfg.RateLimitMax <= 0 {
		return Config{}, fmt.Errorf("APP_RATE_LIMIT_MAX must be positive")
	}
	if cfg.RateLimitWindow < time.Second {
		return Config{}, fmt.Errorf("APP_RATE_LIMIT_WINDOW must be at least 1s")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
}
