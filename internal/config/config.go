package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/meetnotes/internal/granola"
)

type Config struct {
	Port string

	// Notes service
	GranolaBaseURL  string
	GranolaAuthFile string
	GranolaToken    string
	GranolaTimeout  time.Duration
	RetryAttempts   int
	RetryBackoff    time.Duration

	// Document cache
	DocCacheSize int
	DocCacheTTL  time.Duration

	// Listing
	ListLimitMax int

	// Exports
	ExportDir string
	ExportTTL time.Duration

	// Rendering
	MaxRenderDepth int

	// HTTP API
	APIKey       string
	MaxBodyBytes int64

	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; variables already set take precedence.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the environment only.
func FromEnv() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		GranolaBaseURL:  envOr("GRANOLA_BASE_URL", granola.DefaultBaseURL),
		GranolaAuthFile: envOr("GRANOLA_AUTH_FILE", granola.DefaultAuthFile()),
		GranolaToken:    os.Getenv("GRANOLA_TOKEN"),
		GranolaTimeout:  envDuration("GRANOLA_TIMEOUT", 30*time.Second),
		RetryAttempts:   envInt("RETRY_ATTEMPTS", 3),
		RetryBackoff:    envDuration("RETRY_BACKOFF", 500*time.Millisecond),

		DocCacheSize: envInt("DOC_CACHE_SIZE", 256),
		DocCacheTTL:  envDuration("DOC_CACHE_TTL", 2*time.Minute),

		ListLimitMax: envInt("LIST_LIMIT_MAX", 100),

		ExportDir: os.Getenv("EXPORT_DIR"),
		ExportTTL: envDuration("EXPORT_TTL", 1*time.Hour),

		MaxRenderDepth: envInt("MAX_RENDER_DEPTH", 64),

		APIKey:       os.Getenv("API_KEY"),
		MaxBodyBytes: envInt64("MAX_BODY_BYTES", 10<<20),

		LogLevel: strings.ToLower(envOr("LOG_LEVEL", "info")),
	}

	if cfg.GranolaTimeout <= 0 {
		cfg.GranolaTimeout = 30 * time.Second
	}
	if cfg.RetryAttempts < 0 {
		cfg.RetryAttempts = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.ListLimitMax <= 0 {
		cfg.ListLimitMax = 100
	}
	if cfg.ExportTTL <= 0 {
		cfg.ExportTTL = 1 * time.Hour
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}
	if cfg.MaxRenderDepth <= 0 {
		cfg.MaxRenderDepth = 64
	}

	return cfg
}

// Validate checks settings every mode needs.
func (c Config) Validate() error {
	if c.GranolaToken == "" && c.GranolaAuthFile == "" {
		return errors.New("GRANOLA_AUTH_FILE or GRANOLA_TOKEN is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ValidateServe additionally checks settings the HTTP API needs.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	return nil
}

// TokenSource picks a fixed token when one is configured, else the session
// file.
func (c Config) TokenSource() granola.TokenSource {
	if c.GranolaToken != "" {
		return granola.StaticToken(c.GranolaToken)
	}
	return granola.NewFileTokenSource(c.GranolaAuthFile)
}

// ParseLevel maps LOG_LEVEL values to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
