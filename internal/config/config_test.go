package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/meetnotes/internal/granola"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "GRANOLA_BASE_URL", "GRANOLA_TOKEN", "RETRY_ATTEMPTS", "EXPORT_DIR", "API_KEY", "LOG_LEVEL", "MAX_RENDER_DEPTH"} {
		t.Setenv(k, "")
	}
	t.Setenv("GRANOLA_AUTH_FILE", "/tmp/supabase.json")

	cfg := FromEnv()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.GranolaBaseURL != granola.DefaultBaseURL {
		t.Errorf("unexpected base url %q", cfg.GranolaBaseURL)
	}
	if cfg.GranolaTimeout != 30*time.Second || cfg.RetryAttempts != 3 || cfg.RetryBackoff != 500*time.Millisecond {
		t.Errorf("unexpected client defaults %+v", cfg)
	}
	if cfg.DocCacheSize != 256 || cfg.DocCacheTTL != 2*time.Minute {
		t.Errorf("unexpected cache defaults %+v", cfg)
	}
	if cfg.ListLimitMax != 100 || cfg.ExportTTL != time.Hour || cfg.MaxRenderDepth != 64 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected info level, got %q", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
	if err := cfg.ValidateServe(); err == nil {
		t.Error("expected serve validation to require API_KEY")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("GRANOLA_TIMEOUT", "5s")
	t.Setenv("RETRY_ATTEMPTS", "-2")
	t.Setenv("LIST_LIMIT_MAX", "notanumber")
	t.Setenv("MAX_RENDER_DEPTH", "0")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("API_KEY", "secret")
	t.Setenv("GRANOLA_TOKEN", "tok")

	cfg := FromEnv()
	if cfg.GranolaTimeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.GranolaTimeout)
	}
	if cfg.RetryAttempts != 0 {
		t.Errorf("expected negative retries clamped to 0, got %d", cfg.RetryAttempts)
	}
	if cfg.ListLimitMax != 100 {
		t.Errorf("expected fallback list limit, got %d", cfg.ListLimitMax)
	}
	if cfg.MaxRenderDepth != 64 {
		t.Errorf("expected fallback depth, got %d", cfg.MaxRenderDepth)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected lowercased level, got %q", cfg.LogLevel)
	}
	if err := cfg.ValidateServe(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
	if _, ok := cfg.TokenSource().(granola.StaticToken); !ok {
		t.Errorf("expected static token source, got %T", cfg.TokenSource())
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{LogLevel: "info"}).Validate(); err == nil {
		t.Error("expected error without any token source")
	}
	if err := (Config{GranolaToken: "t", LogLevel: "loud"}).Validate(); err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}
