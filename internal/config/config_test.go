package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("EMAIL_PROVIDER", "")
	t.Setenv("CHANNEL_TIMEOUT", "")
	t.Setenv("GOOGLE_SHEETS_RANGE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("EXTRA_SERVED_CITIES", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.EmailProvider != "sendgrid" {
		t.Fatalf("expected sendgrid provider by default, got %s", cfg.EmailProvider)
	}
	if cfg.ChannelTimeout != 10*time.Second {
		t.Fatalf("expected default channel timeout, got %s", cfg.ChannelTimeout)
	}
	if cfg.GoogleSheetsRange != "Sheet1!A:M" {
		t.Fatalf("expected default sheet range, got %s", cfg.GoogleSheetsRange)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard CORS by default, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.ExtraServedCities != nil {
		t.Fatalf("expected no extra cities, got %v", cfg.ExtraServedCities)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("EMAIL_PROVIDER", " SES ")
	t.Setenv("CHANNEL_TIMEOUT", "3s")
	t.Setenv("FANOUT_CONCURRENCY", "2")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://macspp.co, ,https://www.macspp.co")
	t.Setenv("EXTRA_SERVED_CITIES", "Ardmore,Wayne")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.EmailProvider != "ses" {
		t.Fatalf("expected normalized provider, got %q", cfg.EmailProvider)
	}
	if cfg.ChannelTimeout != 3*time.Second {
		t.Fatalf("expected timeout override, got %s", cfg.ChannelTimeout)
	}
	if cfg.FanoutConcurrency != 2 {
		t.Fatalf("expected concurrency override, got %d", cfg.FanoutConcurrency)
	}
	if cfg.RateLimitRPS != 0.5 {
		t.Fatalf("expected rps override, got %v", cfg.RateLimitRPS)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORSAllowedOrigins)
	}
	if len(cfg.ExtraServedCities) != 2 || cfg.ExtraServedCities[1] != "Wayne" {
		t.Fatalf("expected extra cities, got %v", cfg.ExtraServedCities)
	}
}

func TestLoadDotEnvMissingFileIsNoop(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestLoadDotEnvDoesNotOverrideExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("WEBHOOK_URL=https://hooks.example.com/from-file\nOWNER_EMAIL=owner@example.com\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/from-env")
	t.Setenv("OWNER_EMAIL", "")
	os.Unsetenv("OWNER_EMAIL")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := Load()
	if cfg.WebhookURL != "https://hooks.example.com/from-env" {
		t.Fatalf("expected env to win, got %s", cfg.WebhookURL)
	}
	if cfg.OwnerEmail != "owner@example.com" {
		t.Fatalf("expected owner email from file, got %s", cfg.OwnerEmail)
	}
}
