package config_test

import (
	"testing"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/config"
)

func TestFromEnv_SMTPFromDefaultsToUser(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.test")
	t.Setenv("SMTP_USER", "ops@example.test")
	t.Setenv("SMTP_PASS", "pw")
	t.Setenv("SMTP_FROM", "")
	t.Setenv("SMTP_PORT", "")

	cfg := config.FromEnv()
	if cfg.SMTP.From != "ops@example.test" {
		t.Fatalf("expected SMTP_FROM to default to SMTP_USER, got %q", cfg.SMTP.From)
	}
	if cfg.SMTP.Port != 587 {
		t.Fatalf("expected default port 587, got %d", cfg.SMTP.Port)
	}
	if !cfg.SMTP.Configured() {
		t.Fatalf("expected smtp to be configured")
	}
}

func TestFromEnv_SMTPPartialIsNotConfigured(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.test")
	t.Setenv("SMTP_USER", "")
	t.Setenv("SMTP_PASS", "pw")
	t.Setenv("SMTP_FROM", "")

	if config.FromEnv().SMTP.Configured() {
		t.Fatalf("smtp without user/from must not count as configured")
	}
}

func TestFromEnv_AppURLFallsBackToPublicName(t *testing.T) {
	t.Setenv("APP_URL", "")
	t.Setenv("NEXT_PUBLIC_APP_URL", "https://dash.example.test")

	if got := config.FromEnv().AppURL; got != "https://dash.example.test" {
		t.Fatalf("unexpected app url %q", got)
	}
}

func TestFromEnv_Production(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	if !config.FromEnv().IsProduction() {
		t.Fatalf("expected production mode")
	}
	t.Setenv("APP_ENV", "")
	if config.FromEnv().IsProduction() {
		t.Fatalf("empty APP_ENV must default to development")
	}
}
