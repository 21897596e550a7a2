package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("COOKIE_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("VIDEO_DIR", "")
	t.Setenv("COMFY_BASE_URL", "")
	t.Setenv("SEED_MODE", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8888" {
		t.Fatalf("Port = %q, want 8888", cfg.Port)
	}
	if cfg.VideoDir != "./videos" {
		t.Fatalf("VideoDir = %q, want ./videos", cfg.VideoDir)
	}
	if cfg.ComfyBaseURL != "http://127.0.0.1:8188" {
		t.Fatalf("ComfyBaseURL = %q, want http://127.0.0.1:8188", cfg.ComfyBaseURL)
	}
	if cfg.SeedMode != "fixed" {
		t.Fatalf("SeedMode = %q, want fixed", cfg.SeedMode)
	}
	if cfg.SubmitTimeout != 600*time.Second {
		t.Fatalf("SubmitTimeout = %s, want 10m", cfg.SubmitTimeout)
	}
}

func TestLoadConfigRequiresCookieSecret(t *testing.T) {
	t.Setenv("COOKIE_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when COOKIE_SECRET is missing")
	}
}

func TestLoadConfigRejectsUnknownSeedMode(t *testing.T) {
	t.Setenv("COOKIE_SECRET", "test-secret")
	t.Setenv("SEED_MODE", "sometimes")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unknown seed mode")
	}
}

func TestLoadConfigHonorsExplicitValues(t *testing.T) {
	t.Setenv("COOKIE_SECRET", "test-secret")
	t.Setenv("PORT", "1919")
	t.Setenv("SEED_MODE", "per_job")
	t.Setenv("COMFY_SUBMIT_TIMEOUT_SECONDS", "42")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "1919" {
		t.Fatalf("Port = %q, want 1919", cfg.Port)
	}
	if cfg.SeedMode != "per_job" {
		t.Fatalf("SeedMode = %q, want per_job", cfg.SeedMode)
	}
	if cfg.SubmitTimeout != 42*time.Second {
		t.Fatalf("SubmitTimeout = %s, want 42s", cfg.SubmitTimeout)
	}
}
