package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	CookieSecret     string
	VideoDir         string
	ComfyBaseURL     string
	SeedMode         string
	SubmitTimeout    time.Duration
	ProgressTimeout  time.Duration
	FetchTimeout     time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8888"),
		CookieSecret:     os.Getenv("COOKIE_SECRET"),
		VideoDir:         getEnv("VIDEO_DIR", "./videos"),
		ComfyBaseURL:     getEnv("COMFY_BASE_URL", "http://127.0.0.1:8188"),
		SeedMode:         getEnv("SEED_MODE", "fixed"),
		SubmitTimeout:    time.Second * time.Duration(getEnvInt("COMFY_SUBMIT_TIMEOUT_SECONDS", 600)),
		ProgressTimeout:  time.Second * time.Duration(getEnvInt("COMFY_PROGRESS_TIMEOUT_SECONDS", 1800)),
		FetchTimeout:     time.Second * time.Duration(getEnvInt("COMFY_FETCH_TIMEOUT_SECONDS", 120)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.CookieSecret == "" {
		return nil, fmt.Errorf("COOKIE_SECRET is required")
	}

	if cfg.SeedMode != "fixed" && cfg.SeedMode != "per_job" {
		return nil, fmt.Errorf("SEED_MODE must be fixed or per_job, got %q", cfg.SeedMode)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
