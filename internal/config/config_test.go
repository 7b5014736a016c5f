package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_SECRET", "s3cret")
	t.Setenv("BACKEND_URL", "")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("port = %q", cfg.Port)
	}
	if got := cfg.APIBaseURL(); got != "http://127.0.0.1:8000/api" {
		t.Errorf("api base = %q", got)
	}
	if got := cfg.LoginURL(); got != "http://127.0.0.1:8000/auth/" {
		t.Errorf("login url = %q", got)
	}
	if cfg.UI.TrailerInterval != 7*time.Second || cfg.UI.LatestLimit != 6 || cfg.UI.CategoryPreview != 4 {
		t.Errorf("unexpected ui defaults: %+v", cfg.UI)
	}
	if cfg.UI.FormCloseDelay != time.Second {
		t.Errorf("form close delay = %v", cfg.UI.FormCloseDelay)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_SECRET", "s3cret")
	t.Setenv("BACKEND_URL", "https://movies.example.com/")
	t.Setenv("BACKEND_API_PATH", "v2/")
	t.Setenv("TRAILER_INTERVAL_MS", "2500")
	t.Setenv("SCROLL_STEP_PX", "-3")
	t.Setenv("COOKIE_SECURE", "yes")
	t.Setenv("LATEST_LIMIT", "abc")
	t.Setenv("METRICS_TOKEN", " scrape ")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if got := cfg.APIBaseURL(); got != "https://movies.example.com/v2" {
		t.Errorf("api base = %q", got)
	}
	if cfg.UI.TrailerInterval != 2500*time.Millisecond {
		t.Errorf("trailer interval = %v", cfg.UI.TrailerInterval)
	}
	if cfg.UI.ScrollStep != 1 {
		t.Errorf("negative step should keep default, got %d", cfg.UI.ScrollStep)
	}
	if !cfg.CookieSecure {
		t.Errorf("cookie secure not parsed")
	}
	if cfg.UI.LatestLimit != 6 {
		t.Errorf("invalid limit should keep default, got %d", cfg.UI.LatestLimit)
	}
	if cfg.MetricsToken != "scrape" {
		t.Errorf("metrics token = %q", cfg.MetricsToken)
	}
}

func TestLoadFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("APP_SECRET", "  ")
	if _, err := LoadFromEnv(); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestParseBool(t *testing.T) {
	if !parseBool("ON", false) || parseBool("off", true) || !parseBool("maybe", true) {
		t.Fatalf("parseBool mismatch")
	}
}
