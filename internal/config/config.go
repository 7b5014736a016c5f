package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Example env config:
// WEB_PORT=8081
// BACKEND_URL=http://127.0.0.1:8000
// BACKEND_API_PATH=/api
// BACKEND_AUTH_PATH=/auth/
// APP_SECRET=change-me
// HTTP_TIMEOUT_MS=10000
// TRAILER_INTERVAL_MS=7000
// SCROLL_STEP_PX=1
// SCROLL_FRAME_MS=16
// LATEST_LIMIT=6
// CATEGORY_PREVIEW=4
// FORM_CLOSE_DELAY_MS=1000
// SESSION_IDLE_MINUTES=60
// METRICS_TOKEN=
// COOKIE_SECURE=false
// LOG_LEVEL=info
// LOG_FORMAT=console
// SHUTDOWN_DRAIN_MS=10000
type Config struct {
	Port          string
	BackendURL    string
	APIPath       string
	AuthPath      string
	AppSecret     string
	HTTPTimeout   time.Duration
	CookieSecure  bool
	SessionIdle   time.Duration
	MetricsToken  string
	LogLevel      string
	LogFormat     string
	ShutdownDrain time.Duration
	UI            UIConfig
}

type UIConfig struct {
	TrailerInterval time.Duration
	ScrollStep      int
	ScrollFrame     time.Duration
	LatestLimit     int
	CategoryPreview int
	FormCloseDelay  time.Duration
}

var ErrMissingSecret = errors.New("config: APP_SECRET is required")

func DefaultConfig() Config {
	return Config{
		Port:          "8081",
		BackendURL:    "http://127.0.0.1:8000",
		APIPath:       "/api",
		AuthPath:      "/auth/",
		HTTPTimeout:   10 * time.Second,
		CookieSecure:  false,
		SessionIdle:   time.Hour,
		LogLevel:      "info",
		LogFormat:     "console",
		ShutdownDrain: 10 * time.Second,
		UI: UIConfig{
			TrailerInterval: 7 * time.Second,
			ScrollStep:      1,
			ScrollFrame:     16 * time.Millisecond,
			LatestLimit:     6,
			CategoryPreview: 4,
			FormCloseDelay:  time.Second,
		},
	}
}

// LoadFromEnv reads the process environment on top of DefaultConfig. Invalid
// values fall back to the defaults; only a missing APP_SECRET is an error.
func LoadFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("WEB_PORT")); v != "" {
		cfg.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("BACKEND_URL")); v != "" {
		cfg.BackendURL = v
	}
	if v := strings.TrimSpace(os.Getenv("BACKEND_API_PATH")); v != "" {
		cfg.APIPath = v
	}
	if v := strings.TrimSpace(os.Getenv("BACKEND_AUTH_PATH")); v != "" {
		cfg.AuthPath = v
	}
	cfg.AppSecret = os.Getenv("APP_SECRET")
	if v := os.Getenv("HTTP_TIMEOUT_MS"); v != "" {
		cfg.HTTPTimeout = parseMillis(v, cfg.HTTPTimeout)
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		cfg.CookieSecure = parseBool(v, cfg.CookieSecure)
	}
	if v := os.Getenv("SESSION_IDLE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			cfg.SessionIdle = time.Duration(n) * time.Minute
		}
	}
	cfg.MetricsToken = strings.TrimSpace(os.Getenv("METRICS_TOKEN"))
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("SHUTDOWN_DRAIN_MS"); v != "" {
		cfg.ShutdownDrain = parseMillis(v, cfg.ShutdownDrain)
	}
	if v := os.Getenv("TRAILER_INTERVAL_MS"); v != "" {
		cfg.UI.TrailerInterval = parseMillis(v, cfg.UI.TrailerInterval)
	}
	if v := os.Getenv("SCROLL_STEP_PX"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			cfg.UI.ScrollStep = n
		}
	}
	if v := os.Getenv("SCROLL_FRAME_MS"); v != "" {
		cfg.UI.ScrollFrame = parseMillis(v, cfg.UI.ScrollFrame)
	}
	if v := os.Getenv("LATEST_LIMIT"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			cfg.UI.LatestLimit = n
		}
	}
	if v := os.Getenv("CATEGORY_PREVIEW"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			cfg.UI.CategoryPreview = n
		}
	}
	if v := os.Getenv("FORM_CLOSE_DELAY_MS"); v != "" {
		cfg.UI.FormCloseDelay = parseMillis(v, cfg.UI.FormCloseDelay)
	}

	cfg = cfg.normalize()
	if strings.TrimSpace(cfg.AppSecret) == "" {
		return cfg, ErrMissingSecret
	}
	return cfg, nil
}

// APIBaseURL is the root every movie and user endpoint hangs off.
func (c Config) APIBaseURL() string {
	return strings.TrimRight(c.BackendURL, "/") + c.APIPath
}

func (c Config) LoginURL() string {
	return strings.TrimRight(c.BackendURL, "/") + c.AuthPath
}

func (c Config) normalize() Config {
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
	if c.BackendURL == "" {
		c.BackendURL = "http://127.0.0.1:8000"
	}
	if !strings.HasPrefix(c.APIPath, "/") {
		c.APIPath = "/" + c.APIPath
	}
	c.APIPath = strings.TrimRight(c.APIPath, "/")
	if !strings.HasPrefix(c.AuthPath, "/") {
		c.AuthPath = "/" + c.AuthPath
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if c.SessionIdle <= 0 {
		c.SessionIdle = time.Hour
	}
	if c.ShutdownDrain <= 0 {
		c.ShutdownDrain = 10 * time.Second
	}
	if c.UI.TrailerInterval <= 0 {
		c.UI.TrailerInterval = 7 * time.Second
	}
	if c.UI.ScrollStep <= 0 {
		c.UI.ScrollStep = 1
	}
	if c.UI.ScrollFrame <= 0 {
		c.UI.ScrollFrame = 16 * time.Millisecond
	}
	if c.UI.LatestLimit <= 0 {
		c.UI.LatestLimit = 6
	}
	if c.UI.CategoryPreview <= 0 {
		c.UI.CategoryPreview = 4
	}
	if c.UI.FormCloseDelay < 0 {
		c.UI.FormCloseDelay = time.Second
	}
	return c
}

func parseMillis(raw string, def time.Duration) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Millisecond
}

func parseBool(raw string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
