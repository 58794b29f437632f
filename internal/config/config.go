// ABOUTME: Configuration loader for blogctl
// ABOUTME: Loads settings from .env and environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL       = "http://localhost:8080/api"
	DefaultExcludedHost = "gitlab.nilm.cc"
	appDirName          = "blogctl"
)

type Config struct {
	// Backend
	APIURL         string
	RequestTimeout time.Duration
	RateLimit      float64 // requests per second, 0 disables

	// Authorization lifecycle
	ExcludedHosts []string      // external providers that never receive the bearer token
	RedirectDelay time.Duration // delay before navigating to login after a 401
	VerifyDelay   time.Duration // delay before the advisory token check after restore

	// Local state
	ConfigDir string

	// Google OAuth (optional)
	GoogleClientID    string
	GoogleRedirectURL string

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string // "-" means stderr
}

// GoogleConfigured returns true if a Google OAuth client is set
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleRedirectURL != ""
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	configDir := getEnv("BLOG_CONFIG_DIR", DefaultConfigDir())

	cfg := &Config{
		APIURL:         strings.TrimRight(getEnv("BLOG_API_URL", DefaultAPIURL), "/"),
		RequestTimeout: getEnvDuration("BLOG_REQUEST_TIMEOUT", 30*time.Second),
		RateLimit:      getEnvFloat("BLOG_RATE_LIMIT", 0),

		ExcludedHosts: getEnvStringList("BLOG_EXCLUDED_HOSTS", []string{DefaultExcludedHost}),
		RedirectDelay: getEnvDuration("BLOG_REDIRECT_DELAY", 100*time.Millisecond),
		VerifyDelay:   getEnvDuration("BLOG_VERIFY_DELAY", 500*time.Millisecond),

		ConfigDir: configDir,

		GoogleClientID:    os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleRedirectURL: os.Getenv("GOOGLE_REDIRECT_URL"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogFile:   getEnv("LOG_FILE", defaultLogFile(configDir)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BLOG_API_URL must be an absolute URL, got %q", c.APIURL)
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"BLOG_REQUEST_TIMEOUT", c.RequestTimeout},
		{"BLOG_REDIRECT_DELAY", c.RedirectDelay},
		{"BLOG_VERIFY_DELAY", c.VerifyDelay},
	} {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("BLOG_RATE_LIMIT must not be negative, got %g", c.RateLimit)
	}
	return nil
}

// DefaultConfigDir returns the default config directory per the XDG Base Directory convention
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName)
}

func defaultLogFile(configDir string) string {
	if configDir == "" {
		return "-"
	}
	return filepath.Join(configDir, "debug.log")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvStringList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
