// Package config loads finadvisor configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Config holds all client configuration values.
type Config struct {
	// Backend
	APIURL         string
	RequestTimeout time.Duration

	// Local session persistence
	SessionDBPath string

	// Logging
	Env      string
	LogLevel zapcore.Level
}

// Load reads configuration from .env (if present) and environment variables.
func Load() (*Config, error) {
	// It's okay if .env doesn't exist, we'll use defaults or environment variables
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:        strings.TrimRight(getEnv("FINADVISOR_API_URL", "http://localhost:8000"), "/"),
		SessionDBPath: getEnv("FINADVISOR_SESSION_DB", defaultSessionPath()),
		Env:           getEnv("ENV", "development"),
	}

	level, err := parseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	timeout, err := parseTimeout(os.Getenv("REQUEST_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = timeout

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid FINADVISOR_API_URL %q: %w", c.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid FINADVISOR_API_URL %q: scheme must be http or https", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid FINADVISOR_API_URL %q: missing host", c.APIURL)
	}
	if c.SessionDBPath == "" {
		return fmt.Errorf("FINADVISOR_SESSION_DB must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", c.RequestTimeout)
	}
	return nil
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "finadvisor-session.db"
	}
	return filepath.Join(home, ".finadvisor", "session.db")
}

func parseLogLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.WarnLevel, nil
	}
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: must be debug, info, warn, or error", s)
	}
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", d)
	}
	return d, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
