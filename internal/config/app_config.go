package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// Port is the HTTP server port. Defaults to 8790.
	Port int `envconfig:"PORT" default:"8790"`

	// DataDir is the root data directory. Defaults to ~/.hyttevakt.
	DataDir string `envconfig:"HYTTEVAKT_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// CabinsFile is the path to the watched-cabins YAML file.
	// Defaults to <DataDir>/cabins.yaml when empty.
	CabinsFile string `envconfig:"HYTTEVAKT_CABINS_FILE"`

	// CheckIntervalMinutes is how long after a completed cycle the next one
	// is scheduled. The original watcher checked hourly.
	CheckIntervalMinutes int `envconfig:"HYTTEVAKT_CHECK_INTERVAL_MINUTES" default:"60"`

	// KeepLast bounds how many snapshots are retained per cabin.
	KeepLast int `envconfig:"HYTTEVAKT_KEEP_LAST" default:"30"`

	// FetchConcurrency bounds how many cabins are checked in parallel
	// within one cycle.
	FetchConcurrency int `envconfig:"HYTTEVAKT_FETCH_CONCURRENCY" default:"3"`

	// BookingAPIBaseURL overrides the DNT booking API endpoint, mainly for tests.
	BookingAPIBaseURL string `envconfig:"HYTTEVAKT_BOOKING_API_URL"`
}

// Load reads AppConfig from environment variables using envconfig.
// DataDir defaults to ~/.hyttevakt if not set.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".hyttevakt")
	}
	if c.CabinsFile == "" {
		c.CabinsFile = filepath.Join(c.DataDir, "cabins.yaml")
	}
	return &c, nil
}

// CheckInterval returns the configured cycle interval as a duration.
func (c *AppConfig) CheckInterval() time.Duration {
	minutes := c.CheckIntervalMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogDir returns the path to the log directory (~/.hyttevakt/logs).
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DBPath returns the path to the SQLite history database.
func (c *AppConfig) DBPath() string {
	return filepath.Join(c.DataDir, "hyttevakt.db")
}

// NotificationsFile returns the path to the notification settings YAML file.
func (c *AppConfig) NotificationsFile() string {
	return filepath.Join(c.DataDir, "notifications.yaml")
}
