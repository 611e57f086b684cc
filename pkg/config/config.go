// Package config loads and persists application configuration from a JSON
// file, with environment variable overrides for secrets.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the complete application configuration.
type Config struct {
	API      APIConfig      `json:"api"`
	Refresh  RefreshConfig  `json:"refresh"`
	Map      MapConfig      `json:"map"`
	Track    TrackConfig    `json:"track"`
	Database DatabaseConfig `json:"database"`
}

// APIConfig contains the flight data API connection settings.
type APIConfig struct {
	// BaseURL is the flight data API address (e.g., "https://api.example.com/state")
	BaseURL string `json:"base_url"`

	// APIKey authenticates requests; keep it in the environment, not the file
	APIKey string `json:"api_key,omitempty"`

	// TimeoutSeconds is the per-request HTTP timeout
	TimeoutSeconds int `json:"timeout_seconds"`

	// RequestsPerSecond limits the API call rate
	RequestsPerSecond float64 `json:"requests_per_second"`
}

// RefreshConfig controls how often remote data is re-fetched.
type RefreshConfig struct {
	// SnapshotIntervalSeconds is how often the visible area is refreshed
	SnapshotIntervalSeconds int `json:"snapshot_interval_seconds"`

	// StateIntervalSeconds is how often the selected aircraft's latest
	// state is refreshed while its details are open
	StateIntervalSeconds int `json:"state_interval_seconds"`

	// TrackDurationMinutes is how far back the history request reaches
	TrackDurationMinutes int `json:"track_duration_minutes"`

	// TrackLimit caps the number of history points per request
	TrackLimit int `json:"track_limit"`
}

// MapConfig contains the initial map view and animation settings.
type MapConfig struct {
	// South, West, North, East define the initial viewport bounds
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`

	// Zoom is the initial zoom level
	Zoom float64 `json:"zoom"`

	// AnimationThresholdZoom disables marker animation when zoomed out
	// further than this level
	AnimationThresholdZoom float64 `json:"animation_threshold_zoom"`

	// FrameRate is the animation frame rate in frames per second
	FrameRate int `json:"frame_rate"`

	// ShadowOffset draws marker shadows offset by this many cells, 0 disables
	ShadowOffset int `json:"shadow_offset"`

	// Style is the map style name
	Style string `json:"style"`
}

// TrackConfig controls track segmentation and reveal animation.
type TrackConfig struct {
	// GapThresholdSeconds is the maximum time between adjacent track points
	// that still renders as continuous flight
	GapThresholdSeconds int `json:"gap_threshold_seconds"`

	// RevealIntervalMillis is the delay between segment reveals when a
	// track first loads
	RevealIntervalMillis int `json:"reveal_interval_millis"`
}

// DatabaseConfig contains database connection settings for the collector.
type DatabaseConfig struct {
	// Host is the database server hostname
	Host string `json:"host"`

	// Port is the database server port
	Port int `json:"port"`

	// Database is the database name
	Database string `json:"database"`

	// Username for database authentication
	Username string `json:"username"`

	// Password for database authentication (should be loaded from environment)
	Password string `json:"password"`

	// SSLMode for PostgreSQL connections (disable, require, verify-ca, verify-full)
	SSLMode string `json:"ssl_mode"`

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int `json:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int `json:"max_idle_conns"`
}

// Load reads configuration from a JSON file.
// If the file doesn't exist, returns a default configuration.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	return &cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "http://localhost:8000",
			TimeoutSeconds:    10,
			RequestsPerSecond: 4.0,
		},
		Refresh: RefreshConfig{
			SnapshotIntervalSeconds: 10,
			StateIntervalSeconds:    10,
			TrackDurationMinutes:    120,
			TrackLimit:              500,
		},
		Map: MapConfig{
			// Netherlands and surroundings
			South:                  50.5,
			West:                   2.5,
			North:                  54.0,
			East:                   7.5,
			Zoom:                   8.0,
			AnimationThresholdZoom: 7.0,
			FrameRate:              30,
			ShadowOffset:           1,
			Style:                  "dark",
		},
		Track: TrackConfig{
			GapThresholdSeconds:  180,
			RevealIntervalMillis: 10,
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			Database:     "skytracker",
			Username:     "skytracker",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the
// config. This allows sensitive data like API keys and passwords to be kept
// out of config files.
func (c *Config) applyEnvironmentOverrides() {
	if baseURL := os.Getenv("SKYTRACKER_API_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if apiKey := os.Getenv("SKYTRACKER_API_KEY"); apiKey != "" {
		c.API.APIKey = apiKey
	}
	if dbPassword := os.Getenv("SKYTRACKER_DB_PASSWORD"); dbPassword != "" {
		c.Database.Password = dbPassword
	}
	if dbHost := os.Getenv("SKYTRACKER_DB_HOST"); dbHost != "" {
		c.Database.Host = dbHost
	}
}
