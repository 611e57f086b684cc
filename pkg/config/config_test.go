package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDefaultConfig verifies that DefaultConfig returns valid defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// API defaults
	if cfg.API.TimeoutSeconds != 10 {
		t.Errorf("Expected default timeout 10s, got %d", cfg.API.TimeoutSeconds)
	}
	if cfg.API.RequestsPerSecond != 4.0 {
		t.Errorf("Expected 4 requests/second, got %f", cfg.API.RequestsPerSecond)
	}

	// Refresh defaults
	if cfg.Refresh.SnapshotIntervalSeconds != 10 {
		t.Errorf("Expected snapshot interval 10s, got %d", cfg.Refresh.SnapshotIntervalSeconds)
	}

	// Map defaults
	if cfg.Map.South >= cfg.Map.North {
		t.Error("Expected default bounds with south below north")
	}
	if cfg.Map.West >= cfg.Map.East {
		t.Error("Expected default bounds with west left of east")
	}
	if cfg.Map.AnimationThresholdZoom != 7.0 {
		t.Errorf("Expected animation threshold zoom 7.0, got %f", cfg.Map.AnimationThresholdZoom)
	}
	if cfg.Map.FrameRate != 30 {
		t.Errorf("Expected frame rate 30, got %d", cfg.Map.FrameRate)
	}

	// Track defaults
	if cfg.Track.GapThresholdSeconds != 180 {
		t.Errorf("Expected gap threshold 180s, got %d", cfg.Track.GapThresholdSeconds)
	}
	if cfg.Track.RevealIntervalMillis != 10 {
		t.Errorf("Expected reveal interval 10ms, got %d", cfg.Track.RevealIntervalMillis)
	}

	// Database defaults
	if cfg.Database.Port != 5432 {
		t.Errorf("Expected default postgres port 5432, got %d", cfg.Database.Port)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Expected max open conns 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("Expected max idle conns 5, got %d", cfg.Database.MaxIdleConns)
	}
}

// TestLoadNonExistentFile tests that Load returns default config when file doesn't exist.
func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("Expected no error for non-existent file, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected default config, got nil")
	}
	if cfg.Track.GapThresholdSeconds != 180 {
		t.Error("Did not get default config for non-existent file")
	}
}

// TestLoadValidConfig tests loading a valid configuration file.
func TestLoadValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.json")

	testConfig := &Config{
		API: APIConfig{
			BaseURL:           "https://flights.example.com",
			TimeoutSeconds:    5,
			RequestsPerSecond: 2.0,
		},
		Refresh: RefreshConfig{
			SnapshotIntervalSeconds: 20,
			StateIntervalSeconds:    15,
			TrackDurationMinutes:    60,
			TrackLimit:              200,
		},
		Map: MapConfig{
			South: 40.0, West: -5.0, North: 55.0, East: 10.0,
			Zoom:                   6.0,
			AnimationThresholdZoom: 5.5,
			FrameRate:              20,
		},
		Track: TrackConfig{
			GapThresholdSeconds:  300,
			RevealIntervalMillis: 25,
		},
		Database: DatabaseConfig{
			Host:     "db.example.com",
			Port:     5433,
			Database: "testdb",
			Username: "testuser",
		},
	}

	data, err := json.MarshalIndent(testConfig, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal test config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.API.BaseURL != "https://flights.example.com" {
		t.Errorf("Expected flights.example.com, got %s", cfg.API.BaseURL)
	}
	if cfg.Refresh.SnapshotIntervalSeconds != 20 {
		t.Errorf("Expected snapshot interval 20s, got %d", cfg.Refresh.SnapshotIntervalSeconds)
	}
	if cfg.Track.GapThresholdSeconds != 300 {
		t.Errorf("Expected gap threshold 300s, got %d", cfg.Track.GapThresholdSeconds)
	}
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("Expected db.example.com, got %s", cfg.Database.Host)
	}
}

// TestLoadInvalidJSON tests error handling for malformed JSON.
func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.json")

	if err := os.WriteFile(configPath, []byte("{ invalid json }"), 0644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Expected error for invalid JSON, got nil")
	}
	if err != nil && !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Expected parse error, got: %v", err)
	}
}

// TestSaveConfig tests saving configuration to file.
func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "saved-config.json")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://saved.example.com"
	cfg.Map.Zoom = 9.5

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.API.BaseURL != "https://saved.example.com" {
		t.Errorf("Expected saved base URL, got %s", loaded.API.BaseURL)
	}
	if loaded.Map.Zoom != 9.5 {
		t.Errorf("Expected zoom 9.5, got %f", loaded.Map.Zoom)
	}
}

// TestSaveConfigCreatesDirectory tests that Save creates missing directories.
func TestSaveConfigCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "dir", "config.json")

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config with nested directory: %v", err)
	}

	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("Directory was not created")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}
}

// TestEnvironmentOverrides tests environment variable overrides.
func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SKYTRACKER_API_URL", "https://env.example.com")
	t.Setenv("SKYTRACKER_API_KEY", "env-api-key")
	t.Setenv("SKYTRACKER_DB_PASSWORD", "env-password")
	t.Setenv("SKYTRACKER_DB_HOST", "env-db-host")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	testCfg := DefaultConfig()
	testCfg.API.BaseURL = "https://file.example.com"
	testCfg.Database.Password = "original-password"

	data, _ := json.Marshal(testCfg)
	os.WriteFile(configPath, data, 0644)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("Expected API URL from env, got %s", cfg.API.BaseURL)
	}
	if cfg.API.APIKey != "env-api-key" {
		t.Errorf("Expected API key from env, got %s", cfg.API.APIKey)
	}
	if cfg.Database.Password != "env-password" {
		t.Errorf("Expected env-password from env, got %s", cfg.Database.Password)
	}
	if cfg.Database.Host != "env-db-host" {
		t.Errorf("Expected env-db-host from env, got %s", cfg.Database.Host)
	}
}

// TestConfigRoundTrip tests saving and loading config preserves data.
func TestConfigRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "roundtrip.json")

	original := DefaultConfig()
	original.Map.South = 48.1234
	original.Map.North = 52.5678
	original.Refresh.TrackLimit = 1000
	original.Track.GapThresholdSeconds = 240

	if err := original.Save(configPath); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	if loaded.Map.South != original.Map.South {
		t.Error("Bounds not preserved in round trip")
	}
	if loaded.Refresh.TrackLimit != original.Refresh.TrackLimit {
		t.Error("Track limit not preserved in round trip")
	}
	if loaded.Track.GapThresholdSeconds != original.Track.GapThresholdSeconds {
		t.Error("Gap threshold not preserved in round trip")
	}
}
