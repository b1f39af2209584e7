package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// Default Config Tests
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify DataDir is set
	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}

	if cfg.Timezone != "Asia/Seoul" {
		t.Errorf("Timezone = %q, want Asia/Seoul", cfg.Timezone)
	}

	// Verify Server defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "localhost")
	}

	// Verify OpenAI defaults
	if cfg.OpenAI.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("OpenAI.BaseURL = %q", cfg.OpenAI.BaseURL)
	}
	if cfg.OpenAI.TTSModel != "gpt-4o-mini-tts" {
		t.Errorf("OpenAI.TTSModel = %q", cfg.OpenAI.TTSModel)
	}

	// Verify narration defaults
	if cfg.Narration.TickSeconds != 10 {
		t.Errorf("Narration.TickSeconds = %d, want 10", cfg.Narration.TickSeconds)
	}
	if cfg.Narration.PreNoticeMinutes != 5 {
		t.Errorf("Narration.PreNoticeMinutes = %d, want 5", cfg.Narration.PreNoticeMinutes)
	}
}

func TestDefault_DataDirContainsHibuddy(t *testing.T) {
	cfg := Default()

	if !filepath.IsAbs(cfg.DataDir) {
		t.Error("DataDir should be an absolute path")
	}

	if filepath.Base(cfg.DataDir) != ".hibuddy" {
		t.Errorf("DataDir should end with .hibuddy, got %q", filepath.Base(cfg.DataDir))
	}
}

func TestDefault_OpenAIKeyFromEnv(t *testing.T) {
	testKey := "test-api-key-12345"
	os.Setenv("OPENAI_API_KEY", testKey)
	defer os.Unsetenv("OPENAI_API_KEY")

	cfg := Default()

	if cfg.OpenAI.APIKey != testKey {
		t.Errorf("OpenAI.APIKey = %q, want %q", cfg.OpenAI.APIKey, testKey)
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/data"

	if got := cfg.SchedulePath(); got != filepath.Join("/data", "schedule_today.json") {
		t.Errorf("SchedulePath() = %q", got)
	}
	if got := cfg.DatabasePath(); got != filepath.Join("/data", "hibuddy.db") {
		t.Errorf("DatabasePath() = %q", got)
	}
	if got := cfg.AssetsDir(); got != filepath.Join("/data", "assets", "images") {
		t.Errorf("AssetsDir() = %q", got)
	}
}

// =============================================================================
// Load Config Tests
// =============================================================================

func TestLoad_NonExistentFile(t *testing.T) {
	// Load from non-existent file should return defaults
	cfg, err := Load("/non/existent/path/config.json")

	if err != nil {
		t.Fatalf("Load() error = %v, want nil for non-existent file", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080 (default)", cfg.Server.Port)
	}
}

func TestLoad_ValidConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	testConfig := Config{
		DataDir:  tmpDir,
		Timezone: "UTC",
		Server: ServerConfig{
			Port: 9090,
			Host: "0.0.0.0",
		},
		OpenAI: OpenAIConfig{
			ScheduleModel: "gpt-4o",
		},
		Google: GoogleConfig{
			SearchEngineID: "engine-42",
		},
		Narration: NarrationConfig{
			TickSeconds:      30,
			PreNoticeMinutes: 10,
		},
	}

	data, err := json.Marshal(testConfig)
	if err != nil {
		t.Fatalf("failed to marshal test config: %v", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	os.Unsetenv("OPENAI_API_KEY")
	os.Unsetenv("GOOGLE_API_KEY")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", cfg.Timezone)
	}
	if cfg.OpenAI.ScheduleModel != "gpt-4o" {
		t.Errorf("OpenAI.ScheduleModel = %q", cfg.OpenAI.ScheduleModel)
	}
	if cfg.Google.SearchEngineID != "engine-42" {
		t.Errorf("Google.SearchEngineID = %q", cfg.Google.SearchEngineID)
	}
	if cfg.Narration.PreNoticeMinutes != 10 {
		t.Errorf("Narration.PreNoticeMinutes = %d", cfg.Narration.PreNoticeMinutes)
	}
}

func TestLoad_EnvOverridesFileAPIKey(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	testConfig := map[string]interface{}{
		"openai": map[string]string{
			"api_key":        "file-key",
			"schedule_model": "gpt-4o-mini",
		},
	}

	data, _ := json.Marshal(testConfig)
	os.WriteFile(configPath, data, 0644)

	envKey := "env-api-key-override"
	os.Setenv("OPENAI_API_KEY", envKey)
	defer os.Unsetenv("OPENAI_API_KEY")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OpenAI.APIKey != envKey {
		t.Errorf("OpenAI.APIKey = %q, want %q (env override)", cfg.OpenAI.APIKey, envKey)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	os.WriteFile(configPath, []byte("{ invalid json }"), 0644)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() should return error for invalid JSON")
	}
}

func TestLoad_PartialConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	// Only override server port
	partialConfig := map[string]interface{}{
		"server": map[string]interface{}{
			"port": 3000,
		},
	}

	data, _ := json.Marshal(partialConfig)
	os.WriteFile(configPath, data, 0644)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}

	// Fields missing from the file keep their defaults
	if cfg.Timezone != "Asia/Seoul" {
		t.Errorf("Timezone = %q, want the default", cfg.Timezone)
	}
}

// =============================================================================
// Save Config Tests
// =============================================================================

func TestSave_CreatesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.json")

	cfg := Default()
	cfg.DataDir = tmpDir
	cfg.Server.Port = 9999

	err := cfg.Save(configPath)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("failed to unmarshal saved config: %v", err)
	}

	if loaded.Server.Port != 9999 {
		t.Errorf("saved Server.Port = %d, want 9999", loaded.Server.Port)
	}
}

func TestSave_DoesNotSaveAPIKeys(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	cfg := Default()
	cfg.OpenAI.APIKey = "super-secret-key"
	cfg.Google.APIKey = "another-secret"

	err := cfg.Save(configPath)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, _ := os.ReadFile(configPath)

	if strings.Contains(string(data), "super-secret-key") || strings.Contains(string(data), "another-secret") {
		t.Error("API keys should not be saved to file")
	}

	// Original config should still have the keys
	if cfg.OpenAI.APIKey != "super-secret-key" {
		t.Errorf("original config API key was modified: got %q", cfg.OpenAI.APIKey)
	}
}

func TestSave_FilePermissions(t *testing.T) {
	if os.Getenv("OS") == "Windows_NT" {
		t.Skip("Skipping permission test on Windows")
	}

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	cfg := Default()
	cfg.Save(configPath)

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("failed to stat config file: %v", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}

// =============================================================================
// Integration Tests
// =============================================================================

func TestLoadAndSave_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	original := Default()
	original.DataDir = tmpDir
	original.Server.Port = 5000
	original.Narration.TickSeconds = 15

	if err := original.Save(configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Compare (except API keys which aren't saved)
	if loaded.Server.Port != original.Server.Port {
		t.Errorf("loaded Server.Port = %d, want %d", loaded.Server.Port, original.Server.Port)
	}
	if loaded.Narration.TickSeconds != original.Narration.TickSeconds {
		t.Errorf("loaded Narration.TickSeconds = %d, want %d", loaded.Narration.TickSeconds, original.Narration.TickSeconds)
	}
}
