// Package config handles HiBuddy configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds all configuration
type Config struct {
	// Paths
	DataDir string `json:"data_dir"`

	// Timezone applied to every schedule computation
	Timezone string `json:"timezone"`

	// Server
	Server ServerConfig `json:"server"`

	// Services
	OpenAI OpenAIConfig `json:"openai"`
	Google GoogleConfig `json:"google"`

	// Narration behavior
	Narration NarrationConfig `json:"narration"`
}

// ServerConfig for HTTP server
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// OpenAIConfig for the schedule generator, menu extractor and TTS
type OpenAIConfig struct {
	APIKey        string `json:"api_key"`
	BaseURL       string `json:"base_url"`
	ScheduleModel string `json:"schedule_model"`
	VisionModel   string `json:"vision_model"`
	TTSModel      string `json:"tts_model"`
	TTSVoice      string `json:"tts_voice"`
}

// GoogleConfig for YouTube and Custom Search
type GoogleConfig struct {
	APIKey         string `json:"api_key"`
	SearchEngineID string `json:"search_engine_id"`
}

// NarrationConfig tunes the follow-along tick behavior
type NarrationConfig struct {
	TickSeconds      int `json:"tick_seconds"`
	PreNoticeMinutes int `json:"pre_notice_minutes"`
}

// SchedulePath returns where the current schedule document lives.
func (c *Config) SchedulePath() string {
	return filepath.Join(c.DataDir, "schedule_today.json")
}

// DatabasePath returns where the archive database lives.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "hibuddy.db")
}

// AssetsDir returns where downloaded images are stored.
func (c *Config) AssetsDir() string {
	return filepath.Join(c.DataDir, "assets", "images")
}

// Default returns default configuration
func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		DataDir:  filepath.Join(home, ".hibuddy"),
		Timezone: "Asia/Seoul",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		OpenAI: OpenAIConfig{
			APIKey:        os.Getenv("OPENAI_API_KEY"),
			BaseURL:       "https://api.openai.com/v1",
			ScheduleModel: "gpt-4o-mini",
			VisionModel:   "gpt-4o-mini",
			TTSModel:      "gpt-4o-mini-tts",
			TTSVoice:      "alloy",
		},
		Google: GoogleConfig{
			APIKey:         os.Getenv("GOOGLE_API_KEY"),
			SearchEngineID: os.Getenv("GOOGLE_CSE_ID"),
		},
		Narration: NarrationConfig{
			TickSeconds:      10,
			PreNoticeMinutes: 5,
		},
	}
}

// Load loads config from file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Override secrets and model choices from env if set
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL_SCHEDULE"); model != "" {
		cfg.OpenAI.ScheduleModel = model
	}
	if model := os.Getenv("OPENAI_MODEL_VISION"); model != "" {
		cfg.OpenAI.VisionModel = model
	}
	if model := os.Getenv("OPENAI_TTS_MODEL"); model != "" {
		cfg.OpenAI.TTSModel = model
	}
	if voice := os.Getenv("OPENAI_TTS_VOICE"); voice != "" {
		cfg.OpenAI.TTSVoice = voice
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg.Google.APIKey = key
	}
	if id := os.Getenv("GOOGLE_CSE_ID"); id != "" {
		cfg.Google.SearchEngineID = id
	}

	return cfg, nil
}

// Save saves config to file
func (c *Config) Save(path string) error {
	if path == "" {
		path = filepath.Join(c.DataDir, "config.json")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	// Don't save API keys to file
	safeCfg := *c
	safeCfg.OpenAI.APIKey = ""
	safeCfg.Google.APIKey = ""

	data, err := json.MarshalIndent(safeCfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
