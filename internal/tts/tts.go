// Package tts turns narration text into speech through the OpenAI
// audio endpoint. The follow-along screen reads every narration aloud;
// a synthesis failure means silence, never a blocked tick.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hibuddy/hibuddy/internal/core"
)

// Config for the speech client
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Voice   string
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini-tts",
		Voice:   "alloy",
		Timeout: 60 * time.Second,
	}
}

// Client handles OpenAI speech synthesis calls
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	voice      string
	httpClient *http.Client
}

// NewClient creates a speech client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini-tts"
	}
	if cfg.Voice == "" {
		cfg.Voice = "alloy"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		voice:   cfg.Voice,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type speechRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

// Synthesize converts text to mp3 bytes. Empty text returns nil bytes
// and no error.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	body, err := json.Marshal(speechRequest{
		Model: c.model,
		Voice: c.voice,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", core.ErrSynthesisFailed, resp.StatusCode, string(msg))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSynthesisFailed, err)
	}
	return audio, nil
}

// SynthesizeLines joins narration lines with pauses in between and
// speaks them as one clip.
func (c *Client) SynthesizeLines(ctx context.Context, lines []string) ([]byte, error) {
	var kept []string
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			kept = append(kept, s)
		}
	}
	return c.Synthesize(ctx, strings.Join(kept, " "))
}

// IsConfigured checks if API key is set
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}
