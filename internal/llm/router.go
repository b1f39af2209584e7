package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hibuddy/hibuddy/internal/core"
)

// Provider identifies which backend answered a request
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
)

// RouterConfig configures the chat router
type RouterConfig struct {
	OpenAI *Client
	Ollama *OllamaClient

	// EnableFallback retries against the local model when the cloud
	// API fails
	EnableFallback bool
}

// Router prefers the cloud model and falls back to the local one.
// The schedule generator must keep working on a home network with no
// internet, just with a weaker model.
type Router struct {
	openai         *Client
	ollama         *OllamaClient
	enableFallback bool

	mu    sync.RWMutex
	stats RouterStats
}

// RouterStats tracks router usage
type RouterStats struct {
	OpenAIRequests   int64
	OllamaRequests   int64
	FallbackCount    int64
	AverageLatencyMs int64
}

// NewRouter creates a new chat router
func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		openai:         cfg.OpenAI,
		ollama:         cfg.Ollama,
		enableFallback: cfg.EnableFallback,
	}
}

// Chat sends a plain chat request to the best available provider.
func (r *Router) Chat(ctx context.Context, system, prompt string) (string, error) {
	return r.route(ctx, system, prompt, false)
}

// ChatJSON sends a JSON-mode chat request to the best available provider.
func (r *Router) ChatJSON(ctx context.Context, system, prompt string) (string, error) {
	return r.route(ctx, system, prompt, true)
}

func (r *Router) route(ctx context.Context, system, prompt string, wantJSON bool) (string, error) {
	start := time.Now()

	if r.openai != nil && r.openai.IsConfigured() {
		content, err := r.ask(ctx, ProviderOpenAI, system, prompt, wantJSON)
		if err == nil {
			r.record(ProviderOpenAI, time.Since(start).Milliseconds(), false)
			return content, nil
		}
		if !r.enableFallback || r.ollama == nil {
			return "", err
		}
		content, fbErr := r.ask(ctx, ProviderOllama, system, prompt, wantJSON)
		if fbErr != nil {
			return "", fmt.Errorf("all providers failed: %w", err)
		}
		r.record(ProviderOllama, time.Since(start).Milliseconds(), true)
		return content, nil
	}

	if r.ollama != nil {
		content, err := r.ask(ctx, ProviderOllama, system, prompt, wantJSON)
		if err != nil {
			return "", err
		}
		r.record(ProviderOllama, time.Since(start).Milliseconds(), false)
		return content, nil
	}

	return "", fmt.Errorf("%w: no provider configured", core.ErrLLMUnavailable)
}

func (r *Router) ask(ctx context.Context, p Provider, system, prompt string, wantJSON bool) (string, error) {
	switch p {
	case ProviderOpenAI:
		if wantJSON {
			return r.openai.ChatJSON(ctx, system, prompt)
		}
		return r.openai.Chat(ctx, system, prompt)
	case ProviderOllama:
		if wantJSON {
			return r.ollama.ChatJSON(ctx, system, prompt)
		}
		return r.ollama.Chat(ctx, system, prompt)
	default:
		return "", fmt.Errorf("unknown provider: %s", p)
	}
}

func (r *Router) record(p Provider, latencyMs int64, wasFallback bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch p {
	case ProviderOpenAI:
		r.stats.OpenAIRequests++
	case ProviderOllama:
		r.stats.OllamaRequests++
	}
	if wasFallback {
		r.stats.FallbackCount++
	}

	total := r.stats.OpenAIRequests + r.stats.OllamaRequests
	r.stats.AverageLatencyMs = (r.stats.AverageLatencyMs*(total-1) + latencyMs) / total
}

// GetStats returns router statistics
func (r *Router) GetStats() RouterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// HealthCheck reports which providers are usable right now
func (r *Router) HealthCheck(ctx context.Context) map[Provider]bool {
	health := make(map[Provider]bool)

	if r.openai != nil {
		health[ProviderOpenAI] = r.openai.IsConfigured()
	}
	if r.ollama != nil {
		health[ProviderOllama] = r.ollama.IsConfigured()
	}

	return health
}
