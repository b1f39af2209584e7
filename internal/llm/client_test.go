package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// =============================================================================
// Client Tests (OpenAI)
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, "https://api.openai.com/v1")
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want %q", cfg.Model, "gpt-4o-mini")
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, 60*time.Second)
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantURL   string
		wantModel string
	}{
		{
			name:      "default values",
			cfg:       Config{APIKey: "test-key"},
			wantURL:   "https://api.openai.com/v1",
			wantModel: "gpt-4o-mini",
		},
		{
			name: "custom values",
			cfg: Config{
				APIKey:  "test-key",
				BaseURL: "https://custom.api.com/v1",
				Model:   "gpt-4o",
			},
			wantURL:   "https://custom.api.com/v1",
			wantModel: "gpt-4o",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.cfg)
			if c.baseURL != tt.wantURL {
				t.Errorf("baseURL = %q, want %q", c.baseURL, tt.wantURL)
			}
			if c.model != tt.wantModel {
				t.Errorf("model = %q, want %q", c.model, tt.wantModel)
			}
		})
	}
}

func TestIsConfigured(t *testing.T) {
	if NewClient(Config{}).IsConfigured() {
		t.Error("client without API key should not be configured")
	}
	if !NewClient(Config{APIKey: "k"}).IsConfigured() {
		t.Error("client with API key should be configured")
	}
}

// chatBody builds a minimal chat completions response with one choice.
func chatBody(content string) string {
	quoted, _ := json.Marshal(content)
	return fmt.Sprintf(`{"choices":[{"index":0,"message":{"role":"assistant","content":%s},"finish_reason":"stop"}]}`, quoted)
}

func TestChat(t *testing.T) {
	var gotAuth string
	var gotReq ChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(w, chatBody("hello there"))
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
	got, err := c.Chat(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got != "hello there" {
		t.Errorf("Chat() = %q", got)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestChatJSONSetsResponseFormat(t *testing.T) {
	var gotReq ChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(w, chatBody(`{"ok":true}`))
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
	got, err := c.ChatJSON(context.Background(), "sys", "make json")
	if err != nil {
		t.Fatalf("ChatJSON() error = %v", err)
	}
	if got != `{"ok":true}` {
		t.Errorf("ChatJSON() = %q", got)
	}
	if gotReq.ResponseFormat == nil || gotReq.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v, want json_object", gotReq.ResponseFormat)
	}
}

func TestChatWithImage(t *testing.T) {
	var raw map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		fmt.Fprint(w, chatBody("85"))
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
	got, err := c.ChatWithImage(context.Background(), "score food photos", "rate this", "https://img.example/1.jpg")
	if err != nil {
		t.Fatalf("ChatWithImage() error = %v", err)
	}
	if got != "85" {
		t.Errorf("ChatWithImage() = %q", got)
	}

	msgs := raw["messages"].([]interface{})
	user := msgs[1].(map[string]interface{})
	parts := user["content"].([]interface{})
	if len(parts) != 2 {
		t.Fatalf("content parts = %d, want 2", len(parts))
	}
	img := parts[1].(map[string]interface{})
	if img["type"] != "image_url" {
		t.Errorf("second part type = %v", img["type"])
	}
}

func TestCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "bad", BaseURL: server.URL})
	_, err := c.Chat(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestChatEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	if _, err := c.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestCompleteContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server's background read can observe the
		// client disconnect and cancel r.Context(); otherwise Close hangs.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := c.Chat(ctx, "s", "u"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
