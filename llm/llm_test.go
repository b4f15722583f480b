package llm

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fabfab/cvchat/config"
)

func TestNewClientOllamaDefaults(t *testing.T) {
	cfg := config.Config{
		LLM:        config.LLMConfig{Provider: config.ProviderOllama, Model: "llama3.1:8b"},
		OllamaHost: "http://localhost:11434",
	}

	client, err := NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("expected llm client, got error: %v", err)
	}
	if client == nil {
		t.Fatal("expected non-nil client")
	}
	if err := Close(client); err != nil {
		t.Fatalf("close ollama client: %v", err)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	for _, provider := range []string{config.ProviderGroq, config.ProviderOpenAI, config.ProviderGemini} {
		cfg := config.Config{LLM: config.LLMConfig{Provider: provider}}
		if _, err := NewClient(context.Background(), cfg); err == nil {
			t.Errorf("expected error for %s without api key", provider)
		}
	}
}

func TestNewClientUnknownProvider(t *testing.T) {
	cfg := config.Config{LLM: config.LLMConfig{Provider: "parrot"}}
	if _, err := NewClient(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestOpenAIClientGenerate(t *testing.T) {
	var captured struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"<think>hm</think>Hello"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(Options{Provider: config.ProviderGroq, APIKey: "test-key", BaseURL: server.URL})
	answer, err := client.Generate(context.Background(), Request{
		Model:       "deepseek-r1-distill-llama-70b",
		Temperature: 0.7,
		Messages: []Message{
			{Role: RoleSystem, Content: "instructions"},
			{Role: RoleSystem, Content: "CV Content: Jane"},
			{Role: RoleUser, Content: "hi"},
		},
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if answer != "<think>hm</think>Hello" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if captured.Model != "deepseek-r1-distill-llama-70b" {
		t.Errorf("unexpected model %q", captured.Model)
	}
	if math.Abs(captured.Temperature-0.7) > 1e-6 {
		t.Errorf("unexpected temperature %v", captured.Temperature)
	}
	if len(captured.Messages) != 3 || captured.Messages[1].Content != "CV Content: Jane" || captured.Messages[2].Role != RoleUser {
		t.Errorf("unexpected messages %+v", captured.Messages)
	}
}

func TestOpenAIClientProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(Options{Provider: config.ProviderGroq, APIKey: "bad", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), Request{Model: "m", Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if err == nil {
		t.Fatal("expected error for unauthorized response")
	}
	if !strings.Contains(err.Error(), "groq") {
		t.Errorf("expected provider name in error, got %v", err)
	}
}

func TestOpenAIClientNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-2","choices":[]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(Options{APIKey: "k", BaseURL: server.URL})
	if _, err := client.Generate(context.Background(), Request{Model: "m", Messages: []Message{{Role: RoleUser, Content: "hi"}}}); err == nil {
		t.Fatal("expected error when no choices are returned")
	}
}

func TestWireTemperature(t *testing.T) {
	if got := wireTemperature(0); got <= 0 {
		t.Fatalf("expected positive wire temperature for zero, got %v", got)
	}
	if got := wireTemperature(0.5); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
}

func TestOllamaClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("expected non-streaming request")
		}
		if req.Options.Temperature != 0.2 {
			t.Errorf("unexpected temperature %v", req.Options.Temperature)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "Hello there!"},
			"done":    true,
		})
	}))
	defer server.Close()

	client := NewOllamaClient(Options{OllamaHost: server.URL + "/"})
	resp, err := client.Generate(context.Background(), Request{
		Model:       "llama3.1:8b",
		Temperature: 0.2,
		Messages:    []Message{{Role: RoleUser, Content: "Hi"}},
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if resp != "Hello there!" {
		t.Errorf("unexpected response: %s", resp)
	}
}

func TestOllamaClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewOllamaClient(Options{OllamaHost: server.URL})
	_, err := client.Generate(context.Background(), Request{Model: "missing", Messages: []Message{{Role: RoleUser, Content: "Hi"}}})
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("expected body in error, got %v", err)
	}
}

func TestOllamaClientUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewOllamaClient(Options{OllamaHost: url})
	if _, err := client.Generate(context.Background(), Request{Model: "m", Messages: []Message{{Role: RoleUser, Content: "Hi"}}}); err == nil {
		t.Fatal("expected error for unreachable host")
	}
}
