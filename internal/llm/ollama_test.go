package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/intellecta/intellecta/internal/config"
)

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("stream should be false")
		}
		if req.KeepAlive != -1 {
			t.Errorf("keep_alive = %d, want -1", req.KeepAlive)
		}
		if req.Options.Temperature != 0.7 || req.Options.NumCtx != 4096 {
			t.Errorf("options not forwarded: %+v", req.Options)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != RoleSystem {
			t.Errorf("messages not forwarded: %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaChatMessage{Role: RoleAssistant, Content: "42"},
			Done:    true,
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "llama3.2:latest")
	out, err := c.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "what is the answer"},
	}, GenOptions{Temperature: 0.7, TopP: 0.9, MaxTokens: 1024, ContextWindow: 4096})
	if err != nil {
		t.Fatal(err)
	}
	if out != "42" {
		t.Errorf("got %q", out)
	}
}

func TestOllamaGenerateError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaChatResponse{Error: "model not loaded"})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "m")
	if _, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, GenOptions{}); err == nil {
		t.Error("expected error from ollama error field")
	}
}

func TestOllamaGenerateContextCancel(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewOllamaClient(srv.URL, "m")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Generate(ctx, []Message{{Role: RoleUser, Content: "x"}}, GenOptions{}); err == nil {
		t.Error("expected error on canceled context")
	}
}

func TestNewClient(t *testing.T) {
	if _, err := NewClient(config.GenerationConfig{Provider: "ollama", Model: "m"}); err != nil {
		t.Errorf("ollama: %v", err)
	}
	if _, err := NewClient(config.GenerationConfig{Provider: "openai"}); err == nil {
		t.Error("openai without key should error")
	}
	if _, err := NewClient(config.GenerationConfig{Provider: "bard"}); err == nil {
		t.Error("unknown provider should error")
	}
}
