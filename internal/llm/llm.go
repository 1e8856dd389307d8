// Package llm abstracts chat-completion providers for answer generation.
package llm

import (
	"context"
	"fmt"

	"github.com/intellecta/intellecta/internal/config"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat prompt.
type Message struct {
	Role    string
	Content string
}

// GenOptions tunes a single generation call. Zero values fall back to the
// provider's defaults.
type GenOptions struct {
	Temperature   float32
	TopP          float32
	MaxTokens     int
	ContextWindow int
}

// Client generates a completion for a chat prompt.
type Client interface {
	Generate(ctx context.Context, messages []Message, opts GenOptions) (string, error)
	Model() string
}

// NewClient creates the configured generation client.
func NewClient(cfg config.GenerationConfig) (Client, error) {
	switch cfg.Provider {
	case "ollama", "":
		return NewOllamaClient(cfg.OllamaHost, cfg.Model), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but no API key configured")
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}
