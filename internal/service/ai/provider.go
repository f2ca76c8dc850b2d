package ai

import (
	"context"
	"errors"
)

// Provider defines the interface for text-generation providers.
type Provider interface {
	// Test sends a test message and returns the response.
	Test(ctx context.Context) (string, error)
	// Name returns the provider name.
	Name() string
	// Complete generates a response without streaming.
	Complete(ctx context.Context, systemPrompt, content string) (string, error)
	// CompleteStream generates a response as an incremental token stream.
	// Returns two channels: one for text fragments, one for errors.
	// The text channel is closed when streaming is complete; each fragment
	// is a non-empty delta.
	CompleteStream(ctx context.Context, systemPrompt, content string) (<-chan string, <-chan error)
}

// Config holds the configuration for a provider.
type Config struct {
	Provider    string // openai, anthropic, compatible
	APIKey      string
	BaseURL     string // optional for openai, required for compatible
	Model       string
	Temperature float64 // sampling randomness
	MaxTokens   int64   // hard output cap
}

// ProviderType constants
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderCompatible = "compatible"
)

var (
	ErrInvalidProvider = errors.New("invalid provider")
	ErrMissingAPIKey   = errors.New("API key is required")
	ErrMissingBaseURL  = errors.New("base URL is required for compatible provider")
	ErrMissingModel    = errors.New("model is required")
)

// NewProvider creates a new provider based on the config.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		return nil, ErrMissingModel
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg)
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg)
	case ProviderCompatible:
		if cfg.BaseURL == "" {
			return nil, ErrMissingBaseURL
		}
		return NewCompatibleProvider(cfg)
	default:
		return nil, ErrInvalidProvider
	}
}
