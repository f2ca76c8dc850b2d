package ai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// CompatibleProvider implements Provider for OpenAI-compatible APIs.
// This supports services like OpenRouter, Azure OpenAI, Ollama, etc.
type CompatibleProvider struct {
	inner *OpenAIProvider
}

// NewCompatibleProvider creates a new OpenAI-compatible provider.
func NewCompatibleProvider(cfg Config) (*CompatibleProvider, error) {
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	)
	return &CompatibleProvider{
		inner: &OpenAIProvider{
			client:      client,
			model:       cfg.Model,
			temperature: cfg.Temperature,
			maxTokens:   cfg.MaxTokens,
		},
	}, nil
}

// Test sends a test message and returns the response.
func (p *CompatibleProvider) Test(ctx context.Context) (string, error) {
	return p.inner.Test(ctx)
}

// Name returns the provider name.
func (p *CompatibleProvider) Name() string {
	return ProviderCompatible
}

// Complete generates a response without streaming.
func (p *CompatibleProvider) Complete(ctx context.Context, systemPrompt, content string) (string, error) {
	return p.inner.Complete(ctx, systemPrompt, content)
}

// CompleteStream generates a response as an incremental token stream.
func (p *CompatibleProvider) CompleteStream(ctx context.Context, systemPrompt, content string) (<-chan string, <-chan error) {
	return p.inner.CompleteStream(ctx, systemPrompt, content)
}
