package ai

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

const deepseekAPIURL = "https://api.deepseek.com/v1/chat/completions"

// Ensure DeepSeekProvider implements ChatProvider
var _ ChatProvider = (*DeepSeekProvider)(nil)

// DeepSeekProvider implements the DeepSeek integration.
// DeepSeek is wire-compatible with the OpenAI chat completions API.
type DeepSeekProvider struct {
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewDeepSeekProvider creates a new DeepSeek provider.
func NewDeepSeekProvider(apiKey string, timeout time.Duration, limiter *rate.Limiter) *DeepSeekProvider {
	return &DeepSeekProvider{apiKey: apiKey, timeout: timeout, limiter: limiter}
}

// Name returns provider name.
func (p *DeepSeekProvider) Name() ProviderName {
	return ProviderNameDeepSeek
}

// Chat sends a chat completion request to the DeepSeek API.
func (p *DeepSeekProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return openAICompatibleChat(ctx, p.Name(), deepseekAPIURL, p.apiKey, p.timeout, p.limiter, req)
}
