package ai

import (
	"strings"

	"golang.org/x/time/rate"

	"advisor/internal/adapters/config"
	"advisor/pkg/errors"
)

// BuildRegistry initializes a ProviderRegistry with all providers that have
// an API key configured. Each provider gets its own request pacer so a burst
// of specialist calls cannot trip provider-side rate limits.
func BuildRegistry(cfg config.AIConfig) (*ProviderRegistry, error) {
	registry := NewProviderRegistry()

	newLimiter := func() *rate.Limiter {
		if cfg.ReqPerMinute <= 0 {
			return nil
		}
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		return rate.NewLimiter(rate.Limit(cfg.ReqPerMinute/60.0), burst)
	}

	if cfg.ClaudeKey != "" {
		if err := registry.Register(NewClaudeProvider(cfg.ClaudeKey, cfg.RequestTimeout, newLimiter())); err != nil {
			return nil, err
		}
	}

	if cfg.OpenAIKey != "" {
		if err := registry.Register(NewOpenAIProvider(cfg.OpenAIKey, cfg.RequestTimeout, newLimiter())); err != nil {
			return nil, err
		}
	}

	if cfg.DeepSeekKey != "" {
		if err := registry.Register(NewDeepSeekProvider(cfg.DeepSeekKey, cfg.RequestTimeout, newLimiter())); err != nil {
			return nil, err
		}
	}

	if len(registry.List()) == 0 {
		return nil, errors.ErrUnavailable
	}

	return registry, nil
}

// NormalizeProviderName makes provider lookup more forgiving.
func NormalizeProviderName(name string) ProviderName {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "claude", "anthropic":
		return ProviderNameAnthropic
	case "openai", "gpt":
		return ProviderNameOpenAI
	case "deepseek":
		return ProviderNameDeepSeek
	default:
		return ProviderName(normalized)
	}
}
