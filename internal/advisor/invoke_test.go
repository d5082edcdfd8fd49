package advisor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor/internal/adapters/ai"
)

// mockProvider is a scriptable ChatProvider for pipeline tests.
// accepted lists the token parameter styles the fake model tolerates;
// everything else is rejected with a ParameterError, like a real provider
// that does not know the parameter name.
type mockProvider struct {
	mu       sync.Mutex
	accepted map[ai.TokenParamStyle]bool
	failWith error
	reply    func(req ai.ChatRequest) string
	handler  func(req ai.ChatRequest) (*ai.ChatResponse, error)
	requests []ai.ChatRequest
}

func acceptAll() map[ai.TokenParamStyle]bool {
	return map[ai.TokenParamStyle]bool{
		ai.TokenParamMaxOutputTokens:  true,
		ai.TokenParamMaxTokens:        true,
		ai.TokenParamGenerationConfig: true,
		ai.TokenParamInferenceParams:  true,
		ai.TokenParamNone:             true,
	}
}

func (m *mockProvider) Name() ai.ProviderName { return "mock" }

func (m *mockProvider) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if !m.accepted[req.TokenParam] {
		return nil, &ai.ParameterError{Provider: m.Name(), Style: req.TokenParam}
	}

	if m.handler != nil {
		return m.handler(req)
	}

	if m.failWith != nil {
		return nil, m.failWith
	}

	text := "ok"
	if m.reply != nil {
		text = m.reply(req)
	}

	return textResponse(text), nil
}

func (m *mockProvider) recorded() []ai.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.ChatRequest(nil), m.requests...)
}

func textResponse(text string) *ai.ChatResponse {
	return &ai.ChatResponse{
		Choices: []ai.Choice{{
			Message:      ai.Message{Role: ai.RoleAssistant, Content: text},
			FinishReason: ai.FinishReasonStop,
		}},
		Usage: ai.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	}
}

func newTestAgent(provider ai.ChatProvider) *Agent {
	return NewAgent("test_agent", "You are a test agent.", provider, "test-model", nil, 3)
}

func TestInvokeAgent_FirstStyleAccepted(t *testing.T) {
	provider := &mockProvider{accepted: acceptAll(), reply: func(ai.ChatRequest) string { return "analysis" }}

	outcome := InvokeAgent(context.Background(), newTestAgent(provider), "analyze AAPL", 2000)

	assert.False(t, outcome.Degraded)
	assert.Equal(t, "analysis", outcome.Text)
	assert.Equal(t, FailureNone, outcome.Kind)

	requests := provider.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, ai.TokenParamMaxOutputTokens, requests[0].TokenParam)
	assert.Equal(t, 2000, requests[0].MaxTokens)
}

func TestInvokeAgent_WalksStylesInOrder(t *testing.T) {
	provider := &mockProvider{
		accepted: map[ai.TokenParamStyle]bool{ai.TokenParamInferenceParams: true},
	}

	outcome := InvokeAgent(context.Background(), newTestAgent(provider), "analyze AAPL", 2000)

	assert.False(t, outcome.Degraded)
	assert.Equal(t, "ok", outcome.Text)

	requests := provider.recorded()
	require.Len(t, requests, 4)
	assert.Equal(t, ai.TokenParamMaxOutputTokens, requests[0].TokenParam)
	assert.Equal(t, ai.TokenParamMaxTokens, requests[1].TokenParam)
	assert.Equal(t, ai.TokenParamGenerationConfig, requests[2].TokenParam)
	assert.Equal(t, ai.TokenParamInferenceParams, requests[3].TokenParam)
}

func TestInvokeAgent_BareFallback(t *testing.T) {
	provider := &mockProvider{
		accepted: map[ai.TokenParamStyle]bool{ai.TokenParamNone: true},
	}

	outcome := InvokeAgent(context.Background(), newTestAgent(provider), "analyze AAPL", 2000)

	assert.False(t, outcome.Degraded)
	assert.Equal(t, "ok", outcome.Text)

	requests := provider.recorded()
	require.Len(t, requests, 5)
	last := requests[len(requests)-1]
	assert.Equal(t, ai.TokenParamNone, last.TokenParam)
	assert.Equal(t, 0, last.MaxTokens)
}

func TestInvokeAgent_SubstantiveErrorStopsRetries(t *testing.T) {
	provider := &mockProvider{
		accepted: acceptAll(),
		failWith: errors.New("upstream returned 500"),
	}

	outcome := InvokeAgent(context.Background(), newTestAgent(provider), "analyze AAPL", 2000)

	assert.True(t, outcome.Degraded)
	assert.Equal(t, FailureInvocation, outcome.Kind)
	assert.True(t, strings.HasPrefix(outcome.Text, "Agent invocation error:"), "got %q", outcome.Text)
	assert.Contains(t, outcome.Text, "upstream returned 500")

	// A substantive failure must not trigger further parameter style attempts.
	assert.Len(t, provider.recorded(), 1)
}

func TestInvokeAgent_AllStylesRejected(t *testing.T) {
	provider := &mockProvider{accepted: map[ai.TokenParamStyle]bool{}}

	outcome := InvokeAgent(context.Background(), newTestAgent(provider), "analyze AAPL", 2000)

	assert.True(t, outcome.Degraded)
	assert.Equal(t, FailureModelParameter, outcome.Kind)
	assert.True(t, strings.HasPrefix(outcome.Text, "Agent invocation error (no-kwargs):"), "got %q", outcome.Text)

	// Four keyed attempts plus the bare call.
	assert.Len(t, provider.recorded(), 5)
}

func TestInvokeAgent_DefaultsTokenCap(t *testing.T) {
	provider := &mockProvider{accepted: acceptAll()}

	InvokeAgent(context.Background(), newTestAgent(provider), "analyze AAPL", 0)

	requests := provider.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, DefaultTokenCap, requests[0].MaxTokens)
}
