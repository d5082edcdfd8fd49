package advisor

import (
	"context"
	"fmt"

	"advisor/internal/adapters/ai"
	"advisor/pkg/logger"
)

// DefaultTokenCap is the conservative per-agent-call response budget.
const DefaultTokenCap = 2000

// InvokeAgent calls an agent with a token cap and robust error handling.
//
// Providers differ in which token-budget parameter shape they accept, so
// the keyed styles are tried in descending likelihood order; a
// shape-mismatch rejection advances to the next style, while any other
// failure stops and is reported as text. If every keyed style is rejected,
// one last bare call is made with no token parameter at all.
//
// InvokeAgent never fails upward: the result is always an Outcome, and a
// degraded one carries the failure description as its text.
func InvokeAgent(ctx context.Context, agent *Agent, prompt string, maxTokens int) Outcome {
	if maxTokens <= 0 {
		maxTokens = DefaultTokenCap
	}

	log := logger.Get().With("component", "invoke", "agent", agent.Name())

	for _, style := range ai.KeyedTokenParamStyles() {
		text, err := agent.Call(ctx, prompt, style, maxTokens)
		if err == nil {
			return Success(text)
		}

		if isParameterError(err) {
			log.Debugf("Token parameter style %q rejected, trying next", style)
			continue
		}

		log.Errorf("Agent invocation failed: %v", err)
		return Failed(fmt.Sprintf("Agent invocation error: %v", err), FailureInvocation)
	}

	// Last-ditch: call without any token parameter.
	text, err := agent.Call(ctx, prompt, ai.TokenParamNone, 0)
	if err != nil {
		log.Errorf("Bare agent invocation failed: %v", err)
		return Failed(fmt.Sprintf("Agent invocation error (no-kwargs): %v", err), FailureModelParameter)
	}

	return Success(text)
}
