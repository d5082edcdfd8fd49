package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor/internal/adapters/ai"
	"advisor/internal/adapters/config"
)

func testAdvisorConfig() config.AdvisorConfig {
	return config.AdvisorConfig{
		TokenCap:        2000,
		HandoffLimit:    2000,
		MaxPromptLength: 5000,
		LookbackDays:    7,
		MaxToolRounds:   6,
	}
}

// stageReply answers per specialist so pipeline tests can trace which
// stage produced which text.
func stageReply(market, strategy, execution, risk string) func(ai.ChatRequest) string {
	return func(req ai.ChatRequest) string {
		switch req.Messages[0].Content {
		case marketIntelligenceSystemPrompt:
			return market
		case strategyArchitectSystemPrompt:
			return strategy
		case executionPlannerSystemPrompt:
			return execution
		case riskAssessorSystemPrompt:
			return risk
		default:
			return "coordinator"
		}
	}
}

func newTestOrchestrator(provider ai.ChatProvider) *Orchestrator {
	cfg := testAdvisorConfig()
	specialists := NewSpecialists(provider, "test-model", nil, cfg)
	return NewOrchestrator(provider, "test-model", specialists, cfg)
}

func TestRunCompleteAnalysis_StageOrder(t *testing.T) {
	provider := &mockProvider{
		accepted: acceptAll(),
		reply:    stageReply("MARKET", "STRATEGY", "EXECUTION", "RISK"),
	}

	report := newTestOrchestrator(provider).RunCompleteAnalysis(context.Background(), "AAPL", "Moderate", "Long-term", 7)

	assert.Equal(t, "MARKET", report.MarketAnalysis.Text)
	assert.Equal(t, "STRATEGY", report.Strategies.Text)
	assert.Equal(t, "EXECUTION", report.ExecutionPlan.Text)
	assert.Equal(t, "RISK", report.RiskAssessment.Text)
	assert.Equal(t, 0, report.DegradedStages())

	requests := provider.recorded()
	require.Len(t, requests, 4)
	assert.Equal(t, marketIntelligenceSystemPrompt, requests[0].Messages[0].Content)
	assert.Equal(t, strategyArchitectSystemPrompt, requests[1].Messages[0].Content)
	assert.Equal(t, executionPlannerSystemPrompt, requests[2].Messages[0].Content)
	assert.Equal(t, riskAssessorSystemPrompt, requests[3].Messages[0].Content)
}

func TestRunCompleteAnalysis_TruncatesHandoffs(t *testing.T) {
	longStrategy := strings.Repeat("s", 3000)
	provider := &mockProvider{
		accepted: acceptAll(),
		reply:    stageReply("MARKET", longStrategy, "EXECUTION", "RISK"),
	}

	newTestOrchestrator(provider).RunCompleteAnalysis(context.Background(), "AAPL", "Moderate", "Long-term", 7)

	requests := provider.recorded()
	require.Len(t, requests, 4)

	executionPrompt := requests[2].Messages[1].Content
	assert.Contains(t, executionPrompt, strings.Repeat("s", 2000))
	assert.NotContains(t, executionPrompt, strings.Repeat("s", 2001))

	riskPrompt := requests[3].Messages[1].Content
	assert.Contains(t, riskPrompt, "MARKET")
	assert.Contains(t, riskPrompt, strings.Repeat("s", 2000))
	assert.NotContains(t, riskPrompt, strings.Repeat("s", 2001))
	assert.Contains(t, riskPrompt, "EXECUTION")
}

func TestRunCompleteAnalysis_DegradedStageFlowsDownstream(t *testing.T) {
	provider := &mockProvider{accepted: acceptAll()}
	provider.handler = func(req ai.ChatRequest) (*ai.ChatResponse, error) {
		if req.Messages[0].Content == strategyArchitectSystemPrompt {
			return nil, errors.New("model unavailable")
		}
		return textResponse("ok"), nil
	}

	report := newTestOrchestrator(provider).RunCompleteAnalysis(context.Background(), "AAPL", "Moderate", "Long-term", 7)

	assert.True(t, report.Strategies.Degraded)
	assert.Equal(t, FailureInvocation, report.Strategies.Kind)
	assert.Contains(t, report.Strategies.Text, "Agent invocation error:")
	assert.Equal(t, 1, report.DegradedStages())

	// The failure text is forwarded downstream like any other summary.
	requests := provider.recorded()
	executionPrompt := requests[2].Messages[1].Content
	assert.Contains(t, executionPrompt, "Agent invocation error:")

	// Downstream stages still run.
	assert.False(t, report.ExecutionPlan.Degraded)
	assert.False(t, report.RiskAssessment.Degraded)
}

func TestRunCompleteAnalysis_DefaultsLookback(t *testing.T) {
	provider := &mockProvider{
		accepted: acceptAll(),
		reply:    stageReply("MARKET", "STRATEGY", "EXECUTION", "RISK"),
	}

	newTestOrchestrator(provider).RunCompleteAnalysis(context.Background(), "AAPL", "Moderate", "Long-term", 0)

	requests := provider.recorded()
	require.NotEmpty(t, requests)
	assert.Contains(t, requests[0].Messages[1].Content, "last 7 days")
}

func TestReport_Aggregate(t *testing.T) {
	report := &Report{
		Ticker:         "AAPL",
		RiskAttitude:   "Moderate",
		Horizon:        "Long-term",
		MarketAnalysis: Success("market text"),
		Strategies:     Success("strategy text"),
		ExecutionPlan:  Success("execution text"),
		RiskAssessment: Success("risk text"),
	}

	got := report.Aggregate()

	assert.Contains(t, got, "AAPL")
	assert.Contains(t, got, "## Market Analysis")
	assert.Contains(t, got, "market text")
	assert.Contains(t, got, "## Trading Strategies")
	assert.Contains(t, got, "## Execution Plan")
	assert.Contains(t, got, "## Risk Assessment")
	assert.Contains(t, strings.ToLower(got), "educational")
}

func TestAnalyze_CoordinatorDelegatesToSpecialists(t *testing.T) {
	provider := &mockProvider{accepted: acceptAll()}
	provider.handler = func(req ai.ChatRequest) (*ai.ChatResponse, error) {
		if req.Messages[0].Content != coordinatorSystemPrompt {
			// Specialist call made on the coordinator's behalf.
			return textResponse("MARKET DATA"), nil
		}

		// First coordinator turn requests market intelligence, the second
		// (carrying the tool result) produces the final answer.
		for _, msg := range req.Messages {
			if msg.Role == ai.RoleTool {
				return textResponse("final advisory answer"), nil
			}
		}

		return &ai.ChatResponse{
			Choices: []ai.Choice{{
				Message: ai.Message{
					Role: ai.RoleAssistant,
					ToolCalls: []ai.ToolCall{{
						ID:   "call_1",
						Type: "function",
						Function: ai.FunctionCall{
							Name:      "market_intel_tool",
							Arguments: `{"ticker":"AAPL","lookback_days":5}`,
						},
					}},
				},
				FinishReason: ai.FinishReasonToolCalls,
			}},
		}, nil
	}

	got := newTestOrchestrator(provider).Analyze(context.Background(), "Analyze AAPL for a moderate investor")

	assert.Equal(t, "final advisory answer", got)

	// The specialist actually ran with the coordinator-supplied arguments.
	var specialistPrompt string
	for _, req := range provider.recorded() {
		if req.Messages[0].Content == marketIntelligenceSystemPrompt {
			specialistPrompt = req.Messages[1].Content
		}
	}
	require.NotEmpty(t, specialistPrompt, "market intelligence agent was never called")
	assert.Contains(t, specialistPrompt, "AAPL")
	assert.Contains(t, specialistPrompt, "last 5 days")
}

func TestAnalyze_NeverReturnsError(t *testing.T) {
	provider := &mockProvider{accepted: map[ai.TokenParamStyle]bool{}}

	got := newTestOrchestrator(provider).Analyze(context.Background(), "Analyze AAPL")

	assert.Contains(t, got, "Agent invocation error (no-kwargs):")
}
