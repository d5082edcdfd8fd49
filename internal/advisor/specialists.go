package advisor

import (
	"context"
	"fmt"
	"time"

	"advisor/internal/adapters/ai"
	"advisor/internal/adapters/config"
	"advisor/internal/metrics"
	"advisor/internal/tools"
)

// Stage names used in metrics and reports.
const (
	StageMarketIntelligence = "market_intelligence"
	StageStrategyArchitect  = "strategy_architect"
	StageExecutionPlanner   = "execution_planner"
	StageRiskAssessor       = "risk_assessor"
)

// Specialists holds the four specialist agents. Built once at process
// startup and shared read-only across concurrent requests.
type Specialists struct {
	marketIntelligence *Agent
	strategyArchitect  *Agent
	executionPlanner   *Agent
	riskAssessor       *Agent

	tokenCap int
}

// NewSpecialists constructs all specialist agents against one capability
// handle. Every specialist gets the websearch tool, mirroring the research
// reach of the production prompts; whether to use it is the model's call.
func NewSpecialists(provider ai.ChatProvider, model string, searchAdapter *SearchAdapter, cfg config.AdvisorConfig) *Specialists {
	reg := tools.NewRegistry()
	if searchAdapter != nil {
		reg.Register(searchAdapter.Tool())
	}

	tokenCap := cfg.TokenCap
	if tokenCap <= 0 {
		tokenCap = DefaultTokenCap
	}

	return &Specialists{
		marketIntelligence: NewAgent(StageMarketIntelligence, marketIntelligenceSystemPrompt, provider, model, reg, cfg.MaxToolRounds),
		strategyArchitect:  NewAgent(StageStrategyArchitect, strategyArchitectSystemPrompt, provider, model, reg, cfg.MaxToolRounds),
		executionPlanner:   NewAgent(StageExecutionPlanner, executionPlannerSystemPrompt, provider, model, reg, cfg.MaxToolRounds),
		riskAssessor:       NewAgent(StageRiskAssessor, riskAssessorSystemPrompt, provider, model, reg, cfg.MaxToolRounds),
		tokenCap:           tokenCap,
	}
}

// MarketAnalysis delegates market research to the Market Intelligence agent.
func (s *Specialists) MarketAnalysis(ctx context.Context, ticker string, lookbackDays int) Outcome {
	prompt := fmt.Sprintf(
		"Research %s for the last %d days. "+
			"Use `websearch` to find SEC filings, reputable news, and analyst commentary. "+
			"Provide sources and a concise market summary. "+
			"End with: %q",
		ticker, lookbackDays, DisclaimerAnalysis,
	)

	return s.run(ctx, StageMarketIntelligence, s.marketIntelligence, prompt)
}

// Strategies delegates strategy generation to the Strategy Architect agent.
func (s *Specialists) Strategies(ctx context.Context, ticker, riskAttitude, horizon string) Outcome {
	prompt := fmt.Sprintf(
		"Based on market context for %s, generate 5 distinct strategies. "+
			"Align to risk attitude: %s; and horizon: %s. "+
			"For each: objective, thesis, entry/exit, risk, and expected conditions. "+
			"End with: %q",
		ticker, riskAttitude, horizon, DisclaimerStrategy,
	)

	return s.run(ctx, StageStrategyArchitect, s.strategyArchitect, prompt)
}

// ExecutionPlan delegates execution planning to the Execution Planner agent.
// strategySummary is expected to be pre-truncated by the caller.
func (s *Specialists) ExecutionPlan(ctx context.Context, ticker, strategySummary string) Outcome {
	prompt := fmt.Sprintf(
		"Convert the following strategy summary for %s into a detailed execution plan:\n\n"+
			"%s\n\n"+
			"Include order types, sizing, timing windows, and risk controls (stops, limits, hedges). "+
			"End with: %q",
		ticker, strategySummary, DisclaimerExecution,
	)

	return s.run(ctx, StageExecutionPlanner, s.executionPlanner, prompt)
}

// RiskAssessment delegates consolidated risk evaluation to the Risk Assessor
// agent. All three upstream summaries are expected to be pre-truncated.
func (s *Specialists) RiskAssessment(ctx context.Context, ticker, marketSummary, strategiesSummary, executionPlan string) Outcome {
	prompt := fmt.Sprintf(
		"Evaluate overall risk for %s. Consider:\n"+
			"- Market summary:\n%s\n\n"+
			"- Strategies summary:\n%s\n\n"+
			"- Execution plan:\n%s\n\n"+
			"Identify misalignments, key risks, and actionable mitigations. "+
			"End with: %q",
		ticker, marketSummary, strategiesSummary, executionPlan, DisclaimerRisk,
	)

	return s.run(ctx, StageRiskAssessor, s.riskAssessor, prompt)
}

func (s *Specialists) run(ctx context.Context, stage string, agent *Agent, prompt string) Outcome {
	start := time.Now()
	outcome := InvokeAgent(ctx, agent, prompt, s.tokenCap)
	metrics.RecordStage(stage, time.Since(start), outcome.Degraded)
	return outcome
}
