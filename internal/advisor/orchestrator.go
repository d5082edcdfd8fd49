package advisor

import (
	"context"
	"fmt"
	"strings"

	"advisor/internal/adapters/ai"
	"advisor/internal/adapters/config"
	"advisor/internal/tools"
	"advisor/pkg/logger"
)

// Orchestrator routes an advisory request through the specialist agents.
// One instance serves all requests; it holds no per-request state.
type Orchestrator struct {
	specialists  *Specialists
	coordinator  *Agent
	handoffLimit int
	lookbackDays int
	tokenCap     int
	log          *logger.Logger
}

// NewOrchestrator builds the coordinator agent, mounting the four
// specialist delegations as model-callable tools.
func NewOrchestrator(provider ai.ChatProvider, model string, specialists *Specialists, cfg config.AdvisorConfig) *Orchestrator {
	o := &Orchestrator{
		specialists:  specialists,
		handoffLimit: cfg.HandoffLimit,
		lookbackDays: cfg.LookbackDays,
		tokenCap:     cfg.TokenCap,
		log:          logger.Get().With("component", "orchestrator"),
	}

	if o.handoffLimit <= 0 {
		o.handoffLimit = DefaultHandoffLimit
	}
	if o.lookbackDays <= 0 {
		o.lookbackDays = 7
	}
	if o.tokenCap <= 0 {
		o.tokenCap = DefaultTokenCap
	}

	reg := tools.NewRegistry()
	for _, t := range o.specialistTools() {
		reg.Register(t)
	}

	o.coordinator = NewAgent("financial_coordinator", coordinatorSystemPrompt, provider, model, reg, cfg.MaxToolRounds)

	return o
}

// Analyze processes a free-text query through the coordinator agent. The
// model decides which specialists to call and in what order, or answers
// with a clarifying question when inputs (ticker, risk attitude, horizon)
// are missing. Failures degrade to descriptive text, never an error.
func (o *Orchestrator) Analyze(ctx context.Context, query string) string {
	o.log.Infof("Processing advisory query (%d chars)", len(query))
	return InvokeAgent(ctx, o.coordinator, query, o.tokenCap).Text
}

// Report is the result of one deterministic full-pipeline run.
type Report struct {
	Ticker       string
	RiskAttitude string
	Horizon      string

	MarketAnalysis Outcome
	Strategies     Outcome
	ExecutionPlan  Outcome
	RiskAssessment Outcome
}

// DegradedStages counts stages that produced failure text instead of a
// real model answer.
func (r *Report) DegradedStages() int {
	count := 0
	for _, o := range []Outcome{r.MarketAnalysis, r.Strategies, r.ExecutionPlan, r.RiskAssessment} {
		if o.Degraded {
			count++
		}
	}
	return count
}

// Aggregate renders the full advisory text from all four stages.
func (r *Report) Aggregate() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Financial Advisory Report: %s\n", r.Ticker)
	fmt.Fprintf(&sb, "Risk attitude: %s | Horizon: %s\n\n", r.RiskAttitude, r.Horizon)

	fmt.Fprintf(&sb, "## Market Analysis\n%s\n\n", r.MarketAnalysis.Text)
	fmt.Fprintf(&sb, "## Trading Strategies\n%s\n\n", r.Strategies.Text)
	fmt.Fprintf(&sb, "## Execution Plan\n%s\n\n", r.ExecutionPlan.Text)
	fmt.Fprintf(&sb, "## Risk Assessment\n%s\n\n", r.RiskAssessment.Text)

	sb.WriteString(DisclaimerGeneral)

	return sb.String()
}

// RunCompleteAnalysis always runs all four stages in fixed order:
// Market -> Strategy -> Execution -> Risk. Each stage's output is cut to
// the handoff budget before being embedded in a downstream prompt. A
// failed stage does not abort the pipeline; its failure text is forwarded
// downstream like any other summary.
func (o *Orchestrator) RunCompleteAnalysis(ctx context.Context, ticker, riskAttitude, horizon string, lookbackDays int) *Report {
	if lookbackDays <= 0 {
		lookbackDays = o.lookbackDays
	}

	o.log.Infof("Running complete analysis: ticker=%s risk=%s horizon=%s lookback=%d",
		ticker, riskAttitude, horizon, lookbackDays)

	report := &Report{
		Ticker:       ticker,
		RiskAttitude: riskAttitude,
		Horizon:      horizon,
	}

	// Step 1: Market Analysis
	report.MarketAnalysis = o.specialists.MarketAnalysis(ctx, ticker, lookbackDays)

	// Step 2: Strategy Development
	report.Strategies = o.specialists.Strategies(ctx, ticker, riskAttitude, horizon)

	// Step 3: Execution Planning (bounded strategy summary)
	report.ExecutionPlan = o.specialists.ExecutionPlan(ctx, ticker,
		TruncateForHandoff(report.Strategies.Text, o.handoffLimit))

	// Step 4: Risk Assessment (all upstream summaries bounded)
	report.RiskAssessment = o.specialists.RiskAssessment(ctx, ticker,
		TruncateForHandoff(report.MarketAnalysis.Text, o.handoffLimit),
		TruncateForHandoff(report.Strategies.Text, o.handoffLimit),
		TruncateForHandoff(report.ExecutionPlan.Text, o.handoffLimit))

	if degraded := report.DegradedStages(); degraded > 0 {
		o.log.Warnf("Complete analysis finished with %d/4 degraded stages", degraded)
	}

	return report
}

// GetMarketAnalysis exposes the market research stage for library use.
func (o *Orchestrator) GetMarketAnalysis(ctx context.Context, ticker string, lookbackDays int) string {
	return o.specialists.MarketAnalysis(ctx, ticker, lookbackDays).Text
}

// GetStrategies exposes the strategy generation stage for library use.
func (o *Orchestrator) GetStrategies(ctx context.Context, ticker, riskAttitude, horizon string) string {
	return o.specialists.Strategies(ctx, ticker, riskAttitude, horizon).Text
}

// GetExecutionPlan exposes the execution planning stage for library use.
func (o *Orchestrator) GetExecutionPlan(ctx context.Context, ticker, strategySummary string) string {
	return o.specialists.ExecutionPlan(ctx, ticker, strategySummary).Text
}

// GetRiskAssessment exposes the consolidated risk stage for library use.
func (o *Orchestrator) GetRiskAssessment(ctx context.Context, ticker, marketSummary, strategiesSummary, executionPlan string) string {
	return o.specialists.RiskAssessment(ctx, ticker, marketSummary, strategiesSummary, executionPlan).Text
}

// specialistTools wraps the four delegation functions as model-callable
// tools for the coordinator. Tool failures are already folded into text by
// the invocation layer, so handlers never return an error.
func (o *Orchestrator) specialistTools() []tools.Tool {
	stringParam := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": desc}
	}

	return []tools.Tool{
		tools.New(tools.Definition{
			Name:        "market_intel_tool",
			Description: "Delegates market research & analysis to the Market Intelligence agent.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"ticker": stringParam("Stock ticker symbol (e.g. 'AAPL', 'MSFT')"),
					"lookback_days": map[string]interface{}{
						"type":        "integer",
						"description": "Number of days to look back for analysis",
					},
				},
				"required": []string{"ticker"},
			},
		}, func(ctx context.Context, args map[string]interface{}) (string, error) {
			ticker := tools.StringArg(args, "ticker", "")
			lookback := tools.IntArg(args, "lookback_days", o.lookbackDays)
			return o.specialists.MarketAnalysis(ctx, ticker, lookback).Text, nil
		}),

		tools.New(tools.Definition{
			Name:        "strategy_architect_tool",
			Description: "Delegates strategy generation to the Strategy Architect agent.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"ticker":        stringParam("Stock ticker symbol"),
					"risk_attitude": stringParam("Risk tolerance level (Conservative, Moderate, Aggressive)"),
					"horizon":       stringParam("Investment time horizon (Short-term, Medium-term, Long-term)"),
				},
				"required": []string{"ticker", "risk_attitude", "horizon"},
			},
		}, func(ctx context.Context, args map[string]interface{}) (string, error) {
			return o.specialists.Strategies(ctx,
				tools.StringArg(args, "ticker", ""),
				tools.StringArg(args, "risk_attitude", "Moderate"),
				tools.StringArg(args, "horizon", "Medium-term"),
			).Text, nil
		}),

		tools.New(tools.Definition{
			Name:        "execution_planner_tool",
			Description: "Delegates execution planning to the Execution Planner agent.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"ticker":           stringParam("Stock ticker symbol"),
					"strategy_summary": stringParam("Summary of trading strategies from the Strategy Architect agent"),
				},
				"required": []string{"ticker", "strategy_summary"},
			},
		}, func(ctx context.Context, args map[string]interface{}) (string, error) {
			return o.specialists.ExecutionPlan(ctx,
				tools.StringArg(args, "ticker", ""),
				tools.StringArg(args, "strategy_summary", ""),
			).Text, nil
		}),

		tools.New(tools.Definition{
			Name:        "risk_assessor_tool",
			Description: "Delegates comprehensive risk evaluation to the Risk Assessor agent.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"ticker":             stringParam("Stock ticker symbol"),
					"market_summary":     stringParam("Market analysis from the Market Intelligence agent"),
					"strategies_summary": stringParam("Strategy analysis from the Strategy Architect agent"),
					"execution_plan":     stringParam("Execution plan from the Execution Planner agent"),
				},
				"required": []string{"ticker", "market_summary", "strategies_summary", "execution_plan"},
			},
		}, func(ctx context.Context, args map[string]interface{}) (string, error) {
			return o.specialists.RiskAssessment(ctx,
				tools.StringArg(args, "ticker", ""),
				tools.StringArg(args, "market_summary", ""),
				tools.StringArg(args, "strategies_summary", ""),
				tools.StringArg(args, "execution_plan", ""),
			).Text, nil
		}),
	}
}
