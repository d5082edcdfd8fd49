package advisor

import (
	"context"
	"encoding/json"
	"fmt"

	"advisor/internal/adapters/ai"
	"advisor/internal/metrics"
	"advisor/internal/tools"
	"advisor/pkg/errors"
	"advisor/pkg/logger"
)

// defaultMaxToolRounds bounds the model-driven tool loop when the
// configured value is missing.
const defaultMaxToolRounds = 6

// Agent is a prompt-driven specialist: a fixed system prompt, one shared
// capability handle, and an optional set of model-callable tools. Agents
// are built once at startup and reused read-only across requests; only the
// prompt passed per call is request-specific.
type Agent struct {
	name          string
	systemPrompt  string
	provider      ai.ChatProvider
	model         string
	tools         *tools.Registry
	maxToolRounds int
	log           *logger.Logger
}

// NewAgent constructs a specialist agent. reg may be nil for tool-less agents.
func NewAgent(name, systemPrompt string, provider ai.ChatProvider, model string, reg *tools.Registry, maxToolRounds int) *Agent {
	if maxToolRounds <= 0 {
		maxToolRounds = defaultMaxToolRounds
	}

	return &Agent{
		name:          name,
		systemPrompt:  systemPrompt,
		provider:      provider,
		model:         model,
		tools:         reg,
		maxToolRounds: maxToolRounds,
		log:           logger.Get().With("component", "agent", "agent", name),
	}
}

// Name returns the agent identifier.
func (a *Agent) Name() string { return a.name }

// Call runs one prompt through the model with the given token parameter
// style, driving the tool loop until the model answers in plain text.
// A *ai.ParameterError from the provider surfaces unchanged so callers
// can retry with another style.
func (a *Agent) Call(ctx context.Context, prompt string, style ai.TokenParamStyle, maxTokens int) (string, error) {
	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: a.systemPrompt},
		{Role: ai.RoleUser, Content: prompt},
	}

	var toolDefs []ai.ToolDefinition
	if a.tools != nil {
		for _, def := range a.tools.Definitions() {
			toolDefs = append(toolDefs, ai.ToolDefinition{
				Type: "function",
				Function: ai.FunctionDefinition{
					Name:        def.Name,
					Description: def.Description,
					Parameters:  def.Parameters,
				},
			})
		}
	}

	var lastText string

	for round := 0; round <= a.maxToolRounds; round++ {
		resp, err := a.provider.Chat(ctx, ai.ChatRequest{
			Model:      a.model,
			Messages:   messages,
			Tools:      toolDefs,
			MaxTokens:  maxTokens,
			TokenParam: style,
		})
		if err != nil {
			if isParameterError(err) {
				metrics.ModelCalls.WithLabelValues(a.provider.Name().String(), "parameter_error").Inc()
			} else {
				metrics.ModelCalls.WithLabelValues(a.provider.Name().String(), "error").Inc()
			}
			return "", err
		}

		metrics.ModelCalls.WithLabelValues(a.provider.Name().String(), "success").Inc()
		metrics.ModelTokens.WithLabelValues(a.provider.Name().String(), "input").Add(float64(resp.Usage.PromptTokens))
		metrics.ModelTokens.WithLabelValues(a.provider.Name().String(), "output").Add(float64(resp.Usage.CompletionTokens))

		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("model returned no choices")
		}

		choice := resp.Choices[0]
		lastText = choice.Message.Content

		if len(choice.Message.ToolCalls) == 0 {
			return choice.Message.Content, nil
		}

		messages = append(messages, choice.Message)
		messages = append(messages, a.executeToolCalls(ctx, choice.Message.ToolCalls)...)
	}

	a.log.Warnf("Tool loop exhausted after %d rounds", a.maxToolRounds)
	return lastText, nil
}

// executeToolCalls runs each requested tool and returns the tool messages.
// Tool failures become ordinary tool output; the loop never aborts on them.
func (a *Agent) executeToolCalls(ctx context.Context, calls []ai.ToolCall) []ai.Message {
	results := make([]ai.Message, 0, len(calls))

	for _, call := range calls {
		output := a.executeToolCall(ctx, call)
		results = append(results, ai.Message{
			Role:       ai.RoleTool,
			Content:    output,
			ToolCallID: call.ID,
			Name:       call.Function.Name,
		})
	}

	return results
}

func (a *Agent) executeToolCall(ctx context.Context, call ai.ToolCall) string {
	if a.tools == nil {
		return fmt.Sprintf("Tool %q is not available.", call.Function.Name)
	}

	tool, ok := a.tools.Get(call.Function.Name)
	if !ok {
		a.log.Warnf("Model requested unknown tool %q", call.Function.Name)
		return fmt.Sprintf("Tool %q is not available.", call.Function.Name)
	}

	args := map[string]interface{}{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			a.log.Warnf("Malformed arguments for tool %q: %v", call.Function.Name, err)
			return fmt.Sprintf("Tool %q received malformed arguments: %v", call.Function.Name, err)
		}
	}

	output, err := tool.Execute(ctx, args)
	if err != nil {
		a.log.Errorf("Tool %q failed: %v", call.Function.Name, err)
		return fmt.Sprintf("Tool %q failed: %v", call.Function.Name, err)
	}

	return output
}

func isParameterError(err error) bool {
	var perr *ai.ParameterError
	return errors.As(err, &perr)
}
