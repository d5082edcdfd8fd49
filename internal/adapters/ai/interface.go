package ai

import (
	"context"
	"fmt"
	"strings"
)

// ProviderName represents an AI provider identifier
type ProviderName string

// Provider name constants
const (
	ProviderNameAnthropic ProviderName = "anthropic"
	ProviderNameOpenAI    ProviderName = "openai"
	ProviderNameDeepSeek  ProviderName = "deepseek"
)

// String returns the string representation of the provider name
func (p ProviderName) String() string {
	return string(p)
}

// IsValid checks if the provider name is supported
func (p ProviderName) IsValid() bool {
	switch p {
	case ProviderNameAnthropic, ProviderNameOpenAI, ProviderNameDeepSeek:
		return true
	default:
		return false
	}
}

// TokenParamStyle selects how the response token budget is keyed on the wire.
// Providers differ in the parameter name they accept for output caps; the
// invocation layer walks these styles in order until one is accepted.
type TokenParamStyle int

const (
	// TokenParamMaxOutputTokens keys the budget as "max_output_tokens"
	// (Anthropic-like wrappers).
	TokenParamMaxOutputTokens TokenParamStyle = iota

	// TokenParamMaxTokens keys the budget as "max_tokens" (OpenAI-style).
	TokenParamMaxTokens

	// TokenParamGenerationConfig nests the budget under a
	// "generation_config" object (some SDKs).
	TokenParamGenerationConfig

	// TokenParamInferenceParams nests the budget under an
	// "inference_params" object (generic).
	TokenParamInferenceParams

	// TokenParamNone omits the budget entirely; the provider default applies.
	TokenParamNone
)

// String returns the wire-level key name for the style.
func (s TokenParamStyle) String() string {
	switch s {
	case TokenParamMaxOutputTokens:
		return "max_output_tokens"
	case TokenParamMaxTokens:
		return "max_tokens"
	case TokenParamGenerationConfig:
		return "generation_config"
	case TokenParamInferenceParams:
		return "inference_params"
	case TokenParamNone:
		return "none"
	default:
		return "unknown"
	}
}

// KeyedTokenParamStyles lists the keyed styles in descending likelihood order.
// TokenParamNone is the last-ditch fallback and is deliberately excluded.
func KeyedTokenParamStyles() []TokenParamStyle {
	return []TokenParamStyle{
		TokenParamMaxOutputTokens,
		TokenParamMaxTokens,
		TokenParamGenerationConfig,
		TokenParamInferenceParams,
	}
}

// ParameterError indicates the provider rejected the token parameter style,
// not the call itself. Callers retry with the next style on this class.
type ParameterError struct {
	Provider ProviderName
	Style    TokenParamStyle
}

// Error implements the error interface
func (e *ParameterError) Error() string {
	return fmt.Sprintf("provider %s does not accept token parameter style %q", e.Provider, e.Style)
}

// RateLimitError indicates the provider-side request pacing rejected the call.
type RateLimitError struct {
	Provider ProviderName
	Err      error
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("provider %s rate limited: %v", e.Provider, e.Err)
}

// Unwrap returns the wrapped error
func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// ChatProvider is the generative-model capability contract.
type ChatProvider interface {
	Name() ProviderName

	// Chat sends a chat completion request with tool calling support.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Tools       []ToolDefinition
	Temperature float64

	// MaxTokens is the response budget; TokenParam selects how it is keyed
	// on the wire. With TokenParamNone the budget is ignored.
	MaxTokens  int
	TokenParam TokenParamStyle
}

// Message represents a single message in the conversation.
type Message struct {
	Role       MessageRole
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string // For tool responses
	Name       string // For function/tool messages
}

// MessageRole defines the role of a message sender.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// ToolDefinition describes a tool/function that the model can call.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes a callable function.
type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON schema
}

// ChatResponse represents the response from a chat completion.
type ChatResponse struct {
	ID      string
	Model   string
	Choices []Choice
	Usage   Usage
}

// Choice represents a single completion choice.
type Choice struct {
	Index        int
	Message      Message
	FinishReason FinishReason
}

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop      FinishReason = "stop"
	FinishReasonLength    FinishReason = "length"
	FinishReasonToolCalls FinishReason = "tool_calls"
	FinishReasonError     FinishReason = "error"
)

// ToolCall represents a tool invocation request from the model.
type ToolCall struct {
	ID       string
	Type     string // "function"
	Function FunctionCall
}

// FunctionCall represents a function call from the model.
type FunctionCall struct {
	Name      string
	Arguments string // JSON-encoded arguments
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func joinTextParts(parts []string) string {
	return strings.Join(parts, "\n")
}
