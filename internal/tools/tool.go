package tools

import (
	"context"
	"errors"
)

// Definition is the model-facing description of a tool.
type Definition struct {
	Name        string
	Description string
	// Parameters is a JSON schema for the tool arguments.
	Parameters map[string]interface{}
}

// Tool represents a callable capability exposed to agents.
// Tool outputs are always text: they are embedded verbatim into prompts.
type Tool interface {
	// Definition returns the model-facing tool description.
	Definition() Definition
	// Execute performs the tool's action using the decoded arguments.
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// HandlerFunc is the function signature for tool handlers.
type HandlerFunc func(ctx context.Context, args map[string]interface{}) (string, error)

// FunctionTool is a simple Tool implementation backed by a handler function.
type FunctionTool struct {
	def     Definition
	handler HandlerFunc
}

// New creates a new function-backed Tool.
func New(def Definition, handler HandlerFunc) Tool {
	return &FunctionTool{
		def:     def,
		handler: handler,
	}
}

// Definition returns the tool description.
func (t *FunctionTool) Definition() Definition { return t.def }

// Execute runs the underlying handler.
func (t *FunctionTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	if t.handler == nil {
		return "", errors.New("tool handler is not defined")
	}

	return t.handler(ctx, args)
}

// StringArg extracts a string argument, returning fallback when absent.
func StringArg(args map[string]interface{}, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// IntArg extracts an integer argument, returning fallback when absent.
// JSON numbers decode as float64, so both forms are accepted.
func IntArg(args map[string]interface{}, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}
