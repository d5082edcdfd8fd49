package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(name string) Tool {
	return New(Definition{
		Name:        name,
		Description: "echoes its input",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"text": map[string]interface{}{"type": "string"},
			},
		},
	}, func(ctx context.Context, args map[string]interface{}) (string, error) {
		return StringArg(args, "text", ""), nil
	})
}

func TestFunctionTool_Execute(t *testing.T) {
	tool := echoTool("echo")

	out, err := tool.Execute(context.Background(), map[string]interface{}{"text": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestFunctionTool_NilHandler(t *testing.T) {
	tool := New(Definition{Name: "broken"}, nil)

	_, err := tool.Execute(context.Background(), nil)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(echoTool("echo"))
	reg.Register(echoTool("echo2"))

	tool, ok := reg.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", tool.Definition().Name)

	_, ok = reg.Get("missing")
	assert.False(t, ok)

	assert.Len(t, reg.Definitions(), 2)
	assert.ElementsMatch(t, []string{"echo", "echo2"}, reg.List())
}

func TestRegistry_ReplacesByName(t *testing.T) {
	reg := NewRegistry()
	reg.Register(echoTool("echo"))
	reg.Register(echoTool("echo"))

	assert.Len(t, reg.List(), 1)
}

func TestStringArg(t *testing.T) {
	args := map[string]interface{}{"present": "value", "empty": "", "number": 42}

	assert.Equal(t, "value", StringArg(args, "present", "fallback"))
	assert.Equal(t, "fallback", StringArg(args, "empty", "fallback"))
	assert.Equal(t, "fallback", StringArg(args, "missing", "fallback"))
	assert.Equal(t, "fallback", StringArg(args, "number", "fallback"))
}

func TestIntArg(t *testing.T) {
	args := map[string]interface{}{
		"float":  float64(7), // JSON decoding produces float64
		"int":    3,
		"string": "nope",
	}

	assert.Equal(t, 7, IntArg(args, "float", 0))
	assert.Equal(t, 3, IntArg(args, "int", 0))
	assert.Equal(t, 9, IntArg(args, "string", 9))
	assert.Equal(t, 9, IntArg(args, "missing", 9))
}
