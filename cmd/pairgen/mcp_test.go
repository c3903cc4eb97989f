package main

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callToolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func toolResultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return textContent.Text
}

func TestDecodeToolArgs(t *testing.T) {
	// JSON numbers arrive as float64 and must land in integer fields.
	var args generateTestsArgs
	err := decodeToolArgs(map[string]any{
		"model":      "A: 1, 2",
		"format":     "csv",
		"seed":       float64(42),
		"candidates": float64(25),
	}, &args)

	require.NoError(t, err)
	assert.Equal(t, "A: 1, 2", args.Model)
	assert.Equal(t, "csv", args.Format)
	assert.Equal(t, int64(42), args.Seed)
	assert.Equal(t, 25, args.Candidates)
}

func TestDecodeToolArgsDefaults(t *testing.T) {
	var args generateTestsArgs
	err := decodeToolArgs(map[string]any{"model": "A: 1, 2"}, &args)

	require.NoError(t, err)
	assert.Zero(t, args.Seed)
	assert.Zero(t, args.Candidates)
	assert.Empty(t, args.Format)
}

func TestHandleGenerateTests(t *testing.T) {
	ctx := context.Background()
	req := callToolRequest(map[string]any{
		"model":  pairsTestModel,
		"format": "csv",
		"seed":   float64(42),
	})

	result, err := handleGenerateTests(ctx, req)
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := toolResultText(t, result)
	assert.Contains(t, text, "OS,Browser")
	assert.Contains(t, text, "3/3 pairs (seed 42)")

	// The same model and seed must reproduce the suite.
	again, err := handleGenerateTests(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, text, toolResultText(t, again))
}

func TestHandleGenerateTestsErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		args     map[string]any
		expected string
	}{
		{
			name:     "missing model",
			args:     map[string]any{"format": "csv"},
			expected: "model is required",
		},
		{
			name:     "unknown format",
			args:     map[string]any{"model": pairsTestModel, "format": "xml"},
			expected: "unknown format",
		},
		{
			name:     "constraint names undefined parameter",
			args:     map[string]any{"model": "A: 1, 2\n\nIF [B] = \"x\" THEN [A] = \"1\";"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleGenerateTests(ctx, callToolRequest(tt.args))
			require.NoError(t, err, "tool errors are reported in the result, not returned")
			assert.True(t, result.IsError)
			if tt.expected != "" {
				assert.Contains(t, toolResultText(t, result), tt.expected)
			}
		})
	}
}

func TestHandleValidateModel(t *testing.T) {
	ctx := context.Background()

	result, err := handleValidateModel(ctx, callToolRequest(map[string]any{"model": pairsTestModel}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := toolResultText(t, result)
	assert.Contains(t, text, "Model is valid")
	assert.Contains(t, text, "2 parameters")
	assert.Contains(t, text, "3 pairs to cover")
}

func TestHandleValidateModelInvalid(t *testing.T) {
	ctx := context.Background()

	result, err := handleValidateModel(ctx, callToolRequest(map[string]any{
		"model": "A: 1, 2\n\nIF [B] = \"x\" THEN [A] = \"1\";",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
