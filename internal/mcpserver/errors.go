package mcpserver

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"synonym-game/internal/engine"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

func intentError(err error) *mcp.CallToolResult {
	if err == nil {
		return toolError(engine.CodeInternal, "unknown error")
	}
	return toolError(engine.ErrorCode(err), err.Error())
}
