package mcpserver

import (
	"errors"
	"fmt"

	"wager-pool/internal/ledger"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	return toolErrorWith(code, message, nil)
}

func toolErrorWith(code, message string, extra map[string]any) *mcp.CallToolResult {
	errObj := map[string]any{
		"code":    code,
		"message": message,
	}
	for k, v := range extra {
		errObj[k] = v
	}
	result := mcp.NewToolResultStructured(
		map[string]any{"error": errObj},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

func mapLedgerError(err error) *mcp.CallToolResult {
	if err == nil {
		return toolError("storage_error", "unknown error")
	}
	var multi *ledger.MultipleOptionsError
	if errors.As(err, &multi) {
		return toolErrorWith(ledger.Code(err), err.Error(), map[string]any{"options": multi.Options})
	}
	return toolError(ledger.Code(err), err.Error())
}
