// Package result turns catalog results into MCP tool results.
package result

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-training/miurev/pkg/auth"
	"github.com/go-training/miurev/pkg/catalog"
	"github.com/go-training/miurev/pkg/core"

	"github.com/mark3labs/mcp-go/mcp"
)

// JSON returns v as an indented JSON text result.
func JSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// FromError reports err to the model as a tool error. Busy, upstream and
// authorization failures are expected conditions, so they do not fail the call.
func FromError(ctx context.Context, err error) (*mcp.CallToolResult, error) {
	logger := core.LoggerFromCtx(ctx)

	var busyErr *catalog.BusyError
	var upstreamErr *core.UpstreamError
	switch {
	case errors.As(err, &busyErr):
		return mcp.NewToolResultError(fmt.Sprintf("The catalog is busy, retry in %s", busyErr.RetryAfter.Round(time.Second))), nil
	case errors.As(err, &upstreamErr):
		msg := upstreamErr.Message()
		if msg == "" {
			msg = upstreamErr.Error()
		}
		return mcp.NewToolResultError(msg), nil
	case errors.Is(err, auth.ErrAuthorization):
		logger.Error("Tool authorization failed", "error", err)
		return mcp.NewToolResultError(auth.ErrAuthorization.Error()), nil
	default:
		logger.Error("Tool call failed", "error", err)
		return nil, err
	}
}

// StringArg returns a required non-empty string argument.
func StringArg(req mcp.CallToolRequest, name string) (string, error) {
	v, ok := req.GetArguments()[name].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("invalid %s argument", name)
	}
	return v, nil
}

// OptionalString returns a string argument or "" when absent.
func OptionalString(req mcp.CallToolRequest, name string) string {
	v, _ := req.GetArguments()[name].(string)
	return v
}

// OptionalInt returns a numeric argument truncated to int, or 0 when absent.
func OptionalInt(req mcp.CallToolRequest, name string) int {
	v, _ := req.GetArguments()[name].(float64)
	return int(v)
}
