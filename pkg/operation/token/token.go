// Package token provides the MCP tool reporting the cached upstream access token.
package token

import (
	"context"
	"time"

	"github.com/go-training/miurev/pkg/core"
	"github.com/go-training/miurev/pkg/operation/result"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Loader is the part of store.TokenStore the tool needs.
type Loader interface {
	Load(ctx context.Context) *core.TokenRecord
}

// Status is what show_token_status reports. The token itself is masked.
type Status struct {
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresAt *time.Time `json:"expires_at"`
	Usable    bool       `json:"usable"`
}

// ShowTokenStatusTool defines the MCP tool for displaying the cached token state.
var ShowTokenStatusTool = mcp.NewTool("show_token_status",
	mcp.WithDescription("Show the masked upstream access token held by the gateway and when it expires"),
)

// HandleShowTokenStatus returns the handler for ShowTokenStatusTool.
func HandleShowTokenStatus(tokens Loader, now func() time.Time) server.ToolHandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		record := tokens.Load(ctx)
		return result.JSON(Status{
			Token:     Mask(record.AccessToken),
			TokenType: record.TokenType,
			ExpiresAt: record.ExpiresAt,
			Usable:    record.Usable(now()),
		})
	}
}

// Mask shows only the first 6 and last 2 characters of a token.
// Short tokens are hidden entirely.
func Mask(token string) string {
	switch {
	case len(token) > 8:
		return token[:6] + "****" + token[len(token)-2:]
	case len(token) > 0:
		return "****"
	default:
		return ""
	}
}
