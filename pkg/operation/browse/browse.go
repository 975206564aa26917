// Package browse provides MCP tools over the catalog's browse categories.
package browse

import (
	"context"

	"github.com/go-training/miurev/pkg/catalog"
	"github.com/go-training/miurev/pkg/core"
	"github.com/go-training/miurev/pkg/operation/result"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Catalog is the part of catalog.Service the browse tools need.
type Catalog interface {
	Categories(ctx context.Context, p catalog.CategoryParams) (*catalog.Paging[catalog.Category], error)
	Category(ctx context.Context, id, country, locale string) (*catalog.Category, error)
}

// GetCategoriesTool defines the get_categories tool.
var GetCategoriesTool = mcp.NewTool("get_categories",
	mcp.WithDescription("List the browse categories used to tag items in the catalog."),
	mcp.WithString("country",
		mcp.Description("Optional ISO 3166-1 alpha-2 country code."),
	),
	mcp.WithString("locale",
		mcp.Description("Optional language and country code, e.g. sv_SE."),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of categories to return (1-50)."),
	),
	mcp.WithNumber("offset",
		mcp.Description("Index of the first category to return."),
	),
)

// GetCategoryTool defines the get_category tool.
var GetCategoryTool = mcp.NewTool("get_category",
	mcp.WithDescription("Fetch one browse category by id."),
	mcp.WithString("category_id",
		mcp.Description("The category id, e.g. party."),
		mcp.Required(),
	),
	mcp.WithString("country",
		mcp.Description("Optional ISO 3166-1 alpha-2 country code."),
	),
	mcp.WithString("locale",
		mcp.Description("Optional language and country code, e.g. sv_SE."),
	),
)

// HandleGetCategories returns the handler for GetCategoriesTool.
func HandleGetCategories(svc Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		core.LoggerFromCtx(ctx).Info("Handling get_categories tool")

		page, err := svc.Categories(ctx, catalog.CategoryParams{
			Country: result.OptionalString(req, "country"),
			Locale:  result.OptionalString(req, "locale"),
			Limit:   result.OptionalInt(req, "limit"),
			Offset:  result.OptionalInt(req, "offset"),
		})
		if err != nil {
			return result.FromError(ctx, err)
		}
		return result.JSON(page)
	}
}

// HandleGetCategory returns the handler for GetCategoryTool.
func HandleGetCategory(svc Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := result.StringArg(req, "category_id")
		if err != nil {
			return nil, err
		}
		core.LoggerFromCtx(ctx).Info("Handling get_category tool", "category_id", id)

		category, err := svc.Category(ctx, id,
			result.OptionalString(req, "country"),
			result.OptionalString(req, "locale"),
		)
		if err != nil {
			return result.FromError(ctx, err)
		}
		return result.JSON(category)
	}
}
