// Package search provides the MCP tool for catalog album search.
package search

import (
	"context"

	"github.com/go-training/miurev/pkg/catalog"
	"github.com/go-training/miurev/pkg/core"
	"github.com/go-training/miurev/pkg/operation/result"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Searcher is the part of catalog.Service the tool needs.
type Searcher interface {
	Search(ctx context.Context, p catalog.SearchParams) (*catalog.SearchResult, error)
}

// SearchAlbumsTool defines the search_albums tool.
var SearchAlbumsTool = mcp.NewTool("search_albums",
	mcp.WithDescription(`Search Albums Tool

Description:
  Searches the music catalog for albums matching a free-text query and returns
  one page of formatted albums (id, name, release date, images, artists).

Input Parameters:
  - query (string, required): Free-text search, e.g. "abba arrival".
  - limit (number, optional): Page size, 1-50. Defaults to 20.
  - offset (number, optional): Index of the first result. Defaults to 0.
  - market (string, optional): ISO 3166-1 alpha-2 country code.

Error Conditions:
  - The catalog is rate limiting the gateway: retry after the reported delay.
  - The query is missing or empty.`),
	mcp.WithString("query",
		mcp.Description("Free-text album search query."),
		mcp.Required(),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of albums to return (default 20)."),
	),
	mcp.WithNumber("offset",
		mcp.Description("Index of the first album to return (default 0)."),
	),
	mcp.WithString("market",
		mcp.Description("Optional ISO 3166-1 alpha-2 country code."),
	),
)

// HandleSearchAlbums returns the handler for SearchAlbumsTool.
func HandleSearchAlbums(svc Searcher) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := core.LoggerFromCtx(ctx)
		query, err := result.StringArg(req, "query")
		if err != nil {
			return nil, err
		}
		logger.Info("Handling search_albums tool", "query", query)

		res, err := svc.Search(ctx, catalog.SearchParams{
			Q:      query,
			Type:   "album",
			Limit:  result.OptionalInt(req, "limit"),
			Offset: result.OptionalInt(req, "offset"),
			Market: result.OptionalString(req, "market"),
		})
		if err != nil {
			return result.FromError(ctx, err)
		}
		if res.Albums == nil {
			res.Albums = &catalog.Paging[catalog.Album]{}
		}
		return result.JSON(catalog.MapPaging(res.Albums, func(a catalog.Album) *catalog.FormattedAlbum {
			return catalog.FormatAlbum(&a)
		}))
	}
}
