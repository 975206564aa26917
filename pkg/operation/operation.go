package operation

import (
	"time"

	"github.com/go-training/miurev/pkg/operation/browse"
	"github.com/go-training/miurev/pkg/operation/lookup"
	"github.com/go-training/miurev/pkg/operation/search"
	"github.com/go-training/miurev/pkg/operation/token"

	"github.com/mark3labs/mcp-go/server"
)

// Catalog is the catalog surface exposed as MCP tools. *catalog.Service satisfies it.
type Catalog interface {
	search.Searcher
	lookup.Catalog
	browse.Catalog
}

/*
RegisterCatalogTool registers the catalog tools to the specified MCPServer instance.

Parameters:
  - s: Pointer to the MCPServer instance where the tools will be registered.
  - svc: The catalog the tools query.

This function registers search_albums, the single and bulk album/artist/track
lookups, and the browse category tools.
*/
func RegisterCatalogTool(s *server.MCPServer, svc Catalog) {
	tool := &Tool{}

	tool.RegisterRead(server.ServerTool{
		Tool:    search.SearchAlbumsTool,
		Handler: search.HandleSearchAlbums(svc),
	})
	tool.RegisterRead(server.ServerTool{
		Tool:    lookup.GetAlbumTool,
		Handler: lookup.HandleGetAlbum(svc),
	})
	tool.RegisterRead(server.ServerTool{
		Tool:    lookup.GetArtistTool,
		Handler: lookup.HandleGetArtist(svc),
	})
	tool.RegisterRead(server.ServerTool{
		Tool:    lookup.GetTrackTool,
		Handler: lookup.HandleGetTrack(svc),
	})
	tool.RegisterRead(server.ServerTool{
		Tool:    lookup.GetAlbumsTool,
		Handler: lookup.HandleGetAlbums(svc),
	})
	tool.RegisterRead(server.ServerTool{
		Tool:    lookup.GetArtistsTool,
		Handler: lookup.HandleGetArtists(svc),
	})
	tool.RegisterRead(server.ServerTool{
		Tool:    lookup.GetTracksTool,
		Handler: lookup.HandleGetTracks(svc),
	})
	tool.RegisterRead(server.ServerTool{
		Tool:    browse.GetCategoriesTool,
		Handler: browse.HandleGetCategories(svc),
	})
	tool.RegisterRead(server.ServerTool{
		Tool:    browse.GetCategoryTool,
		Handler: browse.HandleGetCategory(svc),
	})

	s.AddTools(tool.Tools()...)
}

/*
RegisterTokenTool registers the token inspection tool to the specified MCPServer instance.

Parameters:
  - s: Pointer to the MCPServer instance where the tools will be registered.
  - tokens: The token store to report on.
  - now: Clock used to decide whether the token is still usable; nil means time.Now.
*/
func RegisterTokenTool(s *server.MCPServer, tokens token.Loader, now func() time.Time) {
	tool := &Tool{}

	tool.RegisterRead(server.ServerTool{
		Tool:    token.ShowTokenStatusTool,
		Handler: token.HandleShowTokenStatus(tokens, now),
	})

	s.AddTools(tool.Tools()...)
}

/*
Tool manages collections of tools to be registered with an MCPServer.

Fields:
  - write: Stores all ServerTools registered as write operations.
  - read: Stores all ServerTools registered as read operations.
*/
type Tool struct {
	write []server.ServerTool
	read  []server.ServerTool
}

// RegisterWrite registers a ServerTool as a write operation.
func (t *Tool) RegisterWrite(s server.ServerTool) {
	t.write = append(t.write, s)
}

// RegisterRead registers a ServerTool as a read operation.
func (t *Tool) RegisterRead(s server.ServerTool) {
	t.read = append(t.read, s)
}

/*
Tools returns all registered ServerTools, write tools first followed by read tools.
*/
func (t *Tool) Tools() []server.ServerTool {
	tools := make([]server.ServerTool, 0, len(t.write)+len(t.read))
	tools = append(tools, t.write...)
	tools = append(tools, t.read...)
	return tools
}
