// Package lookup provides MCP tools that fetch catalog items by id.
package lookup

import (
	"context"
	"errors"

	"github.com/go-training/miurev/pkg/catalog"
	"github.com/go-training/miurev/pkg/core"
	"github.com/go-training/miurev/pkg/operation/result"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Catalog is the part of catalog.Service the lookup tools need.
type Catalog interface {
	Album(ctx context.Context, id, market string) (*catalog.Album, error)
	Artist(ctx context.Context, id string) (*catalog.Artist, error)
	Track(ctx context.Context, id, market string) (*catalog.Track, error)
	Albums(ctx context.Context, ids []string, market string) ([]*catalog.Album, error)
	Artists(ctx context.Context, ids []string) ([]*catalog.Artist, error)
	Tracks(ctx context.Context, ids []string, market string) ([]*catalog.Track, error)
}

// GetAlbumTool defines the get_album tool.
var GetAlbumTool = mcp.NewTool("get_album",
	mcp.WithDescription("Fetch one album by catalog id, including its track listing."),
	mcp.WithString("album_id",
		mcp.Description("The catalog id of the album, e.g. 1M4anG49aEs4YimBdj96Oy."),
		mcp.Required(),
	),
	mcp.WithString("market",
		mcp.Description("Optional ISO 3166-1 alpha-2 country code."),
	),
)

// GetArtistTool defines the get_artist tool.
var GetArtistTool = mcp.NewTool("get_artist",
	mcp.WithDescription("Fetch one artist by catalog id: name, genres, popularity and images."),
	mcp.WithString("artist_id",
		mcp.Description("The catalog id of the artist."),
		mcp.Required(),
	),
)

// GetTrackTool defines the get_track tool.
var GetTrackTool = mcp.NewTool("get_track",
	mcp.WithDescription("Fetch one track by catalog id."),
	mcp.WithString("track_id",
		mcp.Description("The catalog id of the track."),
		mcp.Required(),
	),
	mcp.WithString("market",
		mcp.Description("Optional ISO 3166-1 alpha-2 country code."),
	),
)

// GetAlbumsTool defines the get_albums tool.
var GetAlbumsTool = mcp.NewTool("get_albums",
	mcp.WithDescription("Fetch several albums in one call. Unknown ids come back as null entries."),
	mcp.WithString("ids",
		mcp.Description("Comma-separated catalog album ids (at most 20)."),
		mcp.Required(),
	),
	mcp.WithString("market",
		mcp.Description("Optional ISO 3166-1 alpha-2 country code."),
	),
)

// GetArtistsTool defines the get_artists tool.
var GetArtistsTool = mcp.NewTool("get_artists",
	mcp.WithDescription("Fetch several artists in one call."),
	mcp.WithString("ids",
		mcp.Description("Comma-separated catalog artist ids (at most 50)."),
		mcp.Required(),
	),
)

// GetTracksTool defines the get_tracks tool.
var GetTracksTool = mcp.NewTool("get_tracks",
	mcp.WithDescription("Fetch several tracks in one call."),
	mcp.WithString("ids",
		mcp.Description("Comma-separated catalog track ids (at most 50)."),
		mcp.Required(),
	),
	mcp.WithString("market",
		mcp.Description("Optional ISO 3166-1 alpha-2 country code."),
	),
)

// HandleGetAlbum returns the handler for GetAlbumTool.
func HandleGetAlbum(svc Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := result.StringArg(req, "album_id")
		if err != nil {
			return nil, err
		}
		core.LoggerFromCtx(ctx).Info("Handling get_album tool", "album_id", id)

		album, err := svc.Album(ctx, id, result.OptionalString(req, "market"))
		if err != nil {
			return result.FromError(ctx, err)
		}
		return result.JSON(catalog.FormatAlbum(album))
	}
}

// HandleGetArtist returns the handler for GetArtistTool.
func HandleGetArtist(svc Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := result.StringArg(req, "artist_id")
		if err != nil {
			return nil, err
		}
		core.LoggerFromCtx(ctx).Info("Handling get_artist tool", "artist_id", id)

		artist, err := svc.Artist(ctx, id)
		if err != nil {
			return result.FromError(ctx, err)
		}
		return result.JSON(artist)
	}
}

// HandleGetTrack returns the handler for GetTrackTool.
func HandleGetTrack(svc Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := result.StringArg(req, "track_id")
		if err != nil {
			return nil, err
		}
		core.LoggerFromCtx(ctx).Info("Handling get_track tool", "track_id", id)

		track, err := svc.Track(ctx, id, result.OptionalString(req, "market"))
		if err != nil {
			return result.FromError(ctx, err)
		}
		return result.JSON(track)
	}
}

// HandleGetAlbums returns the handler for GetAlbumsTool.
func HandleGetAlbums(svc Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := idsArg(req)
		if err != nil {
			return nil, err
		}
		core.LoggerFromCtx(ctx).Info("Handling get_albums tool", "ids", len(ids))

		albums, err := svc.Albums(ctx, ids, result.OptionalString(req, "market"))
		if err != nil {
			return result.FromError(ctx, err)
		}
		items := make([]*catalog.FormattedAlbum, 0, len(albums))
		for _, a := range albums {
			items = append(items, catalog.FormatAlbum(a))
		}
		return result.JSON(map[string]any{"items": items})
	}
}

// HandleGetArtists returns the handler for GetArtistsTool.
func HandleGetArtists(svc Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := idsArg(req)
		if err != nil {
			return nil, err
		}
		core.LoggerFromCtx(ctx).Info("Handling get_artists tool", "ids", len(ids))

		artists, err := svc.Artists(ctx, ids)
		if err != nil {
			return result.FromError(ctx, err)
		}
		if artists == nil {
			artists = []*catalog.Artist{}
		}
		return result.JSON(map[string]any{"items": artists})
	}
}

// HandleGetTracks returns the handler for GetTracksTool.
func HandleGetTracks(svc Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := idsArg(req)
		if err != nil {
			return nil, err
		}
		core.LoggerFromCtx(ctx).Info("Handling get_tracks tool", "ids", len(ids))

		tracks, err := svc.Tracks(ctx, ids, result.OptionalString(req, "market"))
		if err != nil {
			return result.FromError(ctx, err)
		}
		if tracks == nil {
			tracks = []*catalog.Track{}
		}
		return result.JSON(map[string]any{"items": tracks})
	}
}

func idsArg(req mcp.CallToolRequest) ([]string, error) {
	raw, err := result.StringArg(req, "ids")
	if err != nil {
		return nil, err
	}
	ids := catalog.SplitIDs(raw)
	if len(ids) == 0 {
		return nil, errors.New("invalid ids argument")
	}
	return ids, nil
}
