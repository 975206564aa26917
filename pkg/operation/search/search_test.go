package search

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-training/miurev/pkg/catalog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	got    catalog.SearchParams
	result *catalog.SearchResult
	err    error
}

func (s *stubSearcher) Search(_ context.Context, p catalog.SearchParams) (*catalog.SearchResult, error) {
	s.got = p
	return s.result, s.err
}

func request(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "search_albums",
			Arguments: args,
		},
	}
}

func TestHandleSearchAlbums(t *testing.T) {
	next := "https://api.spotify.com/v1/search?query=abba&type=album&offset=1&limit=1"
	svc := &stubSearcher{result: &catalog.SearchResult{
		Albums: &catalog.Paging[catalog.Album]{
			Items: []catalog.Album{{
				ID:           "1",
				Name:         "Arrival",
				ExternalURLs: catalog.ExternalURLs{Spotify: "https://open.spotify.com/album/1"},
			}},
			Limit: 1,
			Total: 9,
			Next:  &next,
		},
	}}

	res, err := HandleSearchAlbums(svc)(context.Background(), request(map[string]any{
		"query":  "abba",
		"limit":  float64(1),
		"market": "SE",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	assert.Equal(t, catalog.SearchParams{Q: "abba", Type: "album", Limit: 1, Market: "SE"}, svc.got)

	var page catalog.Paging[catalog.FormattedAlbum]
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Arrival", page.Items[0].Name)
	assert.Equal(t, "https://open.spotify.com/album/1", page.Items[0].ExternalURLs)
	assert.Equal(t, 9, page.Total)
}

func TestHandleSearchAlbums_MissingQuery(t *testing.T) {
	svc := &stubSearcher{}
	_, err := HandleSearchAlbums(svc)(context.Background(), request(map[string]any{}))
	assert.Error(t, err)
}

func TestHandleSearchAlbums_Busy(t *testing.T) {
	svc := &stubSearcher{err: &catalog.BusyError{RetryAfter: 5 * time.Second}}
	res, err := HandleSearchAlbums(svc)(context.Background(), request(map[string]any{"query": "abba"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleSearchAlbums_NoAlbums(t *testing.T) {
	svc := &stubSearcher{result: &catalog.SearchResult{}}
	res, err := HandleSearchAlbums(svc)(context.Background(), request(map[string]any{"query": "abba"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
}
