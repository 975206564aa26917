// Package server exposes the catalog over a small REST surface.
package server

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-training/miurev/pkg/catalog"
	"github.com/go-training/miurev/pkg/metrics"
	"github.com/go-training/miurev/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

// ClientCacheMaxAge is the Cache-Control max-age of catalog responses.
const ClientCacheMaxAge = 5 * time.Minute

// Options wires a Server. Catalog is required.
type Options struct {
	Catalog *catalog.Service
	// AppURL is the gateway's public base URL used in paging links.
	AppURL *url.URL
	// Limiter, when set, throttles clients by IP.
	Limiter *ratelimit.Limiter
	// Metrics, when set, is served on /metrics.
	Metrics *metrics.Collector
	// MCP, when set, is mounted on /mcp.
	MCP http.Handler
}

// Server holds the route handlers.
type Server struct {
	catalog *catalog.Service
	appURL  *url.URL
	limiter *ratelimit.Limiter
	metrics *metrics.Collector
	mcp     http.Handler
}

// New creates a Server.
func New(opts Options) *Server {
	appURL := opts.AppURL
	if appURL == nil {
		appURL = &url.URL{Scheme: "http", Host: "localhost:3000"}
	}
	return &Server{
		catalog: opts.Catalog,
		appURL:  appURL,
		limiter: opts.Limiter,
		metrics: opts.Metrics,
		mcp:     opts.MCP,
	}
}

// Router builds the gin engine with every route and middleware.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(accessLogMiddleware())
	router.Use(corsMiddleware())

	router.GET("/", s.handleWelcome)
	router.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	if s.mcp != nil {
		for _, method := range []string{http.MethodPost, http.MethodGet, http.MethodDelete} {
			router.Handle(method, "/mcp", gin.WrapH(s.mcp))
		}
	}

	api := router.Group("/")
	if s.limiter != nil {
		api.Use(rateLimitMiddleware(s.limiter))
	}
	api.Use(cacheControl(ClientCacheMaxAge))
	{
		api.GET("/search", s.handleSearch)
		api.GET("/album/:albumId", s.handleAlbum)
		api.GET("/album/:albumId/tracks", s.handleAlbumTracks)
		api.GET("/artist/:artistId", s.handleArtist)
		api.GET("/artist/:artistId/albums", s.handleArtistAlbums)
		api.GET("/track/:trackId", s.handleTrack)
		api.GET("/albums", s.handleAlbums)
		api.GET("/artists", s.handleArtists)
		api.GET("/tracks", s.handleTracks)
		api.GET("/browse/categories", s.handleCategories)
		api.GET("/browse/categories/:categoryId", s.handleCategory)
	}

	return router
}

func (s *Server) handleWelcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Miurev!"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSearch(c *gin.Context) {
	q := c.Query("q")
	itemType := c.Query("type")
	if itemType != "album" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Currently supported types is album"})
		return
	}
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Query parameter q is required"})
		return
	}
	limit, offset, ok := pageQuery(c)
	if !ok {
		return
	}

	result, err := s.catalog.Search(c.Request.Context(), catalog.SearchParams{
		Q:      q,
		Type:   itemType,
		Limit:  limit,
		Offset: offset,
		Market: c.Query("market"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if result.Albums == nil {
		result.Albums = &catalog.Paging[catalog.Album]{}
	}

	page := catalog.MapPaging(result.Albums, formatAlbumValue)
	c.JSON(http.StatusOK, catalog.FormatPaging(page, s.appURL, "/search", url.Values{
		"q":    {q},
		"type": {itemType},
	}))
}

func (s *Server) handleAlbum(c *gin.Context) {
	album, err := s.catalog.Album(c.Request.Context(), c.Param("albumId"), c.Query("market"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalog.FormatAlbum(album))
}

func (s *Server) handleAlbumTracks(c *gin.Context) {
	limit, offset, ok := pageQuery(c)
	if !ok {
		return
	}
	albumID := c.Param("albumId")
	tracks, err := s.catalog.AlbumTracks(c.Request.Context(), albumID, catalog.PageParams{
		Limit:  limit,
		Offset: offset,
		Market: c.Query("market"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalog.FormatPaging(tracks, s.appURL, "/album/"+url.PathEscape(albumID)+"/tracks", nil))
}

func (s *Server) handleArtist(c *gin.Context) {
	artist, err := s.catalog.Artist(c.Request.Context(), c.Param("artistId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, artist)
}

func (s *Server) handleArtistAlbums(c *gin.Context) {
	limit, offset, ok := pageQuery(c)
	if !ok {
		return
	}
	artistID := c.Param("artistId")
	params := catalog.ArtistAlbumsParams{
		Limit:  limit,
		Offset: offset,
		Market: c.Query("market"),
	}
	if groups := c.Query("include_groups"); groups != "" {
		params.IncludeGroups = []string{groups}
	}

	albums, err := s.catalog.ArtistAlbums(c.Request.Context(), artistID, params)
	if err != nil {
		writeError(c, err)
		return
	}

	var query url.Values
	if len(params.IncludeGroups) > 0 {
		query = url.Values{"include_groups": params.IncludeGroups}
	}
	page := catalog.MapPaging(albums, formatAlbumValue)
	c.JSON(http.StatusOK, catalog.FormatPaging(page, s.appURL, "/artist/"+url.PathEscape(artistID)+"/albums", query))
}

func (s *Server) handleTrack(c *gin.Context) {
	track, err := s.catalog.Track(c.Request.Context(), c.Param("trackId"), c.Query("market"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, track)
}

func (s *Server) handleAlbums(c *gin.Context) {
	ids, ok := idsQuery(c)
	if !ok {
		return
	}
	albums, err := s.catalog.Albums(c.Request.Context(), ids, c.Query("market"))
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]*catalog.FormattedAlbum, 0, len(albums))
	for _, a := range albums {
		items = append(items, catalog.FormatAlbum(a))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleArtists(c *gin.Context) {
	ids, ok := idsQuery(c)
	if !ok {
		return
	}
	artists, err := s.catalog.Artists(c.Request.Context(), ids)
	if err != nil {
		writeError(c, err)
		return
	}
	if artists == nil {
		artists = []*catalog.Artist{}
	}
	c.JSON(http.StatusOK, gin.H{"items": artists})
}

func (s *Server) handleTracks(c *gin.Context) {
	ids, ok := idsQuery(c)
	if !ok {
		return
	}
	tracks, err := s.catalog.Tracks(c.Request.Context(), ids, c.Query("market"))
	if err != nil {
		writeError(c, err)
		return
	}
	if tracks == nil {
		tracks = []*catalog.Track{}
	}
	c.JSON(http.StatusOK, gin.H{"items": tracks})
}

func (s *Server) handleCategories(c *gin.Context) {
	limit, offset, ok := pageQuery(c)
	if !ok {
		return
	}
	params := catalog.CategoryParams{
		Country: c.Query("country"),
		Locale:  c.Query("locale"),
		Limit:   limit,
		Offset:  offset,
	}
	categories, err := s.catalog.Categories(c.Request.Context(), params)
	if err != nil {
		writeError(c, err)
		return
	}

	query := url.Values{}
	if params.Country != "" {
		query.Set("country", params.Country)
	}
	if params.Locale != "" {
		query.Set("locale", params.Locale)
	}
	c.JSON(http.StatusOK, catalog.FormatPaging(categories, s.appURL, "/browse/categories", query))
}

func (s *Server) handleCategory(c *gin.Context) {
	category, err := s.catalog.Category(c.Request.Context(), c.Param("categoryId"), c.Query("country"), c.Query("locale"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func formatAlbumValue(a catalog.Album) *catalog.FormattedAlbum {
	return catalog.FormatAlbum(&a)
}

// idsQuery reads the required comma-separated ids query parameter.
// It writes a 400 response and returns ok=false when no id is given.
func idsQuery(c *gin.Context) ([]string, bool) {
	ids := catalog.SplitIDs(c.Query("ids"))
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Query parameter ids is required"})
		return nil, false
	}
	return ids, true
}

// pageQuery reads optional non-negative limit and offset query parameters.
// It writes a 400 response and returns ok=false when either is malformed.
func pageQuery(c *gin.Context) (limit, offset int, ok bool) {
	parse := func(name string) (int, bool) {
		raw := c.Query(name)
		if raw == "" {
			return 0, true
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + name + " parameter"})
			return 0, false
		}
		return v, true
	}
	if limit, ok = parse("limit"); !ok {
		return 0, 0, false
	}
	if offset, ok = parse("offset"); !ok {
		return 0, 0, false
	}
	return limit, offset, true
}
