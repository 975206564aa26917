package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-training/miurev/pkg/cache"
	"github.com/go-training/miurev/pkg/config"
	"github.com/go-training/miurev/pkg/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpstream(t *testing.T) (tokenURL, apiURL string, tokenCalls, apiCalls *atomic.Int32) {
	t.Helper()
	tokenCalls, apiCalls = &atomic.Int32{}, &atomic.Int32{}

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"token-1","token_type":"bearer","expires_in":3600}`)
	}))
	t.Cleanup(tokenSrv.Close)

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"a","name":"ABBA"}`)
	}))
	t.Cleanup(apiSrv.Close)

	return tokenSrv.URL, apiSrv.URL, tokenCalls, apiCalls
}

func TestGateway_ServesThroughSharedStack(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokenURL, apiURL, tokenCalls, apiCalls := newUpstream(t)
	appURL, _ := url.Parse("http://localhost:3000")

	cfg := &config.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     tokenURL,
		APIBaseURL:   apiURL,
		AppURL:       appURL,
		Store:        store.StoreTypeMemory,
		CacheBackend: cache.BackendMemory,
		CacheTTL:     time.Minute,
		HTTPTimeout:  5 * time.Second,
	}
	g, err := newGateway(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, g.Close()) })

	router := g.router()
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/artist/a", nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "ABBA")
	}

	assert.Equal(t, int32(1), tokenCalls.Load())
	assert.Equal(t, int32(1), apiCalls.Load())
	assert.Nil(t, g.limiter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `miurev_dispatch_total{outcome="hit"} 2`)
}

func TestGateway_InvalidStore(t *testing.T) {
	_, err := newGateway(&config.Config{Store: "sqlite"}, slog.Default())
	assert.Error(t, err)
}

func TestMCPCommand_InvalidTransport(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
	t.Cleanup(func() { transport = "stdio" })

	rootCmd.SetArgs([]string{"mcp", "--transport", "bogus", "--store", "memory", "--env-file", "testdata-missing.env"})
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transport type")
}
