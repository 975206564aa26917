package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-training/miurev/pkg/auth"
	"github.com/go-training/miurev/pkg/cache"
	"github.com/go-training/miurev/pkg/catalog"
	"github.com/go-training/miurev/pkg/config"
	"github.com/go-training/miurev/pkg/dispatch"
	"github.com/go-training/miurev/pkg/metrics"
	"github.com/go-training/miurev/pkg/operation"
	"github.com/go-training/miurev/pkg/ratelimit"
	"github.com/go-training/miurev/pkg/server"
	"github.com/go-training/miurev/pkg/store"

	"github.com/redis/go-redis/v9"
)

// gateway is the assembled dispatch stack shared by the serve and mcp commands.
type gateway struct {
	cfg     *config.Config
	tokens  *store.TokenStore
	catalog *catalog.Service
	metrics *metrics.Collector
	limiter *ratelimit.Limiter
	closers []func() error
}

func newGateway(cfg *config.Config, logger *slog.Logger) (*gateway, error) {
	g := &gateway{
		cfg:     cfg,
		metrics: metrics.NewCollector(),
	}

	backend, err := store.NewFactory(cfg.StoreConfig()).Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}
	if rs, ok := backend.(*store.RedisStore); ok {
		g.closers = append(g.closers, func() error {
			rs.Close()
			return nil
		})
	}
	g.tokens = store.NewTokenStore(backend, logger)

	var cacheBackend cache.Backend
	switch cfg.CacheBackend {
	case cache.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		g.closers = append(g.closers, rdb.Close)
		cacheBackend = cache.NewRedisBackend(rdb, "")
	default:
		cacheBackend = cache.NewMemoryBackend(cfg.CacheMaxEntries)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	credentials := auth.NewClientCredentials(auth.ClientCredentialsConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		HTTPClient:   httpClient,
		Logger:       logger,
	})

	dispatcher := dispatch.New(dispatch.Options{
		Gate: ratelimit.NewGate(),
		Authority: auth.New(g.tokens,
			auth.WithLogger(logger),
			auth.WithMetrics(g.metrics),
		),
		Acquire: credentials.Acquire,
		Cache: cache.New(cacheBackend,
			cache.WithTTL(cfg.CacheTTL),
			cache.WithLogger(logger),
			cache.WithMetrics(g.metrics),
		),
		Client:  httpClient,
		BaseURL: cfg.APIBaseURL,
		Metrics: g.metrics,
		Logger:  logger,
	})
	g.catalog = catalog.NewService(dispatcher)

	if cfg.RateRPS > 0 {
		g.limiter = ratelimit.NewLimiter(cfg.RateRPS, cfg.RateBurst)
	}

	logger.Info("Gateway ready",
		"store", cfg.Store,
		"cache_backend", cfg.CacheBackend,
		"cache_ttl", cfg.CacheTTL,
		"api_base_url", cfg.APIBaseURL,
	)
	return g, nil
}

// mcpServer builds the MCP server over the gateway's catalog.
func (g *gateway) mcpServer() *operation.MCPServer {
	return operation.NewMCPServer(g.catalog, g.tokens)
}

// router builds the REST surface, with the MCP endpoint mounted on /mcp.
func (g *gateway) router() http.Handler {
	return server.New(server.Options{
		Catalog: g.catalog,
		AppURL:  g.cfg.AppURL,
		Limiter: g.limiter,
		Metrics: g.metrics,
		MCP:     g.mcpServer().ServeHTTP(),
	}).Router()
}

// Close releases backend connections.
func (g *gateway) Close() error {
	var errs []error
	for i := len(g.closers) - 1; i >= 0; i-- {
		errs = append(errs, g.closers[i]())
	}
	return errors.Join(errs...)
}
