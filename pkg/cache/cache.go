// Package cache memoizes upstream responses for a short, fixed window.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-training/miurev/pkg/core"
	"github.com/go-training/miurev/pkg/metrics"
)

// DefaultTTL is how long a cached response stays fresh.
const DefaultTTL = 2 * time.Minute

// ComputeFunc produces the response on a miss.
type ComputeFunc func(ctx context.Context) (*core.Response, error)

// Cache serves fresh entries from its backend and computes the rest.
// Failed computations are never stored.
type Cache struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Collector
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the freshness window. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for backend failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics reports the entry count of sized backends to collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Cache) {
		c.metrics = collector
	}
}

// New creates a Cache over backend. A nil backend gets an unbounded memory backend.
func New(backend Backend, opts ...Option) *Cache {
	if backend == nil {
		backend = NewMemoryBackend(0)
	}
	c := &Cache{
		backend: backend,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// GetOrCompute returns a copy of the entry stored under key when it is younger
// than the TTL. Otherwise it calls compute and, on success, stores the result.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute ComputeFunc) (*core.Response, error) {
	entry, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "Cache read failed, treating as miss", "key", key, "error", err)
	}

	now := c.now()
	if ok && entry != nil && entry.Response != nil {
		if now.Sub(entry.InsertedAt) < c.ttl {
			resp := entry.Response.Clone()
			resp.FromCache = true
			return resp, nil
		}
		if err := c.backend.Delete(ctx, key); err != nil {
			c.logger.WarnContext(ctx, "Cache eviction failed", "key", key, "error", err)
		}
	}

	resp, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}

	stored := &Entry{Response: resp.Clone(), InsertedAt: c.now()}
	if err := c.backend.Set(ctx, key, stored, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
	}
	c.reportSize()
	return resp, nil
}

func (c *Cache) reportSize() {
	if sized, ok := c.backend.(interface{ Len() int }); ok {
		c.metrics.SetCacheEntries(sized.Len())
	}
}
