package cache

import (
	"context"
	"time"

	"github.com/go-training/miurev/pkg/core"
)

// Entry is one cached upstream response.
type Entry struct {
	Response   *core.Response `json:"response"`
	InsertedAt time.Time      `json:"inserted_at"`
}

// Backend stores entries by fingerprint. ttl passed to Set is an eviction
// hint; freshness is decided by Cache against InsertedAt.
type Backend interface {
	Get(ctx context.Context, key string) (*Entry, bool, error)
	Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// BackendType names a cache backend.
type BackendType string

const (
	// BackendMemory keeps entries in process memory.
	BackendMemory BackendType = "memory"
	// BackendRedis keeps entries in Redis so several gateway instances share them.
	BackendRedis BackendType = "redis"
)

// ParseBackendType returns BackendMemory for anything it does not recognize.
func ParseBackendType(s string) BackendType {
	if BackendType(s) == BackendRedis {
		return BackendRedis
	}
	return BackendMemory
}
