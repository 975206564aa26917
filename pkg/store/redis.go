package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-training/miurev/pkg/core"
	"github.com/redis/rueidis"
)

// DefaultRedisKey is the key holding the token record.
const DefaultRedisKey = "miurev:session"

// RedisStore implements the core.Store interface using Redis via rueidis.
// The record is stored without TTL; expiry is decided by the authority, not by Redis.
type RedisStore struct {
	client rueidis.Client
	key    string
}

// NewRedisStore creates a new instance of RedisStore with the provided rueidis client.
func NewRedisStore(client rueidis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{
		client: client,
		key:    key,
	}
}

// RedisOptions contains configuration for Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// NewRedisStoreFromOptions creates a new RedisStore with simplified options.
func NewRedisStoreFromOptions(opts RedisOptions) (*RedisStore, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{opts.Addr},
		Password:    opts.Password,
		SelectDB:    opts.DB,
		// Client-side caching needs RESP3 tracking we never read through.
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return NewRedisStore(client, opts.Key), nil
}

// Close closes the Redis client connection.
func (r *RedisStore) Close() {
	r.client.Close()
}

// GetTokenRecord loads the record from Redis.
// It returns ErrTokenNotFound if the key does not exist.
func (r *RedisStore) GetTokenRecord(ctx context.Context) (*core.TokenRecord, error) {
	cmd := r.client.B().Get().Key(r.key).Build()
	result, err := r.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token record from redis: %w", err)
	}

	var record core.TokenRecord
	if err := json.Unmarshal([]byte(result), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token record: %w", err)
	}
	return &record, nil
}

// SaveTokenRecord overwrites the record in Redis.
func (r *RedisStore) SaveTokenRecord(ctx context.Context, record *core.TokenRecord) error {
	if record == nil {
		return ErrNilTokenRecord
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal token record: %w", err)
	}

	cmd := r.client.B().Set().Key(r.key).Value(string(data)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save token record to redis: %w", err)
	}
	return nil
}
