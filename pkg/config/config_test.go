package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-training/miurev/pkg/cache"
	"github.com/go-training/miurev/pkg/store"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("SPOTIFY_CLIENT_ID", "client-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "client-secret")
}

func TestLoad_Defaults(t *testing.T) {
	withCredentials(t)

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "client-id", cfg.ClientID)
	assert.Equal(t, "https://accounts.spotify.com/api/token", cfg.TokenURL)
	assert.Equal(t, "https://api.spotify.com/v1", cfg.APIBaseURL)
	assert.Equal(t, "http://localhost:3000", cfg.AppURL.String())
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, store.StoreTypeFile, cfg.Store)
	assert.Equal(t, "session.json", cfg.SessionFile)
	assert.Equal(t, cache.BackendMemory, cfg.CacheBackend)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Zero(t, cfg.RateRPS)
	assert.Equal(t, 20, cfg.RateBurst)
	assert.False(t, cfg.Production)
}

func TestLoad_Environment(t *testing.T) {
	withCredentials(t)
	t.Setenv("STORE", "Redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("RATE_RPS", "2.5")
	t.Setenv("APP_URL", "https://gateway.example.com")
	t.Setenv("ENV", "production")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, store.StoreTypeRedis, cfg.Store)
	assert.Equal(t, cache.BackendRedis, cfg.CacheBackend)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 2.5, cfg.RateRPS)
	assert.Equal(t, "gateway.example.com", cfg.AppURL.Host)
	assert.True(t, cfg.Production)

	sc := cfg.StoreConfig()
	assert.Equal(t, store.StoreTypeRedis, sc.Type)
	assert.Equal(t, "redis:6379", sc.Redis.Addr)
	assert.Equal(t, 2, sc.Redis.DB)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	withCredentials(t)
	t.Setenv("ADDR", ":4000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(KeyAddr, ":3000", "")
	require.NoError(t, flags.Parse([]string{"--addr", ":5000"}))

	v := New()
	require.NoError(t, BindFlags(v, flags))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Addr)
}

func TestValidate(t *testing.T) {
	withCredentials(t)
	valid := func(t *testing.T) *Config {
		cfg, err := Load(New())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing client id", mutate: func(c *Config) { c.ClientID = "" }},
		{name: "missing client secret", mutate: func(c *Config) { c.ClientSecret = "" }},
		{name: "relative app url", mutate: func(c *Config) { c.AppURL.Scheme = "" }},
		{name: "bad api base url", mutate: func(c *Config) { c.APIBaseURL = "/v1" }},
		{name: "bad token url", mutate: func(c *Config) { c.TokenURL = "" }},
		{name: "unknown store", mutate: func(c *Config) { c.Store = "sqlite" }},
		{name: "file store without path", mutate: func(c *Config) { c.SessionFile = "" }},
		{name: "unknown cache backend", mutate: func(c *Config) { c.CacheBackend = "memcached" }},
		{name: "redis without address", mutate: func(c *Config) { c.CacheBackend = cache.BackendRedis; c.RedisAddr = "" }},
		{name: "zero ttl", mutate: func(c *Config) { c.CacheTTL = 0 }},
		{name: "negative max entries", mutate: func(c *Config) { c.CacheMaxEntries = -1 }},
		{name: "zero timeout", mutate: func(c *Config) { c.HTTPTimeout = 0 }},
		{name: "negative rps", mutate: func(c *Config) { c.RateRPS = -1 }},
		{name: "rps without burst", mutate: func(c *Config) { c.RateRPS = 1; c.RateBurst = 0 }},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "TRACE" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")

	_, err := Load(New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPOTIFY_CLIENT_ID")
	assert.Contains(t, err.Error(), "SPOTIFY_CLIENT_SECRET")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MIUREV_TEST_DOTENV=from-file\nMIUREV_TEST_PRESET=from-file\n"), 0o600))

	t.Setenv("MIUREV_TEST_PRESET", "from-env")
	t.Cleanup(func() { os.Unsetenv("MIUREV_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("MIUREV_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("MIUREV_TEST_PRESET"))
}
