// Package config reads the gateway settings from flags, the environment and .env.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/go-training/miurev/pkg/auth"
	"github.com/go-training/miurev/pkg/cache"
	"github.com/go-training/miurev/pkg/dispatch"
	"github.com/go-training/miurev/pkg/logger"
	"github.com/go-training/miurev/pkg/store"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Setting keys. Each maps to the upper-cased environment variable with
// '-' replaced by '_', e.g. spotify-client-id -> SPOTIFY_CLIENT_ID.
const (
	KeyClientID        = "spotify-client-id"
	KeyClientSecret    = "spotify-client-secret"
	KeyTokenURL        = "token-url"
	KeyAPIBaseURL      = "api-base-url"
	KeyAppURL          = "app-url"
	KeyAddr            = "addr"
	KeyStore           = "store"
	KeySessionFile     = "session-file"
	KeyRedisAddr       = "redis-addr"
	KeyRedisPassword   = "redis-password"
	KeyRedisDB         = "redis-db"
	KeyCacheBackend    = "cache-backend"
	KeyCacheTTL        = "cache-ttl"
	KeyCacheMaxEntries = "cache-max-entries"
	KeyHTTPTimeout     = "http-timeout"
	KeyRateRPS         = "rate-rps"
	KeyRateBurst       = "rate-burst"
	KeyLogLevel        = "log-level"
	KeyEnv             = "env"
)

// Config holds every setting the gateway reads at startup.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIBaseURL   string
	// AppURL is the public base URL used when rewriting paging links.
	AppURL *url.URL
	Addr   string

	Store       store.StoreType
	SessionFile string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CacheBackend    cache.BackendType
	CacheTTL        time.Duration
	CacheMaxEntries int

	HTTPTimeout time.Duration
	// RateRPS of 0 disables per-client throttling.
	RateRPS   float64
	RateBurst int

	LogLevel   string
	Production bool
}

// SetDefaults registers the default of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyTokenURL, auth.DefaultTokenURL)
	v.SetDefault(KeyAPIBaseURL, dispatch.DefaultBaseURL)
	v.SetDefault(KeyAppURL, "http://localhost:3000")
	v.SetDefault(KeyAddr, ":3000")
	v.SetDefault(KeyStore, string(store.StoreTypeFile))
	v.SetDefault(KeySessionFile, "session.json")
	v.SetDefault(KeyRedisAddr, "localhost:6379")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyCacheBackend, string(cache.BackendMemory))
	v.SetDefault(KeyCacheTTL, cache.DefaultTTL)
	v.SetDefault(KeyCacheMaxEntries, 0)
	v.SetDefault(KeyHTTPTimeout, 10*time.Second)
	v.SetDefault(KeyRateRPS, 0)
	v.SetDefault(KeyRateBurst, 20)
	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyEnv, "development")
}

// BindEnv makes every setting readable from its environment variable.
func BindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// BindFlags binds flags whose names match a setting key.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	return v.BindPFlags(flags)
}

// LoadDotEnv loads the given .env files (".env" when none is given) into the
// process environment without overriding variables already set.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

// Load reads a Config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ClientID:        strings.TrimSpace(v.GetString(KeyClientID)),
		ClientSecret:    strings.TrimSpace(v.GetString(KeyClientSecret)),
		TokenURL:        v.GetString(KeyTokenURL),
		APIBaseURL:      v.GetString(KeyAPIBaseURL),
		Addr:            v.GetString(KeyAddr),
		Store:           store.StoreType(strings.ToLower(strings.TrimSpace(v.GetString(KeyStore)))),
		SessionFile:     v.GetString(KeySessionFile),
		RedisAddr:       v.GetString(KeyRedisAddr),
		RedisPassword:   v.GetString(KeyRedisPassword),
		RedisDB:         v.GetInt(KeyRedisDB),
		CacheBackend:    cache.BackendType(strings.ToLower(strings.TrimSpace(v.GetString(KeyCacheBackend)))),
		CacheTTL:        v.GetDuration(KeyCacheTTL),
		CacheMaxEntries: v.GetInt(KeyCacheMaxEntries),
		HTTPTimeout:     v.GetDuration(KeyHTTPTimeout),
		RateRPS:         v.GetFloat64(KeyRateRPS),
		RateBurst:       v.GetInt(KeyRateBurst),
		LogLevel:        v.GetString(KeyLogLevel),
		Production:      strings.EqualFold(v.GetString(KeyEnv), "production"),
	}

	appURL, err := url.Parse(v.GetString(KeyAppURL))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyAppURL, err)
	}
	cfg.AppURL = appURL

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.ClientID == "" {
		errs = append(errs, errors.New("SPOTIFY_CLIENT_ID is required"))
	}
	if c.ClientSecret == "" {
		errs = append(errs, errors.New("SPOTIFY_CLIENT_SECRET is required"))
	}
	if c.AppURL == nil || c.AppURL.Scheme == "" || c.AppURL.Host == "" {
		errs = append(errs, errors.New("APP_URL must be an absolute URL"))
	}
	if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("API_BASE_URL must be an absolute URL"))
	}
	if u, err := url.Parse(c.TokenURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("TOKEN_URL must be an absolute URL"))
	}
	if !c.Store.IsValid() {
		errs = append(errs, fmt.Errorf("unsupported STORE %q", c.Store))
	}
	if c.Store == store.StoreTypeFile && c.SessionFile == "" {
		errs = append(errs, errors.New("SESSION_FILE is required for the file store"))
	}
	if c.CacheBackend != cache.BackendMemory && c.CacheBackend != cache.BackendRedis {
		errs = append(errs, fmt.Errorf("unsupported CACHE_BACKEND %q", c.CacheBackend))
	}
	if c.needsRedis() && c.RedisAddr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required for redis backends"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	if c.CacheMaxEntries < 0 {
		errs = append(errs, errors.New("CACHE_MAX_ENTRIES must not be negative"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}
	if c.RateRPS < 0 {
		errs = append(errs, errors.New("RATE_RPS must not be negative"))
	}
	if c.RateRPS > 0 && c.RateBurst < 1 {
		errs = append(errs, errors.New("RATE_BURST must be at least 1 when RATE_RPS is set"))
	}
	if c.LogLevel != "" {
		if _, ok := logger.ParseLevel(c.LogLevel); !ok {
			errs = append(errs, fmt.Errorf("unsupported LOG_LEVEL %q", c.LogLevel))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) needsRedis() bool {
	return c.Store == store.StoreTypeRedis || c.CacheBackend == cache.BackendRedis
}

// StoreConfig returns the token store settings.
func (c *Config) StoreConfig() store.Config {
	switch c.Store {
	case store.StoreTypeMemory:
		return store.MemoryConfig()
	case store.StoreTypeRedis:
		return store.RedisConfig(store.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
	case store.StoreTypeFile:
		return store.FileConfig(c.SessionFile)
	default:
		return store.Config{Type: c.Store}
	}
}
