// Package auth keeps the client-credentials access token fresh.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-training/miurev/pkg/core"
	"github.com/go-training/miurev/pkg/metrics"
	"github.com/go-training/miurev/pkg/store"
)

// ErrAuthorization is returned when no usable token is cached and a new one
// could not be obtained.
var ErrAuthorization = errors.New("cannot obtain new access token")

// AcquireFunc fetches a fresh grant from the token endpoint.
type AcquireFunc func(ctx context.Context) (*core.TokenGrant, error)

// Authority hands out a usable access token, acquiring a new one only when the
// persisted record is missing or expired. One instance is shared per process.
type Authority struct {
	tokens  *store.TokenStore
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Collector
}

// Option configures an Authority.
type Option func(*Authority)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger used for refresh diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Authority) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics records token refresh results on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(a *Authority) {
		a.metrics = c
	}
}

// New creates an Authority over tokens.
func New(tokens *store.TokenStore, opts ...Option) *Authority {
	a := &Authority{
		tokens: tokens,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authorize returns the persisted record while it is usable. Otherwise it calls
// acquire once, persists the resulting record and returns it.
//
// Overlapping refreshes from concurrent callers are not coalesced; the last
// save wins and every caller still gets a valid token.
func (a *Authority) Authorize(ctx context.Context, acquire AcquireFunc) (*core.TokenRecord, error) {
	record := a.tokens.Load(ctx)
	if record.Usable(a.now()) {
		return record, nil
	}

	if acquire == nil {
		return nil, fmt.Errorf("%w: no token source configured", ErrAuthorization)
	}

	grant, err := acquire(ctx)
	switch {
	case err != nil:
		a.metrics.RecordTokenRefresh(metrics.RefreshFailure)
		return nil, fmt.Errorf("%w: %w", ErrAuthorization, err)
	case grant == nil || grant.AccessToken == "":
		a.metrics.RecordTokenRefresh(metrics.RefreshFailure)
		return nil, fmt.Errorf("%w: token endpoint returned no access token", ErrAuthorization)
	}
	a.metrics.RecordTokenRefresh(metrics.RefreshSuccess)

	fresh := core.NewTokenRecord(grant, a.now())
	if err := a.tokens.Save(ctx, fresh); err != nil {
		a.logger.WarnContext(ctx, "Failed to persist refreshed access token", "error", err)
	}
	a.logger.DebugContext(ctx, "Access token refreshed", "expires_at", fresh.ExpiresAt)
	return fresh, nil
}
