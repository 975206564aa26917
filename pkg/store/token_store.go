package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-training/miurev/pkg/core"
)

// TokenStore gives the authority a load that never fails: whatever goes wrong
// while reading, the caller gets an empty record and the backend is reset to it.
type TokenStore struct {
	backend core.Store
	logger  *slog.Logger
}

// NewTokenStore wraps backend. A nil logger falls back to slog.Default().
func NewTokenStore(backend core.Store, logger *slog.Logger) *TokenStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenStore{backend: backend, logger: logger}
}

// Load returns the persisted record, or a freshly persisted empty record when
// none exists or the stored one cannot be read.
func (s *TokenStore) Load(ctx context.Context) *core.TokenRecord {
	record, err := s.backend.GetTokenRecord(ctx)
	if err == nil && record != nil {
		return record
	}

	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		s.logger.WarnContext(ctx, "Token record unreadable, reinitializing", "error", err)
	} else {
		s.logger.DebugContext(ctx, "No token record persisted, initializing")
	}

	empty := core.EmptyTokenRecord()
	if err := s.backend.SaveTokenRecord(ctx, empty); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist empty token record", "error", err)
	}
	return empty
}

// Save persists record, replacing any prior content.
func (s *TokenStore) Save(ctx context.Context, record *core.TokenRecord) error {
	return s.backend.SaveTokenRecord(ctx, record)
}
