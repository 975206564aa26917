package store

import (
	"context"
	"errors"
	"sync"

	"github.com/go-training/miurev/pkg/core"
)

var (
	// ErrTokenNotFound is returned when no token record has been persisted yet.
	ErrTokenNotFound = errors.New("token record not found")
	// ErrNilTokenRecord is returned when attempting to save a nil token record.
	ErrNilTokenRecord = errors.New("token record cannot be nil")
)

// MemoryStore implements the core.Store interface in process memory.
// State does not survive a restart; it is meant for tests and ephemeral runs.
type MemoryStore struct {
	mu     sync.RWMutex
	record *core.TokenRecord
}

// NewMemoryStore creates a new instance of MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// GetTokenRecord returns a copy of the stored record or ErrTokenNotFound.
func (m *MemoryStore) GetTokenRecord(ctx context.Context) (*core.TokenRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.record == nil {
		return nil, ErrTokenNotFound
	}
	return copyRecord(m.record), nil
}

// SaveTokenRecord replaces the stored record.
func (m *MemoryStore) SaveTokenRecord(ctx context.Context, record *core.TokenRecord) error {
	if record == nil {
		return ErrNilTokenRecord
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.record = copyRecord(record)
	return nil
}

func copyRecord(r *core.TokenRecord) *core.TokenRecord {
	out := *r
	if r.ExpiresAt != nil {
		at := *r.ExpiresAt
		out.ExpiresAt = &at
	}
	return &out
}
