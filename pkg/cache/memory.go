package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend is a map guarded by a mutex. With a positive maxEntries the
// oldest entry is evicted once the cap is reached.
type MemoryBackend struct {
	mu         sync.Mutex
	entries    map[string]*memoryEntry
	maxEntries int
}

type memoryEntry struct {
	entry *Entry
	ttl   time.Duration
}

// NewMemoryBackend creates an empty backend. maxEntries <= 0 means unbounded.
func NewMemoryBackend(maxEntries int) *MemoryBackend {
	return &MemoryBackend{
		entries:    make(map[string]*memoryEntry),
		maxEntries: maxEntries,
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (*Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return e.entry, true, nil
}

// Set stores entry and lazily drops entries whose ttl elapsed before
// entry.InsertedAt.
func (m *MemoryBackend) Set(_ context.Context, key string, entry *Entry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purgeExpired(entry.InsertedAt)
	if _, exists := m.entries[key]; !exists && m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		m.evictOldest()
	}
	m.entries[key] = &memoryEntry{entry: entry, ttl: ttl}
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryBackend) purgeExpired(now time.Time) {
	for k, e := range m.entries {
		if e.ttl > 0 && !now.Before(e.entry.InsertedAt.Add(e.ttl)) {
			delete(m.entries, k)
		}
	}
}

func (m *MemoryBackend) evictOldest() {
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for k, e := range m.entries {
		if oldestKey == "" || e.entry.InsertedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.entry.InsertedAt
		}
	}
	delete(m.entries, oldestKey)
}
