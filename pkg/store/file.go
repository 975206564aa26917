package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-training/miurev/pkg/core"
)

// DefaultSessionFile is where the file store keeps the token record.
const DefaultSessionFile = "session.json"

// FileStore implements the core.Store interface with a single JSON file.
// Writes go to a temp file first and are renamed into place, so readers never
// observe a half-written record.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore at path, defaulting to DefaultSessionFile.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultSessionFile
	}
	return &FileStore{path: path}
}

// Path returns the session file location.
func (f *FileStore) Path() string {
	return f.path
}

// GetTokenRecord reads and decodes the session file.
// A missing file yields ErrTokenNotFound; a corrupt one yields a decode error.
func (f *FileStore) GetTokenRecord(ctx context.Context) (*core.TokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var record core.TokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return &record, nil
}

// SaveTokenRecord writes the record, replacing any previous content.
func (f *FileStore) SaveTokenRecord(ctx context.Context, record *core.TokenRecord) error {
	if record == nil {
		return ErrNilTokenRecord
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal token record: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	// A unique temp name keeps processes sharing the session file apart.
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempFile := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tempFile, f.path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
