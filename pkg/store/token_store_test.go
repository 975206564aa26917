package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-training/miurev/pkg/core"
)

// failingStore fails every read with a non-not-found error.
type failingStore struct {
	saved   *core.TokenRecord
	saveErr error
}

func (f *failingStore) GetTokenRecord(context.Context) (*core.TokenRecord, error) {
	return nil, errors.New("connection refused")
}

func (f *failingStore) SaveTokenRecord(_ context.Context, r *core.TokenRecord) error {
	f.saved = r
	return f.saveErr
}

func TestTokenStore_Load_InitializesEmptyRecord(t *testing.T) {
	backend := NewMemoryStore()
	tokens := NewTokenStore(backend, nil)
	ctx := context.Background()

	got := tokens.Load(ctx)
	if got.AccessToken != "" || got.ExpiresAt != nil || got.TokenType != core.DefaultTokenType {
		t.Errorf("Load() = %+v, want empty bearer record", got)
	}

	persisted, err := backend.GetTokenRecord(ctx)
	if err != nil {
		t.Fatalf("empty record was not persisted: %v", err)
	}
	if persisted.TokenType != core.DefaultTokenType {
		t.Errorf("persisted TokenType = %q, want %q", persisted.TokenType, core.DefaultTokenType)
	}
}

func TestTokenStore_Load_ReturnsPersistedRecord(t *testing.T) {
	backend := NewMemoryStore()
	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour)
	_ = backend.SaveTokenRecord(ctx, &core.TokenRecord{AccessToken: "kept", TokenType: "Bearer", ExpiresAt: &expiresAt})

	got := NewTokenStore(backend, nil).Load(ctx)
	if got.AccessToken != "kept" {
		t.Errorf("Load() AccessToken = %q, want %q", got.AccessToken, "kept")
	}
}

func TestTokenStore_Load_CorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	got := NewTokenStore(NewFileStore(path), nil).Load(context.Background())
	if got.AccessToken != "" || got.TokenType != core.DefaultTokenType {
		t.Errorf("Load() = %+v, want empty record", got)
	}

	data, _ := os.ReadFile(path)
	if string(data) == "garbage" {
		t.Error("corrupt session file should have been replaced by the empty record")
	}
}

func TestTokenStore_Load_BackendFailuresAreNotSurfaced(t *testing.T) {
	backend := &failingStore{saveErr: errors.New("read-only")}

	got := NewTokenStore(backend, nil).Load(context.Background())
	if got == nil || got.AccessToken != "" {
		t.Fatalf("Load() = %+v, want empty record", got)
	}
	if backend.saved == nil {
		t.Error("Load() should attempt to persist the empty record")
	}
}

func TestTokenStore_Save(t *testing.T) {
	backend := NewMemoryStore()
	tokens := NewTokenStore(backend, nil)
	ctx := context.Background()

	if err := tokens.Save(ctx, &core.TokenRecord{AccessToken: "x"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, _ := backend.GetTokenRecord(ctx)
	if got.AccessToken != "x" {
		t.Errorf("backend AccessToken = %q, want %q", got.AccessToken, "x")
	}

	if err := tokens.Save(ctx, nil); !errors.Is(err, ErrNilTokenRecord) {
		t.Errorf("Save(nil) error = %v, want %v", err, ErrNilTokenRecord)
	}
}
