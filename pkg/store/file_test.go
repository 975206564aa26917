package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-training/miurev/pkg/core"
)

func TestNewFileStore_DefaultPath(t *testing.T) {
	if got := NewFileStore("").Path(); got != DefaultSessionFile {
		t.Errorf("Path() = %q, want %q", got, DefaultSessionFile)
	}
}

func TestFileStore_MissingFileIsNotFound(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	_, err := store.GetTokenRecord(context.Background())
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("GetTokenRecord() error = %v, want %v", err, ErrTokenNotFound)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileStore(path).GetTokenRecord(context.Background())
	if err == nil {
		t.Fatal("GetTokenRecord() expected decode error for corrupt file")
	}
	if errors.Is(err, ErrTokenNotFound) {
		t.Error("corrupt file should not be reported as not found")
	}
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)
	ctx := context.Background()

	expiresAt := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	record := &core.TokenRecord{
		AccessToken: "token-abc",
		TokenType:   "Bearer",
		ExpiresIn:   3600,
		ExpiresAt:   &expiresAt,
	}
	if err := store.SaveTokenRecord(ctx, record); err != nil {
		t.Fatalf("SaveTokenRecord() error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "session.json" {
		t.Errorf("temp file should be renamed away, dir has %v", entries)
	}

	got, err := store.GetTokenRecord(ctx)
	if err != nil {
		t.Fatalf("GetTokenRecord() error = %v", err)
	}
	if got.AccessToken != "token-abc" || got.ExpiresIn != 3600 {
		t.Errorf("GetTokenRecord() = %+v", got)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(expiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, expiresAt)
	}
}

func TestFileStore_EmptyRecordUsesNulls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	if err := store.SaveTokenRecord(context.Background(), core.EmptyTokenRecord()); err != nil {
		t.Fatalf("SaveTokenRecord() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"access_token":"","token_type":"bearer","expires_in":0,"expires_at":null}`
	if string(data) != want {
		t.Errorf("session file = %s, want %s", data, want)
	}
}

func TestFileStore_SharedPathConcurrentSaves(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	// Separate stores stand in for separate processes: no shared mutex.
	stores := []*FileStore{NewFileStore(path), NewFileStore(path), NewFileStore(path)}

	var wg sync.WaitGroup
	errs := make(chan error, len(stores)*20)
	for i, s := range stores {
		wg.Add(1)
		go func(i int, s *FileStore) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				record := &core.TokenRecord{AccessToken: fmt.Sprintf("token-%d-%d", i, j), TokenType: "Bearer"}
				if err := s.SaveTokenRecord(context.Background(), record); err != nil {
					errs <- err
				}
			}
		}(i, s)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("SaveTokenRecord() error = %v", err)
	}

	got, err := stores[0].GetTokenRecord(context.Background())
	if err != nil {
		t.Fatalf("GetTokenRecord() error = %v", err)
	}
	if !strings.HasPrefix(got.AccessToken, "token-") {
		t.Errorf("AccessToken = %q", got.AccessToken)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover temp files: %v", entries)
	}
}

func TestFileStore_SaveNil(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	if err := store.SaveTokenRecord(context.Background(), nil); !errors.Is(err, ErrNilTokenRecord) {
		t.Errorf("SaveTokenRecord(nil) error = %v, want %v", err, ErrNilTokenRecord)
	}
}
