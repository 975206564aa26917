package store_test

import (
	"context"
	"fmt"
	"log"

	"github.com/go-training/miurev/pkg/core"
	"github.com/go-training/miurev/pkg/store"
)

// Example_tokenStore demonstrates the load-or-initialize behavior on first run.
func Example_tokenStore() {
	backend := store.MustCreate(store.MemoryConfig())
	tokens := store.NewTokenStore(backend, nil)
	ctx := context.Background()

	record := tokens.Load(ctx)
	fmt.Println(record.TokenType, record.AccessToken == "", record.ExpiresAt == nil)
	// Output: bearer true true
}

// Example_switchingStores demonstrates that callers only depend on core.Store.
func Example_switchingStores() {
	useStore := func(s core.Store) error {
		return s.SaveTokenRecord(context.Background(), &core.TokenRecord{AccessToken: "abc"})
	}

	memStore := store.MustCreate(store.MemoryConfig())
	if err := useStore(memStore); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Memory store: OK")

	// Output: Memory store: OK
}
