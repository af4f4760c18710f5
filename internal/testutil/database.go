// Package testutil provides shared helpers for tests that need a real,
// migrated database.
package testutil

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/nisioka/self-money/internal/crypto"
	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/storage"
)

// TestDB wraps an in-memory, migrated SQLite storage for tests.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	t          *testing.T
	Categories map[string]int64
}

// SetupTestDB creates an in-memory database, runs migrations, and seeds the
// given category names. Cleanup is registered automatically.
func SetupTestDB(t *testing.T, categories ...string) *TestDB {
	t.Helper()

	cipher, err := crypto.NewCipher(hex.EncodeToString(make([]byte, 32)))
	if err != nil {
		t.Fatalf("failed to create test cipher: %v", err)
	}

	store, err := storage.NewSQLiteStorage(":memory:", cipher)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	seeded := make(map[string]int64, len(categories))
	for _, name := range categories {
		cat, err := store.CreateCategory(ctx, name)
		if err != nil {
			t.Fatalf("failed to seed category %q: %v", name, err)
		}
		seeded[name] = cat.ID
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage:    store,
		Categories: seeded,
		t:          t,
	}
}

// MustCategoryID returns the id of a seeded category or fails the test.
func (db *TestDB) MustCategoryID(name string) int64 {
	db.t.Helper()
	id, ok := db.Categories[name]
	if !ok {
		db.t.Fatalf("category %q was not seeded", name)
	}
	return id
}

// MustCreateAccount creates an account or fails the test.
func (db *TestDB) MustCreateAccount(name string, accountType model.AccountType, balance int64, creds *model.Credentials) *model.Account {
	db.t.Helper()
	account, err := db.Storage.CreateAccount(context.Background(), name, accountType, balance, creds)
	if err != nil {
		db.t.Fatalf("failed to create account %q: %v", name, err)
	}
	return account
}
