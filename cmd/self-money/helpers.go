package main

import (
	"context"
	"fmt"

	"github.com/nisioka/self-money/internal/config"
	"github.com/nisioka/self-money/internal/crypto"
	"github.com/nisioka/self-money/internal/storage"
)

// initStorage opens the database described by the config and brings the
// schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	cipher, err := crypto.NewCipher(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential cipher: %w", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath, cipher)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
