package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nisioka/self-money/internal/config"
	"github.com/nisioka/self-money/internal/crypto"
	"github.com/nisioka/self-money/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures the local database has all the tables and
indexes the application needs.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.Info("running database migrations", "database", cfg.DatabasePath)

	cipher, err := crypto.NewCipher(cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize credential cipher: %w", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath, cipher)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed", "version", storage.ExpectedSchemaVersion)
	return nil
}
