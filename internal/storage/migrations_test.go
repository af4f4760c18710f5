package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nisioka/self-money/internal/testutil"
)

func TestMigrateIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	// SetupTestDB already migrated once; a second run must be a no-op.
	require.NoError(t, db.Storage.Migrate(ctx))

	_, err := db.Storage.GetCategories(ctx)
	require.NoError(t, err)
}
