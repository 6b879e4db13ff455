package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/daybook/ledger"
	"github.com/warp/daybook/store/postgres"
)

var _ ledger.Store = (*postgres.Store)(nil)

func setupTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated test database; Reset truncates every table.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	store, err := postgres.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.Reset(ctx))
	return store
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := postgres.New(context.Background(), "")
	assert.Error(t, err)
}

func TestStore_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	missing, err := store.Load(ctx, "m@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	s := ledger.NewState(&ledger.User{Name: "Mayra", Email: "m@example.com"})
	s.StockItems = []ledger.StockItem{{ID: "rice", Name: "Rice", Batches: []ledger.Batch{
		{BatchNumber: ledger.DefaultBatch, Quantity: decimal.NewFromInt(40)},
	}}}
	require.NoError(t, store.Save(ctx, "m@example.com", s))
	require.NoError(t, store.Save(ctx, "m@example.com", s))

	got, err := store.Load(ctx, "m@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.StockItems[0].TotalQuantity().Equal(decimal.NewFromInt(40)))
}

func TestStore_CurrentUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetCurrentUser(ctx, "a@example.com"))
	cur, err := store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", cur)

	require.NoError(t, store.ClearCurrentUser(ctx))
	cur, err = store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Empty(t, cur)
}
