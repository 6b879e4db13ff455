package sqlite_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/daybook/ledger"
	"github.com/warp/daybook/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

var _ ledger.Store = (*sqlite.Store)(nil)

func TestStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)

	s, err := store.Load(context.Background(), "nobody@example.com")

	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestStore_SaveOverwritesAndLoads(t *testing.T) {
	// GIVEN: a saved state that is later saved again with a sale
	ctx := context.Background()
	store := newTestStore(t)

	s := ledger.NewState(&ledger.User{Name: "Mayra", Email: "m@example.com"})
	s.Parties = []ledger.Party{{ID: "P1", Name: "Ali", Type: ledger.PartyCustomer}}
	s.StockItems = []ledger.StockItem{{ID: "rice", Name: "Rice", Batches: []ledger.Batch{
		{BatchNumber: "default", Quantity: decimal.NewFromInt(100)},
	}}}
	require.NoError(t, store.Save(ctx, "m@example.com", s))

	s, err := ledger.Reduce(s, ledger.AddStockTransaction{Transaction: ledger.StockTransaction{
		ID: "t1", ItemID: "rice", Type: ledger.TxSell, PartyID: "P1",
		Quantity: decimal.NewFromInt(30), Price: decimal.RequireFromString("2.5"),
	}})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "m@example.com", s))

	// WHEN
	got, err := store.Load(ctx, "m@example.com")

	// THEN: the latest document comes back with its links intact
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Mayra", got.User.Name)
	require.Len(t, got.StockTransactions, 1)
	require.Len(t, got.DayBookEntries, 1)
	assert.Equal(t, "t1", got.DayBookEntries[0].SourceTransactionID)
	assert.True(t, got.Parties[0].Balance.Equal(decimal.NewFromInt(75)))
	assert.True(t, got.StockItems[0].Batches[0].Quantity.Equal(decimal.NewFromInt(70)))
	assert.Empty(t, ledger.Reconcile(*got))
}

func TestStore_UsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	a := ledger.NewState(&ledger.User{Email: "a@example.com"})
	a.ItemCategories = []string{"Only A"}
	require.NoError(t, store.Save(ctx, "a@example.com", a))
	require.NoError(t, store.Save(ctx, "b@example.com", ledger.NewState(&ledger.User{Email: "b@example.com"})))

	got, err := store.Load(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, ledger.DefaultCategories, got.ItemCategories)
}

func TestStore_CurrentUser(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cur, err := store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Empty(t, cur)

	require.NoError(t, store.SetCurrentUser(ctx, "a@example.com"))
	require.NoError(t, store.SetCurrentUser(ctx, "b@example.com"))
	cur, err = store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", cur)

	require.NoError(t, store.ClearCurrentUser(ctx))
	cur, err = store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Empty(t, cur)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Save(ctx, "a@example.com", ledger.NewState(nil)))
	require.NoError(t, store.SetCurrentUser(ctx, "a@example.com"))

	require.NoError(t, store.Reset(ctx))

	got, err := store.Load(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
	cur, _ := store.CurrentUser(ctx)
	assert.Empty(t, cur)
}
