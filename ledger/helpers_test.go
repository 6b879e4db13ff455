package ledger_test

import (
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/warp/daybook/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testUser() *ledger.User {
	return &ledger.User{Name: "Mayra", Email: "mayra@example.com"}
}

// riceState is a store with one customer, one supplier and 100 kg of rice in
// the default batch.
func riceState() ledger.State {
	s := ledger.NewState(testUser())
	s.Parties = []ledger.Party{
		{ID: "P1", Type: ledger.PartyCustomer, Name: "Ali", Balance: decimal.Zero},
		{ID: "P2", Type: ledger.PartySupplier, Name: "Wholesale Co", Balance: decimal.Zero},
	}
	s.StockItems = []ledger.StockItem{{
		ID:            "rice",
		Name:          "Rice",
		Unit:          "kg",
		SalesPrice:    d("2.5"),
		PurchasePrice: d("2"),
		LowStockLimit: d("10"),
		Batches:       []ledger.Batch{{BatchNumber: ledger.DefaultBatch, Quantity: d("100")}},
	}}
	return s
}

func mustReduce(t *testing.T, s ledger.State, a ledger.Action) ledger.State {
	t.Helper()
	next, err := ledger.Reduce(s, a)
	require.NoError(t, err, "reduce %s", a.Type())
	return next
}

func sell(id, itemID, qty, price, partyID string) ledger.StockTransaction {
	return ledger.StockTransaction{
		ID: id, ItemID: itemID, Type: ledger.TxSell,
		Quantity: d(qty), Price: d(price), PartyID: partyID, Date: "2025-03-01",
	}
}

func buy(id, itemID, batch, qty, price, partyID string) ledger.StockTransaction {
	return ledger.StockTransaction{
		ID: id, ItemID: itemID, Type: ledger.TxBuy, BatchNumber: batch,
		Quantity: d(qty), Price: d(price), PartyID: partyID, Date: "2025-03-01",
	}
}

func balanceOf(t *testing.T, s ledger.State, partyID string) decimal.Decimal {
	t.Helper()
	p, ok := s.Party(partyID)
	require.True(t, ok, "party %s", partyID)
	return p.Balance
}

func batchQty(t *testing.T, s ledger.State, itemID, batch string) decimal.Decimal {
	t.Helper()
	item, ok := s.StockItem(itemID)
	require.True(t, ok, "item %s", itemID)
	if i := item.Batch(batch); i >= 0 {
		return item.Batches[i].Quantity
	}
	return decimal.Zero
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

// requireInvariants checks that balances match the day book and that no
// batch is empty or negative.
func requireInvariants(t *testing.T, s ledger.State) {
	t.Helper()
	require.Empty(t, ledger.Reconcile(s), "party balances drifted from the day book")
	for _, item := range s.StockItems {
		for _, b := range item.Batches {
			require.True(t, b.Quantity.IsPositive(), "item %s batch %s has quantity %s", item.ID, b.BatchNumber, b.Quantity)
		}
	}
}

// snapshot reduces a state to the figures the engine guarantees: balances by
// party and quantities by item and batch, plus the id order of entries and
// transactions.
type snapshot struct {
	Balances     map[string]string
	Batches      map[string][]string
	Entries      []string
	Transactions []string
}

func snap(s ledger.State, orderedBatches bool) snapshot {
	out := snapshot{Balances: map[string]string{}, Batches: map[string][]string{}}
	for _, p := range s.Parties {
		out.Balances[p.ID] = p.Balance.String()
	}
	for _, item := range s.StockItems {
		lines := make([]string, 0, len(item.Batches))
		for _, b := range item.Batches {
			lines = append(lines, b.BatchNumber+"="+b.Quantity.String())
		}
		if !orderedBatches {
			sort.Strings(lines)
		}
		out.Batches[item.ID] = lines
	}
	for _, e := range s.DayBookEntries {
		out.Entries = append(out.Entries, e.ID+":"+e.Net().String())
	}
	for _, tx := range s.StockTransactions {
		out.Transactions = append(out.Transactions, tx.ID)
	}
	return out
}
