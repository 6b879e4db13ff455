package ledger

import (
	"strings"
)

// Migrate upgrades state written by older versions:
//   - items without a batches list get one "default" batch holding their
//     legacy flat quantity (or no batches when that quantity is not positive)
//   - entries whose id is "db-<txn id>" for an existing transaction are
//     linked to it through SourceTransactionID
//   - nil collections become empty ones
//
// Migrate is idempotent.
func Migrate(state State) State {
	out := state
	if out.Screen == "" {
		out.Screen = ScreenHome
	}
	if out.Parties == nil {
		out.Parties = []Party{}
	}
	if out.StockTransactions == nil {
		out.StockTransactions = []StockTransaction{}
	}
	if out.Notifications == nil {
		out.Notifications = []Notification{}
	}
	if out.ItemCategories == nil {
		out.ItemCategories = append([]string(nil), DefaultCategories...)
	}

	items := make([]StockItem, len(state.StockItems))
	for i, item := range state.StockItems {
		items[i] = migrateItem(item)
	}
	out.StockItems = items

	known := make(map[string]bool, len(out.StockTransactions))
	for _, t := range out.StockTransactions {
		known[t.ID] = true
	}
	entries := make([]DayBookEntry, len(state.DayBookEntries))
	for i, e := range state.DayBookEntries {
		if e.SourceTransactionID == "" && strings.HasPrefix(e.ID, DerivedEntryPrefix) {
			if src := strings.TrimPrefix(e.ID, DerivedEntryPrefix); known[src] {
				e.SourceTransactionID = src
			}
		}
		entries[i] = e
	}
	out.DayBookEntries = entries
	return out
}

func migrateItem(item StockItem) StockItem {
	out := item.Clone()
	if out.Batches == nil {
		out.Batches = []Batch{}
		if item.LegacyQuantity != nil && item.LegacyQuantity.IsPositive() {
			out.Batches = append(out.Batches, Batch{BatchNumber: DefaultBatch, Quantity: *item.LegacyQuantity})
		}
	} else {
		out.Batches = prune(out.Batches)
	}
	out.LegacyQuantity = nil
	return out
}
