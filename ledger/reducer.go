/*
reducer.go - The transaction reducer

PURPOSE:
  Reduce maps (state, action) to a new state. It is the only way state
  changes. It delegates batch math to the allocator (allocator.go), balance
  math to the reconciler (reconciler.go) and stock transactions to the
  apply/revert pair (stock.go).

CONTRACT:
  - Pure: the input state is never modified; slices are copied on write
  - Atomic: on error the input state is returned unchanged, never a partial
    update
  - Idempotent deletes: deleting or editing a missing id is a no-op

BALANCE OWNERSHIP:
  A party's Balance is written only by the reconciler. AddParty starts it at
  zero and EditParty keeps the stored value, whatever the input carries.

BATCH OWNERSHIP:
  An item's batches change only through stock transactions. EditStockItem
  keeps the stored batches.

SEE ALSO:
  - actions.go: the action set
  - session/session.go: queues actions and runs effects after transitions
*/
package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Reduce applies one action to state.
func Reduce(state State, action Action) (State, error) {
	switch a := action.(type) {
	case Navigate:
		next := state
		next.Screen = a.Screen
		next.ScreenPayload = a.Payload
		return next, nil

	case UpdateUserProfile:
		if state.User == nil {
			return state, nil
		}
		user := a.User
		user.Email = state.User.Email
		next := state
		next.User = &user
		return next, nil

	// -------------------------------------------------------------------------
	// Parties
	// -------------------------------------------------------------------------

	case AddParty:
		if state.party(a.Party.ID) >= 0 {
			return state, fmt.Errorf("party %s: %w", a.Party.ID, ErrDuplicateID)
		}
		p := a.Party
		p.Balance = decimal.Zero
		next := state
		next.Parties = appendTo(state.Parties, p)
		return next, nil

	case EditParty:
		i := state.party(a.Party.ID)
		if i < 0 {
			return state, nil
		}
		p := a.Party
		p.Balance = state.Parties[i].Balance
		next := state
		next.Parties = replaceAt(state.Parties, i, p)
		return next, nil

	case DeleteParty:
		if state.party(a.ID) < 0 {
			return state, nil
		}
		next := state
		next.Parties = filter(state.Parties, func(p Party) bool { return p.ID != a.ID })
		next.DayBookEntries = filter(state.DayBookEntries, func(e DayBookEntry) bool { return e.PartyID != a.ID })
		next.StockTransactions = filter(state.StockTransactions, func(t StockTransaction) bool { return t.PartyID != a.ID })
		next.DayBookEntries = detachOrphans(next.DayBookEntries, next.StockTransactions)
		return next, nil

	// -------------------------------------------------------------------------
	// Day book
	// -------------------------------------------------------------------------

	case AddDayBookEntry:
		if state.entry(a.Entry.ID) >= 0 {
			return state, fmt.Errorf("day-book entry %s: %w", a.Entry.ID, ErrDuplicateID)
		}
		e := a.Entry
		e.SourceTransactionID = ""
		next := state
		next.DayBookEntries = appendTo(state.DayBookEntries, e)
		next.Parties = applyToParties(state.Parties, e, false)
		return next, nil

	case EditDayBookEntry:
		i := state.entry(a.Entry.ID)
		if i < 0 {
			return state, nil
		}
		original := state.DayBookEntries[i]
		if original.IsDerived() {
			return state, fmt.Errorf("day-book entry %s: %w", original.ID, ErrDerivedEntry)
		}
		e := a.Entry
		e.SourceTransactionID = ""
		next := state
		next.Parties = Reassign(state.Parties, original, e)
		next.DayBookEntries = replaceAt(state.DayBookEntries, i, e)
		return next, nil

	case DeleteDayBookEntry:
		i := state.entry(a.ID)
		if i < 0 {
			return state, nil
		}
		e := state.DayBookEntries[i]
		if e.IsDerived() {
			return state, fmt.Errorf("day-book entry %s: %w", e.ID, ErrDerivedEntry)
		}
		next := state
		next.Parties = applyToParties(state.Parties, e, true)
		next.DayBookEntries = removeAt(state.DayBookEntries, i)
		return next, nil

	// -------------------------------------------------------------------------
	// Stock items
	// -------------------------------------------------------------------------

	case AddStockItem:
		if state.item(a.Item.ID) >= 0 {
			return state, fmt.Errorf("stock item %s: %w", a.Item.ID, ErrDuplicateID)
		}
		next := state
		next.StockItems = appendTo(state.StockItems, migrateItem(a.Item))
		return next, nil

	case EditStockItem:
		i := state.item(a.Item.ID)
		if i < 0 {
			return state, nil
		}
		item := a.Item.Clone()
		item.Batches = state.StockItems[i].Clone().Batches
		item.LegacyQuantity = nil
		next := state
		next.StockItems = replaceAt(state.StockItems, i, item)
		return next, nil

	case DeleteStockItem:
		if state.item(a.ID) < 0 {
			return state, nil
		}
		next := state
		next.StockItems = filter(state.StockItems, func(it StockItem) bool { return it.ID != a.ID })
		next.StockTransactions = filter(state.StockTransactions, func(t StockTransaction) bool { return t.ItemID != a.ID })
		next.DayBookEntries = detachOrphans(state.DayBookEntries, next.StockTransactions)
		next.Notifications = filter(state.Notifications, func(n Notification) bool { return n.ID != LowStockID(a.ID) })
		return next, nil

	case AddItemCategory:
		return addCategory(state, a.Category), nil

	// -------------------------------------------------------------------------
	// Stock transactions
	// -------------------------------------------------------------------------

	case AddStockTransaction:
		return ApplyStockTransaction(state, a.Transaction)

	case EditStockTransaction:
		return editTransaction(state, a.Transaction)

	case DeleteStockTransaction:
		return revertTransaction(state, a.ID, false), nil

	case SaveItemBill:
		return saveItemBill(state, a)

	// -------------------------------------------------------------------------
	// Restore and notifications
	// -------------------------------------------------------------------------

	case RestoreState:
		next := state
		next.Parties = a.Parties
		next.DayBookEntries = a.DayBookEntries
		next.StockItems = a.StockItems
		next.StockTransactions = a.StockTransactions
		if a.ItemCategories != nil {
			next.ItemCategories = a.ItemCategories
		}
		next.Notifications = []Notification{}
		next.Screen = ScreenHome
		next.ScreenPayload = nil
		return Migrate(next), nil

	case AddNotifications:
		return addNotifications(state, a.Notifications), nil

	case MarkNotificationRead:
		next := state
		next.Notifications = make([]Notification, len(state.Notifications))
		for i, n := range state.Notifications {
			if n.ID == a.ID {
				n.IsRead = true
			}
			next.Notifications[i] = n
		}
		return next, nil

	case MarkAllNotificationsRead:
		next := state
		next.Notifications = make([]Notification, len(state.Notifications))
		for i, n := range state.Notifications {
			n.IsRead = true
			next.Notifications[i] = n
		}
		return next, nil

	case ClearReadNotifications:
		next := state
		next.Notifications = filter(state.Notifications, func(n Notification) bool { return !n.IsRead })
		return next, nil
	}

	return state, fmt.Errorf("%T: %w", action, ErrUnknownAction)
}

// saveItemBill allocates every line against a working copy of the items and
// applies the bill's entries to its single party in one step. Any failing
// line aborts the whole bill.
func saveItemBill(state State, bill SaveItemBill) (State, error) {
	partyID := ""
	for _, id := range billParties(bill) {
		if partyID != "" && id != partyID {
			return state, ErrBillPartyMismatch
		}
		partyID = id
	}

	seen := make(map[string]bool)
	items := make([]StockItem, len(state.StockItems))
	copy(items, state.StockItems)

	txns := make([]StockTransaction, 0, len(bill.StockTransactions))
	for _, line := range bill.StockTransactions {
		if seen[line.ID] || state.transaction(line.ID) >= 0 {
			return state, fmt.Errorf("stock transaction %s: %w", line.ID, ErrDuplicateID)
		}
		seen[line.ID] = true

		ii := -1
		for i := range items {
			if items[i].ID == line.ItemID {
				ii = i
				break
			}
		}
		if ii < 0 {
			return state, &ItemNotFoundError{ItemID: line.ItemID}
		}
		item, t, err := allocate(items[ii], line)
		if err != nil {
			return state, fmt.Errorf("bill %s: %w", t.BillNumber, err)
		}
		items[ii] = item
		txns = append(txns, t)
	}

	// Only entries attributed to the bill's party move its balance.
	entryIDs := make(map[string]bool)
	aggregate := DayBookEntry{PartyID: partyID}
	for _, e := range bill.DayBookEntries {
		if entryIDs[e.ID] || state.entry(e.ID) >= 0 {
			return state, fmt.Errorf("day-book entry %s: %w", e.ID, ErrDuplicateID)
		}
		entryIDs[e.ID] = true
		if e.PartyID != partyID {
			continue
		}
		aggregate.CashIn = aggregate.CashIn.Add(e.CashIn)
		aggregate.CashOut = aggregate.CashOut.Add(e.CashOut)
	}

	next := state
	next.StockItems = items
	next.StockTransactions = appendTo(state.StockTransactions, txns...)
	next.DayBookEntries = appendTo(state.DayBookEntries, bill.DayBookEntries...)
	next.Parties = applyToParties(state.Parties, aggregate, false)
	return next, nil
}

func billParties(bill SaveItemBill) []string {
	var ids []string
	for _, t := range bill.StockTransactions {
		if t.PartyID != "" {
			ids = append(ids, t.PartyID)
		}
	}
	for _, e := range bill.DayBookEntries {
		if e.PartyID != "" {
			ids = append(ids, e.PartyID)
		}
	}
	return ids
}

// detachOrphans clears SourceTransactionID on entries whose transaction is
// gone. The cash history stays; the entry becomes an ordinary one.
func detachOrphans(entries []DayBookEntry, txns []StockTransaction) []DayBookEntry {
	live := make(map[string]bool, len(txns))
	for _, t := range txns {
		live[t.ID] = true
	}
	out := make([]DayBookEntry, len(entries))
	for i, e := range entries {
		if e.SourceTransactionID != "" && !live[e.SourceTransactionID] {
			e.SourceTransactionID = ""
		}
		out[i] = e
	}
	return out
}

func addCategory(state State, category string) State {
	category = strings.TrimSpace(category)
	if category == "" {
		return state
	}
	for _, c := range state.ItemCategories {
		if strings.EqualFold(c, category) {
			return state
		}
	}
	cats := appendTo(state.ItemCategories, category)
	sort.SliceStable(cats, func(i, j int) bool {
		return strings.ToLower(cats[i]) < strings.ToLower(cats[j])
	})
	next := state
	next.ItemCategories = cats
	return next
}
