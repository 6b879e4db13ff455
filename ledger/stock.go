/*
stock.go - Apply and revert a stock transaction

PURPOSE:
  A stock transaction touches three collections at once: the item's batches,
  the day book (through one derived entry) and the party's balance. This file
  holds the two pure functions that move all three together:

    ApplyStockTransaction(s, t)  - allocate, derive the entry, apply balance
    RevertStockTransaction(s, t) - inverse allocate, revert balance, remove

  RevertStockTransaction(ApplyStockTransaction(s, t), t) restores balances
  and the quantity of every batch, but not batch order: a batch emptied by a
  sale comes back at the end of the list. Editing is built from the pair:
  revert the original, apply the replacement, then restore list positions.

ATOMICITY:
  Apply validates everything before building the new state. On error the
  input state is returned unchanged.

BILL LINES:
  Transactions saved through a bill carry no derived entry; the bill's own
  entries hold their cash effect. Revert only touches the balance through a
  derived entry, so bill lines restore stock without disturbing the ledger.
*/
package ledger

import (
	"fmt"
	"strings"
)

// ApplyStockTransaction records txn: batches move, a derived day-book entry
// is appended and the party balance absorbs the entry.
func ApplyStockTransaction(state State, txn StockTransaction) (State, error) {
	if state.transaction(txn.ID) >= 0 {
		return state, fmt.Errorf("stock transaction %s: %w", txn.ID, ErrDuplicateID)
	}
	return applyTransaction(state, txn, true)
}

// RevertStockTransaction undoes the transaction with txn.ID. The stored copy
// is authoritative; other fields of txn are ignored. Unknown ids are a no-op.
func RevertStockTransaction(state State, txn StockTransaction) State {
	return revertTransaction(state, txn.ID, false)
}

// allocate runs the allocator for one transaction against item. For sells
// without a batch it auto-selects one and records the choice on txn.
func allocate(item StockItem, txn StockTransaction) (StockItem, StockTransaction, error) {
	if !txn.Quantity.IsPositive() {
		return item, txn, fmt.Errorf("stock transaction %s: %w", txn.ID, ErrInvalidQuantity)
	}
	txn.TotalAmount = txn.Quantity.Mul(txn.Price)

	switch txn.Type {
	case TxBuy:
		txn.BatchNumber = NormalizeBatch(txn.BatchNumber)
		return Buy(item, txn.BatchNumber, txn.Quantity, txn.ExpiryDate), txn, nil

	case TxSell:
		if strings.TrimSpace(txn.BatchNumber) == "" {
			batch, err := SelectBatch(item, txn.Quantity)
			if err != nil {
				return item, txn, err
			}
			txn.BatchNumber = batch.BatchNumber
			if txn.ExpiryDate == "" {
				txn.ExpiryDate = batch.ExpiryDate
			}
		}
		sold, err := Sell(item, txn.BatchNumber, txn.Quantity)
		if err != nil {
			return item, txn, err
		}
		if txn.ExpiryDate == "" {
			if i := item.Batch(txn.BatchNumber); i >= 0 {
				txn.ExpiryDate = item.Batches[i].ExpiryDate
			}
		}
		return sold, txn, nil
	}
	return item, txn, fmt.Errorf("stock transaction %s type %q: %w", txn.ID, txn.Type, ErrInvalidTransactionType)
}

// derive builds the day-book entry a transaction produces.
func derive(txn StockTransaction, item StockItem) DayBookEntry {
	entry := DayBookEntry{
		ID:                  DerivedEntryID(txn.ID),
		Date:                txn.Date,
		Details:             txn.Details,
		PartyID:             txn.PartyID,
		SourceTransactionID: txn.ID,
	}
	if entry.Details == "" {
		entry.Details = fmt.Sprintf("%s %s", txn.Type, item.Name)
	}
	if txn.Type == TxSell {
		entry.CashIn = txn.TotalAmount
	} else {
		entry.CashOut = txn.TotalAmount
	}
	return entry
}

func applyTransaction(state State, txn StockTransaction, withEntry bool) (State, error) {
	ii := state.item(txn.ItemID)
	if ii < 0 {
		return state, &ItemNotFoundError{ItemID: txn.ItemID}
	}
	if withEntry && state.entry(DerivedEntryID(txn.ID)) >= 0 {
		return state, fmt.Errorf("day-book entry %s: %w", DerivedEntryID(txn.ID), ErrDuplicateID)
	}

	item, txn, err := allocate(state.StockItems[ii], txn)
	if err != nil {
		return state, err
	}

	next := state
	next.StockItems = replaceAt(state.StockItems, ii, item)
	next.StockTransactions = appendTo(state.StockTransactions, txn)

	if withEntry {
		entry := derive(txn, item)
		next.DayBookEntries = appendTo(state.DayBookEntries, entry)
		next.Parties = applyToParties(state.Parties, entry, false)
	}
	return next, nil
}

// revertTransaction undoes a stored transaction. With raw set the item's
// batches are left unpruned for an immediate reapply.
func revertTransaction(state State, id string, raw bool) State {
	ti := state.transaction(id)
	if ti < 0 {
		return state
	}
	txn := state.StockTransactions[ti]
	next := state

	if ii := state.item(txn.ItemID); ii >= 0 {
		item := state.StockItems[ii]
		switch {
		case txn.Type == TxBuy && raw:
			item = unbuy(item, txn.BatchNumber, txn.Quantity)
		case txn.Type == TxBuy:
			item = Unbuy(item, txn.BatchNumber, txn.Quantity)
		default:
			item = Unsell(item, txn.BatchNumber, txn.Quantity, txn.ExpiryDate)
		}
		next.StockItems = replaceAt(state.StockItems, ii, item)
	}

	if ei := state.derivedEntry(id); ei >= 0 {
		next.Parties = applyToParties(state.Parties, state.DayBookEntries[ei], true)
		next.DayBookEntries = removeAt(state.DayBookEntries, ei)
	}

	next.StockTransactions = removeAt(state.StockTransactions, ti)
	return next
}

// editTransaction replaces a transaction by reverting the original and
// applying the replacement. The transaction and its derived entry go back to
// their original positions, and batch order on the touched items is kept,
// so an edit with identical content is an identity.
func editTransaction(state State, txn StockTransaction) (State, error) {
	ti := state.transaction(txn.ID)
	if ti < 0 {
		return state, nil
	}
	original := state.StockTransactions[ti]
	ei := state.derivedEntry(txn.ID)

	next := revertTransaction(state, txn.ID, true)
	next, err := applyTransaction(next, txn, ei >= 0)
	if err != nil {
		return state, err
	}

	next.StockTransactions = moveLast(next.StockTransactions, ti)
	if ei >= 0 {
		next.DayBookEntries = moveLast(next.DayBookEntries, ei)
	}

	for _, itemID := range []string{original.ItemID, txn.ItemID} {
		before, ok := state.StockItem(itemID)
		if !ok {
			continue
		}
		if ni := next.item(itemID); ni >= 0 {
			item := keepBatchOrder(before, next.StockItems[ni])
			item.Batches = prune(item.Batches)
			next.StockItems[ni] = item
		}
	}
	return next, nil
}

// keepBatchOrder orders after's batches like before's; batches new to after
// follow in their own order.
func keepBatchOrder(before, after StockItem) StockItem {
	out := after.Clone()
	ordered := make([]Batch, 0, len(after.Batches))
	used := make(map[string]bool, len(after.Batches))
	for _, b := range before.Batches {
		if i := after.Batch(b.BatchNumber); i >= 0 {
			ordered = append(ordered, after.Batches[i])
			used[b.BatchNumber] = true
		}
	}
	for _, b := range after.Batches {
		if !used[b.BatchNumber] {
			ordered = append(ordered, b)
		}
	}
	out.Batches = ordered
	return out
}

// =============================================================================
// SLICE HELPERS - Copy-on-write; inputs are never modified
// =============================================================================

func appendTo[T any](s []T, v ...T) []T {
	out := make([]T, 0, len(s)+len(v))
	out = append(out, s...)
	return append(out, v...)
}

func replaceAt[T any](s []T, i int, v T) []T {
	out := make([]T, len(s))
	copy(out, s)
	out[i] = v
	return out
}

func removeAt[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// moveLast moves the final element of s to index i. s must be owned.
func moveLast[T any](s []T, i int) []T {
	last := len(s) - 1
	if i >= last || i < 0 {
		return s
	}
	v := s[last]
	copy(s[i+1:], s[i:last])
	s[i] = v
	return s
}

func filter[T any](s []T, keep func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
