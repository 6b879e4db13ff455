/*
allocator.go - Batch-level stock arithmetic

PURPOSE:
  Translates a stock movement into a concrete change to an item's batches.
  Every function takes an item by value and returns a new one; the input's
  batch slice is never written.

INVARIANT:
  Every batch on an item has Quantity > 0. A batch that reaches zero (or
  below) is removed, so the batch list is sparse.

OPERATIONS:
  Buy:    increment the named batch, or append it. Never fails.
  Sell:   decrement the named batch. No search: the batch must exist and
          hold enough.
  Unbuy:  inverse of Buy, used when a purchase is deleted.
  Unsell: inverse of Sell, used when a sale is deleted. Recreates the batch
          if it was emptied and pruned in the meantime.

  Edits run the inverse operations unpruned (unbuy) so that reverting and
  reapplying the same purchase is exact even when its batch was sold out.

  SelectBatch picks a batch for a sale that did not name one. It runs before
  Sell; Sell itself performs no search.

SEE ALSO:
  - stock.go: composes these with the reconciler
*/
package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeBatch maps a blank batch number to DefaultBatch.
func NormalizeBatch(batchNumber string) string {
	if strings.TrimSpace(batchNumber) == "" {
		return DefaultBatch
	}
	return strings.TrimSpace(batchNumber)
}

// Buy adds quantity to the item's batch, creating it when missing.
func Buy(item StockItem, batchNumber string, quantity decimal.Decimal, expiryDate string) StockItem {
	out := item.Clone()
	batchNumber = NormalizeBatch(batchNumber)

	if i := out.Batch(batchNumber); i >= 0 {
		out.Batches[i].Quantity = out.Batches[i].Quantity.Add(quantity)
		return out
	}
	out.Batches = append(out.Batches, Batch{
		BatchNumber: batchNumber,
		Quantity:    quantity,
		ExpiryDate:  expiryDate,
	})
	return out
}

// Sell removes quantity from exactly the named batch.
func Sell(item StockItem, batchNumber string, quantity decimal.Decimal) (StockItem, error) {
	i := item.Batch(batchNumber)
	if i < 0 {
		return item, &BatchNotFoundError{ItemID: item.ID, BatchNumber: batchNumber}
	}
	if available := item.Batches[i].Quantity; available.LessThan(quantity) {
		return item, &InsufficientStockError{
			ItemID:      item.ID,
			BatchNumber: batchNumber,
			Required:    quantity,
			Available:   available,
		}
	}

	out := item.Clone()
	out.Batches[i].Quantity = out.Batches[i].Quantity.Sub(quantity)
	out.Batches = prune(out.Batches)
	return out, nil
}

// Unbuy reverses a purchase. A batch that no longer exists is left alone:
// the stock it held has already left through later sales.
func Unbuy(item StockItem, batchNumber string, quantity decimal.Decimal) StockItem {
	out := unbuy(item, batchNumber, quantity)
	out.Batches = prune(out.Batches)
	return out
}

// unbuy subtracts without pruning. A missing batch is recorded with a
// negative quantity so that a following Buy of the same batch cancels it
// exactly. Callers must prune before the item is stored.
func unbuy(item StockItem, batchNumber string, quantity decimal.Decimal) StockItem {
	out := item.Clone()
	if i := out.Batch(batchNumber); i >= 0 {
		out.Batches[i].Quantity = out.Batches[i].Quantity.Sub(quantity)
		return out
	}
	out.Batches = append(out.Batches, Batch{BatchNumber: batchNumber, Quantity: quantity.Neg()})
	return out
}

// Unsell reverses a sale, restoring the batch identity from the sale itself
// when the batch has been emptied.
func Unsell(item StockItem, batchNumber string, quantity decimal.Decimal, expiryDate string) StockItem {
	out := item.Clone()
	if i := out.Batch(batchNumber); i >= 0 {
		out.Batches[i].Quantity = out.Batches[i].Quantity.Add(quantity)
	} else {
		out.Batches = append(out.Batches, Batch{
			BatchNumber: batchNumber,
			Quantity:    quantity,
			ExpiryDate:  expiryDate,
		})
	}
	out.Batches = prune(out.Batches)
	return out
}

// SelectBatch chooses the batch a sale of required units should draw from:
//  1. the only batch, if it holds enough
//  2. the "default" batch, if it holds enough
//  3. the first batch, in order, that holds enough
//
// Otherwise it fails with an InsufficientStockError carrying the item total.
// Fragmented is set when the total would suffice but no single batch does.
func SelectBatch(item StockItem, required decimal.Decimal) (Batch, error) {
	if len(item.Batches) == 1 && item.Batches[0].Quantity.GreaterThanOrEqual(required) {
		return item.Batches[0], nil
	}
	if i := item.Batch(DefaultBatch); i >= 0 && item.Batches[i].Quantity.GreaterThanOrEqual(required) {
		return item.Batches[i], nil
	}
	for _, b := range item.Batches {
		if b.Quantity.GreaterThanOrEqual(required) {
			return b, nil
		}
	}

	total := item.TotalQuantity()
	return Batch{}, &InsufficientStockError{
		ItemID:     item.ID,
		Required:   required,
		Available:  total,
		Fragmented: total.GreaterThanOrEqual(required),
	}
}

func prune(batches []Batch) []Batch {
	out := batches[:0]
	for _, b := range batches {
		if b.Quantity.IsPositive() {
			out = append(out, b)
		}
	}
	return out
}
