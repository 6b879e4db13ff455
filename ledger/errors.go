/*
errors.go - Centralized error types for the bookkeeping engine

PURPOSE:
  All error types in one place. Hosts match on sentinels with errors.Is and
  pull details out of structured errors with errors.As.

POLICY:
  1. Stock allocation failures abort the whole action; nothing is applied
  2. Missing entities on edit/delete are silent no-ops, not errors
  3. Structured errors unwrap to their sentinel

SEE ALSO:
  - allocator.go: returns stock errors
  - reducer.go: returns lookup and validation errors
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrItemNotFound is returned when a stock transaction references an
	// item that does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrBatchNotFound is returned when a sell names a batch the item lacks.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrInsufficientStock is returned when a sell exceeds available stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrPartyNotFound marks a missing party. Edits and deletes treat it as
	// a no-op; it is only surfaced by lookups that need the party.
	ErrPartyNotFound = errors.New("party not found")

	// ErrDerivedEntry is returned when a day-book entry produced by a stock
	// transaction is edited or deleted directly.
	ErrDerivedEntry = errors.New("entry is derived from a stock transaction")

	// ErrDuplicateID is returned when an add reuses an existing id.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrInvalidQuantity is returned for zero or negative stock movements.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidTransactionType is returned for a type other than Buy or Sell.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrBillPartyMismatch is returned when lines of one bill reference
	// different parties.
	ErrBillPartyMismatch = errors.New("bill lines reference different parties")

	// ErrUnknownAction is returned for an action the reducer does not handle.
	ErrUnknownAction = errors.New("unknown action")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientStockError reports a shortage. Available is the batch quantity
// for an explicit batch and the item total for auto-selection. Fragmented is
// true when the total would cover the request but no single batch does.
type InsufficientStockError struct {
	ItemID      string
	BatchNumber string
	Required    decimal.Decimal
	Available   decimal.Decimal
	Fragmented  bool
}

func (e *InsufficientStockError) Error() string {
	if e.Fragmented {
		return fmt.Sprintf("insufficient stock: no single batch of item %s holds %s (total available %s)",
			e.ItemID, e.Required, e.Available)
	}
	if e.BatchNumber != "" {
		return fmt.Sprintf("insufficient stock: item %s batch %s required %s, available %s",
			e.ItemID, e.BatchNumber, e.Required, e.Available)
	}
	return fmt.Sprintf("insufficient stock: item %s required %s, available %s",
		e.ItemID, e.Required, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

type BatchNotFoundError struct {
	ItemID      string
	BatchNumber string
}

func (e *BatchNotFoundError) Error() string {
	return fmt.Sprintf("batch %q not found on item %s", e.BatchNumber, e.ItemID)
}

func (e *BatchNotFoundError) Unwrap() error {
	return ErrBatchNotFound
}

type ItemNotFoundError struct {
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item %s not found", e.ItemID)
}

func (e *ItemNotFoundError) Unwrap() error {
	return ErrItemNotFound
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsStockError returns true if the error came from batch allocation.
func IsStockError(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrBatchNotFound) ||
		errors.Is(err, ErrInvalidQuantity)
}

// IsClientError returns true if the error is due to invalid input.
func IsClientError(err error) bool {
	return IsStockError(err) ||
		errors.Is(err, ErrDerivedEntry) ||
		errors.Is(err, ErrDuplicateID) ||
		errors.Is(err, ErrInvalidTransactionType) ||
		errors.Is(err, ErrBillPartyMismatch) ||
		errors.Is(err, ErrUnknownAction)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrPartyNotFound)
}
