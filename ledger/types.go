/*
Package ledger provides the bookkeeping state engine.

PURPOSE:
  This package holds the entity model and the pure functions that keep it
  consistent. Parties carry running balances, the day book records cash
  movements, stock items hold batch-level inventory and stock transactions
  move both stock and cash. Every change flows through Reduce.

KEY CONCEPTS IN THIS FILE (types.go):
  - Party: customer or supplier with a cached running balance
  - DayBookEntry: one cash movement, optionally tied to a party
  - StockItem / Batch: inventory split into lots
  - StockTransaction: a buy or sell that moves stock and produces a ledger line
  - State: the whole per-user dataset

DESIGN PRINCIPLES:
  1. Purity: Reduce never mutates its input; it returns a new State
  2. Precision: money and quantities use decimal.Decimal
  3. Explicit links: derived day-book entries point at their source
     transaction through SourceTransactionID
  4. Revert-then-reapply: edits are a revert of the original followed by an
     apply of the replacement

SEE ALSO:
  - allocator.go: batch arithmetic
  - reconciler.go: party balance arithmetic
  - reducer.go: the action dispatcher
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PARTIES
// =============================================================================

type PartyType string

const (
	PartyCustomer PartyType = "Customer"
	PartySupplier PartyType = "Supplier"
)

// Party is a customer or supplier.
//
// Balance is positive when the party owes the business (receivable) and
// negative when the business owes the party (payable). It is owned by the
// reconciler and always equals the net of the party's day-book entries.
type Party struct {
	ID             string          `json:"id"`
	Type           PartyType       `json:"type"`
	Name           string          `json:"name"`
	BusinessName   string          `json:"businessName,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	AlternatePhone string          `json:"alternatePhone,omitempty"`
	Address        string          `json:"address,omitempty"`
	Email          string          `json:"email,omitempty"`
	CNIC           string          `json:"cnic,omitempty"`
	Balance        decimal.Decimal `json:"balance"`
}

// =============================================================================
// DAY BOOK
// =============================================================================

// DerivedEntryPrefix is prepended to a stock transaction id to form the id of
// the day-book entry it produces. Links are resolved through
// SourceTransactionID; the prefix only keeps ids stable in backup files.
const DerivedEntryPrefix = "db-"

// DayBookEntry is one cash movement. By convention exactly one of CashIn and
// CashOut is non-zero.
type DayBookEntry struct {
	ID      string          `json:"id"`
	Date    string          `json:"date"`
	Details string          `json:"details"`
	CashIn  decimal.Decimal `json:"cashIn"`
	CashOut decimal.Decimal `json:"cashOut"`
	PartyID string          `json:"partyId,omitempty"`
	DueDate string          `json:"dueDate,omitempty"`

	// SourceTransactionID is set on entries synthesized from a stock
	// transaction. Such entries move in lockstep with their source.
	SourceTransactionID string `json:"sourceTransactionId,omitempty"`
}

// Net returns CashIn - CashOut, the entry's effect on a party balance.
func (e DayBookEntry) Net() decimal.Decimal {
	return e.CashIn.Sub(e.CashOut)
}

// IsDerived reports whether the entry was produced by a stock transaction.
func (e DayBookEntry) IsDerived() bool {
	return e.SourceTransactionID != ""
}

// DerivedEntryID returns the id of the entry synthesized for a transaction.
func DerivedEntryID(transactionID string) string {
	return DerivedEntryPrefix + transactionID
}

// =============================================================================
// STOCK
// =============================================================================

// DefaultBatch is the batch number used when a buyer does not name one.
const DefaultBatch = "default"

type Batch struct {
	BatchNumber string          `json:"batchNumber"`
	Quantity    decimal.Decimal `json:"quantity"`
	ExpiryDate  string          `json:"expiryDate,omitempty"`
}

type StockItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	SalesPrice    decimal.Decimal `json:"salesPrice"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	Barcode       string          `json:"barcode,omitempty"`
	LowStockLimit decimal.Decimal `json:"lowStockLimit"`
	Image         string          `json:"image,omitempty"`
	Batches       []Batch         `json:"batches"`

	// LegacyQuantity is the flat stock count used before batches existed.
	// It is only read by Migrate and never written back.
	LegacyQuantity *decimal.Decimal `json:"quantity,omitempty"`
}

// TotalQuantity returns the on-hand quantity across all batches.
func (i StockItem) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, b := range i.Batches {
		total = total.Add(b.Quantity)
	}
	return total
}

// Batch returns the index of the batch with the given number, or -1.
func (i StockItem) Batch(batchNumber string) int {
	for idx, b := range i.Batches {
		if b.BatchNumber == batchNumber {
			return idx
		}
	}
	return -1
}

// Clone returns a copy whose batch slice is not shared with i.
func (i StockItem) Clone() StockItem {
	out := i
	if i.Batches != nil {
		out.Batches = make([]Batch, len(i.Batches))
		copy(out.Batches, i.Batches)
	}
	return out
}

type TransactionType string

const (
	TxBuy  TransactionType = "Buy"
	TxSell TransactionType = "Sell"
)

// StockTransaction moves stock in (Buy) or out (Sell) of one batch.
// TotalAmount is always Quantity * Price; the reducer recomputes it.
type StockTransaction struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"itemId"`
	Type        TransactionType `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Details     string          `json:"details,omitempty"`
	Date        string          `json:"date"`
	BillNumber  string          `json:"billNumber,omitempty"`
	PartyID     string          `json:"partyId,omitempty"`
	Attachment  string          `json:"attachment,omitempty"`
	BatchNumber string          `json:"batchNumber"`
	ExpiryDate  string          `json:"expiryDate,omitempty"`
}

// =============================================================================
// USER, NOTIFICATIONS, STATE
// =============================================================================

// User is the profile of the logged-in account. Email is the storage key.
type User struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	PhotoURL       string `json:"photoUrl,omitempty"`
	Address        string `json:"address,omitempty"`
	Phone          string `json:"phone,omitempty"`
	AlternatePhone string `json:"alternatePhone,omitempty"`
	CNIC           string `json:"cnic,omitempty"`
	BusinessName   string `json:"businessName,omitempty"`
}

type NotificationType string

const (
	NotifyLowStock NotificationType = "lowStock"
	NotifyDueDate  NotificationType = "dueDate"
)

type NotificationLink struct {
	Screen Screen `json:"screen"`
	ItemID string `json:"itemId,omitempty"`
}

type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Link      NotificationLink `json:"link"`
	IsRead    bool             `json:"isRead"`
	Timestamp string           `json:"timestamp"`
}

// Screen names the UI location a host should show. The engine only stores it.
type Screen string

const (
	ScreenHome       Screen = "home"
	ScreenDayBook    Screen = "dayBook"
	ScreenItemDetail Screen = "itemDetail"
)

// DefaultCategories seeds the category list of a fresh state.
var DefaultCategories = []string{"General", "Groceries", "Electronics", "Clothing", "Stationery"}

// State is the complete dataset of one user.
type State struct {
	User              *User              `json:"user,omitempty"`
	Screen            Screen             `json:"currentScreen"`
	ScreenPayload     map[string]string  `json:"screenPayload,omitempty"`
	Parties           []Party            `json:"parties"`
	DayBookEntries    []DayBookEntry     `json:"dayBookEntries"`
	StockItems        []StockItem        `json:"stockItems"`
	StockTransactions []StockTransaction `json:"stockTransactions"`
	ItemCategories    []string           `json:"itemCategories"`
	Notifications     []Notification     `json:"notifications"`
}

// NewState returns an empty state for the given user (nil when logged out).
func NewState(user *User) State {
	return State{
		User:              user,
		Screen:            ScreenHome,
		Parties:           []Party{},
		DayBookEntries:    []DayBookEntry{},
		StockItems:        []StockItem{},
		StockTransactions: []StockTransaction{},
		ItemCategories:    append([]string(nil), DefaultCategories...),
		Notifications:     []Notification{},
	}
}

func (s State) party(id string) int {
	for i, p := range s.Parties {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s State) entry(id string) int {
	for i, e := range s.DayBookEntries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s State) item(id string) int {
	for i, it := range s.StockItems {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s State) transaction(id string) int {
	for i, t := range s.StockTransactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// derivedEntry returns the index of the entry synthesized for a transaction.
func (s State) derivedEntry(transactionID string) int {
	for i, e := range s.DayBookEntries {
		if e.SourceTransactionID == transactionID {
			return i
		}
	}
	return -1
}

// Party looks up a party by id.
func (s State) Party(id string) (Party, bool) {
	if i := s.party(id); i >= 0 {
		return s.Parties[i], true
	}
	return Party{}, false
}

// StockItem looks up an item by id.
func (s State) StockItem(id string) (StockItem, bool) {
	if i := s.item(id); i >= 0 {
		return s.StockItems[i], true
	}
	return StockItem{}, false
}

// StockTransaction looks up a transaction by id.
func (s State) StockTransaction(id string) (StockTransaction, bool) {
	if i := s.transaction(id); i >= 0 {
		return s.StockTransactions[i], true
	}
	return StockTransaction{}, false
}

// DayBookEntry looks up an entry by id.
func (s State) DayBookEntry(id string) (DayBookEntry, bool) {
	if i := s.entry(id); i >= 0 {
		return s.DayBookEntries[i], true
	}
	return DayBookEntry{}, false
}
