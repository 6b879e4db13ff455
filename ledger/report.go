package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PARTY STATEMENT
// =============================================================================

type StatementLine struct {
	EntryID string          `json:"entryId"`
	Date    string          `json:"date"`
	Details string          `json:"details"`
	CashIn  decimal.Decimal `json:"cashIn"`
	CashOut decimal.Decimal `json:"cashOut"`
	Balance decimal.Decimal `json:"balance"`
}

type Statement struct {
	Party        Party           `json:"party"`
	Lines        []StatementLine `json:"lines"`
	TotalIn      decimal.Decimal `json:"totalIn"`
	TotalOut     decimal.Decimal `json:"totalOut"`
	FinalBalance decimal.Decimal `json:"finalBalance"`
}

// PartyStatement lists a party's day-book lines in date order with a running
// balance. Stock transactions appear through their derived entries, so the
// final balance equals Party.Balance whenever the balance invariant holds.
func PartyStatement(state State, partyID string) (Statement, error) {
	party, ok := state.Party(partyID)
	if !ok {
		return Statement{}, ErrPartyNotFound
	}

	var entries []DayBookEntry
	for _, e := range state.DayBookEntries {
		if e.PartyID == partyID {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })

	st := Statement{Party: party, Lines: make([]StatementLine, 0, len(entries))}
	running := decimal.Zero
	for _, e := range entries {
		running = running.Add(e.Net())
		st.TotalIn = st.TotalIn.Add(e.CashIn)
		st.TotalOut = st.TotalOut.Add(e.CashOut)
		st.Lines = append(st.Lines, StatementLine{
			EntryID: e.ID,
			Date:    e.Date,
			Details: e.Details,
			CashIn:  e.CashIn,
			CashOut: e.CashOut,
			Balance: running,
		})
	}
	st.FinalBalance = running
	return st, nil
}

// =============================================================================
// INVOICES
// =============================================================================

type Invoice struct {
	BillNumber   string             `json:"billNumber"`
	PartyID      string             `json:"partyId,omitempty"`
	Date         string             `json:"date"`
	Type         TransactionType    `json:"type"`
	Total        decimal.Decimal    `json:"total"`
	Transactions []StockTransaction `json:"transactions"`
}

// Invoices groups transactions by bill number, newest first. Transactions
// without a bill number are not invoiced.
func Invoices(state State) []Invoice {
	index := make(map[string]int)
	var out []Invoice
	for _, t := range state.StockTransactions {
		if t.BillNumber == "" {
			continue
		}
		i, ok := index[t.BillNumber]
		if !ok {
			i = len(out)
			index[t.BillNumber] = i
			out = append(out, Invoice{
				BillNumber: t.BillNumber,
				PartyID:    t.PartyID,
				Date:       t.Date,
				Type:       t.Type,
			})
		}
		out[i].Transactions = append(out[i].Transactions, t)
		out[i].Total = out[i].Total.Add(t.TotalAmount)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// =============================================================================
// STOCK SUMMARY
// =============================================================================

type StockLevel struct {
	ItemID   string          `json:"itemId"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Quantity decimal.Decimal `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
	Batches  int             `json:"batches"`
	LowStock bool            `json:"lowStock"`
}

// StockSummary reports on-hand quantity and value at purchase price per item.
func StockSummary(state State) []StockLevel {
	out := make([]StockLevel, 0, len(state.StockItems))
	for _, item := range state.StockItems {
		qty := item.TotalQuantity()
		out = append(out, StockLevel{
			ItemID:   item.ID,
			Name:     item.Name,
			Unit:     item.Unit,
			Quantity: qty,
			Value:    qty.Mul(item.PurchasePrice),
			Batches:  len(item.Batches),
			LowStock: qty.IsPositive() && qty.LessThanOrEqual(item.LowStockLimit),
		})
	}
	return out
}

// =============================================================================
// CASH SUMMARY
// =============================================================================

type CashTotals struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	TotalIn  decimal.Decimal `json:"totalIn"`
	TotalOut decimal.Decimal `json:"totalOut"`
	Net      decimal.Decimal `json:"net"`
	Entries  int             `json:"entries"`
}

// CashSummary totals the day book between from and to, inclusive. Entries
// with unparseable dates are skipped.
func CashSummary(state State, from, to time.Time) CashTotals {
	totals := CashTotals{From: from.Format(dateLayout), To: to.Format(dateLayout)}
	for _, e := range state.DayBookEntries {
		d, err := ParseDate(e.Date, from.Location())
		if err != nil || d.Before(from) || d.After(to) {
			continue
		}
		totals.TotalIn = totals.TotalIn.Add(e.CashIn)
		totals.TotalOut = totals.TotalOut.Add(e.CashOut)
		totals.Entries++
	}
	totals.Net = totals.TotalIn.Sub(totals.TotalOut)
	return totals
}
