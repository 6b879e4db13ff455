/*
reconciler.go - Party balance arithmetic

PURPOSE:
  Keeps each party's cached Balance equal to the net of the day-book entries
  attributed to it. Every balance change in the engine goes through here.

INVARIANT:
  For every party P:
    P.Balance == Σ (e.CashIn - e.CashOut) over entries e with e.PartyID == P.ID

  Stock transactions reach the balance only through the day-book entries
  they produce, so the sum over the day book is the whole story.

OPERATIONS:
  Apply:    balance += entry.Net()
  Revert:   balance -= entry.Net()   (exact inverse of Apply)
  Reassign: revert on the old entry's party, apply on the new entry's party,
            independently; either may be absent
  Reconcile: recompute every balance from the day book and report drift

SEE ALSO:
  - reducer.go: calls these for day-book actions
  - stock.go: calls these for stock transactions
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// Apply adds the entry's net cash effect to the party.
func Apply(party Party, entry DayBookEntry) Party {
	party.Balance = party.Balance.Add(entry.Net())
	return party
}

// Revert removes the entry's net cash effect from the party.
func Revert(party Party, entry DayBookEntry) Party {
	party.Balance = party.Balance.Sub(entry.Net())
	return party
}

// Reassign moves an entry's effect from its old party to its new one.
// The parties slice is copied; only the affected parties change.
func Reassign(parties []Party, oldEntry, newEntry DayBookEntry) []Party {
	out := make([]Party, len(parties))
	copy(out, parties)

	if oldEntry.PartyID != "" {
		for i := range out {
			if out[i].ID == oldEntry.PartyID {
				out[i] = Revert(out[i], oldEntry)
				break
			}
		}
	}
	if newEntry.PartyID != "" {
		for i := range out {
			if out[i].ID == newEntry.PartyID {
				out[i] = Apply(out[i], newEntry)
				break
			}
		}
	}
	return out
}

// applyToParties applies or reverts an entry against whichever party it
// references, returning a new slice.
func applyToParties(parties []Party, entry DayBookEntry, revert bool) []Party {
	if revert {
		return Reassign(parties, entry, DayBookEntry{})
	}
	return Reassign(parties, DayBookEntry{}, entry)
}

// =============================================================================
// RECONCILIATION - Detect balances that drifted from the day book
// =============================================================================

// Discrepancy describes a party whose cached balance disagrees with the
// day book.
type Discrepancy struct {
	PartyID  string          `json:"partyId"`
	Cached   decimal.Decimal `json:"cached"`
	Computed decimal.Decimal `json:"computed"`
}

// LedgerBalance computes a party's balance from the day book alone.
func LedgerBalance(state State, partyID string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range state.DayBookEntries {
		if e.PartyID == partyID {
			total = total.Add(e.Net())
		}
	}
	return total
}

// Reconcile returns every party whose cached balance differs from the
// day-book total. An empty result means the balance invariant holds.
func Reconcile(state State) []Discrepancy {
	var out []Discrepancy
	for _, p := range state.Parties {
		computed := LedgerBalance(state, p.ID)
		if !computed.Equal(p.Balance) {
			out = append(out, Discrepancy{PartyID: p.ID, Cached: p.Balance, Computed: computed})
		}
	}
	return out
}
