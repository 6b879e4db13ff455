package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/daybook/ledger"
)

func TestApplyRevert_AreInverse(t *testing.T) {
	p := ledger.Party{ID: "P1", Balance: d("40")}
	e := ledger.DayBookEntry{PartyID: "P1", CashIn: d("15"), CashOut: d("3")}

	applied := ledger.Apply(p, e)
	requireDecimal(t, "52", applied.Balance)

	reverted := ledger.Revert(applied, e)
	requireDecimal(t, "40", reverted.Balance)
}

func TestReassign_MovesEffectBetweenParties(t *testing.T) {
	parties := []ledger.Party{{ID: "P1", Balance: d("500")}, {ID: "P2", Balance: d("0")}}
	oldEntry := ledger.DayBookEntry{PartyID: "P1", CashIn: d("500")}
	newEntry := ledger.DayBookEntry{PartyID: "P2", CashIn: d("200")}

	out := ledger.Reassign(parties, oldEntry, newEntry)

	requireDecimal(t, "0", out[0].Balance)
	requireDecimal(t, "200", out[1].Balance)
	requireDecimal(t, "500", parties[0].Balance) // input untouched
}

func TestReassign_EitherSideMayBeAbsent(t *testing.T) {
	parties := []ledger.Party{{ID: "P1", Balance: d("10")}}

	out := ledger.Reassign(parties, ledger.DayBookEntry{CashIn: d("99")}, ledger.DayBookEntry{PartyID: "P1", CashOut: d("4")})
	requireDecimal(t, "6", out[0].Balance)

	out = ledger.Reassign(parties, ledger.DayBookEntry{PartyID: "gone", CashIn: d("1")}, ledger.DayBookEntry{})
	requireDecimal(t, "10", out[0].Balance)
}

func TestReconcile_ReportsDrift(t *testing.T) {
	// GIVEN: a cached balance that disagrees with the day book
	s := riceState()
	s = mustReduce(t, s, ledger.AddDayBookEntry{Entry: ledger.DayBookEntry{ID: "e1", PartyID: "P1", CashIn: d("30")}})
	s.Parties[0].Balance = d("31")

	// WHEN
	drift := ledger.Reconcile(s)

	// THEN
	require.Len(t, drift, 1)
	assert.Equal(t, "P1", drift[0].PartyID)
	requireDecimal(t, "31", drift[0].Cached)
	requireDecimal(t, "30", drift[0].Computed)
}
