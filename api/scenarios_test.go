package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/daybook/ledger"
)

func TestBuildScenario_AllScenariosAreConsistent(t *testing.T) {
	for _, sc := range scenarios {
		t.Run(sc.ID, func(t *testing.T) {
			restore, err := BuildScenario(sc.ID, fixedClock())
			require.NoError(t, err)

			s, err := ledger.Reduce(ledger.NewState(nil), restore)
			require.NoError(t, err)
			assert.NotEmpty(t, s.Parties)
			assert.Empty(t, ledger.Reconcile(s))
			for _, item := range s.StockItems {
				for _, b := range item.Batches {
					assert.True(t, b.Quantity.IsPositive(), "%s batch %s", item.ID, b.BatchNumber)
				}
			}
		})
	}
}

func TestBuildScenario_Unknown(t *testing.T) {
	_, err := BuildScenario("nope", fixedClock())
	assert.ErrorIs(t, err, ErrUnknownScenario)
}

func TestListScenarios(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/scenarios", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var list []ScenarioDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, len(scenarios))
	assert.Equal(t, "rice-shop", list[0].ID)
}

func TestLoadScenario_RiceShop(t *testing.T) {
	a := newTestAPI(t)
	a.login(t)

	rec := a.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "rice-shop"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s := decodeState(t, rec)
	// 30 kg at 2.5 on credit plus a 40 payment.
	assert.Equal(t, "115", partyBalance(t, s, "P1"))
	assert.Equal(t, "-100", partyBalance(t, s, "P2"))
	rice, ok := s.StockItem("rice")
	require.True(t, ok)
	assert.Equal(t, "120", rice.TotalQuantity().String())

	// The scenario replaced the book and was persisted.
	stored, err := a.store.Load(context.Background(), "mayra@example.com")
	require.NoError(t, err)
	assert.Len(t, stored.StockTransactions, 2)
}

func TestLoadScenario_RaisesAlerts(t *testing.T) {
	a := newTestAPI(t)
	a.login(t)

	rec := a.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "credit-book"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = a.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "wholesale-batches"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	s := decodeState(t, rec)
	var ids []string
	for _, n := range s.Notifications {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"low-stock-sugar"}, ids, "loading a scenario starts from fresh notifications")
}

func TestLoadScenario_CreditBookDueDates(t *testing.T) {
	a := newTestAPI(t)
	a.login(t)

	rec := a.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "credit-book"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	s := decodeState(t, rec)
	var ids []string
	for _, n := range s.Notifications {
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []string{"due-date-e1", "due-date-e2", "due-date-e3"}, ids)
}

func TestLoadScenario_Errors(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "rice-shop"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	a.login(t)
	rec = a.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "moon-base"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/scenarios/load", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
