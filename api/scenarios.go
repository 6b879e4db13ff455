/*
scenarios.go - Demo datasets for testing and demonstrations

PURPOSE:

	Provides pre-built books that replace the logged-in user's data with
	realistic parties, stock and day-book history. Each dataset is built by
	reducing ordinary actions from an empty state, so balances, derived
	entries and batches are consistent by construction, then applied with
	one RestoreState.

AVAILABLE SCENARIOS:

	rice-shop:          One item, one customer, a sale and a purchase
	wholesale-batches:  Batch-tracked stock, a multi-line bill, a low-stock item
	credit-book:        Credit customers with overdue, due-today and upcoming payments

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "rice-shop"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' with ID, name, description and a build function
 2. The build function returns actions; dates are relative to now

NOTE:

	Loading a scenario overwrites the logged-in user's book.

SEE ALSO:
  - handlers.go: error mapping
  - ledger/actions.go: the actions scenarios are built from
*/
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/daybook/ledger"
)

// ErrUnknownScenario is returned for a scenario id that is not listed.
var ErrUnknownScenario = errors.New("unknown scenario")

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	build func(now time.Time) []ledger.Action
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "rice-shop",
			Name:        "Rice Shop",
			Description: "100 kg of rice in one batch, a credit sale of 30 kg and a purchase into a new batch",
		},
		build: riceShop,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "wholesale-batches",
			Name:        "Wholesale Batches",
			Description: "Batch-tracked stock with expiry dates, a two-line bill and a low-stock alert",
		},
		build: wholesaleBatches,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "credit-book",
			Name:        "Credit Book",
			Description: "Customers on credit with overdue, due-today and upcoming payments",
		},
		build: creditBook,
	},
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		out[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, out)
}

// LoadScenario replaces the logged-in user's data with a demo dataset.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", err)
		return
	}
	if _, ok := h.requireLogin(w); !ok {
		return
	}

	restore, err := BuildScenario(req.ScenarioID, h.now())
	if errors.Is(err, ErrUnknownScenario) {
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "Failed to build scenario", err)
		return
	}

	state, err := h.Session.Dispatch(r.Context(), restore)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.logger.Info("scenario loaded", zap.String("scenario", req.ScenarioID))
	writeJSON(w, http.StatusOK, state)
}

// BuildScenario reduces a scenario's actions from an empty book and returns
// the result as a RestoreState.
func BuildScenario(id string, now time.Time) (ledger.RestoreState, error) {
	for _, s := range scenarios {
		if s.ID != id {
			continue
		}
		state := ledger.NewState(nil)
		for _, action := range s.build(now) {
			next, err := ledger.Reduce(state, action)
			if err != nil {
				return ledger.RestoreState{}, fmt.Errorf("scenario %s: %s: %w", id, action.Type(), err)
			}
			state = next
		}
		return ledger.RestoreState{
			Parties:           state.Parties,
			DayBookEntries:    state.DayBookEntries,
			StockItems:        state.StockItems,
			StockTransactions: state.StockTransactions,
			ItemCategories:    state.ItemCategories,
		}, nil
	}
	return ledger.RestoreState{}, fmt.Errorf("%w: %q", ErrUnknownScenario, id)
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

func num(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(now time.Time, offset int) string {
	return now.AddDate(0, 0, offset).Format("2006-01-02")
}

func riceShop(now time.Time) []ledger.Action {
	return []ledger.Action{
		ledger.AddParty{Party: ledger.Party{ID: "P1", Type: ledger.PartyCustomer, Name: "Ali Traders", Phone: "0300-1234567"}},
		ledger.AddParty{Party: ledger.Party{ID: "P2", Type: ledger.PartySupplier, Name: "Punjab Grain Co"}},
		ledger.AddStockItem{Item: ledger.StockItem{
			ID: "rice", Name: "Rice", Category: "Groceries", Unit: "kg",
			SalesPrice: num("2.5"), PurchasePrice: num("2"), LowStockLimit: num("10"),
			Batches: []ledger.Batch{{BatchNumber: ledger.DefaultBatch, Quantity: num("100")}},
		}},
		ledger.AddStockTransaction{Transaction: ledger.StockTransaction{
			ID: "t1", ItemID: "rice", Type: ledger.TxSell, Quantity: num("30"), Price: num("2.5"),
			PartyID: "P1", Date: day(now, -2), Details: "Sold on credit",
		}},
		ledger.AddStockTransaction{Transaction: ledger.StockTransaction{
			ID: "t2", ItemID: "rice", Type: ledger.TxBuy, Quantity: num("50"), Price: num("2"),
			PartyID: "P2", Date: day(now, -1), BatchNumber: "R-" + now.Format("0601"),
		}},
		ledger.AddDayBookEntry{Entry: ledger.DayBookEntry{
			ID: "e1", Date: day(now, 0), Details: "Part payment from Ali", CashIn: num("40"), PartyID: "P1",
		}},
	}
}

func wholesaleBatches(now time.Time) []ledger.Action {
	return []ledger.Action{
		ledger.AddItemCategory{Category: "Oils"},
		ledger.AddParty{Party: ledger.Party{ID: "C1", Type: ledger.PartyCustomer, Name: "Hamza Store", BusinessName: "Hamza General Store"}},
		ledger.AddParty{Party: ledger.Party{ID: "S1", Type: ledger.PartySupplier, Name: "Lahore Oil Mills"}},
		ledger.AddStockItem{Item: ledger.StockItem{
			ID: "oil", Name: "Cooking Oil", Category: "Oils", Unit: "ltr",
			SalesPrice: num("9"), PurchasePrice: num("7.5"), LowStockLimit: num("5"),
			Batches: []ledger.Batch{
				{BatchNumber: "A", Quantity: num("20"), ExpiryDate: day(now, 90)},
				{BatchNumber: "B", Quantity: num("5"), ExpiryDate: day(now, 30)},
			},
		}},
		ledger.AddStockItem{Item: ledger.StockItem{
			ID: "flour", Name: "Flour", Category: "Groceries", Unit: "kg",
			SalesPrice: num("1.2"), PurchasePrice: num("0.9"), LowStockLimit: num("25"),
			Batches: []ledger.Batch{{BatchNumber: ledger.DefaultBatch, Quantity: num("200")}},
		}},
		ledger.AddStockItem{Item: ledger.StockItem{
			ID: "sugar", Name: "Sugar", Category: "Groceries", Unit: "kg",
			SalesPrice: num("1.6"), PurchasePrice: num("1.3"), LowStockLimit: num("10"),
			Batches: []ledger.Batch{{BatchNumber: ledger.DefaultBatch, Quantity: num("4")}},
		}},
		ledger.AddStockTransaction{Transaction: ledger.StockTransaction{
			ID: "buy-oil-c", ItemID: "oil", Type: ledger.TxBuy, Quantity: num("40"), Price: num("7.5"),
			PartyID: "S1", Date: day(now, -7), BatchNumber: "C", ExpiryDate: day(now, 180),
		}},
		ledger.SaveItemBill{
			StockTransactions: []ledger.StockTransaction{
				{ID: "bill1-oil", ItemID: "oil", Type: ledger.TxSell, Quantity: num("10"), Price: num("9"),
					PartyID: "C1", Date: day(now, -3), BillNumber: "INV-1001", BatchNumber: "A"},
				{ID: "bill1-flour", ItemID: "flour", Type: ledger.TxSell, Quantity: num("50"), Price: num("1.2"),
					PartyID: "C1", Date: day(now, -3), BillNumber: "INV-1001"},
			},
			DayBookEntries: []ledger.DayBookEntry{
				{ID: "bill1-items", Date: day(now, -3), Details: "Bill INV-1001 items", CashIn: num("150"), PartyID: "C1"},
				{ID: "bill1-cash", Date: day(now, -3), Details: "Payment for Bill INV-1001", CashIn: num("100"), PartyID: "C1"},
			},
		},
	}
}

func creditBook(now time.Time) []ledger.Action {
	return []ledger.Action{
		ledger.AddParty{Party: ledger.Party{ID: "C1", Type: ledger.PartyCustomer, Name: "Bilal Ahmed", Phone: "0321-5550101"}},
		ledger.AddParty{Party: ledger.Party{ID: "C2", Type: ledger.PartyCustomer, Name: "Sana Bibi"}},
		ledger.AddParty{Party: ledger.Party{ID: "C3", Type: ledger.PartyCustomer, Name: "Usman Electronics", BusinessName: "Usman Electronics"}},
		ledger.AddDayBookEntry{Entry: ledger.DayBookEntry{
			ID: "e1", Date: day(now, -20), Details: "Goods on credit", CashIn: num("1200"), PartyID: "C1", DueDate: day(now, -3),
		}},
		ledger.AddDayBookEntry{Entry: ledger.DayBookEntry{
			ID: "e2", Date: day(now, -10), Details: "Goods on credit", CashIn: num("450"), PartyID: "C2", DueDate: day(now, 0),
		}},
		ledger.AddDayBookEntry{Entry: ledger.DayBookEntry{
			ID: "e3", Date: day(now, -5), Details: "Repair parts on credit", CashIn: num("800"), PartyID: "C3", DueDate: day(now, 2),
		}},
		ledger.AddDayBookEntry{Entry: ledger.DayBookEntry{
			ID: "e4", Date: day(now, -1), Details: "Received from Bilal", CashIn: num("200"), PartyID: "C1",
		}},
		ledger.AddDayBookEntry{Entry: ledger.DayBookEntry{
			ID: "e5", Date: day(now, 0), Details: "Shop rent", CashOut: num("300"),
		}},
	}
}
