package factory_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/daybook/factory"
	"github.com/warp/daybook/ledger"
)

func TestParseAction_StockTransaction(t *testing.T) {
	// GIVEN: a sale with a numeric quantity, a string price and no id
	f := factory.NewActionFactory()
	body := `{"type": "ADD_STOCK_TRANSACTION", "payload": {
		"itemId": "rice", "type": "Sell", "quantity": 30, "price": "2.5",
		"partyId": "P1", "date": "2025-06-10", "batchNumber": ""
	}}`

	// WHEN
	action, err := f.ParseAction([]byte(body))

	// THEN: decimals decode from either form and an id is assigned
	require.NoError(t, err)
	add, ok := action.(ledger.AddStockTransaction)
	require.True(t, ok, "got %T", action)
	assert.Equal(t, ledger.TxSell, add.Transaction.Type)
	assert.True(t, add.Transaction.Quantity.Equal(decimal.NewFromInt(30)))
	assert.True(t, add.Transaction.Price.Equal(decimal.RequireFromString("2.5")))
	_, err = uuid.Parse(add.Transaction.ID)
	assert.NoError(t, err)
}

func TestParseAction_KeepsGivenIDs(t *testing.T) {
	f := factory.NewActionFactory()

	action, err := f.ParseAction([]byte(`{"type": "ADD_PARTY", "payload": {"id": "P1", "name": "Ali", "type": "Customer"}}`))

	require.NoError(t, err)
	assert.Equal(t, "P1", action.(ledger.AddParty).Party.ID)
}

func TestParseAction_EditsNeverSynthesizeIDs(t *testing.T) {
	f := factory.NewActionFactory()

	action, err := f.ParseAction([]byte(`{"type": "EDIT_DAYBOOK_ENTRY", "payload": {"details": "no id"}}`))

	require.NoError(t, err)
	assert.Empty(t, action.(ledger.EditDayBookEntry).Entry.ID)
}

func TestParseAction_DeleteAcceptsStringOrObject(t *testing.T) {
	f := factory.NewActionFactory()

	a, err := f.ParseAction([]byte(`{"type": "DELETE_PARTY", "payload": "P1"}`))
	require.NoError(t, err)
	assert.Equal(t, ledger.DeleteParty{ID: "P1"}, a)

	a, err = f.ParseAction([]byte(`{"type": "DELETE_STOCK_TRANSACTION", "payload": {"id": "t1"}}`))
	require.NoError(t, err)
	assert.Equal(t, ledger.DeleteStockTransaction{ID: "t1"}, a)

	_, err = f.ParseAction([]byte(`{"type": "DELETE_STOCK_ITEM", "payload": ""}`))
	assert.True(t, errors.Is(err, factory.ErrInvalidPayload))
}

func TestParseAction_Navigate(t *testing.T) {
	f := factory.NewActionFactory()

	a, err := f.ParseAction([]byte(`{"type": "NAVIGATE", "payload": {"screen": "itemDetail", "payload": {"itemId": "rice", "page": 2}}}`))

	require.NoError(t, err)
	nav := a.(ledger.Navigate)
	assert.Equal(t, ledger.ScreenItemDetail, nav.Screen)
	assert.Equal(t, map[string]string{"itemId": "rice", "page": "2"}, nav.Payload)
}

func TestParseAction_ItemBillSharesOneNumber(t *testing.T) {
	// GIVEN: a two-line bill with no ids or bill number
	f := factory.NewActionFactory()
	body := `{"type": "SAVE_ITEM_BILL", "payload": {
		"stockTransactions": [
			{"itemId": "rice", "type": "Sell", "quantity": 2, "price": 3},
			{"itemId": "oil", "type": "Sell", "quantity": 1, "price": 9}
		],
		"dayBookEntries": [{"details": "Items subtotal", "cashIn": 15}]
	}}`

	// WHEN
	a, err := f.ParseAction([]byte(body))

	// THEN
	require.NoError(t, err)
	bill := a.(ledger.SaveItemBill)
	require.Len(t, bill.StockTransactions, 2)
	first, second := bill.StockTransactions[0], bill.StockTransactions[1]
	assert.NotEmpty(t, first.BillNumber)
	assert.Equal(t, first.BillNumber, second.BillNumber)
	assert.NotEqual(t, first.ID, second.ID)
	require.Len(t, bill.DayBookEntries, 1)
	assert.NotEmpty(t, bill.DayBookEntries[0].ID)
}

func TestParseAction_ItemBillKeepsGivenNumber(t *testing.T) {
	f := factory.NewActionFactory()

	a, err := f.ParseAction([]byte(`{"type": "SAVE_ITEM_BILL", "payload": {
		"stockTransactions": [{"id": "l1", "billNumber": "INV-7"}, {"id": "l2"}],
		"dayBookEntries": []
	}}`))

	require.NoError(t, err)
	bill := a.(ledger.SaveItemBill)
	assert.Equal(t, "INV-7", bill.StockTransactions[1].BillNumber)
}

func TestParseAction_RestoreStateKeepsAbsentKeysNil(t *testing.T) {
	f := factory.NewActionFactory()

	a, err := f.ParseAction([]byte(`{"type": "RESTORE_STATE", "payload": {"parties": [{"id": "P1", "name": "Ali"}]}}`))

	require.NoError(t, err)
	restore := a.(ledger.RestoreState)
	assert.Len(t, restore.Parties, 1)
	assert.Nil(t, restore.StockItems)
	assert.Nil(t, restore.ItemCategories)
}

func TestParseAction_Errors(t *testing.T) {
	f := factory.NewActionFactory()

	tests := []struct {
		name string
		body string
		want error
	}{
		{"unknown type", `{"type": "FLY_TO_MOON"}`, factory.ErrUnknownType},
		{"login is a session command", `{"type": "LOGIN", "payload": {"email": "a@b.c"}}`, factory.ErrSessionAction},
		{"logout is a session command", `{"type": "LOGOUT"}`, factory.ErrSessionAction},
		{"missing type", `{"payload": {}}`, factory.ErrInvalidPayload},
		{"missing payload", `{"type": "ADD_PARTY"}`, factory.ErrInvalidPayload},
		{"wrong payload shape", `{"type": "ADD_ITEM_CATEGORY", "payload": {"name": "x"}}`, factory.ErrInvalidPayload},
		{"bad decimal", `{"type": "ADD_DAYBOOK_ENTRY", "payload": {"cashIn": "lots"}}`, factory.ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseAction([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseAction_MalformedJSON(t *testing.T) {
	_, err := factory.NewActionFactory().ParseAction([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := factory.NewActionFactory()
	actions := []ledger.Action{
		ledger.Navigate{Screen: ledger.ScreenItemDetail, Payload: map[string]string{"itemId": "rice"}},
		ledger.DeleteDayBookEntry{ID: "e1"},
		ledger.AddItemCategory{Category: "Spices"},
		ledger.MarkNotificationRead{ID: "low-stock-rice"},
		ledger.MarkAllNotificationsRead{},
		ledger.ClearReadNotifications{},
	}

	for _, want := range actions {
		t.Run(string(want.Type()), func(t *testing.T) {
			aj, err := f.ToJSON(want)
			require.NoError(t, err)
			raw, err := json.Marshal(aj)
			require.NoError(t, err)

			got, err := f.ParseAction(raw)

			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestToJSON_EntityPayloadUsesBackupFieldNames(t *testing.T) {
	f := factory.NewActionFactory()

	aj, err := f.ToJSON(ledger.AddStockItem{Item: ledger.StockItem{ID: "rice", Name: "Rice"}})

	require.NoError(t, err)
	assert.Equal(t, "ADD_STOCK_ITEM", aj.Type)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(aj.Payload, &fields))
	assert.Equal(t, "rice", fields["id"])
	assert.Contains(t, fields, "lowStockLimit")
}
