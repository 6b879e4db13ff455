/*
Package factory provides JSON to Go action conversion.

PURPOSE:
  Converts the wire form of an action into a ledger.Action so hosts that
  speak JSON (the HTTP API, scripted imports) can drive the reducer. Action
  payloads use the same field names as the backup file.

JSON SCHEMA:
  {
    "type": "ADD_STOCK_TRANSACTION",
    "payload": {
      "itemId": "rice",
      "type": "Sell",
      "quantity": 30,
      "price": "2.5",
      "partyId": "P1",
      "date": "2025-06-10"
    }
  }

  Payload shapes by type:
    NAVIGATE                      {"screen": "...", "payload": {...}}
    UPDATE_USER_PROFILE           user
    ADD_/EDIT_PARTY               party
    ADD_/EDIT_DAYBOOK_ENTRY       day-book entry
    ADD_/EDIT_STOCK_ITEM          stock item
    ADD_/EDIT_STOCK_TRANSACTION   stock transaction
    DELETE_*                      "id" (a bare string)
    ADD_ITEM_CATEGORY             "name" (a bare string)
    SAVE_ITEM_BILL                {"stockTransactions": [...], "dayBookEntries": [...]}
    RESTORE_STATE                 any subset of the backup collections
    ADD_NOTIFICATIONS             [notification, ...]
    MARK_NOTIFICATION_READ        {"id": "..."}
    MARK_ALL_NOTIFICATIONS_READ   no payload
    CLEAR_READ_NOTIFICATIONS      no payload

  LOGIN and LOGOUT are session commands, not state transitions. FromJSON
  rejects them with ErrSessionAction; hosts route them to the session.

KEY FEATURES:
  - Decimals accept JSON numbers or strings
  - Missing ids on ADD_* and bill lines are filled with random UUIDs
  - A bill without a number gets one shared by all its lines
  - Unknown types fail with ErrUnknownType

USAGE:
  factory := NewActionFactory()

  action, err := factory.ParseAction(body)
  if err != nil {
      return err
  }
  state, err := sess.Dispatch(ctx, action)

SEE ALSO:
  - ledger/actions.go: action definitions
  - backup/backup.go: the collection formats shared with RESTORE_STATE
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/warp/daybook/ledger"
)

const (
	TypeLogin  = "LOGIN"
	TypeLogout = "LOGOUT"
)

var (
	ErrUnknownType    = errors.New("unknown action type")
	ErrSessionAction  = errors.New("session action")
	ErrInvalidPayload = errors.New("invalid action payload")
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ActionJSON is the JSON representation of an action.
type ActionJSON struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NavigateJSON is the payload of NAVIGATE.
type NavigateJSON struct {
	Screen  string         `json:"screen"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ItemBillJSON is the payload of SAVE_ITEM_BILL.
type ItemBillJSON struct {
	StockTransactions []ledger.StockTransaction `json:"stockTransactions"`
	DayBookEntries    []ledger.DayBookEntry     `json:"dayBookEntries"`
}

// RestoreJSON is the payload of RESTORE_STATE. Absent keys stay nil and
// restore as empty collections.
type RestoreJSON struct {
	Parties           []ledger.Party            `json:"parties,omitempty"`
	DayBookEntries    []ledger.DayBookEntry     `json:"dayBookEntries,omitempty"`
	StockItems        []ledger.StockItem        `json:"stockItems,omitempty"`
	StockTransactions []ledger.StockTransaction `json:"stockTransactions,omitempty"`
	ItemCategories    []string                  `json:"itemCategories,omitempty"`
}

type idJSON struct {
	ID string `json:"id"`
}

// =============================================================================
// ACTION FACTORY
// =============================================================================

// ActionFactory converts JSON actions to ledger actions.
type ActionFactory struct {
	newID func() string
}

// NewActionFactory creates a new action factory.
func NewActionFactory() *ActionFactory {
	return &ActionFactory{newID: uuid.NewString}
}

// ParseAction decodes a JSON action.
func (f *ActionFactory) ParseAction(data []byte) (ledger.Action, error) {
	var aj ActionJSON
	if err := json.Unmarshal(data, &aj); err != nil {
		return nil, fmt.Errorf("failed to parse action JSON: %w", err)
	}
	return f.FromJSON(aj)
}

// FromJSON converts an ActionJSON to a ledger.Action.
func (f *ActionFactory) FromJSON(aj ActionJSON) (ledger.Action, error) {
	switch aj.Type {
	case TypeLogin, TypeLogout:
		return nil, fmt.Errorf("%w: %s", ErrSessionAction, aj.Type)
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrInvalidPayload)
	}

	action, err := f.decode(ledger.ActionType(aj.Type), aj.Payload)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, aj.Type)
	}
	return action, nil
}

func (f *ActionFactory) decode(t ledger.ActionType, raw json.RawMessage) (ledger.Action, error) {
	switch t {
	case ledger.ActionNavigate:
		var nj NavigateJSON
		if err := unmarshalPayload(t, raw, &nj); err != nil {
			return nil, err
		}
		return ledger.Navigate{Screen: ledger.Screen(nj.Screen), Payload: parseScreenPayload(nj.Payload)}, nil

	case ledger.ActionUpdateUserProfile:
		var u ledger.User
		if err := unmarshalPayload(t, raw, &u); err != nil {
			return nil, err
		}
		return ledger.UpdateUserProfile{User: u}, nil

	case ledger.ActionAddParty, ledger.ActionEditParty:
		var p ledger.Party
		if err := unmarshalPayload(t, raw, &p); err != nil {
			return nil, err
		}
		if t == ledger.ActionEditParty {
			return ledger.EditParty{Party: p}, nil
		}
		p.ID = f.ensureID(p.ID)
		return ledger.AddParty{Party: p}, nil

	case ledger.ActionAddDayBookEntry, ledger.ActionEditDayBookEntry:
		var e ledger.DayBookEntry
		if err := unmarshalPayload(t, raw, &e); err != nil {
			return nil, err
		}
		if t == ledger.ActionEditDayBookEntry {
			return ledger.EditDayBookEntry{Entry: e}, nil
		}
		e.ID = f.ensureID(e.ID)
		return ledger.AddDayBookEntry{Entry: e}, nil

	case ledger.ActionAddStockItem, ledger.ActionEditStockItem:
		var item ledger.StockItem
		if err := unmarshalPayload(t, raw, &item); err != nil {
			return nil, err
		}
		if t == ledger.ActionEditStockItem {
			return ledger.EditStockItem{Item: item}, nil
		}
		item.ID = f.ensureID(item.ID)
		return ledger.AddStockItem{Item: item}, nil

	case ledger.ActionAddStockTransaction, ledger.ActionEditStockTransaction:
		var txn ledger.StockTransaction
		if err := unmarshalPayload(t, raw, &txn); err != nil {
			return nil, err
		}
		if t == ledger.ActionEditStockTransaction {
			return ledger.EditStockTransaction{Transaction: txn}, nil
		}
		txn.ID = f.ensureID(txn.ID)
		return ledger.AddStockTransaction{Transaction: txn}, nil

	case ledger.ActionDeleteParty, ledger.ActionDeleteDayBookEntry,
		ledger.ActionDeleteStockItem, ledger.ActionDeleteStockTransaction:
		id, err := parseID(t, raw)
		if err != nil {
			return nil, err
		}
		return deleteAction(t, id), nil

	case ledger.ActionAddItemCategory:
		var name string
		if err := unmarshalPayload(t, raw, &name); err != nil {
			return nil, err
		}
		return ledger.AddItemCategory{Category: name}, nil

	case ledger.ActionSaveItemBill:
		var bj ItemBillJSON
		if err := unmarshalPayload(t, raw, &bj); err != nil {
			return nil, err
		}
		return f.parseItemBill(bj), nil

	case ledger.ActionRestoreState:
		var rj RestoreJSON
		if err := unmarshalPayload(t, raw, &rj); err != nil {
			return nil, err
		}
		return ledger.RestoreState{
			Parties:           rj.Parties,
			DayBookEntries:    rj.DayBookEntries,
			StockItems:        rj.StockItems,
			StockTransactions: rj.StockTransactions,
			ItemCategories:    rj.ItemCategories,
		}, nil

	case ledger.ActionAddNotifications:
		var ns []ledger.Notification
		if err := unmarshalPayload(t, raw, &ns); err != nil {
			return nil, err
		}
		return ledger.AddNotifications{Notifications: ns}, nil

	case ledger.ActionMarkNotificationRead:
		id, err := parseID(t, raw)
		if err != nil {
			return nil, err
		}
		return ledger.MarkNotificationRead{ID: id}, nil

	case ledger.ActionMarkAllNotificationsRead:
		return ledger.MarkAllNotificationsRead{}, nil

	case ledger.ActionClearReadNotifications:
		return ledger.ClearReadNotifications{}, nil
	}
	return nil, nil
}

// ToJSON converts a ledger.Action back to its wire form.
func (f *ActionFactory) ToJSON(action ledger.Action) (ActionJSON, error) {
	var payload any
	switch a := action.(type) {
	case ledger.Navigate:
		nj := NavigateJSON{Screen: string(a.Screen)}
		if len(a.Payload) > 0 {
			nj.Payload = make(map[string]any, len(a.Payload))
			for k, v := range a.Payload {
				nj.Payload[k] = v
			}
		}
		payload = nj
	case ledger.UpdateUserProfile:
		payload = a.User
	case ledger.AddParty:
		payload = a.Party
	case ledger.EditParty:
		payload = a.Party
	case ledger.DeleteParty:
		payload = a.ID
	case ledger.AddDayBookEntry:
		payload = a.Entry
	case ledger.EditDayBookEntry:
		payload = a.Entry
	case ledger.DeleteDayBookEntry:
		payload = a.ID
	case ledger.AddStockItem:
		payload = a.Item
	case ledger.EditStockItem:
		payload = a.Item
	case ledger.DeleteStockItem:
		payload = a.ID
	case ledger.AddItemCategory:
		payload = a.Category
	case ledger.AddStockTransaction:
		payload = a.Transaction
	case ledger.EditStockTransaction:
		payload = a.Transaction
	case ledger.DeleteStockTransaction:
		payload = a.ID
	case ledger.SaveItemBill:
		payload = ItemBillJSON{StockTransactions: a.StockTransactions, DayBookEntries: a.DayBookEntries}
	case ledger.RestoreState:
		payload = RestoreJSON{
			Parties:           a.Parties,
			DayBookEntries:    a.DayBookEntries,
			StockItems:        a.StockItems,
			StockTransactions: a.StockTransactions,
			ItemCategories:    a.ItemCategories,
		}
	case ledger.AddNotifications:
		payload = a.Notifications
	case ledger.MarkNotificationRead:
		payload = idJSON{ID: a.ID}
	case ledger.MarkAllNotificationsRead, ledger.ClearReadNotifications:
		return ActionJSON{Type: string(action.Type())}, nil
	default:
		return ActionJSON{}, fmt.Errorf("%w: %T", ErrUnknownType, action)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return ActionJSON{}, fmt.Errorf("failed to encode %s payload: %w", action.Type(), err)
	}
	return ActionJSON{Type: string(action.Type()), Payload: raw}, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func unmarshalPayload(t ledger.ActionType, raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%w: %s requires a payload", ErrInvalidPayload, t)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, t, err)
	}
	return nil
}

// parseID accepts a bare string or an {"id": ...} object.
func parseID(t ledger.ActionType, raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		var obj idJSON
		if err := unmarshalPayload(t, raw, &obj); err != nil {
			return "", err
		}
		id = obj.ID
	}
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%w: %s requires an id", ErrInvalidPayload, t)
	}
	return id, nil
}

func deleteAction(t ledger.ActionType, id string) ledger.Action {
	switch t {
	case ledger.ActionDeleteParty:
		return ledger.DeleteParty{ID: id}
	case ledger.ActionDeleteDayBookEntry:
		return ledger.DeleteDayBookEntry{ID: id}
	case ledger.ActionDeleteStockItem:
		return ledger.DeleteStockItem{ID: id}
	default:
		return ledger.DeleteStockTransaction{ID: id}
	}
}

func parseScreenPayload(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

// parseItemBill fills missing line ids and gives an unnumbered bill one
// number for all of its lines.
func (f *ActionFactory) parseItemBill(bj ItemBillJSON) ledger.SaveItemBill {
	billNumber := ""
	for _, txn := range bj.StockTransactions {
		if txn.BillNumber != "" {
			billNumber = txn.BillNumber
			break
		}
	}
	if billNumber == "" && len(bj.StockTransactions) > 0 {
		billNumber = "INV-" + strings.ToUpper(f.newID()[:8])
	}

	bill := ledger.SaveItemBill{
		StockTransactions: make([]ledger.StockTransaction, len(bj.StockTransactions)),
		DayBookEntries:    make([]ledger.DayBookEntry, len(bj.DayBookEntries)),
	}
	for i, txn := range bj.StockTransactions {
		txn.ID = f.ensureID(txn.ID)
		if txn.BillNumber == "" {
			txn.BillNumber = billNumber
		}
		bill.StockTransactions[i] = txn
	}
	for i, e := range bj.DayBookEntries {
		e.ID = f.ensureID(e.ID)
		bill.DayBookEntries[i] = e
	}
	return bill
}

func (f *ActionFactory) ensureID(id string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return f.newID()
}
