package ledger

// ActionType is the wire tag of an action.
type ActionType string

const (
	ActionNavigate                 ActionType = "NAVIGATE"
	ActionUpdateUserProfile        ActionType = "UPDATE_USER_PROFILE"
	ActionAddParty                 ActionType = "ADD_PARTY"
	ActionEditParty                ActionType = "EDIT_PARTY"
	ActionDeleteParty              ActionType = "DELETE_PARTY"
	ActionAddDayBookEntry          ActionType = "ADD_DAYBOOK_ENTRY"
	ActionEditDayBookEntry         ActionType = "EDIT_DAYBOOK_ENTRY"
	ActionDeleteDayBookEntry       ActionType = "DELETE_DAYBOOK_ENTRY"
	ActionAddStockItem             ActionType = "ADD_STOCK_ITEM"
	ActionEditStockItem            ActionType = "EDIT_STOCK_ITEM"
	ActionDeleteStockItem          ActionType = "DELETE_STOCK_ITEM"
	ActionAddItemCategory          ActionType = "ADD_ITEM_CATEGORY"
	ActionAddStockTransaction      ActionType = "ADD_STOCK_TRANSACTION"
	ActionEditStockTransaction     ActionType = "EDIT_STOCK_TRANSACTION"
	ActionDeleteStockTransaction   ActionType = "DELETE_STOCK_TRANSACTION"
	ActionSaveItemBill             ActionType = "SAVE_ITEM_BILL"
	ActionRestoreState             ActionType = "RESTORE_STATE"
	ActionAddNotifications         ActionType = "ADD_NOTIFICATIONS"
	ActionMarkNotificationRead     ActionType = "MARK_NOTIFICATION_READ"
	ActionMarkAllNotificationsRead ActionType = "MARK_ALL_NOTIFICATIONS_READ"
	ActionClearReadNotifications   ActionType = "CLEAR_READ_NOTIFICATIONS"
)

// Action is one request to change state. The concrete types below form a
// closed set; Reduce rejects anything else.
type Action interface {
	Type() ActionType
}

type Navigate struct {
	Screen  Screen
	Payload map[string]string
}

type UpdateUserProfile struct{ User User }

type AddParty struct{ Party Party }
type EditParty struct{ Party Party }
type DeleteParty struct{ ID string }

type AddDayBookEntry struct{ Entry DayBookEntry }
type EditDayBookEntry struct{ Entry DayBookEntry }
type DeleteDayBookEntry struct{ ID string }

type AddStockItem struct{ Item StockItem }
type EditStockItem struct{ Item StockItem }
type DeleteStockItem struct{ ID string }
type AddItemCategory struct{ Category string }

type AddStockTransaction struct{ Transaction StockTransaction }
type EditStockTransaction struct{ Transaction StockTransaction }
type DeleteStockTransaction struct{ ID string }

// SaveItemBill records a multi-line bill. Entries are supplied by the caller
// (typically an items-subtotal line and a cash line); no entries are derived
// from the transactions.
type SaveItemBill struct {
	StockTransactions []StockTransaction
	DayBookEntries    []DayBookEntry
}

// RestoreState replaces the collections from a backup. A nil slice means the
// key was absent and the collection becomes empty.
type RestoreState struct {
	Parties           []Party
	DayBookEntries    []DayBookEntry
	StockItems        []StockItem
	StockTransactions []StockTransaction
	ItemCategories    []string
}

type AddNotifications struct{ Notifications []Notification }
type MarkNotificationRead struct{ ID string }
type MarkAllNotificationsRead struct{}
type ClearReadNotifications struct{}

func (Navigate) Type() ActionType                 { return ActionNavigate }
func (UpdateUserProfile) Type() ActionType        { return ActionUpdateUserProfile }
func (AddParty) Type() ActionType                 { return ActionAddParty }
func (EditParty) Type() ActionType                { return ActionEditParty }
func (DeleteParty) Type() ActionType              { return ActionDeleteParty }
func (AddDayBookEntry) Type() ActionType          { return ActionAddDayBookEntry }
func (EditDayBookEntry) Type() ActionType         { return ActionEditDayBookEntry }
func (DeleteDayBookEntry) Type() ActionType       { return ActionDeleteDayBookEntry }
func (AddStockItem) Type() ActionType             { return ActionAddStockItem }
func (EditStockItem) Type() ActionType            { return ActionEditStockItem }
func (DeleteStockItem) Type() ActionType          { return ActionDeleteStockItem }
func (AddItemCategory) Type() ActionType          { return ActionAddItemCategory }
func (AddStockTransaction) Type() ActionType      { return ActionAddStockTransaction }
func (EditStockTransaction) Type() ActionType     { return ActionEditStockTransaction }
func (DeleteStockTransaction) Type() ActionType   { return ActionDeleteStockTransaction }
func (SaveItemBill) Type() ActionType             { return ActionSaveItemBill }
func (RestoreState) Type() ActionType             { return ActionRestoreState }
func (AddNotifications) Type() ActionType         { return ActionAddNotifications }
func (MarkNotificationRead) Type() ActionType     { return ActionMarkNotificationRead }
func (MarkAllNotificationsRead) Type() ActionType { return ActionMarkAllNotificationsRead }
func (ClearReadNotifications) Type() ActionType   { return ActionClearReadNotifications }

// MutatesEntities reports whether an action changes business data, as
// opposed to navigation or notification bookkeeping. Hosts use it to decide
// when a notification rescan is due.
func MutatesEntities(a Action) bool {
	switch a.(type) {
	case Navigate, AddNotifications, MarkNotificationRead, MarkAllNotificationsRead, ClearReadNotifications:
		return false
	}
	return true
}
