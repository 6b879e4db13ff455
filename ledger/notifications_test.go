package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/daybook/ledger"
)

func now() time.Time {
	return time.Date(2025, time.June, 10, 14, 30, 0, 0, time.UTC)
}

func dueEntry(id, due string) ledger.DayBookEntry {
	return ledger.DayBookEntry{ID: id, Details: "Invoice " + id, CashIn: d("10"), DueDate: due}
}

func TestScanNotifications_LowStock(t *testing.T) {
	s := riceState()
	s.StockItems[0].Batches[0].Quantity = d("10")

	got := ledger.ScanNotifications(s, now())

	require.Len(t, got, 1)
	assert.Equal(t, "low-stock-rice", got[0].ID)
	assert.Equal(t, ledger.NotifyLowStock, got[0].Type)
	assert.Equal(t, ledger.ScreenItemDetail, got[0].Link.Screen)
	assert.Equal(t, "rice", got[0].Link.ItemID)
	assert.Equal(t, "2025-06-10T14:30:00Z", got[0].Timestamp)
}

func TestScanNotifications_OutOfStockIsNotLow(t *testing.T) {
	s := riceState()
	s.StockItems[0].Batches = []ledger.Batch{}

	assert.Empty(t, ledger.ScanNotifications(s, now()))
}

func TestScanNotifications_DueDates(t *testing.T) {
	s := ledger.NewState(testUser())
	s.DayBookEntries = []ledger.DayBookEntry{
		dueEntry("overdue", "2025-06-01"),
		dueEntry("today", "2025-06-10"),
		dueEntry("soon", "2025-06-13"),
		dueEntry("later", "2025-06-14"),
		dueEntry("stamp", "2025-06-12T09:00:00.000Z"),
		dueEntry("junk", "next week"),
		{ID: "none", CashIn: d("1")},
	}

	got := ledger.ScanNotifications(s, now())

	var ids []string
	for _, n := range got {
		ids = append(ids, n.ID)
		assert.Equal(t, ledger.NotifyDueDate, n.Type)
	}
	assert.Equal(t, []string{"due-date-overdue", "due-date-today", "due-date-soon", "due-date-stamp"}, ids)
	assert.Contains(t, got[0].Message, "was due")
	assert.Contains(t, got[1].Message, "is due")
}

func TestScanNotifications_IsIdempotent(t *testing.T) {
	// GIVEN: a state with low stock that has already been scanned once
	s := riceState()
	s.StockItems[0].Batches[0].Quantity = d("3")
	s = mustReduce(t, s, ledger.AddNotifications{Notifications: ledger.ScanNotifications(s, now())})
	require.Len(t, s.Notifications, 1)

	// WHEN: scanning again later
	again := ledger.ScanNotifications(s, now().Add(time.Hour))

	// THEN: nothing new is proposed
	assert.Empty(t, again)
}

func TestAddNotifications_DedupesAndSortsNewestFirst(t *testing.T) {
	s := ledger.NewState(testUser())
	s = mustReduce(t, s, ledger.AddNotifications{Notifications: []ledger.Notification{
		{ID: "a", Timestamp: "2025-06-01T00:00:00Z"},
		{ID: "b", Timestamp: "2025-06-03T00:00:00Z"},
		{ID: "a", Timestamp: "2025-06-09T00:00:00Z"},
	}})
	s = mustReduce(t, s, ledger.AddNotifications{Notifications: []ledger.Notification{
		{ID: "c", Timestamp: "2025-06-02T00:00:00Z"},
		{ID: "b", Timestamp: "2025-06-10T00:00:00Z"},
	}})

	var ids []string
	for _, n := range s.Notifications {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)
}

func TestNotificationReadFlags(t *testing.T) {
	s := ledger.NewState(testUser())
	s = mustReduce(t, s, ledger.AddNotifications{Notifications: []ledger.Notification{
		{ID: "a", Timestamp: "2025-06-01T00:00:00Z"},
		{ID: "b", Timestamp: "2025-06-02T00:00:00Z"},
	}})

	s = mustReduce(t, s, ledger.MarkNotificationRead{ID: "a"})
	s = mustReduce(t, s, ledger.ClearReadNotifications{})
	require.Len(t, s.Notifications, 1)
	assert.Equal(t, "b", s.Notifications[0].ID)

	s = mustReduce(t, s, ledger.MarkAllNotificationsRead{})
	assert.True(t, s.Notifications[0].IsRead)
}
