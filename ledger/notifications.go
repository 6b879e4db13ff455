/*
notifications.go - Derived alerts for low stock and due payments

PURPOSE:
  Notifications are not restored from backups; they are re-derived from
  stock and day-book state by ScanNotifications. Each has a stable id so a
  rescan never inserts the same alert twice:

    low-stock-{itemID}   0 < total quantity <= LowStockLimit
    due-date-{entryID}   due date is past, today, or within DueSoonDays

  ScanNotifications only proposes notifications. Hosts feed the result back
  through the AddNotifications action, after the transition that triggered
  the scan has completed.
*/
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DueSoonDays is how far ahead a due date raises a notification.
const DueSoonDays = 3

const dateLayout = "2006-01-02"

func LowStockID(itemID string) string { return "low-stock-" + itemID }
func DueDateID(entryID string) string { return "due-date-" + entryID }

// ParseDate reads an ISO date, accepting a full timestamp by its date part.
// The result is midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	return time.ParseInLocation(dateLayout, s, loc)
}

// ScanNotifications returns the notifications state warrants at now that are
// not already present.
func ScanNotifications(state State, now time.Time) []Notification {
	existing := make(map[string]bool, len(state.Notifications))
	for _, n := range state.Notifications {
		existing[n.ID] = true
	}
	stamp := now.UTC().Format(time.RFC3339)

	var out []Notification
	add := func(n Notification) {
		if existing[n.ID] {
			return
		}
		existing[n.ID] = true
		n.Timestamp = stamp
		out = append(out, n)
	}

	for _, item := range state.StockItems {
		total := item.TotalQuantity()
		if total.IsPositive() && total.LessThanOrEqual(item.LowStockLimit) {
			add(Notification{
				ID:      LowStockID(item.ID),
				Type:    NotifyLowStock,
				Message: fmt.Sprintf("%s is running low on stock (%s %s left).", item.Name, total, item.Unit),
				Link:    NotificationLink{Screen: ScreenItemDetail, ItemID: item.ID},
			})
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	horizon := today.AddDate(0, 0, DueSoonDays)
	for _, e := range state.DayBookEntries {
		if e.DueDate == "" {
			continue
		}
		due, err := ParseDate(e.DueDate, now.Location())
		if err != nil {
			continue
		}
		var msg string
		switch {
		case due.Before(today):
			msg = fmt.Sprintf("Payment for %q was due on %s.", e.Details, due.Format(dateLayout))
		case !due.After(horizon):
			msg = fmt.Sprintf("Payment for %q is due on %s.", e.Details, due.Format(dateLayout))
		default:
			continue
		}
		add(Notification{
			ID:      DueDateID(e.ID),
			Type:    NotifyDueDate,
			Message: msg,
			Link:    NotificationLink{Screen: ScreenDayBook},
		})
	}
	return out
}

func addNotifications(state State, incoming []Notification) State {
	existing := make(map[string]bool, len(state.Notifications))
	for _, n := range state.Notifications {
		existing[n.ID] = true
	}
	var fresh []Notification
	for _, n := range incoming {
		if existing[n.ID] {
			continue
		}
		existing[n.ID] = true
		fresh = append(fresh, n)
	}
	if len(fresh) == 0 {
		return state
	}

	all := appendTo(state.Notifications, fresh...)
	sort.SliceStable(all, func(i, j int) bool {
		return timestamp(all[i]).After(timestamp(all[j]))
	})
	next := state
	next.Notifications = all
	return next
}

func timestamp(n Notification) time.Time {
	t, err := time.Parse(time.RFC3339, n.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}
