/*
Package backup reads and writes the backup file format.

PURPOSE:
  A backup is a JSON object holding the four business collections. Restoring
  a backup replaces those collections wholesale (the RestoreState action);
  notifications and navigation are never part of a backup.

FORMAT:
  {
    "parties":           [...],
    "dayBookEntries":    [...],
    "stockItems":        [...],
    "stockTransactions": [...],
    "itemCategories":    [...]   // optional
  }

  The four collection keys are required. A file missing any of them is
  rejected with ErrInvalidBackupFormat before any state is touched. Money and
  quantities are written as decimal strings and read as strings or numbers,
  so files from older versions (numbers, flat item quantities) still load.

SEE ALSO:
  - ledger/migrate.go: upgrades legacy shapes after restore
  - api/handlers.go: GET /api/backup, POST /api/restore
*/
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/warp/daybook/ledger"
)

// ErrInvalidBackupFormat is returned for files that are not a backup.
var ErrInvalidBackupFormat = errors.New("invalid backup file")

// Section names one collection of a backup.
type Section string

const (
	SectionParties           Section = "parties"
	SectionDayBook           Section = "dayBookEntries"
	SectionStockItems        Section = "stockItems"
	SectionStockTransactions Section = "stockTransactions"
)

// RequiredSections must be present in every backup file.
var RequiredSections = []Section{SectionParties, SectionDayBook, SectionStockItems, SectionStockTransactions}

// Document is the backup file.
type Document struct {
	Parties           []ledger.Party            `json:"parties" jsonschema_description:"Customers and suppliers with running balances"`
	DayBookEntries    []ledger.DayBookEntry     `json:"dayBookEntries" jsonschema_description:"Cash movements, including entries derived from stock transactions"`
	StockItems        []ledger.StockItem        `json:"stockItems" jsonschema_description:"Items with batch-level stock"`
	StockTransactions []ledger.StockTransaction `json:"stockTransactions" jsonschema_description:"Purchases and sales of stock"`
	ItemCategories    []string                  `json:"itemCategories,omitempty" jsonschema_description:"Item category names"`
}

// Export copies the backed-up collections out of state.
func Export(state ledger.State) Document {
	return Document{
		Parties:           nonNil(state.Parties),
		DayBookEntries:    nonNil(state.DayBookEntries),
		StockItems:        nonNil(state.StockItems),
		StockTransactions: nonNil(state.StockTransactions),
		ItemCategories:    state.ItemCategories,
	}
}

// Marshal encodes doc as indented JSON. When sections are given only those
// collections are written; such a partial file cannot be restored.
func Marshal(doc Document, sections ...Section) ([]byte, error) {
	if len(sections) == 0 {
		return json.MarshalIndent(doc, "", "  ")
	}

	out := make(map[Section]any, len(sections))
	for _, s := range sections {
		switch s {
		case SectionParties:
			out[s] = doc.Parties
		case SectionDayBook:
			out[s] = doc.DayBookEntries
		case SectionStockItems:
			out[s] = doc.StockItems
		case SectionStockTransactions:
			out[s] = doc.StockTransactions
		default:
			return nil, fmt.Errorf("unknown backup section %q", s)
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

// Parse validates a backup file and turns it into a RestoreState action.
func Parse(data []byte) (ledger.RestoreState, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &raw); err != nil {
		return ledger.RestoreState{}, fmt.Errorf("%w: %v", ErrInvalidBackupFormat, err)
	}
	if raw == nil {
		return ledger.RestoreState{}, fmt.Errorf("%w: not a JSON object", ErrInvalidBackupFormat)
	}

	var missing []string
	for _, s := range RequiredSections {
		if _, ok := raw[string(s)]; !ok {
			missing = append(missing, string(s))
		}
	}
	if len(missing) > 0 {
		return ledger.RestoreState{}, fmt.Errorf("%w: missing sections %v", ErrInvalidBackupFormat, missing)
	}

	var action ledger.RestoreState
	targets := map[string]any{
		string(SectionParties):           &action.Parties,
		string(SectionDayBook):           &action.DayBookEntries,
		string(SectionStockItems):        &action.StockItems,
		string(SectionStockTransactions): &action.StockTransactions,
	}
	if _, ok := raw["itemCategories"]; ok {
		targets["itemCategories"] = &action.ItemCategories
	}
	for key, target := range targets {
		if err := json.Unmarshal(raw[key], target); err != nil {
			return ledger.RestoreState{}, fmt.Errorf("%w: section %s: %v", ErrInvalidBackupFormat, key, err)
		}
	}
	return action, nil
}

// FileName is the suggested name of a backup taken at now.
func FileName(now time.Time) string {
	return fmt.Sprintf("mayra-khata-backup-%s.json", now.UTC().Format("2006-01-02"))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
