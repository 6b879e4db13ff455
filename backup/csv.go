package backup

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes one section of doc as CSV with a header row. Stock items
// are written one row per batch.
func WriteCSV(w io.Writer, doc Document, section Section) error {
	var rows [][]string

	switch section {
	case SectionParties:
		rows = append(rows, []string{"ID", "Type", "Name", "Business", "Phone", "Address", "Balance"})
		for _, p := range doc.Parties {
			rows = append(rows, []string{p.ID, string(p.Type), p.Name, p.BusinessName, p.Phone, p.Address, p.Balance.String()})
		}

	case SectionDayBook:
		rows = append(rows, []string{"ID", "Date", "Details", "Cash In", "Cash Out", "Party", "Due Date", "Source Transaction"})
		for _, e := range doc.DayBookEntries {
			rows = append(rows, []string{e.ID, e.Date, e.Details, e.CashIn.String(), e.CashOut.String(), e.PartyID, e.DueDate, e.SourceTransactionID})
		}

	case SectionStockItems:
		rows = append(rows, []string{"ID", "Name", "Category", "Unit", "Batch", "Quantity", "Expiry", "Purchase Price", "Sales Price"})
		for _, it := range doc.StockItems {
			if len(it.Batches) == 0 {
				rows = append(rows, []string{it.ID, it.Name, it.Category, it.Unit, "", "0", "", it.PurchasePrice.String(), it.SalesPrice.String()})
			}
			for _, b := range it.Batches {
				rows = append(rows, []string{it.ID, it.Name, it.Category, it.Unit, b.BatchNumber, b.Quantity.String(), b.ExpiryDate, it.PurchasePrice.String(), it.SalesPrice.String()})
			}
		}

	case SectionStockTransactions:
		rows = append(rows, []string{"ID", "Date", "Item", "Type", "Batch", "Quantity", "Price", "Total", "Party", "Bill"})
		for _, t := range doc.StockTransactions {
			rows = append(rows, []string{t.ID, t.Date, t.ItemID, string(t.Type), t.BatchNumber, t.Quantity.String(), t.Price.String(), t.TotalAmount.String(), t.PartyID, t.BillNumber})
		}

	default:
		return fmt.Errorf("unknown backup section %q", section)
	}

	cw := csv.NewWriter(w)
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s row %d: %w", section, i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", section, err)
	}
	return nil
}
