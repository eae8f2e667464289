// Package export writes datasets and reports to files and streams.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"coffeeStatApp/internal/domain/model"
)

// CSVHeader is the column layout of the sales file.
var CSVHeader = []string{
	"Order ID", "Date", "Time", "Item", "Category", "Quantity",
	"Unit Price", "Total Sales", "Payment Method", "Rating", "Datetime",
}

// WriteCSV writes one row per transaction after the header.
func WriteCSV(w io.Writer, ds *model.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	if ds != nil {
		for _, tx := range ds.Transactions {
			if err := cw.Write(csvRecord(tx)); err != nil {
				return fmt.Errorf("write order %d: %w", tx.OrderID, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile replaces path with a fresh CSV of ds.
func WriteCSVFile(path string, ds *model.Dataset) error {
	return writeFileAtomic(path, func(w io.Writer) error { return WriteCSV(w, ds) })
}

func csvRecord(tx model.Transaction) []string {
	return []string{
		strconv.Itoa(tx.OrderID),
		tx.Date(),
		tx.TimeOfDay(),
		tx.Item,
		tx.Category,
		strconv.Itoa(tx.Quantity),
		tx.UnitPrice.StringFixed(2),
		tx.TotalSales.StringFixed(2),
		string(tx.PaymentMethod),
		strconv.Itoa(tx.Rating),
		tx.Timestamp.Format(model.DateTimeLayout),
	}
}

// writeFileAtomic writes through a temp file in the same directory and renames it over path.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
