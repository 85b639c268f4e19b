// Package export writes transactions to spreadsheet files and reads them back.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the exported rows.
const SheetName = "Transactions"

const dateLayout = "2006-01-02"

var header = []any{"Date", "Type", "Category", "Amount", "Currency", "Description"}

// FileName is the default name of an export produced at now.
func FileName(now time.Time) string {
	return "fintrack-export-" + now.Format(dateLayout) + ".xlsx"
}

// WriteXLSX writes txs as one worksheet. Amounts are numeric cells, the
// description falls back to the title, and a category id without a known
// category is written as-is.
func WriteXLSX(w io.Writer, txs []models.Transaction, categories []models.Category) error {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, tx := range txs {
		category, ok := names[tx.CategoryID]
		if !ok {
			category = tx.CategoryID
		}
		description := tx.Description
		if description == "" {
			description = tx.Title
		}
		amount, _ := tx.Amount.Float64()

		row := []any{tx.Date.Format(dateLayout), string(tx.Type), category, amount, tx.Currency, description}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "F", "F", 40); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Row is one transaction read from a spreadsheet.
type Row struct {
	Line        int
	Date        time.Time
	Type        models.TransactionType
	Category    string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// ErrNoSheet is returned when a workbook has no worksheet to read.
var ErrNoSheet = errors.New("workbook has no sheets")

// ReadXLSX reads rows in the layout WriteXLSX produces. It reads the
// Transactions sheet, or the first sheet when that is missing, and skips the
// header and blank lines. A malformed line fails the whole read.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheet
		}
		if rows, err = f.GetRows(sheets[0]); err != nil {
			return nil, err
		}
	}

	var out []Row
	for i, cols := range rows {
		if i == 0 || blank(cols) {
			continue
		}
		row, err := parseRow(i+1, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func parseRow(line int, cols []string) (Row, error) {
	for len(cols) < len(header) {
		cols = append(cols, "")
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(cols[0]))
	if err != nil {
		return Row{}, fmt.Errorf("line %d: invalid date %q", line, cols[0])
	}
	t := models.TransactionType(strings.ToLower(strings.TrimSpace(cols[1])))
	if !t.Valid() {
		return Row{}, fmt.Errorf("line %d: invalid type %q", line, cols[1])
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(cols[3]))
	if err != nil {
		return Row{}, fmt.Errorf("line %d: invalid amount %q", line, cols[3])
	}

	return Row{
		Line:        line,
		Date:        date,
		Type:        t,
		Category:    strings.TrimSpace(cols[2]),
		Amount:      amount,
		Currency:    strings.ToUpper(strings.TrimSpace(cols[4])),
		Description: strings.TrimSpace(cols[5]),
	}, nil
}

func blank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
