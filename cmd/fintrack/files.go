package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"fintrack/internal/app"
	"fintrack/internal/export"
	"fintrack/internal/models"
	"fintrack/internal/store"
)

func exportXLSX(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("o", "", "output file; defaults to fintrack-export-<date>.xlsx")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		*out = export.FileName(time.Now())
	}

	st, err := a.Resume(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	txs := st.Transactions()
	if err := export.WriteXLSX(f, txs, st.Categories()); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Exported %d transactions to %s\n", len(txs), *out)
	return nil
}

func importXLSX(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: fintrack import FILE")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := export.ReadXLSX(f)
	if err != nil {
		return err
	}

	st, err := a.Resume(ctx)
	if err != nil {
		return err
	}

	resolve := categoryResolver(st.Categories())
	imported := 0
	for _, row := range rows {
		catID, ok := resolve(row.Category, row.Type)
		if !ok {
			return fmt.Errorf("line %d: no %s category named %q", row.Line, row.Type, row.Category)
		}
		if _, err := st.AddTransaction(ctx, store.NewTransaction{
			Type:        row.Type,
			Amount:      row.Amount,
			Currency:    row.Currency,
			CategoryID:  catID,
			Description: row.Description,
			Date:        row.Date,
		}); err != nil {
			return fmt.Errorf("line %d: %w", row.Line, err)
		}
		imported++
	}
	fmt.Printf("Imported %d transactions\n", imported)
	return nil
}

// categoryResolver maps a category cell back to an id. Names match without
// regard to case and must agree with the row's type; an exported id that
// had no known name matches itself.
func categoryResolver(cats []models.Category) func(name string, t models.TransactionType) (string, bool) {
	return func(name string, t models.TransactionType) (string, bool) {
		for _, c := range cats {
			if c.Applies(t) && strings.EqualFold(c.Name, name) {
				return c.ID, true
			}
		}
		for _, c := range cats {
			if c.Applies(t) && c.ID == name {
				return c.ID, true
			}
		}
		return "", false
	}
}
