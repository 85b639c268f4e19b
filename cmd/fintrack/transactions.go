package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/app"
	"fintrack/internal/models"
	"fintrack/internal/report"
	"fintrack/internal/store"
)

const dateLayout = "2006-01-02"

// parseDate accepts a calendar day or a full RFC 3339 timestamp. Days are
// taken in local time.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return t, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

func addTransaction(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	txType := fs.String("type", string(models.TransactionTypeExpense), "income or expense")
	amount := fs.String("amount", "", "positive amount")
	currency := fs.String("currency", "", "ISO 4217 code; defaults to the profile currency")
	category := fs.String("category", "", "category id")
	title := fs.String("title", "", "short title")
	note := fs.String("note", "", "description")
	date := fs.String("date", "", "YYYY-MM-DD; defaults to now")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := a.Resume(ctx)
	if err != nil {
		return err
	}

	in := store.NewTransaction{
		Type:        models.TransactionType(*txType),
		Currency:    *currency,
		CategoryID:  *category,
		Title:       *title,
		Description: *note,
	}
	if in.Amount, err = parseAmount(*amount); err != nil {
		return err
	}
	if *date != "" {
		if in.Date, err = parseDate(*date); err != nil {
			return err
		}
	}

	tx, err := st.AddTransaction(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s%s\n", tx.ID, syncedSuffix(tx.Synced))
	return nil
}

func editTransaction(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	id := fs.String("id", "", "transaction id")
	txType := fs.String("type", "", "income or expense")
	amount := fs.String("amount", "", "positive amount")
	currency := fs.String("currency", "", "ISO 4217 code")
	category := fs.String("category", "", "category id")
	title := fs.String("title", "", "short title")
	note := fs.String("note", "", "description")
	date := fs.String("date", "", "YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("edit needs -id")
	}

	var in store.TransactionUpdate
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "type":
			t := models.TransactionType(*txType)
			in.Type = &t
		case "amount":
			d, err := parseAmount(*amount)
			if err != nil {
				parseErr = err
				return
			}
			in.Amount = &d
		case "currency":
			in.Currency = currency
		case "category":
			in.CategoryID = category
		case "title":
			in.Title = title
		case "note":
			in.Description = note
		case "date":
			d, err := parseDate(*date)
			if err != nil {
				parseErr = err
				return
			}
			in.Date = &d
		}
	})
	if parseErr != nil {
		return parseErr
	}

	st, err := a.Resume(ctx)
	if err != nil {
		return err
	}
	tx, err := st.UpdateTransaction(ctx, *id, in)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s%s\n", tx.ID, syncedSuffix(tx.Synced))
	return nil
}

func removeTransaction(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: fintrack rm ID")
	}
	st, err := a.Resume(ctx)
	if err != nil {
		return err
	}
	if err := st.DeleteTransaction(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func listTransactions(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	var f report.Filter
	fs.StringVar(&f.Type, "type", "all", "all, income or expense")
	fs.StringVar(&f.CategoryID, "category", "", "category id")
	fs.StringVar(&f.Search, "q", "", "search title, description and category name")
	fs.StringVar(&f.Sort, "sort", report.SortDateDesc, "date_desc, date_asc, amount_desc or amount_asc")
	from := fs.String("from", "", "first day, YYYY-MM-DD")
	to := fs.String("to", "", "last day, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var err error
	if *from != "" {
		if f.From, err = parseDate(*from); err != nil {
			return err
		}
	}
	if *to != "" {
		if f.To, err = parseDate(*to); err != nil {
			return err
		}
	}

	st, err := a.Resume(ctx)
	if err != nil {
		return err
	}
	cats := st.Categories()
	txs := report.Apply(st.Transactions(), cats, f)
	if len(txs) == 0 {
		fmt.Println("No transactions")
		return nil
	}

	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, g := range report.GroupByDay(txs, time.Now()) {
		fmt.Fprintf(w, "%s\n", g.Label)
		for _, tx := range g.Transactions {
			fmt.Fprintf(w, "  %s\t%s\t%s %s\t%s\t%s\n",
				tx.ID, names[tx.CategoryID], tx.Signed().StringFixed(2), tx.Currency, tx.Title, syncedSuffix(tx.Synced))
		}
	}
	return w.Flush()
}

func summary(ctx context.Context, a *app.App, _ []string) error {
	st, err := a.Resume(ctx)
	if err != nil {
		return err
	}
	p := st.Profile()
	s := report.Summarize(st.Transactions(), st.Categories(), p, time.Now())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Income\t%s %s\n", s.Income.StringFixed(2), p.Currency)
	fmt.Fprintf(w, "Expense\t%s %s\n", s.Expense.StringFixed(2), p.Currency)
	fmt.Fprintf(w, "Balance\t%s %s\n", s.Balance.StringFixed(2), p.Currency)
	if s.Limit.IsPositive() {
		fmt.Fprintf(w, "Monthly limit\t%s of %s (%s%%), %s left\n",
			s.SpentMonth.StringFixed(2), s.Limit.StringFixed(2), s.PercentUsed.String(), s.Remaining.StringFixed(2))
	}
	if len(s.ByCategory) > 0 {
		fmt.Fprintln(w)
		for _, ct := range s.ByCategory {
			fmt.Fprintf(w, "%s\t%s\t%s%%\n", ct.Name, ct.Amount.StringFixed(2), ct.Share.String())
		}
	}
	return w.Flush()
}

func syncedSuffix(synced bool) string {
	if synced {
		return ""
	}
	return " (not synced)"
}
