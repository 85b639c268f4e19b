// Package report derives lists and totals from a user's transactions.
package report

import (
	"sort"
	"strings"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
)

// Sort orders accepted by Filter.
const (
	SortDateDesc   = "date_desc"
	SortDateAsc    = "date_asc"
	SortAmountDesc = "amount_desc"
	SortAmountAsc  = "amount_asc"
)

// Filter selects and orders transactions. Zero values select everything.
type Filter struct {
	Type       string // all, income or expense
	CategoryID string
	Search     string
	From       time.Time
	To         time.Time // inclusive, whole day
	Sort       string
}

// Apply returns the transactions matching f in the requested order. The
// input slice is not modified.
func Apply(txs []models.Transaction, categories []models.Category, f Filter) []models.Transaction {
	names := categoryNames(categories)
	search := strings.ToLower(strings.TrimSpace(f.Search))

	var to time.Time
	if !f.To.IsZero() {
		y, m, d := f.To.Date()
		to = time.Date(y, m, d, 0, 0, 0, 0, f.To.Location()).AddDate(0, 0, 1)
	}

	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Type != "" && f.Type != "all" && string(tx.Type) != f.Type {
			continue
		}
		if f.CategoryID != "" && tx.CategoryID != f.CategoryID {
			continue
		}
		if !f.From.IsZero() && tx.Date.Before(f.From) {
			continue
		}
		if !to.IsZero() && !tx.Date.Before(to) {
			continue
		}
		if search != "" && !matches(tx, names[tx.CategoryID], search) {
			continue
		}
		out = append(out, tx)
	}

	sort.SliceStable(out, less(out, f.Sort))
	return out
}

func matches(tx models.Transaction, categoryName, search string) bool {
	for _, field := range []string{tx.Title, tx.Description, categoryName} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func less(txs []models.Transaction, order string) func(i, j int) bool {
	switch order {
	case SortDateAsc:
		return func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) }
	case SortAmountDesc:
		return func(i, j int) bool { return txs[i].Amount.GreaterThan(txs[j].Amount) }
	case SortAmountAsc:
		return func(i, j int) bool { return txs[i].Amount.LessThan(txs[j].Amount) }
	default:
		return func(i, j int) bool { return txs[i].Date.After(txs[j].Date) }
	}
}

// DayGroup is a run of transactions that fall on the same calendar day.
type DayGroup struct {
	Label        string
	Transactions []models.Transaction
}

// GroupByDay groups transactions by calendar day in now's location. Groups
// appear in the order their first transaction does and are labelled
// "Today", "Yesterday" or like "2 January".
func GroupByDay(txs []models.Transaction, now time.Time) []DayGroup {
	loc := now.Location()
	today := dayKey(now)
	yesterday := dayKey(now.AddDate(0, 0, -1))

	var groups []DayGroup
	index := make(map[string]int)
	for _, tx := range txs {
		local := tx.Date.In(loc)
		key := dayKey(local)

		label := local.Format("2 January")
		switch key {
		case today:
			label = "Today"
		case yesterday:
			label = "Yesterday"
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Label: label})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	return groups
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// CategoryTotal is the expense attributed to one category.
type CategoryTotal struct {
	CategoryID string
	Name       string
	Color      string
	Amount     decimal.Decimal
	Share      decimal.Decimal // percent of total expense
}

// Summary is the dashboard view of a user's money.
type Summary struct {
	Income      decimal.Decimal
	Expense     decimal.Decimal
	Balance     decimal.Decimal
	ByCategory  []CategoryTotal
	Limit       decimal.Decimal
	SpentMonth  decimal.Decimal
	Remaining   decimal.Decimal
	PercentUsed decimal.Decimal
}

// unknownCategory names expense whose category no longer exists.
const unknownCategory = "Other"

// Summarize computes totals over txs and the spending-limit progress for
// the calendar month containing now.
func Summarize(txs []models.Transaction, categories []models.Category, profile models.Profile, now time.Time) Summary {
	byID := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	s := Summary{Limit: profile.MonthlyLimit}
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, tx := range txs {
		switch tx.Type {
		case models.TransactionTypeIncome:
			s.Income = s.Income.Add(tx.Amount)
		case models.TransactionTypeExpense:
			s.Expense = s.Expense.Add(tx.Amount)
			if _, ok := totals[tx.CategoryID]; !ok {
				order = append(order, tx.CategoryID)
			}
			totals[tx.CategoryID] = totals[tx.CategoryID].Add(tx.Amount)
			if d := tx.Date.In(now.Location()); !d.Before(monthStart) && d.Before(monthEnd) {
				s.SpentMonth = s.SpentMonth.Add(tx.Amount)
			}
		}
	}
	s.Balance = s.Income.Sub(s.Expense)

	hundred := decimal.NewFromInt(100)
	for _, id := range order {
		ct := CategoryTotal{CategoryID: id, Name: unknownCategory, Color: "#888888", Amount: totals[id]}
		if c, ok := byID[id]; ok {
			ct.Name, ct.Color = c.Name, c.Color
		}
		if s.Expense.IsPositive() {
			ct.Share = ct.Amount.Mul(hundred).Div(s.Expense).Round(1)
		}
		s.ByCategory = append(s.ByCategory, ct)
	}
	sort.SliceStable(s.ByCategory, func(i, j int) bool {
		return s.ByCategory[i].Amount.GreaterThan(s.ByCategory[j].Amount)
	})

	s.Remaining = s.Limit.Sub(s.SpentMonth)
	if s.Limit.IsPositive() {
		s.PercentUsed = s.SpentMonth.Mul(hundred).Div(s.Limit).Round(1)
	}
	return s
}

func categoryNames(categories []models.Category) map[string]string {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}
