package report

import (
	"testing"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

func tx(id string, t models.TransactionType, amount int64, category string, date time.Time, title string) models.Transaction {
	return models.Transaction{
		Base:       models.Base{ID: id},
		Type:       t,
		Amount:     decimal.NewFromInt(amount),
		CategoryID: category,
		Date:       date,
		Title:      title,
	}
}

func fixtures() ([]models.Transaction, []models.Category) {
	txs := []models.Transaction{
		tx("a", models.TransactionTypeExpense, 300, "1", now.Add(-time.Hour), "Supermarket"),
		tx("b", models.TransactionTypeIncome, 5000, "5", now.Add(-2*time.Hour), "March salary"),
		tx("c", models.TransactionTypeExpense, 120, "4", now.AddDate(0, 0, -1), "Latte"),
		tx("d", models.TransactionTypeExpense, 80, "4", now.AddDate(0, 0, -1).Add(-time.Hour), ""),
		tx("e", models.TransactionTypeExpense, 1000, "gone", now.AddDate(0, -1, 0), "Old rent"),
	}
	return txs, models.DefaultCategories()
}

func ids(txs []models.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func TestApply(t *testing.T) {
	txs, cats := fixtures()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "everything_newest_first", filter: Filter{}, want: []string{"a", "b", "c", "d", "e"}},
		{name: "income_only", filter: Filter{Type: "income"}, want: []string{"b"}},
		{name: "all_type", filter: Filter{Type: "all", CategoryID: "4"}, want: []string{"c", "d"}},
		{name: "search_title_case_insensitive", filter: Filter{Search: "LATTE"}, want: []string{"c"}},
		{name: "search_category_name", filter: Filter{Search: "cafe"}, want: []string{"c", "d"}},
		{name: "amount_desc", filter: Filter{Type: "expense", Sort: SortAmountDesc}, want: []string{"e", "a", "c", "d"}},
		{name: "amount_asc", filter: Filter{Type: "expense", Sort: SortAmountAsc}, want: []string{"d", "c", "a", "e"}},
		{name: "date_asc", filter: Filter{Sort: SortDateAsc}, want: []string{"e", "d", "c", "b", "a"}},
		{name: "date_range_inclusive", filter: Filter{From: now.AddDate(0, 0, -2), To: now.AddDate(0, 0, -1)}, want: []string{"c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(txs, cats, tt.filter)))
		})
	}

	t.Run("input_untouched", func(t *testing.T) {
		before := ids(txs)
		Apply(txs, cats, Filter{Sort: SortAmountAsc})
		assert.Equal(t, before, ids(txs))
	})
}

func TestGroupByDay(t *testing.T) {
	txs, _ := fixtures()

	groups := GroupByDay(txs, now)
	require.Len(t, groups, 3)
	assert.Equal(t, "Today", groups[0].Label)
	assert.Equal(t, []string{"a", "b"}, ids(groups[0].Transactions))
	assert.Equal(t, "Yesterday", groups[1].Label)
	assert.Equal(t, []string{"c", "d"}, ids(groups[1].Transactions))
	assert.Equal(t, "15 February", groups[2].Label)
}

func TestSummarize(t *testing.T) {
	txs, cats := fixtures()
	profile := models.DefaultProfile("u", "u@example.com")
	profile.MonthlyLimit = decimal.NewFromInt(1000)

	s := Summarize(txs, cats, profile, now)

	assert.True(t, decimal.NewFromInt(5000).Equal(s.Income))
	assert.True(t, decimal.NewFromInt(1500).Equal(s.Expense))
	assert.True(t, decimal.NewFromInt(3500).Equal(s.Balance))
	assert.True(t, decimal.NewFromInt(500).Equal(s.SpentMonth), "only this month's expenses count toward the limit")
	assert.True(t, decimal.NewFromInt(500).Equal(s.Remaining))
	assert.Equal(t, "50", s.PercentUsed.String())

	require.Len(t, s.ByCategory, 3)
	assert.Equal(t, "Other", s.ByCategory[0].Name)
	assert.Equal(t, "Groceries", s.ByCategory[1].Name)
	assert.Equal(t, "Cafes", s.ByCategory[2].Name)
	assert.Equal(t, "66.7", s.ByCategory[0].Share.String())
	assert.Equal(t, "20", s.ByCategory[1].Share.String())
}

func TestSummarize_NoLimit(t *testing.T) {
	profile := models.Profile{MonthlyLimit: decimal.Zero}
	s := Summarize(nil, nil, profile, now)
	assert.True(t, s.PercentUsed.IsZero())
	assert.True(t, s.Balance.IsZero())
	assert.Empty(t, s.ByCategory)
}
