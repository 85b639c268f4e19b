package pagination

import (
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestPaginate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	for i := 0; i < 5; i++ {
		testutil.CreateTestTransaction(t, db, user.ID, "1", models.TransactionTypeExpense, int64(100+i))
	}

	tests := []struct {
		name string
		req  PageRequest
		want int
	}{
		{name: "zero_returns_all", req: PageRequest{}, want: 5},
		{name: "limit", req: PageRequest{Limit: 2}, want: 2},
		{name: "offset", req: PageRequest{Offset: 4}, want: 1},
		{name: "past_the_end", req: PageRequest{Limit: 10, Offset: 10}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []models.Transaction
			if err := db.Scopes(Paginate(tt.req)).Order("amount").Find(&rows).Error; err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rows) != tt.want {
				t.Errorf("got %d rows, want %d", len(rows), tt.want)
			}
		})
	}
}

func TestContentRange(t *testing.T) {
	if got := ContentRange(0, 25); got != "0-24/*" {
		t.Errorf("ContentRange(0, 25) = %q", got)
	}
	if got := ContentRange(10, 0); got != "*/0" {
		t.Errorf("ContentRange(10, 0) = %q", got)
	}
}
