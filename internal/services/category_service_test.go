package services

import (
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestListCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)

	defaults := models.DefaultCategories()
	testutil.AssertNoError(t, db.Create(&defaults).Error)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	own := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

	t.Run("own_and_builtin", func(t *testing.T) {
		rows, err := svc.ListCategories(user.ID, RowQuery{Order: []OrderBy{{Column: "name"}}})
		testutil.AssertNoError(t, err)
		if len(rows) != len(defaults)+1 {
			t.Fatalf("expected %d categories, got %d", len(defaults)+1, len(rows))
		}
		for _, c := range rows {
			if !c.IsDefault && !c.OwnedBy(user.ID) {
				t.Errorf("foreign category %s leaked", c.ID)
			}
		}
	})

	t.Run("by_id", func(t *testing.T) {
		rows, err := svc.ListCategories(user.ID, RowQuery{ID: own.ID})
		testutil.AssertNoError(t, err)
		if len(rows) != 1 || rows[0].ID != own.ID {
			t.Errorf("expected only %s, got %v", own.ID, rows)
		}
	})
}

func TestInsertCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		c := models.Category{Base: models.Base{ID: "cat-1"}, Name: "Books", Icon: "book", Color: "#FFAA00", Type: models.CategoryTypeExpense}
		testutil.AssertNoError(t, svc.InsertCategory(user.ID, c, ResolutionNone))

		rows, _ := svc.ListCategories(user.ID, RowQuery{ID: "cat-1"})
		if len(rows) != 1 || !rows[0].OwnedBy(user.ID) {
			t.Errorf("expected category owned by caller, got %v", rows)
		}

		testutil.AssertAppError(t, svc.InsertCategory(user.ID, c, ResolutionNone), "CONFLICT")
		testutil.AssertNoError(t, svc.InsertCategory(user.ID, c, ResolutionIgnoreDuplicates))
	})

	t.Run("builtin_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		c := models.Category{Name: "Fake", Type: models.CategoryTypeExpense, IsDefault: true}
		testutil.AssertAppError(t, svc.InsertCategory(user.ID, c, ResolutionNone), "DEFAULT_CATEGORY_READ_ONLY")
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.AssertAppError(t, svc.InsertCategory(user.ID, models.Category{Type: models.CategoryTypeBoth}, ResolutionNone), "INVALID_INPUT")
	})
}

func TestDeleteCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)

	defaults := models.DefaultCategories()
	testutil.AssertNoError(t, db.Create(&defaults).Error)
	user := testutil.CreateTestUser(t, db)
	own := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	tx := testutil.CreateTestTransaction(t, db, user.ID, own.ID, models.TransactionTypeExpense, 100)

	t.Run("builtin_untouched", func(t *testing.T) {
		n, err := svc.DeleteCategory(user.ID, "1")
		testutil.AssertNoError(t, err)
		if n != 0 {
			t.Errorf("built-in category must not be deleted, deleted %d", n)
		}
	})

	t.Run("own_deleted_without_cascade", func(t *testing.T) {
		n, err := svc.DeleteCategory(user.ID, own.ID)
		testutil.AssertNoError(t, err)
		if n != 1 {
			t.Fatalf("expected 1 row deleted, got %d", n)
		}

		var kept models.Transaction
		testutil.AssertNoError(t, db.Where("id = ?", tx.ID).First(&kept).Error)
		if kept.CategoryID != own.ID {
			t.Errorf("transaction category changed to %q", kept.CategoryID)
		}
	})
}
