package testutil_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "profiles", "categories", "transactions", "stored_objects", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupCacheDB(t *testing.T) {
	db := testutil.SetupCacheDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"transactions", "categories", "profiles", "sync_queue", "sessions"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestDatabasesAreIsolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestUser(t, first)

	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("second database should be empty, found %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}
	if !user.Confirmed() {
		t.Error("fixture users are confirmed")
	}

	var profile models.Profile
	if err := db.First(&profile, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("fixture user should have a profile: %v", err)
	}

	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	if !category.OwnedBy(user.ID) {
		t.Error("category should be owned by the fixture user")
	}

	tx := testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeIncome, 1000)
	if tx.Amount.IntPart() != 1000 {
		t.Errorf("expected amount 1000, got %s", tx.Amount)
	}
	if !tx.Synced {
		t.Error("stored fixture transactions are synced")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrTransactionNotFound, "custom message")
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}

func TestAssertAppErrorWrapped(t *testing.T) {
	err := fmt.Errorf("syncing: %w", errors.ErrOffline)
	testutil.AssertAppError(t, err, "OFFLINE")
}

func TestAssertAmount(t *testing.T) {
	testutil.AssertAmount(t, decimal.RequireFromString("40.00"), "40")
}
