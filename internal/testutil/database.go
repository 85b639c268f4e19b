// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"fmt"
	"testing"

	"fintrack/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an isolated in-memory SQLite database with the
// reference backend's tables migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openMemoryDB(t, models.BackendTables())
}

// SetupCacheDB creates an isolated in-memory SQLite database with the
// on-device cache tables migrated.
func SetupCacheDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openMemoryDB(t, models.CacheTables())
}

// MemoryDSN returns a DSN for a fresh named in-memory database. Each call
// yields a different database, so parallel tests never share rows.
func MemoryDSN() string {
	return fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_busy_timeout=5000", nextID())
}

func openMemoryDB(t *testing.T, tables []any) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(MemoryDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(tables...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
