package database

import (
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func init() {
	logger.Init("test", "")
}

func TestConfig(t *testing.T) {
	cfg := NewConfig(&config.Config{
		DBDriver: "postgres", DBHost: "db", DBPort: "5432", DBUser: "fin", DBPassword: "p@ss word",
		DBName: "fintrack", DBSSLMode: "disable",
	})

	if got := cfg.DSN(); got != "host=db port=5432 user=fin password=p@ss word dbname=fintrack sslmode=disable" {
		t.Errorf("DSN() = %q", got)
	}
	if got := cfg.URL(); got != "postgres://fin:p%40ss%20word@db:5432/fintrack?sslmode=disable" {
		t.Errorf("URL() = %q", got)
	}
}

func TestNewManager_UnsupportedDriver(t *testing.T) {
	if _, err := NewManager(&Config{Driver: "oracle"}); err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}

func TestManager_SQLite(t *testing.T) {
	m, err := NewManager(&Config{Driver: DriverSQLite, SQLitePath: testutil.MemoryDSN()})
	testutil.AssertNoError(t, err)
	defer func() { _ = m.Close() }()

	testutil.AssertNoError(t, m.Migrate())
	for _, table := range []string{"users", "profiles", "categories", "transactions", "stored_objects", "audit_logs"} {
		if !m.DB().Migrator().HasTable(table) {
			t.Errorf("expected table %s after migrate", table)
		}
	}

	t.Run("seed_is_idempotent", func(t *testing.T) {
		testutil.AssertNoError(t, SeedDefaultCategories(m.DB()))
		testutil.AssertNoError(t, SeedDefaultCategories(m.DB()))

		var count int64
		m.DB().Model(&models.Category{}).Where("is_default = ?", true).Count(&count)
		if count != int64(len(models.DefaultCategories())) {
			t.Errorf("expected %d built-in categories, got %d", len(models.DefaultCategories()), count)
		}
	})
}
