package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

var (
	maxRetries    = 30
	retryInterval = 2 * time.Second
)

// OpenPostgres opens a plain database/sql handle over lib/pq, for tools
// that do not need gorm.
func OpenPostgres(cfg *Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	return db, nil
}

// WaitForDatabase pings db until it answers or the retries run out.
func WaitForDatabase(db *sql.DB) error {
	log := logger.Get()
	log.Info("Waiting for database to be ready...")

	for i := 0; i < maxRetries; i++ {
		err := db.Ping()
		if err == nil {
			log.Info("Database is ready")
			return nil
		}

		log.Warnw("database not ready", "attempt", i+1, "max_attempts", maxRetries, "error", err)
		time.Sleep(retryInterval)
	}

	return fmt.Errorf("database not ready after %d attempts", maxRetries)
}

// NewMigrator builds a golang-migrate instance over db reading from dir.
// Closing the migrator also closes db.
func NewMigrator(db *sql.DB, dir string) (*migrate.Migrate, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("migrations directory %s: %w", dir, err)
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+absPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies pending SQL migrations from dir. A database left
// dirty by an interrupted run is forced back to its recorded version first.
func RunMigrations(db *sql.DB, dir string) error {
	log := logger.Get()
	log.Info("Running database migrations...")

	m, err := NewMigrator(db, dir)
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		log.Warnw("database is dirty, forcing version", "version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}
