// Package cache is the on-device persisted mirror of remote entities and the
// home of the pending-operation queue. It survives process restarts and is
// the source of truth for reads while offline.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/uuid"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a keyed lookup has no row.
var ErrNotFound = errors.New("cache: not found")

// Store is the local cache contract. Each call is independently atomic;
// there are no guarantees across entity kinds.
type Store interface {
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	PutTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	MarkTransactionSynced(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	PutCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id string) error

	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	PutProfile(ctx context.Context, p *models.Profile) error

	Enqueue(ctx context.Context, op *models.PendingOperation) error
	Dequeue(ctx context.Context, id string) error
	ListPending(ctx context.Context) ([]models.PendingOperation, error)
	CountPending(ctx context.Context) (int64, error)

	GetSession(ctx context.Context) (*models.Session, error)
	PutSession(ctx context.Context, s *models.Session) error
	DeleteSession(ctx context.Context) error
}

// Open opens (creating if needed) the SQLite cache file at path and migrates its schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	// SQLite allows one writer; a single connection avoids "database is locked".
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the cache tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.CacheTables()...); err != nil {
		return fmt.Errorf("failed to migrate cache: %w", err)
	}
	return nil
}

// sqliteStore implements Store on top of gorm.
type sqliteStore struct {
	db  *gorm.DB
	now func() time.Time

	// enqueueMu serialises sequence assignment.
	enqueueMu sync.Mutex
}

// New creates a Store backed by db. The schema must already be migrated.
func New(db *gorm.DB) Store {
	return &sqliteStore{db: db, now: time.Now}
}

func (s *sqliteStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := s.db.WithContext(ctx).Order("date DESC, id DESC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, nil
}

func (s *sqliteStore) PutTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := s.db.WithContext(ctx).Save(tx).Error; err != nil {
		return fmt.Errorf("storing transaction %s: %w", tx.ID, err)
	}
	return nil
}

func (s *sqliteStore) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Transaction{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("deleting transaction %s: %w", id, err)
	}
	return nil
}

func (s *sqliteStore) MarkTransactionSynced(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("id = ?", id).Update("synced", true)
	if res.Error != nil {
		return fmt.Errorf("marking transaction %s synced: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.db.WithContext(ctx).Order("is_default DESC, name ASC").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return cats, nil
}

func (s *sqliteStore) PutCategory(ctx context.Context, c *models.Category) error {
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("storing category %s: %w", c.ID, err)
	}
	return nil
}

func (s *sqliteStore) DeleteCategory(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("deleting category %s: %w", id, err)
	}
	return nil
}

func (s *sqliteStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.WithContext(ctx).First(&p, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading profile %s: %w", userID, err)
	}
	return &p, nil
}

func (s *sqliteStore) PutProfile(ctx context.Context, p *models.Profile) error {
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("storing profile %s: %w", p.ID, err)
	}
	return nil
}

// Enqueue appends op to the queue, assigning its id, sequence number and
// enqueue time when they are unset.
func (s *sqliteStore) Enqueue(ctx context.Context, op *models.PendingOperation) error {
	s.enqueueMu.Lock()
	defer s.enqueueMu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&models.PendingOperation{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
			return fmt.Errorf("reading queue tail: %w", err)
		}

		if op.ID == "" {
			op.ID = uuid.New()
		}
		if op.EnqueuedAt.IsZero() {
			op.EnqueuedAt = s.now().UTC()
		}
		op.Seq = last + 1

		if err := tx.Create(op).Error; err != nil {
			return fmt.Errorf("enqueueing %s: %w", op, err)
		}
		return nil
	})
}

// Dequeue removes exactly one queue entry.
func (s *sqliteStore) Dequeue(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.PendingOperation{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("dequeueing %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPending returns all queue entries in enqueue order.
func (s *sqliteStore) ListPending(ctx context.Context) ([]models.PendingOperation, error) {
	var ops []models.PendingOperation
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&ops).Error; err != nil {
		return nil, fmt.Errorf("listing pending operations: %w", err)
	}
	return ops, nil
}

func (s *sqliteStore) CountPending(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.PendingOperation{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting pending operations: %w", err)
	}
	return n, nil
}

// GetSession returns the most recently stored session.
func (s *sqliteStore) GetSession(ctx context.Context) (*models.Session, error) {
	var sess models.Session
	if err := s.db.WithContext(ctx).Order("updated_at DESC").First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return &sess, nil
}

// PutSession replaces any stored session with sess; the device holds one
// session at a time.
func (s *sqliteStore) PutSession(ctx context.Context, sess *models.Session) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id <> ?", sess.UserID).Delete(&models.Session{}).Error; err != nil {
			return fmt.Errorf("clearing previous session: %w", err)
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(sess).Error; err != nil {
			return fmt.Errorf("storing session: %w", err)
		}
		return nil
	})
}

func (s *sqliteStore) DeleteSession(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
