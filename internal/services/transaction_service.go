package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

var transactionOrderColumns = map[string]bool{
	"date": true, "amount": true, "created_at": true, "id": true,
}

// transactionService handles transaction rows. Every call is scoped to the
// calling user: other users' rows can be neither read nor changed.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// ListTransactions returns the caller's transactions matching q.
func (s *transactionService) ListTransactions(userID string, q RowQuery) ([]models.Transaction, error) {
	scope, err := rowScope(q, transactionOrderColumns)
	if err != nil {
		return nil, err
	}

	db := s.db.Where("user_id = ?", userID)
	if q.UserID != "" {
		db = db.Where("user_id = ?", q.UserID)
	}

	transactions := []models.Transaction{}
	if err := db.Scopes(scope).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// InsertTransaction stores tx for the caller. A row naming another owner is
// rejected; stored rows are always marked synced.
func (s *transactionService) InsertTransaction(userID string, tx models.Transaction, res Resolution) error {
	if err := checkTransaction(userID, &tx); err != nil {
		return err
	}

	err := s.db.Transaction(func(db *gorm.DB) error {
		return insertRow(db, res,
			func(db *gorm.DB) (bool, bool, error) {
				if tx.ID == "" {
					return false, false, nil
				}
				var existing models.Transaction
				err := db.Where("id = ?", tx.ID).First(&existing).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return false, false, nil
				}
				return err == nil, existing.UserID == userID, err
			},
			func(db *gorm.DB) error { return db.Create(&tx).Error },
			func(db *gorm.DB) error { return db.Omit("created_at").Save(&tx).Error },
		)
	})
	return serviceError(err)
}

// UpdateTransaction overwrites the caller's row id with the content of tx
// and reports how many rows changed.
func (s *transactionService) UpdateTransaction(userID, id string, tx models.Transaction) (int64, error) {
	if err := checkTransaction(userID, &tx); err != nil {
		return 0, err
	}

	res := s.db.Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", id, userID).
		Select("category_id", "type", "amount", "currency", "title", "description", "date", "synced").
		Updates(&tx)
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteTransaction removes the caller's row id. Deleting a missing or
// foreign row affects nothing and is not an error.
func (s *transactionService) DeleteTransaction(userID, id string) (int64, error) {
	res := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Transaction{})
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}

func checkTransaction(userID string, tx *models.Transaction) error {
	if tx.UserID != "" && tx.UserID != userID {
		return apperrors.WithMessage(apperrors.ErrForbidden, "row belongs to another user")
	}
	if !tx.Type.Valid() {
		return apperrors.ErrInvalidTransactionType
	}
	if !tx.Amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if tx.Date.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}
	tx.UserID = userID
	tx.Synced = true
	return nil
}
