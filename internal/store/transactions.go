package store

import (
	"context"
	"strings"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/uuid"
	"fintrack/internal/validator"

	"github.com/shopspring/decimal"
)

// NewTransaction is the input for AddTransaction. Currency defaults to the
// profile currency and Date to now.
type NewTransaction struct {
	Type        models.TransactionType `validate:"required,transaction_type"`
	Amount      decimal.Decimal        `validate:"gt=0"`
	Currency    string                 `validate:"omitempty,iso4217"`
	CategoryID  string                 `validate:"required"`
	Title       string                 `validate:"max=120"`
	Description string                 `validate:"max=500"`
	Date        time.Time
}

// TransactionUpdate is a partial change to a transaction; nil fields are kept.
type TransactionUpdate struct {
	Type        *models.TransactionType `validate:"omitempty,transaction_type"`
	Amount      *decimal.Decimal        `validate:"omitempty,gt=0"`
	Currency    *string                 `validate:"omitempty,iso4217"`
	CategoryID  *string                 `validate:"omitempty,min=1"`
	Title       *string                 `validate:"omitempty,max=120"`
	Description *string                 `validate:"omitempty,max=500"`
	Date        *time.Time
}

// AddTransaction records a new transaction.
func (s *Store) AddTransaction(ctx context.Context, in NewTransaction) (models.Transaction, error) {
	userID, err := s.userID()
	if err != nil {
		return models.Transaction{}, err
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = s.Profile().Currency
	}
	if err := validator.Struct(in); err != nil {
		return models.Transaction{}, invalid(err)
	}
	if err := s.checkCategory(in.CategoryID, in.Type); err != nil {
		return models.Transaction{}, err
	}

	now := s.now().UTC()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	tx := models.Transaction{
		Base:        models.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:      userID,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Date:        date.UTC(),
	}

	s.mu.Lock()
	s.transactions = append(s.transactions, tx)
	sortTransactions(s.transactions)
	s.mu.Unlock()

	if err := s.cache.PutTransaction(ctx, &tx); err != nil {
		s.log.Warnw("Failed to cache transaction", "id", tx.ID, "error", err)
	}

	if s.commit(ctx, models.KindTransactions, models.ActionCreate, tx.ID, tx, func(ctx context.Context) error {
		return s.backend.InsertTransaction(ctx, asSynced(tx))
	}) {
		tx.Synced = true
		s.markSynced(ctx, tx.ID)
	}
	return tx, nil
}

// UpdateTransaction changes an existing transaction.
func (s *Store) UpdateTransaction(ctx context.Context, id string, in TransactionUpdate) (models.Transaction, error) {
	if _, err := s.userID(); err != nil {
		return models.Transaction{}, err
	}
	in.Currency = normalizeCurrency(in.Currency)
	if err := validator.Struct(in); err != nil {
		return models.Transaction{}, invalid(err)
	}

	tx, ok := s.transaction(id)
	if !ok {
		return models.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if in.Type != nil {
		tx.Type = *in.Type
	}
	if in.Amount != nil {
		tx.Amount = *in.Amount
	}
	if in.Currency != nil {
		tx.Currency = *in.Currency
	}
	if in.CategoryID != nil {
		tx.CategoryID = *in.CategoryID
	}
	if in.Title != nil {
		tx.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		tx.Description = strings.TrimSpace(*in.Description)
	}
	if in.Date != nil {
		tx.Date = in.Date.UTC()
	}
	if in.CategoryID != nil || in.Type != nil {
		if err := s.checkCategory(tx.CategoryID, tx.Type); err != nil {
			return models.Transaction{}, err
		}
	}
	tx.UpdatedAt = s.now().UTC()
	tx.Synced = false

	s.mu.Lock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i] = tx
		}
	}
	sortTransactions(s.transactions)
	s.mu.Unlock()

	if err := s.cache.PutTransaction(ctx, &tx); err != nil {
		s.log.Warnw("Failed to cache transaction", "id", tx.ID, "error", err)
	}

	if s.commit(ctx, models.KindTransactions, models.ActionUpdate, tx.ID, tx, func(ctx context.Context) error {
		return s.backend.UpdateTransaction(ctx, asSynced(tx))
	}) {
		tx.Synced = true
		s.markSynced(ctx, tx.ID)
	}
	return tx, nil
}

// DeleteTransaction removes a transaction.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := s.userID(); err != nil {
		return err
	}

	s.mu.Lock()
	found := false
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return apperrors.ErrTransactionNotFound
	}

	if err := s.cache.DeleteTransaction(ctx, id); err != nil {
		s.log.Warnw("Failed to delete cached transaction", "id", id, "error", err)
	}

	s.commit(ctx, models.KindTransactions, models.ActionDelete, id, nil, func(ctx context.Context) error {
		return s.backend.DeleteTransaction(ctx, id)
	})
	return nil
}

func (s *Store) transaction(id string) (models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.transactions {
		if tx.ID == id {
			return tx, true
		}
	}
	return models.Transaction{}, false
}

// checkCategory requires a known category that fits the transaction type.
func (s *Store) checkCategory(id string, t models.TransactionType) error {
	c, ok := s.Category(id)
	if !ok {
		return apperrors.ErrCategoryNotFound
	}
	if !c.Applies(t) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Category "+c.Name+" cannot be used for "+string(t))
	}
	return nil
}

func (s *Store) markSynced(ctx context.Context, id string) {
	s.mu.Lock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i].Synced = true
		}
	}
	s.mu.Unlock()

	if err := s.cache.MarkTransactionSynced(ctx, id); err != nil {
		s.log.Warnw("Failed to mark cached transaction synced", "id", id, "error", err)
	}
}

func asSynced(tx models.Transaction) models.Transaction {
	tx.Synced = true
	return tx
}

// normalizeCurrency returns an upper-cased copy so "usd" validates as USD.
// The caller's string is left alone.
func normalizeCurrency(code *string) *string {
	if code == nil {
		return nil
	}
	c := strings.ToUpper(strings.TrimSpace(*code))
	return &c
}
