package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a single income or expense entry. Its id is assigned on the
// device that created it, so the same row can be replayed to the remote any
// number of times.
type Transaction struct {
	Base
	UserID      string          `gorm:"size:64;not null;index" json:"user_id"`
	CategoryID  string          `gorm:"size:64" json:"category_id"`
	Type        TransactionType `gorm:"size:16;not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency    string          `gorm:"size:3;not null" json:"currency"`
	Title       string          `gorm:"size:120" json:"title,omitempty"`
	Description string          `gorm:"size:500" json:"description,omitempty"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Synced      bool            `gorm:"default:false" json:"synced"`
}

// Signed returns the amount as it affects a balance: negative for expenses.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}
