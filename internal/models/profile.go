package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Theme is the user's preferred colour scheme.
type Theme string

const (
	ThemeDark   Theme = "dark"
	ThemeLight  Theme = "light"
	ThemeSystem Theme = "system"
)

// Defaults applied to a freshly registered user.
const (
	DefaultCurrency = "RUB"
	DefaultTheme    = ThemeDark
)

// DefaultMonthlyLimit is the spending limit shown before the user sets one.
var DefaultMonthlyLimit = decimal.NewFromInt(50000)

// Profile holds per-user settings. Its id is the owning user's id.
type Profile struct {
	ID           string          `gorm:"primaryKey;size:64" json:"id"`
	Email        string          `gorm:"size:255" json:"email"`
	FullName     string          `gorm:"size:100" json:"full_name"`
	Currency     string          `gorm:"size:3;not null" json:"currency"`
	Theme        Theme           `gorm:"size:16;not null" json:"theme"`
	MonthlyLimit decimal.Decimal `gorm:"type:decimal(15,2)" json:"monthly_limit"`
	AvatarURL    string          `gorm:"size:512" json:"avatar_url,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DefaultProfile builds the profile a user sees before anything is stored.
// The display name is the local part of the email address.
func DefaultProfile(userID, email string) Profile {
	name := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		name = email[:at]
	}
	return Profile{
		ID:           userID,
		Email:        email,
		FullName:     name,
		Currency:     DefaultCurrency,
		Theme:        DefaultTheme,
		MonthlyLimit: DefaultMonthlyLimit,
	}
}

// ProfileUpdate is a partial profile change; nil fields are left untouched.
type ProfileUpdate struct {
	FullName     *string          `validate:"omitempty,max=100"`
	Currency     *string          `validate:"omitempty,iso4217"`
	Theme        *Theme           `validate:"omitempty,theme"`
	MonthlyLimit *decimal.Decimal `validate:"omitempty,gte=0"`
	AvatarURL    *string          `validate:"omitempty,url"`
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.FullName == nil && u.Currency == nil && u.Theme == nil && u.MonthlyLimit == nil && u.AvatarURL == nil
}

// Apply merges the update into p.
func (u ProfileUpdate) Apply(p *Profile) {
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.Currency != nil {
		p.Currency = *u.Currency
	}
	if u.Theme != nil {
		p.Theme = *u.Theme
	}
	if u.MonthlyLimit != nil {
		p.MonthlyLimit = *u.MonthlyLimit
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
}
