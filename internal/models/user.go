package models

import "time"

// User is an account on the reference backend.
type User struct {
	Base
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	EmailConfirmedAt    *time.Time `json:"email_confirmed_at,omitempty"`
	OTPHash             string     `gorm:"size:64" json:"-"`
	OTPExpiresAt        *time.Time `json:"-"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
}

// Confirmed reports whether the user has completed email verification.
func (u *User) Confirmed() bool {
	return u.EmailConfirmedAt != nil
}
