package models

import "time"

// Session is an authenticated session persisted on the device so that a
// later process can resume it without signing in again.
type Session struct {
	UserID       string    `gorm:"primaryKey;size:64" json:"user_id"`
	Email        string    `gorm:"size:255" json:"email"`
	AccessToken  string    `gorm:"type:text" json:"access_token"`
	RefreshToken string    `gorm:"type:text" json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ExpiresWithin reports whether the access token expires before now+skew.
// A zero ExpiresAt is treated as never expiring.
func (s Session) ExpiresWithin(now time.Time, skew time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return now.Add(skew).After(s.ExpiresAt)
}
