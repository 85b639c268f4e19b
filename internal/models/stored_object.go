package models

import "time"

// StoredObject is a file kept by the reference backend's object storage.
type StoredObject struct {
	Bucket      string    `gorm:"primaryKey;size:64" json:"bucket"`
	Path        string    `gorm:"primaryKey;size:255" json:"path"`
	OwnerID     string    `gorm:"size:64;not null;index" json:"owner_id"`
	ContentType string    `gorm:"size:128" json:"content_type"`
	Data        []byte    `json:"-"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
