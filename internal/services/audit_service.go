package services

import (
	"context"
	"encoding/json"

	"fintrack/internal/logger"
	"fintrack/internal/models"

	"gorm.io/gorm"
)

// Audit actions.
const (
	AuditSignUp            = "signup"
	AuditLogin             = "login"
	AuditLogout            = "logout"
	AuditDeleteTransaction = "delete_transaction"
	AuditDeleteCategory    = "delete_category"
)

// AuditEvent is one security-relevant action taken by a user.
type AuditEvent struct {
	UserID     string
	Action     string
	Resource   string // "user", "transaction" or "category"
	ResourceID string
	IP         string
	Details    map[string]any
}

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Record writes e to audit_logs. A failed write is logged and dropped: the
// action being audited has already happened.
func (s *auditService) Record(ctx context.Context, e AuditEvent) {
	entry := &models.AuditLog{
		UserID:       e.UserID,
		Action:       e.Action,
		ResourceType: e.Resource,
		ResourceID:   e.ResourceID,
		IPAddress:    e.IP,
	}
	if len(e.Details) > 0 {
		data, err := json.Marshal(e.Details)
		if err != nil {
			logger.Get().Warnw("Dropping unencodable audit details", "action", e.Action, "error", err)
		} else {
			entry.Changes = string(data)
		}
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Get().Errorw("Audit write failed",
			"error", err,
			"user_id", e.UserID,
			"action", e.Action,
			"resource", e.Resource,
			"resource_id", e.ResourceID,
		)
	}
}
