package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntityKind names the remote table an operation targets.
type EntityKind string

const (
	KindTransactions EntityKind = "transactions"
	KindCategories   EntityKind = "categories"
	KindProfiles     EntityKind = "profiles"
)

// OperationAction is the write an operation replays.
type OperationAction string

const (
	ActionCreate OperationAction = "create"
	ActionUpdate OperationAction = "update"
	ActionDelete OperationAction = "delete"
)

// PendingOperation is a sync-queue entry: a remote write that has not been
// confirmed yet. Seq is assigned by the cache on enqueue and defines replay order.
type PendingOperation struct {
	ID         string          `gorm:"primaryKey;size:64" json:"id"`
	Seq        int64           `gorm:"uniqueIndex;not null" json:"seq"`
	UserID     string          `gorm:"size:64;not null;index" json:"user_id"`
	Kind       EntityKind      `gorm:"size:32;not null" json:"kind"`
	Action     OperationAction `gorm:"size:16;not null" json:"action"`
	EntityID   string          `gorm:"size:64;not null;index" json:"entity_id"`
	Payload    string          `gorm:"type:text" json:"payload"`
	EnqueuedAt time.Time       `gorm:"not null" json:"enqueued_at"`
}

// TableName keeps the queue under its historical name.
func (PendingOperation) TableName() string {
	return "sync_queue"
}

// deletePayload is what a delete carries: only the id.
type deletePayload struct {
	ID string `json:"id"`
}

// NewPendingOperation serialises entity into a queue entry. For deletes the
// payload is reduced to the entity id.
func NewPendingOperation(userID string, kind EntityKind, action OperationAction, entityID string, entity any) (*PendingOperation, error) {
	if action == ActionDelete {
		entity = deletePayload{ID: entityID}
	}
	payload, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("encoding %s %s payload: %w", kind, action, err)
	}
	return &PendingOperation{
		UserID:   userID,
		Kind:     kind,
		Action:   action,
		EntityID: entityID,
		Payload:  string(payload),
	}, nil
}

// Transaction decodes the payload of a transactions operation.
func (op PendingOperation) Transaction() (Transaction, error) {
	var tx Transaction
	err := op.decode(KindTransactions, &tx)
	return tx, err
}

// Category decodes the payload of a categories operation.
func (op PendingOperation) Category() (Category, error) {
	var c Category
	err := op.decode(KindCategories, &c)
	return c, err
}

// Profile decodes the payload of a profiles operation.
func (op PendingOperation) Profile() (Profile, error) {
	var p Profile
	err := op.decode(KindProfiles, &p)
	return p, err
}

func (op PendingOperation) decode(want EntityKind, into any) error {
	if op.Kind != want {
		return fmt.Errorf("operation %s targets %s, not %s", op.ID, op.Kind, want)
	}
	if err := json.Unmarshal([]byte(op.Payload), into); err != nil {
		return fmt.Errorf("decoding payload of operation %s: %w", op.ID, err)
	}
	return nil
}

// String renders the operation for logs and the CLI.
func (op PendingOperation) String() string {
	return fmt.Sprintf("#%d %s %s %s", op.Seq, op.Action, op.Kind, op.EntityID)
}
