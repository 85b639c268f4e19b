package services

import (
	"context"
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestAuditService_Record(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	ctx := context.Background()

	svc.Record(ctx, AuditEvent{
		UserID:     "u1",
		Action:     AuditDeleteTransaction,
		Resource:   "transaction",
		ResourceID: "tx-1",
		IP:         "10.0.0.1",
		Details:    map[string]any{"rows": 1},
	})

	var entry models.AuditLog
	testutil.AssertNoError(t, db.First(&entry).Error)
	if entry.Action != "delete_transaction" || entry.ResourceID != "tx-1" || entry.Changes != `{"rows":1}` {
		t.Errorf("unexpected audit entry: %+v", entry)
	}

	t.Run("no_details", func(t *testing.T) {
		svc.Record(ctx, AuditEvent{UserID: "u1", Action: AuditLogout, Resource: "user", ResourceID: "u1"})
		var logout models.AuditLog
		testutil.AssertNoError(t, db.Where("action = ?", AuditLogout).First(&logout).Error)
		if logout.Changes != "" {
			t.Errorf("expected empty changes, got %q", logout.Changes)
		}
	})

	t.Run("storage_failure_is_swallowed", func(t *testing.T) {
		testutil.AssertNoError(t, db.Migrator().DropTable(&models.AuditLog{}))
		svc.Record(ctx, AuditEvent{UserID: "u1", Action: AuditLogin, Resource: "user", ResourceID: "u1"})
	})
}
