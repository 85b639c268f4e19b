package models

// CacheTables lists the models persisted in the on-device cache.
func CacheTables() []any {
	return []any{
		&Transaction{},
		&Category{},
		&Profile{},
		&PendingOperation{},
		&Session{},
	}
}

// BackendTables lists the models stored by the reference backend.
func BackendTables() []any {
	return []any{
		&User{},
		&Profile{},
		&Category{},
		&Transaction{},
		&StoredObject{},
		&AuditLog{},
	}
}
