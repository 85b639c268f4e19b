package services

import (
	"context"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// Resolution is how an insert treats a row whose id already exists, as
// requested by the client's Prefer header.
type Resolution string

const (
	// ResolutionNone rejects the duplicate with CONFLICT.
	ResolutionNone Resolution = ""
	// ResolutionIgnoreDuplicates keeps the stored row and reports success.
	ResolutionIgnoreDuplicates Resolution = "ignore-duplicates"
	// ResolutionMergeDuplicates overwrites the stored row.
	ResolutionMergeDuplicates Resolution = "merge-duplicates"
)

// OrderBy is one sort key of a row listing.
type OrderBy struct {
	Column string
	Desc   bool
}

// RowQuery holds the filters a client may put on a row listing. Rows the
// caller cannot see are never returned, whatever the filters say.
type RowQuery struct {
	ID     string
	UserID string
	Order  []OrderBy
	Page   pagination.PageRequest
}

// Mailer delivers one-time sign-up codes.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// AuthServicer defines the contract for account and credential logic.
type AuthServicer interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	ConfirmOTP(email, code string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// TransactionServicer defines the contract for the transactions table.
type TransactionServicer interface {
	ListTransactions(userID string, q RowQuery) ([]models.Transaction, error)
	InsertTransaction(userID string, tx models.Transaction, res Resolution) error
	UpdateTransaction(userID, id string, tx models.Transaction) (int64, error)
	DeleteTransaction(userID, id string) (int64, error)
}

// CategoryServicer defines the contract for the categories table.
type CategoryServicer interface {
	ListCategories(userID string, q RowQuery) ([]models.Category, error)
	InsertCategory(userID string, c models.Category, res Resolution) error
	DeleteCategory(userID, id string) (int64, error)
}

// ProfileServicer defines the contract for the profiles table.
type ProfileServicer interface {
	ListProfiles(userID string, q RowQuery) ([]models.Profile, error)
	UpsertProfile(userID string, p models.Profile, res Resolution) error
	UpdateProfile(userID, id string, update models.ProfileUpdate) (int64, error)
}

// StorageServicer defines the contract for object storage.
type StorageServicer interface {
	Upload(ownerID, bucket, path, contentType string, data []byte) (*models.StoredObject, error)
	Get(bucket, path string) (*models.StoredObject, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Record(ctx context.Context, e AuditEvent)
}
