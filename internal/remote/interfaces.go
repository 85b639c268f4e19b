package remote

import (
	"context"
	"io"

	"fintrack/internal/models"
)

// Backend is the row and object access the sync layer needs from the remote.
type Backend interface {
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	InsertTransaction(ctx context.Context, tx models.Transaction) error
	UpdateTransaction(ctx context.Context, tx models.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	InsertCategory(ctx context.Context, c models.Category) error
	DeleteCategory(ctx context.Context, id string) error

	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p models.Profile) error

	UploadObject(ctx context.Context, bucket, path, contentType string, body io.Reader) error
	PublicURL(bucket, path string) string
}

// Authenticator manages the user's session with the remote.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) error
	VerifyOTP(ctx context.Context, email, token string) (*models.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	Refresh(ctx context.Context) (*models.Session, error)
	SignOut(ctx context.Context) error
	SetSession(s *models.Session)
	Session() *models.Session
}
