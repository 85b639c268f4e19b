package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"fintrack/internal/models"
)

const (
	preferIgnoreDuplicates = "resolution=ignore-duplicates,return=minimal"
	preferMergeDuplicates  = "resolution=merge-duplicates,return=minimal"
)

// ListTransactions returns the user's transactions, newest first.
func (c *Client) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	q := eq("user_id", userID)
	q.Set("order", "date.desc")

	var rows []models.Transaction
	if err := c.do(ctx, "listing transactions", request{method: http.MethodGet, path: "/rest/v1/transactions", query: q, authed: true}, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertTransaction stores tx. Replaying an insert that already reached the
// remote is a no-op.
func (c *Client) InsertTransaction(ctx context.Context, tx models.Transaction) error {
	return c.do(ctx, "inserting transaction", request{
		method: http.MethodPost,
		path:   "/rest/v1/transactions",
		body:   tx,
		prefer: preferIgnoreDuplicates,
		authed: true,
	}, nil)
}

// UpdateTransaction overwrites the stored transaction with tx.
func (c *Client) UpdateTransaction(ctx context.Context, tx models.Transaction) error {
	return c.do(ctx, "updating transaction", request{
		method: http.MethodPatch,
		path:   "/rest/v1/transactions",
		query:  eq("id", tx.ID),
		body:   tx,
		authed: true,
	}, nil)
}

// DeleteTransaction removes a transaction. Deleting a missing row succeeds.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, "deleting transaction", request{
		method: http.MethodDelete,
		path:   "/rest/v1/transactions",
		query:  eq("id", id),
		authed: true,
	}, nil)
}

// ListCategories returns the user's own categories together with the built-in ones.
func (c *Client) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	q := url.Values{}
	q.Set("or", fmt.Sprintf("(user_id.eq.%s,is_default.eq.true)", userID))
	q.Set("order", "name.asc")

	var rows []models.Category
	if err := c.do(ctx, "listing categories", request{method: http.MethodGet, path: "/rest/v1/categories", query: q, authed: true}, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertCategory stores a user category.
func (c *Client) InsertCategory(ctx context.Context, cat models.Category) error {
	return c.do(ctx, "inserting category", request{
		method: http.MethodPost,
		path:   "/rest/v1/categories",
		body:   cat,
		prefer: preferIgnoreDuplicates,
		authed: true,
	}, nil)
}

// DeleteCategory removes a user category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, "deleting category", request{
		method: http.MethodDelete,
		path:   "/rest/v1/categories",
		query:  eq("id", id),
		authed: true,
	}, nil)
}

// GetProfile returns the user's profile, or ErrNotFound when none is stored.
func (c *Client) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var rows []models.Profile
	if err := c.do(ctx, "fetching profile", request{method: http.MethodGet, path: "/rest/v1/profiles", query: eq("id", userID), authed: true}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// UpsertProfile creates or replaces the user's profile.
func (c *Client) UpsertProfile(ctx context.Context, p models.Profile) error {
	return c.do(ctx, "saving profile", request{
		method: http.MethodPost,
		path:   "/rest/v1/profiles",
		body:   p,
		prefer: preferMergeDuplicates,
		authed: true,
	}, nil)
}
