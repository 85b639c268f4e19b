package store

import (
	"context"
	"strings"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/uuid"
	"fintrack/internal/validator"
)

// NewCategory is the input for AddCategory.
type NewCategory struct {
	Name  string              `validate:"required,max=50"`
	Icon  string              `validate:"max=32"`
	Color string              `validate:"required,hex_color"`
	Type  models.CategoryType `validate:"required,category_type"`
}

// AddCategory creates a user category.
func (s *Store) AddCategory(ctx context.Context, in NewCategory) (models.Category, error) {
	userID, err := s.userID()
	if err != nil {
		return models.Category{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validator.Struct(in); err != nil {
		return models.Category{}, invalid(err)
	}

	now := s.now().UTC()
	owner := userID
	c := models.Category{
		Base:   models.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID: &owner,
		Name:   in.Name,
		Icon:   in.Icon,
		Color:  strings.ToUpper(in.Color),
		Type:   in.Type,
	}

	s.mu.Lock()
	s.categories = append(s.categories, c)
	sortCategories(s.categories)
	s.mu.Unlock()

	if err := s.cache.PutCategory(ctx, &c); err != nil {
		s.log.Warnw("Failed to cache category", "id", c.ID, "error", err)
	}

	s.commit(ctx, models.KindCategories, models.ActionCreate, c.ID, c, func(ctx context.Context) error {
		return s.backend.InsertCategory(ctx, c)
	})
	return c, nil
}

// DeleteCategory removes a user category. Transactions that reference it
// keep their category id. Built-in categories cannot be deleted.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.userID(); err != nil {
		return err
	}

	s.mu.Lock()
	idx := -1
	for i := range s.categories {
		if s.categories[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return apperrors.ErrCategoryNotFound
	}
	if s.categories[idx].IsDefault {
		s.mu.Unlock()
		return apperrors.ErrDefaultCategoryReadOnly
	}
	s.categories = append(s.categories[:idx], s.categories[idx+1:]...)
	s.mu.Unlock()

	if err := s.cache.DeleteCategory(ctx, id); err != nil {
		s.log.Warnw("Failed to delete cached category", "id", id, "error", err)
	}

	s.commit(ctx, models.KindCategories, models.ActionDelete, id, nil, func(ctx context.Context) error {
		return s.backend.DeleteCategory(ctx, id)
	})
	return nil
}
