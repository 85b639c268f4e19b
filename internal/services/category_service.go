package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

var categoryOrderColumns = map[string]bool{
	"name": true, "type": true, "created_at": true, "id": true,
}

// categoryService handles category rows. Callers see their own categories
// and the built-in ones; only their own can be written.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// ListCategories returns the caller's categories and the built-in set
// matching q. A user_id filter narrows to that owner's rows; built-ins have
// no owner.
func (s *categoryService) ListCategories(userID string, q RowQuery) ([]models.Category, error) {
	scope, err := rowScope(q, categoryOrderColumns)
	if err != nil {
		return nil, err
	}

	db := s.db.Where("user_id = ? OR is_default = ?", userID, true)
	if q.UserID != "" {
		db = db.Where("user_id = ?", q.UserID)
	}

	categories := []models.Category{}
	if err := db.Scopes(scope).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// InsertCategory stores c as one of the caller's categories.
func (s *categoryService) InsertCategory(userID string, c models.Category, res Resolution) error {
	if c.UserID != nil && *c.UserID != userID {
		return apperrors.WithMessage(apperrors.ErrForbidden, "row belongs to another user")
	}
	if c.IsDefault {
		return apperrors.ErrDefaultCategoryReadOnly
	}
	if c.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	c.UserID = &userID

	err := s.db.Transaction(func(db *gorm.DB) error {
		return insertRow(db, res,
			func(db *gorm.DB) (bool, bool, error) {
				if c.ID == "" {
					return false, false, nil
				}
				var existing models.Category
				err := db.Where("id = ?", c.ID).First(&existing).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return false, false, nil
				}
				return err == nil, existing.OwnedBy(userID), err
			},
			func(db *gorm.DB) error { return db.Create(&c).Error },
			func(db *gorm.DB) error { return db.Omit("created_at").Save(&c).Error },
		)
	})
	return serviceError(err)
}

// DeleteCategory removes one of the caller's categories. Built-in and
// foreign categories are not matched, so nothing is deleted. Transactions
// referring to the category keep their reference.
func (s *categoryService) DeleteCategory(userID, id string) (int64, error) {
	res := s.db.Where("id = ? AND user_id = ? AND is_default = ?", id, userID, false).Delete(&models.Category{})
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}
