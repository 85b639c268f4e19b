package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/validator"
)

// profileService handles profile rows. A profile's id is its owner's id.
type profileService struct {
	db *gorm.DB
}

// NewProfileService creates a new ProfileServicer.
func NewProfileService(db *gorm.DB) ProfileServicer {
	return &profileService{db: db}
}

// ListProfiles returns the caller's profile if it matches q.
func (s *profileService) ListProfiles(userID string, q RowQuery) ([]models.Profile, error) {
	scope, err := rowScope(q, map[string]bool{"id": true})
	if err != nil {
		return nil, err
	}

	profiles := []models.Profile{}
	if err := s.db.Where("id = ?", userID).Scopes(scope).Find(&profiles).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return profiles, nil
}

// UpsertProfile stores p as the caller's profile.
func (s *profileService) UpsertProfile(userID string, p models.Profile, res Resolution) error {
	if p.ID != "" && p.ID != userID {
		return apperrors.WithMessage(apperrors.ErrForbidden, "row belongs to another user")
	}
	p.ID = userID
	if err := checkProfile(p); err != nil {
		return err
	}

	err := s.db.Transaction(func(db *gorm.DB) error {
		return insertRow(db, res,
			func(db *gorm.DB) (bool, bool, error) {
				var existing models.Profile
				err := db.Where("id = ?", userID).First(&existing).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return false, false, nil
				}
				return err == nil, true, err
			},
			func(db *gorm.DB) error { return db.Create(&p).Error },
			func(db *gorm.DB) error { return db.Omit("created_at").Save(&p).Error },
		)
	})
	return serviceError(err)
}

// UpdateProfile applies a partial update to the caller's profile.
func (s *profileService) UpdateProfile(userID, id string, update models.ProfileUpdate) (int64, error) {
	if id != userID {
		return 0, nil
	}
	if err := validator.Struct(update); err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	var profile models.Profile
	if err := s.db.Where("id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	update.Apply(&profile)
	if err := s.db.Save(&profile).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return 1, nil
}

func checkProfile(p models.Profile) error {
	switch {
	case !validator.IsCurrency(p.Currency):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown currency")
	case p.Theme != models.ThemeDark && p.Theme != models.ThemeLight && p.Theme != models.ThemeSystem:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown theme")
	case p.MonthlyLimit.IsNegative():
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "monthly limit cannot be negative")
	case len(p.FullName) > 100:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "full name is too long")
	}
	return nil
}
