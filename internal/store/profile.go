package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/remote"
	"fintrack/internal/uuid"
	"fintrack/internal/validator"

	playground "github.com/go-playground/validator/v10"
)

// UpdateProfile changes the user's settings.
func (s *Store) UpdateProfile(ctx context.Context, in models.ProfileUpdate) (models.Profile, error) {
	userID, err := s.userID()
	if err != nil {
		return models.Profile{}, err
	}
	in.Currency = normalizeCurrency(in.Currency)
	if err := validator.Struct(in); err != nil {
		return models.Profile{}, invalid(err)
	}
	if in.Empty() {
		return s.Profile(), nil
	}

	s.mu.Lock()
	p := s.profile
	in.Apply(&p)
	p.UpdatedAt = s.now().UTC()
	s.profile = p
	s.mu.Unlock()

	if err := s.cache.PutProfile(ctx, &p); err != nil {
		s.log.Warnw("Failed to cache profile", "error", err)
	}

	s.commit(ctx, models.KindProfiles, models.ActionUpdate, userID, p, func(ctx context.Context) error {
		return s.backend.UpsertProfile(ctx, p)
	})
	return p, nil
}

// UploadAvatar stores a new profile picture and points the profile at it.
// Uploads are not queued, so this needs connectivity.
func (s *Store) UploadAvatar(ctx context.Context, fileName, contentType string, body io.Reader) (string, error) {
	userID, err := s.userID()
	if err != nil {
		return "", err
	}
	if !s.observer.Online() {
		return "", apperrors.ErrOffline
	}

	path := fmt.Sprintf("%s-%s%s", userID, uuid.New(), strings.ToLower(filepath.Ext(fileName)))
	if err := s.backend.UploadObject(ctx, remote.AvatarBucket, path, contentType, body); err != nil {
		if remote.IsUnreachable(err) {
			return "", apperrors.Wrap(apperrors.ErrOffline, err)
		}
		return "", err
	}

	url := s.backend.PublicURL(remote.AvatarBucket, path)
	if _, err := s.UpdateProfile(ctx, models.ProfileUpdate{AvatarURL: &url}); err != nil {
		return "", err
	}
	return url, nil
}

// invalid turns a validation failure into an INVALID_INPUT error naming the
// first offending field.
func invalid(err error) error {
	var verrs playground.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := fmt.Sprintf("Invalid %s: failed %s", strings.ToLower(fe.Field()), fe.Tag())
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		return apperrors.WithMessage(apperrors.ErrInvalidInput, msg)
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err)
}
