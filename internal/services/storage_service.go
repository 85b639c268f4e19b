package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// MaxObjectSize is the largest object accepted by Upload.
const MaxObjectSize = 5 << 20

// storageService keeps uploaded objects as rows.
type storageService struct {
	db      *gorm.DB
	buckets map[string]bool
}

// NewStorageService creates a StorageServicer serving the given public buckets.
func NewStorageService(db *gorm.DB, buckets ...string) StorageServicer {
	allowed := make(map[string]bool, len(buckets))
	for _, b := range buckets {
		allowed[b] = true
	}
	return &storageService{db: db, buckets: allowed}
}

// Upload stores data under bucket/path, replacing an object the same owner
// stored there before. Object names must start with the owner's id.
func (s *storageService) Upload(ownerID, bucket, path, contentType string, data []byte) (*models.StoredObject, error) {
	if !s.buckets[bucket] {
		return nil, apperrors.WithMessage(apperrors.ErrNotFound, "bucket not found")
	}
	path = strings.TrimLeft(path, "/")
	if path == "" || strings.Contains(path, "..") {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid object path")
	}
	if !strings.HasPrefix(path, ownerID) {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "object names must start with the owner's id")
	}
	if len(data) > MaxObjectSize {
		return nil, apperrors.ErrObjectTooLarge
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	obj := &models.StoredObject{
		Bucket:      bucket,
		Path:        path,
		OwnerID:     ownerID,
		ContentType: contentType,
		Data:        data,
		Size:        int64(len(data)),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.StoredObject
		err := tx.Where("bucket = ? AND path = ?", bucket, path).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(obj).Error
		case err != nil:
			return err
		case existing.OwnerID != ownerID:
			return apperrors.ErrForbidden
		default:
			obj.CreatedAt = existing.CreatedAt
			return tx.Save(obj).Error
		}
	})
	if err != nil {
		return nil, serviceError(err)
	}
	return obj, nil
}

// Get returns the object stored under bucket/path.
func (s *storageService) Get(bucket, path string) (*models.StoredObject, error) {
	if !s.buckets[bucket] {
		return nil, apperrors.ErrObjectNotFound
	}
	var obj models.StoredObject
	if err := s.db.Where("bucket = ? AND path = ?", bucket, strings.TrimLeft(path, "/")).First(&obj).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrObjectNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &obj, nil
}
