package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// StorageHandler serves uploaded objects
type StorageHandler struct {
	storageService services.StorageServicer
}

// NewStorageHandler creates a new StorageHandler
func NewStorageHandler(storageService services.StorageServicer) *StorageHandler {
	return &StorageHandler{storageService: storageService}
}

// UploadResponse names the stored object
type UploadResponse struct {
	Key string `json:"Key"`
}

// Upload handles POST /storage/v1/object/:bucket/*path
// @Summary     Upload an object
// @Description The raw request body is stored; names must start with the caller's id
// @Tags        storage
// @Accept      octet-stream
// @Produce     json
// @Security    APIKey
// @Security    BearerAuth
// @Param       bucket path string true "Bucket"
// @Param       path   path string true "Object path"
// @Success     200 {object} UploadResponse
// @Failure     403 {object} ErrorResponse "Foreign object name"
// @Failure     413 {object} ErrorResponse "Object too large"
// @Router      /storage/v1/object/{bucket}/{path} [post]
func (h *StorageHandler) Upload(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxObjectSize+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(c, apperrors.ErrObjectTooLarge)
			return
		}
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "could not read request body"))
		return
	}

	bucket, path := c.Param("bucket"), strings.TrimPrefix(c.Param("path"), "/")
	obj, err := h.storageService.Upload(userID, bucket, path, c.ContentType(), data)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, UploadResponse{Key: obj.Bucket + "/" + obj.Path})
}

// Public handles GET /storage/v1/object/public/:bucket/*path
// @Summary     Download a public object
// @Tags        storage
// @Param       bucket path string true "Bucket"
// @Param       path   path string true "Object path"
// @Success     200 {file} binary
// @Failure     404 {object} ErrorResponse "Object not found"
// @Router      /storage/v1/object/public/{bucket}/{path} [get]
func (h *StorageHandler) Public(c *gin.Context) {
	obj, err := h.storageService.Get(c.Param("bucket"), strings.TrimPrefix(c.Param("path"), "/"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, obj.ContentType, obj.Data)
}
