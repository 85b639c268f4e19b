package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
)

// APIKeyMiddleware rejects requests whose apikey header does not match the
// project's anon key. Clients send it on every call, signed in or not.
func APIKeyMiddleware(anonKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("apikey")
		if anonKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(anonKey)) != 1 {
			abortWithError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
