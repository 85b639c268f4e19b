package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
)

// ErrorHandler turns the last error attached to the context into the
// {"error":{"code","message"}} body clients decode. Only AppError codes and
// messages reach the client; anything else becomes INTERNAL_ERROR.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last()
		if err.IsType(gin.ErrorTypeBind) {
			writeError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}

		var appErr *apperrors.AppError
		if !errors.As(err.Err, &appErr) {
			logger.Get().Errorw("Unhandled error",
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", c.GetString(requestIDKey),
			)
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			logger.Get().Errorw("Request failed",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
				"request_id", c.GetString(requestIDKey),
			)
		}
		writeError(c, appErr)
	}
}

// NoRoute answers unknown paths with a NOT_FOUND error body.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithError(c, apperrors.ErrNotFound)
	}
}

func writeError(c *gin.Context, err *apperrors.AppError) {
	c.JSON(err.StatusCode, errorBody(err))
}

func abortWithError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, errorBody(err))
}

func errorBody(err *apperrors.AppError) gin.H {
	return gin.H{"error": gin.H{"code": err.Code, "message": err.Message}}
}
