package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return "", apperrors.ErrUnauthorized
	}
	return id, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, ErrorResponse{Error: ErrorDetail{Code: appErr.Code, Message: appErr.Message}})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorResponse{Error: ErrorDetail{
		Code:    apperrors.ErrInternalServer.Code,
		Message: apperrors.ErrInternalServer.Message,
	}})
}

// invalidInput wraps a binding error as INVALID_INPUT.
func invalidInput(err error) *apperrors.AppError {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// rowQueryParams are the query keys a row listing understands besides
// column filters.
var rowQueryParams = map[string]bool{
	"select": true, "order": true, "limit": true, "offset": true, "or": true,
}

// parseRowQuery reads the filters of a row listing: id=eq.<v>,
// user_id=eq.<v>, order=<col>.<asc|desc>[,...], limit and offset. The
// categories listing also sends or=(user_id.eq.<v>,is_default.eq.true),
// which is the visibility rule itself and adds nothing. Unknown filters are
// rejected so a typo can never widen a result.
func parseRowQuery(c *gin.Context) (services.RowQuery, error) {
	var q services.RowQuery

	for key, values := range c.Request.URL.Query() {
		if rowQueryParams[key] {
			continue
		}
		if len(values) != 1 || !strings.HasPrefix(values[0], "eq.") {
			return q, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported filter on "+key)
		}
		value := strings.TrimPrefix(values[0], "eq.")
		switch key {
		case "id":
			q.ID = value
		case "user_id":
			q.UserID = value
		default:
			return q, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported filter on "+key)
		}
	}

	if or := c.Query("or"); or != "" {
		if err := checkVisibilityFilter(or); err != nil {
			return q, err
		}
	}

	if order := c.Query("order"); order != "" {
		for _, term := range strings.Split(order, ",") {
			column, dir, _ := strings.Cut(strings.TrimSpace(term), ".")
			ob := services.OrderBy{Column: column}
			switch dir {
			case "", "asc":
			case "desc":
				ob.Desc = true
			default:
				return q, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid order direction "+dir)
			}
			q.Order = append(q.Order, ob)
		}
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		return q, invalidInput(err)
	}
	q.Page = page
	return q, nil
}

func checkVisibilityFilter(or string) error {
	inner := strings.TrimSuffix(strings.TrimPrefix(or, "("), ")")
	for _, term := range strings.Split(inner, ",") {
		column, _, ok := strings.Cut(term, ".eq.")
		if !ok || (column != "user_id" && column != "is_default") {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported or filter "+term)
		}
	}
	return nil
}

// preferResolution reads the resolution directive of the Prefer header.
func preferResolution(c *gin.Context) services.Resolution {
	for _, part := range strings.Split(c.GetHeader("Prefer"), ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || key != "resolution" {
			continue
		}
		switch services.Resolution(value) {
		case services.ResolutionIgnoreDuplicates:
			return services.ResolutionIgnoreDuplicates
		case services.ResolutionMergeDuplicates:
			return services.ResolutionMergeDuplicates
		}
	}
	return services.ResolutionNone
}

// requireIDFilter returns the id=eq.<v> filter that PATCH and DELETE need.
func requireIDFilter(c *gin.Context) (string, error) {
	id, ok := strings.CutPrefix(c.Query("id"), "eq.")
	if !ok || id == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "an id=eq.<id> filter is required")
	}
	return id, nil
}
