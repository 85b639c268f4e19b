package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// CategoryHandler serves the categories table
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CategoryRequest is a category row as sent by clients
type CategoryRequest struct {
	ID        string  `json:"id" binding:"omitempty,max=64"`
	UserID    *string `json:"user_id" binding:"omitempty,max=64"`
	Name      string  `json:"name" binding:"required,max=100"`
	Icon      string  `json:"icon" binding:"max=50"`
	Color     string  `json:"color" binding:"omitempty,hex_color"`
	Type      string  `json:"type" binding:"required,category_type"`
	IsDefault bool    `json:"is_default"`
}

func (r CategoryRequest) model() models.Category {
	return models.Category{
		Base:      models.Base{ID: r.ID},
		UserID:    r.UserID,
		Name:      r.Name,
		Icon:      r.Icon,
		Color:     r.Color,
		Type:      models.CategoryType(r.Type),
		IsDefault: r.IsDefault,
	}
}

// ListCategories handles GET /rest/v1/categories
// @Summary     List categories
// @Description The caller's categories together with the built-in ones
// @Tags        rows
// @Produce     json
// @Security    APIKey
// @Security    BearerAuth
// @Param       or     query string false "(user_id.eq.<id>,is_default.eq.true)"
// @Param       order  query string false "column.asc|desc"
// @Success     200 {array} models.Category
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /rest/v1/categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	q, err := parseRowQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.categoryService.ListCategories(userID, q)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.Header("Content-Range", pagination.ContentRange(q.Page.Offset, len(rows)))
	c.JSON(http.StatusOK, rows)
}

// InsertCategory handles POST /rest/v1/categories
// @Summary     Insert a category
// @Tags        rows
// @Accept      json
// @Security    APIKey
// @Security    BearerAuth
// @Param       Prefer  header string false "resolution=ignore-duplicates|merge-duplicates"
// @Param       request body CategoryRequest true "Row"
// @Success     201
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Built-in or foreign category"
// @Failure     409 {object} ErrorResponse "Duplicate id"
// @Router      /rest/v1/categories [post]
func (h *CategoryHandler) InsertCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	if err := h.categoryService.InsertCategory(userID, req.model(), preferResolution(c)); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// DeleteCategory handles DELETE /rest/v1/categories?id=eq.<id>
// @Summary     Delete a category
// @Tags        rows
// @Security    APIKey
// @Security    BearerAuth
// @Param       id query string true "eq.<id>"
// @Success     204
// @Router      /rest/v1/categories [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := requireIDFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	n, err := h.categoryService.DeleteCategory(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if n > 0 {
		h.auditService.Record(c.Request.Context(), services.AuditEvent{UserID: userID, Action: services.AuditDeleteCategory, Resource: "category", ResourceID: id, IP: c.ClientIP()})
	}
	c.Status(http.StatusNoContent)
}
