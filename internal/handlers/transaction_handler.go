package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// TransactionHandler serves the transactions table
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// TransactionRequest is a transaction row as sent by clients
type TransactionRequest struct {
	ID          string          `json:"id" binding:"omitempty,max=64"`
	UserID      string          `json:"user_id" binding:"omitempty,max=64"`
	CategoryID  string          `json:"category_id" binding:"max=64"`
	Type        string          `json:"type" binding:"required,transaction_type"`
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Currency    string          `json:"currency" binding:"required,iso4217"`
	Title       string          `json:"title" binding:"max=120"`
	Description string          `json:"description" binding:"max=500"`
	Date        time.Time       `json:"date" binding:"required"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (r TransactionRequest) model() models.Transaction {
	return models.Transaction{
		Base:        models.Base{ID: r.ID, CreatedAt: r.CreatedAt},
		UserID:      r.UserID,
		CategoryID:  r.CategoryID,
		Type:        models.TransactionType(r.Type),
		Amount:      r.Amount,
		Currency:    r.Currency,
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
	}
}

// ListTransactions handles GET /rest/v1/transactions
// @Summary     List transactions
// @Tags        rows
// @Produce     json
// @Security    APIKey
// @Security    BearerAuth
// @Param       id      query string false "eq.<id>"
// @Param       user_id query string false "eq.<user id>"
// @Param       order   query string false "column.asc|desc"
// @Param       limit   query int    false "Page size"
// @Param       offset  query int    false "Rows to skip"
// @Success     200 {array} models.Transaction
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /rest/v1/transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
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

	rows, err := h.transactionService.ListTransactions(userID, q)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.Header("Content-Range", pagination.ContentRange(q.Page.Offset, len(rows)))
	c.JSON(http.StatusOK, rows)
}

// InsertTransaction handles POST /rest/v1/transactions
// @Summary     Insert a transaction
// @Tags        rows
// @Accept      json
// @Security    APIKey
// @Security    BearerAuth
// @Param       Prefer  header string false "resolution=ignore-duplicates|merge-duplicates"
// @Param       request body TransactionRequest true "Row"
// @Success     201
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Row belongs to another user"
// @Failure     409 {object} ErrorResponse "Duplicate id"
// @Router      /rest/v1/transactions [post]
func (h *TransactionHandler) InsertTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	if err := h.transactionService.InsertTransaction(userID, req.model(), preferResolution(c)); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// UpdateTransaction handles PATCH /rest/v1/transactions?id=eq.<id>
// @Summary     Update a transaction
// @Tags        rows
// @Accept      json
// @Security    APIKey
// @Security    BearerAuth
// @Param       id      query string true "eq.<id>"
// @Param       request body TransactionRequest true "Row"
// @Success     204
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /rest/v1/transactions [patch]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
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
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	if _, err := h.transactionService.UpdateTransaction(userID, id, req.model()); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteTransaction handles DELETE /rest/v1/transactions?id=eq.<id>
// @Summary     Delete a transaction
// @Tags        rows
// @Security    APIKey
// @Security    BearerAuth
// @Param       id query string true "eq.<id>"
// @Success     204
// @Router      /rest/v1/transactions [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
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

	n, err := h.transactionService.DeleteTransaction(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if n > 0 {
		h.auditService.Record(c.Request.Context(), services.AuditEvent{UserID: userID, Action: services.AuditDeleteTransaction, Resource: "transaction", ResourceID: id, IP: c.ClientIP()})
	}
	c.Status(http.StatusNoContent)
}
