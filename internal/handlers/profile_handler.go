package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/services"
)

// ProfileHandler serves the profiles table
type ProfileHandler struct {
	profileService services.ProfileServicer
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService services.ProfileServicer) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileRequest is a full profile row
type ProfileRequest struct {
	ID           string          `json:"id" binding:"omitempty,max=64"`
	Email        string          `json:"email" binding:"omitempty,email"`
	FullName     string          `json:"full_name" binding:"max=100"`
	Currency     string          `json:"currency" binding:"required,iso4217"`
	Theme        string          `json:"theme" binding:"required,theme"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit" binding:"gte=0"`
	AvatarURL    string          `json:"avatar_url" binding:"omitempty,url"`
}

// ProfilePatchRequest changes only the fields it carries
type ProfilePatchRequest struct {
	FullName     *string          `json:"full_name"`
	Currency     *string          `json:"currency"`
	Theme        *string          `json:"theme"`
	MonthlyLimit *decimal.Decimal `json:"monthly_limit"`
	AvatarURL    *string          `json:"avatar_url"`
}

func (r ProfilePatchRequest) update() models.ProfileUpdate {
	u := models.ProfileUpdate{
		FullName:     r.FullName,
		Currency:     r.Currency,
		MonthlyLimit: r.MonthlyLimit,
		AvatarURL:    r.AvatarURL,
	}
	if r.Theme != nil {
		theme := models.Theme(*r.Theme)
		u.Theme = &theme
	}
	return u
}

// ListProfiles handles GET /rest/v1/profiles
// @Summary     Get the caller's profile
// @Tags        rows
// @Produce     json
// @Security    APIKey
// @Security    BearerAuth
// @Param       id query string false "eq.<user id>"
// @Success     200 {array} models.Profile
// @Router      /rest/v1/profiles [get]
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
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

	rows, err := h.profileService.ListProfiles(userID, q)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// UpsertProfile handles POST /rest/v1/profiles
// @Summary     Create or replace the caller's profile
// @Tags        rows
// @Accept      json
// @Security    APIKey
// @Security    BearerAuth
// @Param       Prefer  header string false "resolution=merge-duplicates"
// @Param       request body ProfileRequest true "Row"
// @Success     201
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Profile exists"
// @Router      /rest/v1/profiles [post]
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	p := models.Profile{
		ID:           req.ID,
		Email:        req.Email,
		FullName:     req.FullName,
		Currency:     req.Currency,
		Theme:        models.Theme(req.Theme),
		MonthlyLimit: req.MonthlyLimit,
		AvatarURL:    req.AvatarURL,
	}
	if err := h.profileService.UpsertProfile(userID, p, preferResolution(c)); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// UpdateProfile handles PATCH /rest/v1/profiles?id=eq.<id>
// @Summary     Change profile fields
// @Tags        rows
// @Accept      json
// @Security    APIKey
// @Security    BearerAuth
// @Param       id      query string true "eq.<user id>"
// @Param       request body ProfilePatchRequest true "Fields to change"
// @Success     204
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /rest/v1/profiles [patch]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
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
	var req ProfilePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	if _, err := h.profileService.UpdateProfile(userID, id, req.update()); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
