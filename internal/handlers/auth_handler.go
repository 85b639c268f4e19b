package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService  services.AuthServicer
	auditService services.AuditServicer
	tokens       *middleware.TokenManager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthServicer, auditService services.AuditServicer, tokens *middleware.TokenManager) *AuthHandler {
	return &AuthHandler{authService: authService, auditService: auditService, tokens: tokens}
}

// CredentialsRequest is the sign-up and password grant payload
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// VerifyRequest confirms a sign-up with the emailed code
type VerifyRequest struct {
	Type  string `json:"type" binding:"required,oneof=signup"`
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required,len=6,numeric"`
}

// RefreshRequest is the refresh_token grant payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserResponse represents the user data in the response
type UserResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time `json:"last_sign_in_at,omitempty"`
}

// SessionResponse is returned by every grant
type SessionResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, EmailConfirmedAt: u.EmailConfirmedAt, LastSignInAt: u.LastLoginAt}
}

// Health reports that the auth service is up
// @Summary     Health check
// @Tags        auth
// @Produce     json
// @Success     200 {object} map[string]string
// @Router      /auth/v1/health [get]
func (h *AuthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SignUp registers an unconfirmed user and sends a one-time code
// @Summary     Sign up
// @Description Create an account; a 6-digit code is sent to the address
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    APIKey
// @Param       request body CredentialsRequest true "Credentials"
// @Success     200 {object} UserResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Router      /auth/v1/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	user, err := h.authService.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, user.ID, services.AuditSignUp, nil)
	c.JSON(http.StatusOK, newUserResponse(user))
}

// Verify confirms a sign-up and starts a session
// @Summary     Verify one-time code
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    APIKey
// @Param       request body VerifyRequest true "Code"
// @Success     200 {object} SessionResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid or expired code"
// @Router      /auth/v1/verify [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	user, err := h.authService.ConfirmOTP(req.Email, req.Token)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, user.ID, services.AuditLogin, map[string]any{"grant": "otp"})
	h.issueSession(c, user)
}

// Token exchanges credentials or a refresh token for a session
// @Summary     Obtain a session
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    APIKey
// @Param       grant_type query string true "password or refresh_token"
// @Success     200 {object} SessionResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     423 {object} ErrorResponse "Account locked"
// @Router      /auth/v1/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	switch c.Query("grant_type") {
	case "password":
		h.passwordGrant(c)
	case "refresh_token":
		h.refreshGrant(c)
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported grant_type"))
	}
}

func (h *AuthHandler) passwordGrant(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	user, err := h.authService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, user.ID, services.AuditLogin, map[string]any{"grant": "password"})
	h.issueSession(c, user)
}

// refreshGrant rotates the refresh token. A token that is not the one most
// recently issued to the user is refused, so a stolen token stops working
// after the owner's next refresh.
func (h *AuthHandler) refreshGrant(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	claims, err := h.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired refresh token"))
		return
	}

	stored, err := h.authService.GetRefreshTokenHash(claims.UserID)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired refresh token"))
		return
	}
	presented := middleware.HashToken(req.RefreshToken)
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Refresh token has been revoked"))
		return
	}

	user, err := h.authService.GetUserByID(claims.UserID)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired refresh token"))
		return
	}
	h.issueSession(c, user)
}

// Logout revokes the caller's refresh token
// @Summary     Sign out
// @Tags        auth
// @Security    APIKey
// @Security    BearerAuth
// @Success     204
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/v1/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.authService.StoreRefreshTokenHash(userID, ""); err != nil {
		respondWithError(c, err)
		return
	}

	h.audit(c, userID, services.AuditLogout, nil)
	c.Status(http.StatusNoContent)
}

// User returns the authenticated user
// @Summary     Current user
// @Tags        auth
// @Produce     json
// @Security    APIKey
// @Security    BearerAuth
// @Success     200 {object} UserResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/v1/user [get]
func (h *AuthHandler) User(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// issueSession signs a token pair for user and remembers the refresh token.
func (h *AuthHandler) issueSession(c *gin.Context, user *models.User) {
	access, expiresAt, err := h.tokens.GenerateAccessToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	refresh, err := h.tokens.GenerateRefreshToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	if err := h.authService.StoreRefreshTokenHash(user.ID, middleware.HashToken(refresh)); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		AccessToken:  access,
		TokenType:    "bearer",
		ExpiresIn:    int64(h.tokens.AccessTTL().Seconds()),
		ExpiresAt:    expiresAt.Unix(),
		RefreshToken: refresh,
		User:         newUserResponse(user),
	})
}

func (h *AuthHandler) audit(c *gin.Context, userID, action string, details map[string]any) {
	h.auditService.Record(c.Request.Context(), services.AuditEvent{
		UserID:     userID,
		Action:     action,
		Resource:   "user",
		ResourceID: userID,
		IP:         c.ClientIP(),
		Details:    details,
	})
}
