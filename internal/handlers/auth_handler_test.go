package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/validator"
)

// --- mock services ---

type mockAuthService struct {
	signUpFn                func(ctx context.Context, email, password string) (*models.User, error)
	confirmOTPFn            func(email, code string) (*models.User, error)
	attemptLoginFn          func(email, password string) (*models.User, error)
	getUserByIDFn           func(id string) (*models.User, error)
	storeRefreshTokenHashFn func(userID, tokenHash string) error
	getRefreshTokenHashFn   func(userID string) (string, error)
}

func (m *mockAuthService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, email, password)
	}
	return &models.User{Base: models.Base{ID: "user-1"}, Email: email}, nil
}

func (m *mockAuthService) ConfirmOTP(email, code string) (*models.User, error) {
	if m.confirmOTPFn != nil {
		return m.confirmOTPFn(email, code)
	}
	return &models.User{Base: models.Base{ID: "user-1"}, Email: email}, nil
}

func (m *mockAuthService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{Base: models.Base{ID: "user-1"}, Email: email}, nil
}

func (m *mockAuthService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}, Email: "anna@example.com"}, nil
}

func (m *mockAuthService) StoreRefreshTokenHash(userID, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenHash)
	}
	return nil
}

func (m *mockAuthService) GetRefreshTokenHash(userID string) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(userID)
	}
	return "", nil
}

var _ services.AuthServicer = (*mockAuthService)(nil)

type auditEntry struct {
	userID, action, resourceID string
}

type mockAuditService struct {
	entries []auditEntry
}

func (m *mockAuditService) Record(_ context.Context, e services.AuditEvent) {
	m.entries = append(m.entries, auditEntry{userID: e.UserID, action: e.Action, resourceID: e.ResourceID})
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "")
	validator.Register()
}

func testTokens() *middleware.TokenManager {
	return middleware.NewTokenManager("test-secret", time.Hour, 24*time.Hour)
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.GET("/auth/v1/health", handler.Health)
	r.POST("/auth/v1/signup", handler.SignUp)
	r.POST("/auth/v1/verify", handler.Verify)
	r.POST("/auth/v1/token", handler.Token)
	r.POST("/auth/v1/logout", injectUserID("user-1"), handler.Logout)
	r.GET("/auth/v1/user", injectUserID("user-1"), handler.User)
	return r
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	return doRequestWithHeaders(r, method, path, body, nil)
}

func doRequestWithHeaders(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestAuthHandler_SignUp(t *testing.T) {
	t.Run("returns 200 and audits", func(t *testing.T) {
		audit := &mockAuditService{}
		var gotEmail string
		authSvc := &mockAuthService{
			signUpFn: func(_ context.Context, email, _ string) (*models.User, error) {
				gotEmail = email
				return &models.User{Base: models.Base{ID: "user-1"}, Email: email}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(authSvc, audit, testTokens()))

		rec := doRequest(r, http.MethodPost, "/auth/v1/signup", `{"email":"anna@example.com","password":"secret123"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotEmail != "anna@example.com" {
			t.Errorf("expected email passed through, got %q", gotEmail)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != services.AuditSignUp {
			t.Errorf("expected signup audit entry, got %v", audit.entries)
		}
	})

	t.Run("returns 400 on invalid email", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}, testTokens()))
		rec := doRequest(r, http.MethodPost, "/auth/v1/signup", `{"email":"nope","password":"secret123"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 409 on confirmed duplicate", func(t *testing.T) {
		authSvc := &mockAuthService{
			signUpFn: func(context.Context, string, string) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		r := setupAuthRouter(NewAuthHandler(authSvc, &mockAuditService{}, testTokens()))
		rec := doRequest(r, http.MethodPost, "/auth/v1/signup", `{"email":"anna@example.com","password":"secret123"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_EMAIL")
	})
}

func TestAuthHandler_Verify(t *testing.T) {
	t.Run("issues a session", func(t *testing.T) {
		var storedHash string
		authSvc := &mockAuthService{
			storeRefreshTokenHashFn: func(_, hash string) error {
				storedHash = hash
				return nil
			},
		}
		tokens := testTokens()
		r := setupAuthRouter(NewAuthHandler(authSvc, &mockAuditService{}, tokens))

		rec := doRequest(r, http.MethodPost, "/auth/v1/verify", `{"type":"signup","email":"anna@example.com","token":"123456"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var session SessionResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
			t.Fatalf("decoding session: %v", err)
		}
		if session.TokenType != "bearer" || session.ExpiresIn != 3600 || session.User.ID != "user-1" {
			t.Errorf("unexpected session: %+v", session)
		}
		claims, err := tokens.ValidateAccessToken(session.AccessToken)
		if err != nil || claims.Subject != "user-1" {
			t.Errorf("access token invalid: %v", err)
		}
		if storedHash != middleware.HashToken(session.RefreshToken) {
			t.Error("expected refresh token hash to be stored")
		}
	})

	t.Run("rejects a wrong code", func(t *testing.T) {
		authSvc := &mockAuthService{
			confirmOTPFn: func(string, string) (*models.User, error) { return nil, apperrors.ErrInvalidOTP },
		}
		r := setupAuthRouter(NewAuthHandler(authSvc, &mockAuditService{}, testTokens()))
		rec := doRequest(r, http.MethodPost, "/auth/v1/verify", `{"type":"signup","email":"anna@example.com","token":"000000"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_OTP")
	})

	t.Run("rejects other verification types", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}, testTokens()))
		rec := doRequest(r, http.MethodPost, "/auth/v1/verify", `{"type":"magiclink","email":"anna@example.com","token":"123456"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Token(t *testing.T) {
	t.Run("password grant", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, audit, testTokens()))
		rec := doRequest(r, http.MethodPost, "/auth/v1/token?grant_type=password", `{"email":"anna@example.com","password":"secret123"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(audit.entries) != 1 || audit.entries[0].action != services.AuditLogin {
			t.Errorf("expected login audit entry, got %v", audit.entries)
		}
	})

	t.Run("password grant maps service errors", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{name: "bad_password", err: apperrors.ErrInvalidCredentials, status: http.StatusUnauthorized, code: "INVALID_CREDENTIALS"},
			{name: "unconfirmed", err: apperrors.ErrEmailNotConfirmed, status: http.StatusUnauthorized, code: "EMAIL_NOT_CONFIRMED"},
			{name: "locked", err: apperrors.ErrAccountLocked, status: http.StatusLocked, code: "ACCOUNT_LOCKED"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				authSvc := &mockAuthService{
					attemptLoginFn: func(string, string) (*models.User, error) { return nil, tt.err },
				}
				r := setupAuthRouter(NewAuthHandler(authSvc, &mockAuditService{}, testTokens()))
				rec := doRequest(r, http.MethodPost, "/auth/v1/token?grant_type=password", `{"email":"anna@example.com","password":"secret123"}`)
				if rec.Code != tt.status {
					t.Fatalf("expected %d, got %d", tt.status, rec.Code)
				}
				assertErrorCode(t, parseJSON(t, rec), tt.code)
			})
		}
	})

	t.Run("refresh grant rotates", func(t *testing.T) {
		tokens := testTokens()
		user := &models.User{Base: models.Base{ID: "user-1"}, Email: "anna@example.com"}
		refresh, err := tokens.GenerateRefreshToken(user)
		if err != nil {
			t.Fatalf("generating refresh token: %v", err)
		}

		stored := middleware.HashToken(refresh)
		authSvc := &mockAuthService{
			getRefreshTokenHashFn: func(string) (string, error) { return stored, nil },
			storeRefreshTokenHashFn: func(_, hash string) error {
				stored = hash
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(authSvc, &mockAuditService{}, tokens))

		body := `{"refresh_token":"` + refresh + `"}`
		rec := doRequest(r, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stored == middleware.HashToken(refresh) {
			t.Fatal("expected refresh token to be rotated")
		}

		rec = doRequest(r, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected replayed refresh token to be refused, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
	})

	t.Run("refresh grant refuses access tokens", func(t *testing.T) {
		tokens := testTokens()
		access, _, _ := tokens.GenerateAccessToken(&models.User{Base: models.Base{ID: "user-1"}})
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}, tokens))
		rec := doRequest(r, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", `{"refresh_token":"`+access+`"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("unknown grant", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}, testTokens()))
		rec := doRequest(r, http.MethodPost, "/auth/v1/token?grant_type=magic", `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	var cleared bool
	authSvc := &mockAuthService{
		storeRefreshTokenHashFn: func(userID, hash string) error {
			cleared = userID == "user-1" && hash == ""
			return nil
		},
	}
	audit := &mockAuditService{}
	r := setupAuthRouter(NewAuthHandler(authSvc, audit, testTokens()))

	rec := doRequest(r, http.MethodPost, "/auth/v1/logout", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !cleared {
		t.Error("expected refresh token hash to be cleared")
	}
	if len(audit.entries) != 1 || audit.entries[0].action != services.AuditLogout {
		t.Errorf("expected logout audit entry, got %v", audit.entries)
	}
}

func TestAuthHandler_User(t *testing.T) {
	r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}, testTokens()))
	rec := doRequest(r, http.MethodGet, "/auth/v1/user", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := parseJSON(t, rec)["id"]; got != "user-1" {
		t.Errorf("expected id user-1, got %v", got)
	}
}
