package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAnonKey = "anon-key"

func signedToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", testAnonKey, srv.Client(), opts...)
}

func withSession(c *Client, exp time.Time) {
	c.SetSession(&models.Session{
		UserID:       "user-1",
		Email:        "a@example.com",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    exp,
	})
}

func TestClient_Rows(t *testing.T) {
	t.Run("list_transactions_sends_filter_and_bearer", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/rest/v1/transactions", r.URL.Path)
			assert.Equal(t, "eq.user-1", r.URL.Query().Get("user_id"))
			assert.Equal(t, "date.desc", r.URL.Query().Get("order"))
			assert.Equal(t, testAnonKey, r.Header.Get("apikey"))
			assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `[{"id":"t1","user_id":"user-1","type":"expense","amount":"12.5","currency":"RUB","date":"2024-03-01T00:00:00Z"}]`)
		})
		withSession(c, time.Now().Add(time.Hour))

		rows, err := c.ListTransactions(context.Background(), "user-1")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "t1", rows[0].ID)
		assert.True(t, decimal.RequireFromString("12.5").Equal(rows[0].Amount))
	})

	t.Run("insert_transaction_ignores_duplicates", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, preferIgnoreDuplicates, r.Header.Get("Prefer"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var tx models.Transaction
			require.NoError(t, json.NewDecoder(r.Body).Decode(&tx))
			assert.Equal(t, "t1", tx.ID)
			w.WriteHeader(http.StatusCreated)
		})
		withSession(c, time.Now().Add(time.Hour))

		err := c.InsertTransaction(context.Background(), models.Transaction{Base: models.Base{ID: "t1"}, Amount: decimal.NewFromInt(5)})
		assert.NoError(t, err)
	})

	t.Run("update_and_delete_target_id", func(t *testing.T) {
		var methods []string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			methods = append(methods, r.Method)
			assert.Equal(t, "eq.t1", r.URL.Query().Get("id"))
			w.WriteHeader(http.StatusNoContent)
		})
		withSession(c, time.Now().Add(time.Hour))

		require.NoError(t, c.UpdateTransaction(context.Background(), models.Transaction{Base: models.Base{ID: "t1"}}))
		require.NoError(t, c.DeleteTransaction(context.Background(), "t1"))
		assert.Equal(t, []string{http.MethodPatch, http.MethodDelete}, methods)
	})

	t.Run("list_categories_includes_defaults", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "(user_id.eq.user-1,is_default.eq.true)", r.URL.Query().Get("or"))
			_, _ = io.WriteString(w, `[{"id":"1","name":"Groceries","type":"expense","is_default":true}]`)
		})
		withSession(c, time.Now().Add(time.Hour))

		rows, err := c.ListCategories(context.Background(), "user-1")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, rows[0].IsDefault)
	})

	t.Run("missing_profile_is_not_found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `[]`)
		})
		withSession(c, time.Now().Add(time.Hour))

		_, err := c.GetProfile(context.Background(), "user-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("upsert_profile_merges", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, preferMergeDuplicates, r.Header.Get("Prefer"))
			w.WriteHeader(http.StatusCreated)
		})
		withSession(c, time.Now().Add(time.Hour))

		assert.NoError(t, c.UpsertProfile(context.Background(), models.DefaultProfile("user-1", "a@example.com")))
	})

	t.Run("without_session", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		_, err := c.ListTransactions(context.Background(), "user-1")
		assert.ErrorIs(t, err, apperrors.ErrSessionRequired)
	})
}

func TestClient_Errors(t *testing.T) {
	t.Run("server_error_is_transient", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		withSession(c, time.Now().Add(time.Hour))

		err := c.DeleteCategory(context.Background(), "c1")
		require.Error(t, err)
		assert.False(t, IsPermanent(err))
		assert.False(t, IsUnreachable(err))
	})

	t.Run("validation_error_is_permanent", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"code":"INVALID_INPUT","message":"amount must be positive"}}`)
		})
		withSession(c, time.Now().Add(time.Hour))

		err := c.InsertCategory(context.Background(), models.Category{})
		var re *Error
		require.True(t, errors.As(err, &re))
		assert.Equal(t, "INVALID_INPUT", re.Code)
		assert.Equal(t, "amount must be positive", re.Message)
		assert.True(t, IsPermanent(err))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := NewClient(srv.URL, testAnonKey, http.DefaultClient)
		withSession(c, time.Now().Add(time.Hour))

		err := c.DeleteTransaction(context.Background(), "t1")
		assert.True(t, IsUnreachable(err))
		assert.False(t, IsPermanent(err))
	})
}

func TestClient_Auth(t *testing.T) {
	t.Run("sign_in_reads_expiry_from_token", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		token := signedToken(t, "user-1", exp)
		var notified models.Session
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/token", r.URL.Path)
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			assert.Equal(t, "Bearer "+testAnonKey, r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  token,
				"refresh_token": "r1",
				"expires_in":    10,
				"user":          map[string]string{"id": "user-1", "email": "a@example.com"},
			})
		}, WithSessionListener(func(s models.Session) { notified = s }))

		sess, err := c.SignInWithPassword(context.Background(), "a@example.com", "secret")
		require.NoError(t, err)
		assert.Equal(t, "user-1", sess.UserID)
		assert.True(t, exp.Equal(sess.ExpiresAt))
		assert.Equal(t, "r1", notified.RefreshToken)
		assert.Equal(t, sess.AccessToken, c.Session().AccessToken)
	})

	t.Run("invalid_credentials", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"code":"INVALID_CREDENTIALS","message":"Invalid email or password"}}`)
		})

		_, err := c.SignInWithPassword(context.Background(), "a@example.com", "wrong")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		assert.Nil(t, c.Session())
	})

	t.Run("signup_duplicate", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, `{"error":{"code":"DUPLICATE_EMAIL","message":"Email already registered"}}`)
		})

		err := c.SignUp(context.Background(), "a@example.com", "password123")
		assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
	})

	t.Run("verify_wrong_code", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/verify", r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"code":"INVALID_OTP","message":"Invalid or expired code"}}`)
		})

		_, err := c.VerifyOTP(context.Background(), "a@example.com", "000000")
		assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
	})

	t.Run("offline_sign_in", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := NewClient(srv.URL, testAnonKey, http.DefaultClient)

		_, err := c.SignInWithPassword(context.Background(), "a@example.com", "secret")
		assert.ErrorIs(t, err, apperrors.ErrOffline)
	})

	t.Run("expiring_token_is_refreshed_once", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		fresh := signedToken(t, "user-1", now.Add(time.Hour))
		var refreshes atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/auth/v1/token" {
				refreshes.Add(1)
				assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
				body, _ := io.ReadAll(r.Body)
				assert.Contains(t, string(body), "refresh-1")
				_ = json.NewEncoder(w).Encode(map[string]any{"access_token": fresh, "refresh_token": "refresh-2"})
				return
			}
			assert.Equal(t, "Bearer "+fresh, r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `[]`)
		}, WithClock(func() time.Time { return now }))
		withSession(c, now.Add(10*time.Second))

		_, err := c.ListTransactions(context.Background(), "user-1")
		require.NoError(t, err)
		_, err = c.ListCategories(context.Background(), "user-1")
		require.NoError(t, err)

		assert.Equal(t, int32(1), refreshes.Load())
		sess := c.Session()
		assert.Equal(t, "user-1", sess.UserID)
		assert.Equal(t, "refresh-2", sess.RefreshToken)
	})

	t.Run("rejected_refresh_requires_sign_in", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		withSession(c, time.Now().Add(-time.Minute))

		_, err := c.Refresh(context.Background())
		assert.ErrorIs(t, err, apperrors.ErrSessionRequired)
	})

	t.Run("sign_out_clears_session", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/logout", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		})
		withSession(c, time.Now().Add(time.Hour))

		require.NoError(t, c.SignOut(context.Background()))
		assert.Nil(t, c.Session())
	})
}

func TestClient_Storage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage/v1/object/avatars/user-1-abc.png", r.URL.Path)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "png-bytes", string(body))
		w.WriteHeader(http.StatusOK)
	})
	withSession(c, time.Now().Add(time.Hour))

	err := c.UploadObject(context.Background(), AvatarBucket, "user-1-abc.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(c.PublicURL(AvatarBucket, "user-1-abc.png"), "/storage/v1/object/public/avatars/user-1-abc.png"))
}

func TestClient_RateLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, WithRateLimit(1))
	withSession(c, time.Now().Add(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, c.DeleteTransaction(ctx, "a"))
	require.NoError(t, c.DeleteTransaction(ctx, "b"))
	// burst of two is spent; the third call cannot get a token before the deadline
	assert.Error(t, c.DeleteTransaction(ctx, "c"))
}
