package remote

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// authResponse is the session payload returned by /auth/v1/token and /auth/v1/verify.
type authResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new account. The backend sends a one-time code to the
// address; the account is usable after VerifyOTP.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	err := c.do(ctx, "signing up", request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   credentials{Email: email, Password: password},
	}, nil)
	if err != nil {
		return authError(err)
	}
	return nil
}

// VerifyOTP confirms a sign-up with the emailed code and starts a session.
func (c *Client) VerifyOTP(ctx context.Context, email, token string) (*models.Session, error) {
	body := struct {
		Type  string `json:"type"`
		Email string `json:"email"`
		Token string `json:"token"`
	}{Type: "signup", Email: email, Token: token}

	var resp authResponse
	if err := c.do(ctx, "verifying code", request{method: http.MethodPost, path: "/auth/v1/verify", body: body}, &resp); err != nil {
		return nil, authError(err)
	}
	return c.startSession(resp), nil
}

// SignInWithPassword exchanges credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	q := url.Values{}
	q.Set("grant_type", "password")

	var resp authResponse
	err := c.do(ctx, "signing in", request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  q,
		body:   credentials{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return nil, authError(err)
	}
	return c.startSession(resp), nil
}

// Refresh exchanges the current refresh token for a new session.
func (c *Client) Refresh(ctx context.Context) (*models.Session, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Client) refreshLocked(ctx context.Context) (*models.Session, error) {
	current := c.Session()
	if current == nil || current.RefreshToken == "" {
		return nil, apperrors.ErrSessionRequired
	}

	q := url.Values{}
	q.Set("grant_type", "refresh_token")
	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: current.RefreshToken}

	var resp authResponse
	if err := c.do(ctx, "refreshing session", request{method: http.MethodPost, path: "/auth/v1/token", query: q, body: body}, &resp); err != nil {
		if IsPermanent(err) || isUnauthorized(err) {
			return nil, apperrors.Wrap(apperrors.ErrSessionRequired, err)
		}
		return nil, err
	}
	if resp.User.ID == "" {
		resp.User.ID, resp.User.Email = current.UserID, current.Email
	}
	return c.startSession(resp), nil
}

// SignOut revokes the session on the backend and forgets it locally. The
// local session is dropped even if the backend cannot be reached.
func (c *Client) SignOut(ctx context.Context) error {
	defer c.SetSession(nil)
	if c.Session() == nil {
		return nil
	}
	return c.do(ctx, "signing out", request{method: http.MethodPost, path: "/auth/v1/logout", authed: true}, nil)
}

// SetSession installs a session, for example one restored from the cache.
// It does not notify the session listener.
func (c *Client) SetSession(s *models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s == nil {
		c.session = nil
		return
	}
	cp := *s
	c.session = &cp
}

// Session returns a copy of the current session, or nil.
func (c *Client) Session() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	cp := *c.session
	return &cp
}

// freshSession returns the current session, refreshing it first when the
// access token is about to expire.
func (c *Client) freshSession(ctx context.Context) (*models.Session, error) {
	sess := c.Session()
	if sess == nil {
		return nil, apperrors.ErrSessionRequired
	}
	if sess.RefreshToken == "" || !sess.ExpiresWithin(c.now(), refreshSkew) {
		return sess, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	// another caller may have refreshed while we waited
	if sess = c.Session(); sess != nil && !sess.ExpiresWithin(c.now(), refreshSkew) {
		return sess, nil
	}
	return c.refreshLocked(ctx)
}

func (c *Client) startSession(resp authResponse) *models.Session {
	sess := models.Session{
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    c.expiry(resp),
	}
	if sess.UserID == "" {
		sess.UserID = tokenSubject(resp.AccessToken)
	}

	c.SetSession(&sess)
	if c.onSession != nil {
		c.onSession(sess)
	}
	return &sess
}

// expiry prefers the token's own exp claim over the advisory response fields.
func (c *Client) expiry(resp authResponse) time.Time {
	if claims := unverifiedClaims(resp.AccessToken); claims != nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	if resp.ExpiresAt > 0 {
		return time.Unix(resp.ExpiresAt, 0)
	}
	if resp.ExpiresIn > 0 {
		return c.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return time.Time{}
}

func tokenSubject(token string) string {
	if claims := unverifiedClaims(token); claims != nil {
		return claims.Subject
	}
	return ""
}

// unverifiedClaims reads a token's registered claims without checking the
// signature. The client never holds the signing key; the backend verifies.
func unverifiedClaims(token string) *jwt.RegisteredClaims {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

func isUnauthorized(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.StatusCode == http.StatusUnauthorized
}
