// Package remote provides an HTTP client for the hosted FinTrack backend:
// row access under /rest/v1, authentication under /auth/v1 and object
// storage under /storage/v1.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"fintrack/internal/models"

	"golang.org/x/time/rate"
)

// refreshSkew is how long before expiry an access token is refreshed.
const refreshSkew = 30 * time.Second

// Client communicates with the remote backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time

	mu        sync.RWMutex
	session   *models.Session
	onSession func(models.Session)

	refreshMu sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit paces outgoing requests to rps per second with a burst of twice that.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		burst := int(rps * 2)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithSessionListener registers fn to be called whenever the client obtains
// a new session (sign-in, verification, refresh).
func WithSessionListener(fn func(models.Session)) Option {
	return func(c *Client) { c.onSession = fn }
}

// WithClock overrides the clock used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a new remote backend client.
func NewClient(baseURL, anonKey string, httpClient *http.Client, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HealthURL is the endpoint used to probe connectivity.
func (c *Client) HealthURL() string {
	return c.baseURL + "/auth/v1/health"
}

// request describes one call to the backend.
type request struct {
	method      string
	path        string
	query       url.Values
	body        any
	reader      io.Reader
	contentType string
	prefer      string
	authed      bool
}

func (c *Client) do(ctx context.Context, op string, r request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Op: op, Err: err}
	}

	token := c.anonKey
	if r.authed {
		sess, err := c.freshSession(ctx)
		if err != nil {
			return err
		}
		token = sess.AccessToken
	}

	body, contentType := r.reader, r.contentType
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", op, err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}

// eq builds a single equality filter.
func eq(column, value string) url.Values {
	q := url.Values{}
	q.Set(column, "eq."+value)
	return q
}

var (
	_ Backend       = (*Client)(nil)
	_ Authenticator = (*Client)(nil)
)
