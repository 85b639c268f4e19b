// Package app wires the sync client together and owns the session
// lifecycle: signing in opens a store, signing out closes it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/connectivity"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/metrics"
	"fintrack/internal/models"
	"fintrack/internal/reconciler"
	"fintrack/internal/remote"
	"fintrack/internal/store"
)

// App is the running client.
type App struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	db       *gorm.DB
	cache    cache.Store
	client   *remote.Client
	observer *connectivity.Observer
	prober   *connectivity.Prober
	recon    *reconciler.Reconciler
	registry *prometheus.Registry
	metrics  *metrics.Sync
	now      func() time.Time

	mu    sync.Mutex
	store *store.Store
}

// Option configures an App.
type Option func(*options)

type options struct {
	httpClient *http.Client
	now        func() time.Time
}

// WithHTTPClient replaces the HTTP client used for the remote and the prober.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithClock overrides the clock used for new entities and token expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New opens the cache, builds the remote client and probes connectivity once.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	db, err := cache.Open(cfg.CachePath)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		log:      logger.Named("app"),
		db:       db,
		cache:    cache.New(db),
		registry: prometheus.NewRegistry(),
		now:      o.now,
	}
	a.metrics = metrics.NewSync(a.registry)

	a.client = remote.NewClient(cfg.RemoteURL, cfg.AnonKey, o.httpClient,
		remote.WithRateLimit(cfg.RemoteRateLimit),
		remote.WithClock(o.now),
		remote.WithSessionListener(a.persistSession),
	)
	a.observer = connectivity.NewObserver(false)
	a.prober = connectivity.NewProber(a.client.HealthURL(), o.httpClient, cfg.ProbeInterval, a.observer, logger.Named("connectivity"))
	a.recon = reconciler.New(a.cache, a.client, a.metrics, logger.Named("reconciler"))

	a.prober.Check(ctx)
	return a, nil
}

// Online reports the last probe result.
func (a *App) Online() bool {
	return a.observer.Online()
}

// CheckConnectivity probes the backend now.
func (a *App) CheckConnectivity(ctx context.Context) bool {
	return a.prober.Check(ctx)
}

// Store returns the open store, or nil when signed out.
func (a *App) Store() *store.Store {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store
}

// SignUp registers an account. The backend mails a code for Verify.
func (a *App) SignUp(ctx context.Context, email, password string) error {
	if !a.observer.Online() {
		return apperrors.ErrOffline
	}
	return a.client.SignUp(ctx, email, password)
}

// Verify confirms a sign-up and opens the store.
func (a *App) Verify(ctx context.Context, email, code string) (*store.Store, error) {
	if !a.observer.Online() {
		return nil, apperrors.ErrOffline
	}
	sess, err := a.client.VerifyOTP(ctx, email, code)
	if err != nil {
		return nil, err
	}
	return a.open(ctx, *sess)
}

// SignIn exchanges credentials for a session and opens the store.
func (a *App) SignIn(ctx context.Context, email, password string) (*store.Store, error) {
	if !a.observer.Online() {
		return nil, apperrors.ErrOffline
	}
	sess, err := a.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return a.open(ctx, *sess)
}

// Resume opens the store for the session persisted by an earlier sign-in.
// It works offline; the cached state is shown until the remote is reachable.
func (a *App) Resume(ctx context.Context) (*store.Store, error) {
	if st := a.Store(); st != nil {
		return st, nil
	}
	sess, err := a.cache.GetSession(ctx)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, apperrors.ErrSessionRequired
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	a.client.SetSession(sess)
	return a.open(ctx, *sess)
}

// SignOut ends the session. The remote logout is best effort: the local
// session is always forgotten.
func (a *App) SignOut(ctx context.Context) error {
	if a.client.Session() == nil {
		if sess, err := a.cache.GetSession(ctx); err == nil {
			a.client.SetSession(sess)
		}
	}
	if a.observer.Online() {
		if err := a.client.SignOut(ctx); err != nil {
			a.log.Warnw("Remote sign-out failed", "error", err)
		}
	} else {
		a.client.SetSession(nil)
	}

	if err := a.cache.DeleteSession(ctx); err != nil && !errors.Is(err, cache.ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}

	a.mu.Lock()
	st := a.store
	a.store = nil
	a.mu.Unlock()
	if st != nil {
		st.Close()
	}
	return nil
}

// Watch keeps probing connectivity until ctx is done. Every reconnect
// drains the sync queue. When a metrics address is configured, /metrics is
// served for the same lifetime.
func (a *App) Watch(ctx context.Context) error {
	var srv *http.Server
	if a.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
		srv = &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Errorw("Metrics listener stopped", "addr", a.cfg.MetricsAddr, "error", err)
			}
		}()
		a.log.Infow("Serving metrics", "addr", a.cfg.MetricsAddr)
	}

	a.prober.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
	return nil
}

// Registry exposes the client's collectors.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// Close closes the store and the cache.
func (a *App) Close() error {
	a.mu.Lock()
	st := a.store
	a.store = nil
	a.mu.Unlock()
	if st != nil {
		st.Close()
	}

	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (a *App) open(ctx context.Context, sess models.Session) (*store.Store, error) {
	st, err := store.Open(ctx, store.Deps{
		Cache:      a.cache,
		Backend:    a.client,
		Observer:   a.observer,
		Reconciler: a.recon,
		Metrics:    a.metrics,
		Log:        logger.Named("store"),
		Now:        a.now,
	}, sess)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	prev := a.store
	a.store = st
	a.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
	return st, nil
}

// persistSession keeps the newest session in the cache so the next run can
// resume it. Failures only cost a sign-in later.
func (a *App) persistSession(sess models.Session) {
	if err := a.cache.PutSession(context.Background(), &sess); err != nil {
		a.log.Warnw("Persisting session failed", "error", err)
	}
}
