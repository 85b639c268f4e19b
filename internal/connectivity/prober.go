package connectivity

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Prober stands in for the platform's online/offline events: it polls a
// health endpoint and feeds the result into an Observer.
type Prober struct {
	url        string
	httpClient *http.Client
	interval   time.Duration
	observer   *Observer
	log        *zap.SugaredLogger
}

// NewProber creates a Prober that checks url every interval.
func NewProber(url string, httpClient *http.Client, interval time.Duration, observer *Observer, log *zap.SugaredLogger) *Prober {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Prober{
		url:        url,
		httpClient: httpClient,
		interval:   interval,
		observer:   observer,
		log:        log,
	}
}

// Probe reports whether the backend answered. Any response below 500 counts:
// a 401 still proves the network path works.
func (p *Prober) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Debugw("connectivity probe failed", "url", p.url, "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode < http.StatusInternalServerError
}

// Check probes once and records the result, returning the new state.
func (p *Prober) Check(ctx context.Context) bool {
	online := p.Probe(ctx)
	was := p.observer.Online()
	if p.observer.Set(online) {
		p.log.Infow("connectivity regained", "url", p.url)
	} else if was && !online {
		p.log.Warnw("connectivity lost", "url", p.url)
	}
	return online
}

// Run checks immediately and then on every tick until ctx is done.
func (p *Prober) Run(ctx context.Context) {
	p.Check(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}
