package connectivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestObserver_EdgeTriggered(t *testing.T) {
	tests := []struct {
		name      string
		initial   bool
		sequence  []bool
		wantFires int
	}{
		{name: "offline_to_online", initial: false, sequence: []bool{true}, wantFires: 1},
		{name: "online_to_online", initial: true, sequence: []bool{true, true}, wantFires: 0},
		{name: "offline_to_offline", initial: false, sequence: []bool{false, false}, wantFires: 0},
		{name: "online_to_offline", initial: true, sequence: []bool{false}, wantFires: 0},
		{name: "flapping", initial: false, sequence: []bool{true, false, true, true, false, true}, wantFires: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewObserver(tt.initial)
			fires := 0
			o.OnReconnect(func() { fires++ })

			for _, state := range tt.sequence {
				o.Set(state)
			}

			if fires != tt.wantFires {
				t.Errorf("listener fired %d times, want %d", fires, tt.wantFires)
			}
			if got, want := o.Online(), tt.sequence[len(tt.sequence)-1]; got != want {
				t.Errorf("Online() = %v, want %v", got, want)
			}
		})
	}
}

func TestObserver_SetReportsReconnect(t *testing.T) {
	o := NewObserver(false)
	if !o.Set(true) {
		t.Error("false→true should be reported as a reconnect")
	}
	if o.Set(true) {
		t.Error("true→true is not a reconnect")
	}
}

func TestObserver_Unsubscribe(t *testing.T) {
	o := NewObserver(false)
	var first, second int
	unsubscribe := o.OnReconnect(func() { first++ })
	o.OnReconnect(func() { second++ })

	o.Set(true)
	unsubscribe()
	unsubscribe()
	o.Set(false)
	o.Set(true)

	if first != 1 {
		t.Errorf("unsubscribed listener fired %d times, want 1", first)
	}
	if second != 2 {
		t.Errorf("remaining listener fired %d times, want 2", second)
	}
}

func TestObserver_ListenerMayReadState(t *testing.T) {
	o := NewObserver(false)
	var seen bool
	o.OnReconnect(func() { seen = o.Online() })

	done := make(chan struct{})
	go func() {
		o.Set(true)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener calling back into the observer deadlocked")
	}
	if !seen {
		t.Error("listener should observe the online state")
	}
}

func TestProber_Probe(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "ok", status: http.StatusOK, want: true},
		{name: "unauthorized_still_reachable", status: http.StatusUnauthorized, want: true},
		{name: "server_error", status: http.StatusBadGateway, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/auth/v1/health" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			p := NewProber(server.URL+"/auth/v1/health", server.Client(), time.Second, NewObserver(false), nil)
			if got := p.Probe(context.Background()); got != tt.want {
				t.Errorf("Probe() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		p := NewProber(url, &http.Client{Timeout: time.Second}, time.Second, NewObserver(true), nil)
		if p.Probe(context.Background()) {
			t.Error("closed server should be reported offline")
		}
	})
}

func TestProber_RunFeedsObserver(t *testing.T) {
	var healthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	observer := NewObserver(false)
	reconnected := make(chan struct{}, 1)
	observer.OnReconnect(func() { reconnected <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewProber(server.URL, server.Client(), 10*time.Millisecond, observer, nil)
	go p.Run(ctx)

	time.Sleep(30 * time.Millisecond)
	if observer.Online() {
		t.Fatal("unhealthy backend should leave the observer offline")
	}

	healthy.Store(true)
	select {
	case <-reconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("prober never reported the reconnect")
	}
}
