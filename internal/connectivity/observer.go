// Package connectivity tracks whether the remote backend is reachable and
// announces when it becomes reachable again.
package connectivity

import "sync"

// Observer holds the binary online/offline state. Listeners registered with
// OnReconnect fire once per false→true transition and never otherwise.
type Observer struct {
	mu        sync.Mutex
	online    bool
	nextID    int
	listeners map[int]func()
}

// NewObserver creates an Observer with the given initial state. The initial
// state itself is not a transition.
func NewObserver(online bool) *Observer {
	return &Observer{online: online, listeners: make(map[int]func())}
}

// Online reports the current state.
func (o *Observer) Online() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.online
}

// Set records the current state and reports whether this call was a
// reconnect. Listeners run synchronously on the caller's goroutine, after
// the lock is released, so they may call back into the Observer.
func (o *Observer) Set(online bool) bool {
	o.mu.Lock()
	if o.online == online {
		o.mu.Unlock()
		return false
	}
	o.online = online
	if !online {
		o.mu.Unlock()
		return false
	}

	fns := make([]func(), 0, len(o.listeners))
	for id := 0; id < o.nextID; id++ {
		if fn, ok := o.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return true
}

// OnReconnect registers fn and returns a function that removes it.
// Listeners are invoked in registration order.
func (o *Observer) OnReconnect(fn func()) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.listeners, id)
			o.mu.Unlock()
		})
	}
}
