// Package store holds the signed-in user's finance state and applies every
// change optimistically: memory first, then the local cache, then the remote
// (or the sync queue when the remote cannot take it).
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/connectivity"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/metrics"
	"fintrack/internal/models"
	"fintrack/internal/reconciler"
	"fintrack/internal/remote"

	"go.uber.org/zap"
)

// Deps are the collaborators a Store works with.
type Deps struct {
	Cache      cache.Store
	Backend    remote.Backend
	Observer   *connectivity.Observer
	Reconciler *reconciler.Reconciler
	Metrics    *metrics.Sync
	Log        *zap.SugaredLogger
	Now        func() time.Time
}

// Store is the in-memory state of one authenticated session. It is safe for
// concurrent use; the lock is never held across cache or remote I/O.
type Store struct {
	cache      cache.Store
	backend    remote.Backend
	observer   *connectivity.Observer
	reconciler *reconciler.Reconciler
	metrics    *metrics.Sync
	log        *zap.SugaredLogger
	now        func() time.Time

	unsubscribe func()

	mu           sync.RWMutex
	closed       bool
	session      models.Session
	profile      models.Profile
	transactions []models.Transaction
	categories   []models.Category
}

// Open builds the state for session from the cache and, when online, from
// the remote. Remote failures are logged and leave the cached view in place.
// Every later reconnect drains the sync queue.
func Open(ctx context.Context, deps Deps, session models.Session) (*Store, error) {
	if session.UserID == "" {
		return nil, apperrors.ErrSessionRequired
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop().Sugar()
	}

	s := &Store{
		cache:      deps.Cache,
		backend:    deps.Backend,
		observer:   deps.Observer,
		reconciler: deps.Reconciler,
		metrics:    deps.Metrics,
		log:        deps.Log.With("user_id", session.UserID),
		now:        deps.Now,
		session:    session,
	}

	s.loadCached(ctx)
	if s.observer.Online() {
		s.refresh(ctx)
	}
	s.unsubscribe = s.observer.OnReconnect(s.onReconnect)
	return s, nil
}

// Close detaches the store from connectivity events and drops its state.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.session = models.Session{}
	s.profile = models.Profile{}
	s.transactions = nil
	s.categories = nil
}

func (s *Store) onReconnect() {
	if _, err := s.Sync(context.Background()); err != nil {
		s.log.Warnw("Sync after reconnect failed", "error", err)
	}
}

// Session returns the session the store was opened for.
func (s *Store) Session() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Profile returns the user's profile.
func (s *Store) Profile() models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Transactions returns the user's transactions, newest first.
func (s *Store) Transactions() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Transaction(nil), s.transactions...)
}

// Categories returns the built-in categories followed by the user's own, by name.
func (s *Store) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Category(nil), s.categories...)
}

// Category looks up a category by id.
func (s *Store) Category(id string) (models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// Online reports whether the remote is currently considered reachable.
func (s *Store) Online() bool {
	return s.observer.Online()
}

// Sync drains the sync queue now. It needs connectivity.
func (s *Store) Sync(ctx context.Context) (*reconciler.Result, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}
	if !s.observer.Online() {
		return nil, apperrors.ErrOffline
	}

	res, err := s.reconciler.Drain(ctx, userID)
	if err != nil {
		return nil, err
	}

	synced := make(map[string]bool)
	for _, op := range res.Applied {
		if op.Kind == models.KindTransactions && op.Action != models.ActionDelete {
			synced[op.EntityID] = true
		}
	}
	if len(synced) > 0 {
		s.mu.Lock()
		for i := range s.transactions {
			if synced[s.transactions[i].ID] {
				s.transactions[i].Synced = true
			}
		}
		s.mu.Unlock()
	}
	return res, nil
}

// Pending lists the user's queued operations in replay order.
func (s *Store) Pending(ctx context.Context) ([]models.PendingOperation, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}
	ops, err := s.cache.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	mine := ops[:0]
	for _, op := range ops {
		if op.UserID == userID {
			mine = append(mine, op)
		}
	}
	return mine, nil
}

// Discard removes a queued operation without replaying it. A discarded
// create also drops the entity locally, together with any later queued
// changes to it, since the remote will never have it. Other discarded
// changes are overwritten by the remote row on the next load.
func (s *Store) Discard(ctx context.Context, opID string) error {
	ops, err := s.Pending(ctx)
	if err != nil {
		return err
	}
	for i, op := range ops {
		if op.ID != opID {
			continue
		}
		if err := s.cache.Dequeue(ctx, op.ID); err != nil {
			if errors.Is(err, cache.ErrNotFound) {
				return apperrors.ErrOperationNotFound
			}
			return err
		}
		s.log.Infow("Discarded queued operation", "op", op.String())

		if op.Action == models.ActionCreate {
			for _, later := range ops[i+1:] {
				if later.EntityID != op.EntityID {
					continue
				}
				if err := s.cache.Dequeue(ctx, later.ID); err != nil && !errors.Is(err, cache.ErrNotFound) {
					s.log.Warnw("Failed to discard dependent operation", "op", later.String(), "error", err)
				}
			}
			s.forget(ctx, op.Kind, op.EntityID)
		}
		s.recordQueueDepth(ctx)
		return nil
	}
	return apperrors.ErrOperationNotFound
}

// forget removes an entity that only ever existed locally.
func (s *Store) forget(ctx context.Context, kind models.EntityKind, id string) {
	switch kind {
	case models.KindTransactions:
		s.mu.Lock()
		for i := range s.transactions {
			if s.transactions[i].ID == id {
				s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		if err := s.cache.DeleteTransaction(ctx, id); err != nil && !errors.Is(err, cache.ErrNotFound) {
			s.log.Warnw("Failed to delete cached transaction", "id", id, "error", err)
		}
	case models.KindCategories:
		s.mu.Lock()
		for i := range s.categories {
			if s.categories[i].ID == id && !s.categories[i].IsDefault {
				s.categories = append(s.categories[:i], s.categories[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		if err := s.cache.DeleteCategory(ctx, id); err != nil && !errors.Is(err, cache.ErrNotFound) {
			s.log.Warnw("Failed to delete cached category", "id", id, "error", err)
		}
	}
}

func (s *Store) userID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", apperrors.ErrSessionRequired
	}
	return s.session.UserID, nil
}

// commit sends a change to the remote, or queues it. A change goes straight
// to the remote only when online and when nothing for the same entity is
// already queued, so replay order per entity is preserved. It reports
// whether the remote accepted the change.
func (s *Store) commit(ctx context.Context, kind models.EntityKind, action models.OperationAction, entityID string, entity any, send func(context.Context) error) bool {
	userID := s.Session().UserID

	if s.observer.Online() && !s.hasPending(ctx, userID, entityID) {
		err := send(ctx)
		if err == nil {
			return true
		}
		s.log.Warnw("Remote write failed, queueing for later",
			"kind", kind,
			"action", action,
			"id", entityID,
			"permanent", remote.IsPermanent(err),
			"error", err,
		)
	}

	op, err := models.NewPendingOperation(userID, kind, action, entityID, entity)
	if err != nil {
		s.log.Errorw("Failed to build queue entry", "kind", kind, "action", action, "id", entityID, "error", err)
		return false
	}
	if err := s.cache.Enqueue(ctx, op); err != nil {
		s.log.Errorw("Failed to queue operation, change exists only locally", "op", op.String(), "error", err)
		return false
	}
	s.metrics.ObserveEnqueue(string(kind), string(action))
	s.recordQueueDepth(ctx)
	return false
}

// hasPending reports whether entityID has a queued operation. An unreadable
// queue counts as pending so the change is queued rather than reordered.
func (s *Store) hasPending(ctx context.Context, userID, entityID string) bool {
	ops, err := s.cache.ListPending(ctx)
	if err != nil {
		s.log.Warnw("Failed to read sync queue", "error", err)
		return true
	}
	for _, op := range ops {
		if op.UserID == userID && op.EntityID == entityID {
			return true
		}
	}
	return false
}

func (s *Store) recordQueueDepth(ctx context.Context) {
	if n, err := s.cache.CountPending(ctx); err == nil {
		s.metrics.SetQueueDepth(n)
	}
}

func sortTransactions(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].ID > txs[j].ID
	})
}

func sortCategories(cats []models.Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].IsDefault != cats[j].IsDefault {
			return cats[i].IsDefault
		}
		return cats[i].Name < cats[j].Name
	})
}
