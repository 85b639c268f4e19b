// Package reconciler replays queued offline writes against the remote backend.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/metrics"
	"fintrack/internal/models"
	"fintrack/internal/remote"

	"go.uber.org/zap"
)

// Queue is the part of the local cache the reconciler works on.
type Queue interface {
	ListPending(ctx context.Context) ([]models.PendingOperation, error)
	Dequeue(ctx context.Context, id string) error
	CountPending(ctx context.Context) (int64, error)
	MarkTransactionSynced(ctx context.Context, id string) error
}

// Result describes one drain.
type Result struct {
	Applied   []models.PendingOperation
	Failed    *models.PendingOperation
	Err       error
	// Remaining counts the drained user's operations still queued.
	Remaining int64
}

// Reconciler drains the sync queue in enqueue order. Drains are serialized.
type Reconciler struct {
	queue   Queue
	backend remote.Backend
	metrics *metrics.Sync
	log     *zap.SugaredLogger
	now     func() time.Time

	mu sync.Mutex
}

// New creates a Reconciler. m may be nil.
func New(queue Queue, backend remote.Backend, m *metrics.Sync, log *zap.SugaredLogger) *Reconciler {
	return &Reconciler{
		queue:   queue,
		backend: backend,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Drain replays userID's pending operations one at a time, oldest first. It
// stops at the first operation the remote does not accept; that operation
// and everything after it stay queued unchanged. The returned error is only
// set when the queue itself could not be read; a replay failure is reported
// in Result.Err.
func (r *Reconciler) Drain(ctx context.Context, userID string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := r.now()
	defer func() { r.metrics.ObserveDrain(r.now().Sub(start)) }()

	ops, err := r.queue.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pending operations: %w", err)
	}

	res := &Result{}
	var mine int64
	for i := range ops {
		if ops[i].UserID == userID {
			mine++
		}
	}
	for i := range ops {
		op := ops[i]
		if op.UserID != userID {
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}

		if err := r.replay(ctx, op); err != nil {
			permanent := remote.IsPermanent(err)
			outcome := metrics.OutcomeFailed
			if permanent {
				outcome = metrics.OutcomeRejected
			}
			r.metrics.ObserveReplay(string(op.Kind), string(op.Action), outcome)
			r.log.Warnw("Replay failed, leaving operation queued",
				"op", op.String(),
				"permanent", permanent,
				"error", err,
			)
			res.Failed, res.Err = &op, err
			break
		}

		if err := r.queue.Dequeue(ctx, op.ID); err != nil && !errors.Is(err, cache.ErrNotFound) {
			// The remote already has the write; a later replay is absorbed
			// because every replayed call is idempotent.
			r.log.Warnw("Failed to dequeue replayed operation", "op", op.String(), "error", err)
		}
		if op.Kind == models.KindTransactions && op.Action != models.ActionDelete {
			if err := r.queue.MarkTransactionSynced(ctx, op.EntityID); err != nil && !errors.Is(err, cache.ErrNotFound) {
				r.log.Warnw("Failed to mark transaction synced", "id", op.EntityID, "error", err)
			}
		}
		r.metrics.ObserveReplay(string(op.Kind), string(op.Action), metrics.OutcomeApplied)
		res.Applied = append(res.Applied, op)
	}

	res.Remaining = mine - int64(len(res.Applied))

	// The gauge tracks the whole queue, other users' entries included.
	if total, err := r.queue.CountPending(ctx); err != nil {
		r.log.Warnw("Failed to count pending operations", "error", err)
	} else {
		r.metrics.SetQueueDepth(total)
	}

	if len(res.Applied) > 0 || res.Failed != nil {
		r.log.Infow("Sync queue drained",
			"applied", len(res.Applied),
			"failed", res.Failed != nil,
			"remaining", res.Remaining,
		)
	}
	return res, nil
}

// replay issues the remote call an operation stands for.
func (r *Reconciler) replay(ctx context.Context, op models.PendingOperation) error {
	switch op.Kind {
	case models.KindTransactions:
		switch op.Action {
		case models.ActionDelete:
			return r.backend.DeleteTransaction(ctx, op.EntityID)
		case models.ActionCreate, models.ActionUpdate:
			tx, err := op.Transaction()
			if err != nil {
				return err
			}
			tx.Synced = true
			if op.Action == models.ActionCreate {
				return r.backend.InsertTransaction(ctx, tx)
			}
			return r.backend.UpdateTransaction(ctx, tx)
		}

	case models.KindCategories:
		switch op.Action {
		case models.ActionDelete:
			return r.backend.DeleteCategory(ctx, op.EntityID)
		case models.ActionCreate:
			c, err := op.Category()
			if err != nil {
				return err
			}
			return r.backend.InsertCategory(ctx, c)
		}

	case models.KindProfiles:
		if op.Action == models.ActionUpdate || op.Action == models.ActionCreate {
			p, err := op.Profile()
			if err != nil {
				return err
			}
			return r.backend.UpsertProfile(ctx, p)
		}
	}
	return fmt.Errorf("unsupported operation %s %s", op.Kind, op.Action)
}
