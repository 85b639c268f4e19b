package store

import (
	"context"
	"errors"

	"fintrack/internal/cache"
	"fintrack/internal/models"
	"fintrack/internal/remote"
)

// loadCached fills the state from the local cache. Categories fall back to
// the built-in set and the profile to the default profile.
func (s *Store) loadCached(ctx context.Context) {
	userID, email := s.session.UserID, s.session.Email

	var txs []models.Transaction
	if cached, err := s.cache.ListTransactions(ctx); err != nil {
		s.log.Warnw("Failed to read cached transactions", "error", err)
	} else {
		for _, tx := range cached {
			if tx.UserID == userID {
				txs = append(txs, tx)
			}
		}
	}

	var cats []models.Category
	if cached, err := s.cache.ListCategories(ctx); err != nil {
		s.log.Warnw("Failed to read cached categories", "error", err)
	} else {
		for _, c := range cached {
			if c.IsDefault || c.OwnedBy(userID) {
				cats = append(cats, c)
			}
		}
	}
	cats = withDefaults(cats)

	profile := models.DefaultProfile(userID, email)
	if cached, err := s.cache.GetProfile(ctx, userID); err == nil {
		profile = *cached
	} else if !errors.Is(err, cache.ErrNotFound) {
		s.log.Warnw("Failed to read cached profile", "error", err)
	}

	sortTransactions(txs)
	sortCategories(cats)

	s.mu.Lock()
	s.transactions, s.categories, s.profile = txs, cats, profile
	s.mu.Unlock()
}

// refresh replays the queue and then pulls the remote state, mirroring it
// into the cache. Remote rows win unless the entity still has a queued
// change.
func (s *Store) refresh(ctx context.Context) {
	userID := s.session.UserID

	if _, err := s.reconciler.Drain(ctx, userID); err != nil {
		s.log.Warnw("Failed to drain sync queue on load", "error", err)
	}

	pending := make(map[string]bool)
	if ops, err := s.cache.ListPending(ctx); err != nil {
		s.log.Warnw("Failed to read sync queue", "error", err)
	} else {
		for _, op := range ops {
			if op.UserID == userID {
				pending[op.EntityID] = true
			}
		}
	}

	s.refreshProfile(ctx, userID, pending)
	s.refreshTransactions(ctx, userID, pending)
	s.refreshCategories(ctx, userID, pending)
}

func (s *Store) refreshProfile(ctx context.Context, userID string, pending map[string]bool) {
	p, err := s.backend.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, remote.ErrNotFound):
		return
	case err != nil:
		s.log.Warnw("Failed to fetch profile", "error", err)
		return
	case pending[userID]:
		return
	}

	if err := s.cache.PutProfile(ctx, p); err != nil {
		s.log.Warnw("Failed to cache profile", "error", err)
	}
	s.mu.Lock()
	s.profile = *p
	s.mu.Unlock()
}

func (s *Store) refreshTransactions(ctx context.Context, userID string, pending map[string]bool) {
	rows, err := s.backend.ListTransactions(ctx, userID)
	if err != nil {
		s.log.Warnw("Failed to fetch transactions", "error", err)
		return
	}

	s.mu.RLock()
	local := append([]models.Transaction(nil), s.transactions...)
	s.mu.RUnlock()

	merged, dropped := mergeTransactions(local, rows, pending)
	for i := range merged {
		if err := s.cache.PutTransaction(ctx, &merged[i]); err != nil {
			s.log.Warnw("Failed to cache transaction", "id", merged[i].ID, "error", err)
		}
	}
	for _, id := range dropped {
		if err := s.cache.DeleteTransaction(ctx, id); err != nil {
			s.log.Warnw("Failed to drop transaction from cache", "id", id, "error", err)
		}
	}

	s.mu.Lock()
	s.transactions = merged
	s.mu.Unlock()
}

func (s *Store) refreshCategories(ctx context.Context, userID string, pending map[string]bool) {
	rows, err := s.backend.ListCategories(ctx, userID)
	if err != nil {
		s.log.Warnw("Failed to fetch categories", "error", err)
		return
	}

	s.mu.RLock()
	local := append([]models.Category(nil), s.categories...)
	s.mu.RUnlock()

	merged, dropped := mergeCategories(local, rows, pending)
	for i := range merged {
		if err := s.cache.PutCategory(ctx, &merged[i]); err != nil {
			s.log.Warnw("Failed to cache category", "id", merged[i].ID, "error", err)
		}
	}
	for _, id := range dropped {
		if err := s.cache.DeleteCategory(ctx, id); err != nil {
			s.log.Warnw("Failed to drop category from cache", "id", id, "error", err)
		}
	}

	s.mu.Lock()
	s.categories = merged
	s.mu.Unlock()
}

// mergeTransactions combines the local and remote views. A remote row
// replaces its local copy unless the id has a queued change; a local row the
// remote does not know survives only while unsynced or queued. The ids of
// local rows that did not survive are returned as dropped.
func mergeTransactions(local, remoteRows []models.Transaction, pending map[string]bool) (merged []models.Transaction, dropped []string) {
	byID := make(map[string]models.Transaction, len(local))
	for _, tx := range local {
		byID[tx.ID] = tx
	}

	seen := make(map[string]bool, len(remoteRows))
	for _, row := range remoteRows {
		seen[row.ID] = true
		if pending[row.ID] {
			// a queued delete has already removed it locally
			if tx, ok := byID[row.ID]; ok {
				merged = append(merged, tx)
			}
			continue
		}
		row.Synced = true
		merged = append(merged, row)
	}

	for _, tx := range local {
		if seen[tx.ID] {
			continue
		}
		if !tx.Synced || pending[tx.ID] {
			merged = append(merged, tx)
		} else {
			dropped = append(dropped, tx.ID)
		}
	}

	sortTransactions(merged)
	return merged, dropped
}

// mergeCategories follows the same rules as mergeTransactions. Built-in
// categories are always kept; user categories have no synced flag, so a
// local one missing remotely survives only while queued.
func mergeCategories(local, remoteRows []models.Category, pending map[string]bool) (merged []models.Category, dropped []string) {
	byID := make(map[string]models.Category, len(local))
	for _, c := range local {
		byID[c.ID] = c
	}

	seen := make(map[string]bool, len(remoteRows))
	for _, row := range remoteRows {
		seen[row.ID] = true
		if pending[row.ID] {
			if c, ok := byID[row.ID]; ok {
				merged = append(merged, c)
			}
			continue
		}
		merged = append(merged, row)
	}

	for _, c := range local {
		if seen[c.ID] {
			continue
		}
		if c.IsDefault || pending[c.ID] {
			merged = append(merged, c)
		} else {
			dropped = append(dropped, c.ID)
		}
	}

	merged = withDefaults(merged)
	sortCategories(merged)
	return merged, dropped
}

// withDefaults adds any built-in category missing from cats.
func withDefaults(cats []models.Category) []models.Category {
	have := make(map[string]bool, len(cats))
	for _, c := range cats {
		have[c.ID] = true
	}
	for _, d := range models.DefaultCategories() {
		if !have[d.ID] {
			cats = append(cats, d)
		}
	}
	return cats
}
