package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
)

// Ensure SyncLogStore implements the interface.
var _ driven.SyncLogStore = (*SyncLogStore)(nil)

// SyncLogStore is an in-memory implementation of driven.SyncLogStore.
type SyncLogStore struct {
	mu      sync.RWMutex
	entries []domain.SyncLog
}

// NewSyncLogStore creates a new in-memory sync log store.
func NewSyncLogStore() *SyncLogStore {
	return &SyncLogStore{}
}

// Append adds a log entry.
func (s *SyncLogStore) Append(_ context.Context, entry domain.SyncLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// List returns entries newest first.
func (s *SyncLogStore) List(_ context.Context, sourceID string, limit int) ([]domain.SyncLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []domain.SyncLog
	for _, entry := range s.entries {
		if sourceID == "" || entry.SourceID == sourceID {
			entries = append(entries, entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Prune removes all but the most recent keep entries per source.
func (s *SyncLogStore) Prune(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySource := make(map[string][]domain.SyncLog)
	for _, entry := range s.entries {
		bySource[entry.SourceID] = append(bySource[entry.SourceID], entry)
	}

	var kept []domain.SyncLog
	for _, entries := range bySource {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		})
		if len(entries) > keep {
			entries = entries[:keep]
		}
		kept = append(kept, entries...)
	}

	s.entries = kept
	return nil
}
