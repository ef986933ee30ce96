package storage

import (
	"context"
	"fmt"
	"sync"

	"financas/internal/core"
	"financas/internal/ledger"
)

// MemoryRepository keeps snapshots in memory. Used as the default backend
// when no database path is configured, and by tests.
type MemoryRepository struct {
	mu    sync.Mutex
	snaps map[string]ledger.Snapshot
}

var _ SnapshotRepository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{snaps: make(map[string]ledger.Snapshot)}
}

func (r *MemoryRepository) Save(_ context.Context, userKey string, snap ledger.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps[userKey] = snap
	return nil
}

func (r *MemoryRepository) Load(_ context.Context, userKey string) (ledger.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.snaps[userKey]
	if !ok {
		return ledger.Snapshot{}, fmt.Errorf("load snapshot for %s: %w", userKey, core.ErrNotFound)
	}
	return snap, nil
}

func (r *MemoryRepository) Close() error { return nil }
