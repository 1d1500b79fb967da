package store

import (
	"context"
	"log/slog"

	"github.com/nestkv/nestkv/internal/dotpath"
)

// SyncAdapter extends Adapter with diff-based synchronization. It is
// constructed only over byte-string media, whose serialized root entries
// make wholesale reconciliation meaningful.
type SyncAdapter struct {
	*Adapter
}

// NewSyncAdapter creates a sync-capable adapter over the given medium.
func NewSyncAdapter(medium Medium, logger *slog.Logger) *SyncAdapter {
	return &SyncAdapter{Adapter: NewAdapter(medium, logger)}
}

// Sync converges the medium's observable key set to exactly the flattened
// key set of target. Every currently stored flat key absent from the
// target is removed; every target key is then set, whether or not its
// value changed. The individual operations are independent: a failure
// partway through is swallowed like any other, so the medium may end up
// partially converged. No rollback is attempted.
func (a *SyncAdapter) Sync(ctx context.Context, target map[string]any) {
	current := dotpath.Flatten(a.All(ctx))
	want := dotpath.Flatten(target)

	for key := range current {
		if _, ok := want[key]; !ok {
			a.Remove(ctx, key)
		}
	}
	for key, value := range want {
		a.Set(ctx, key, value)
	}
}

// MemoryAdapter extends Adapter with operations specific to the
// in-process memory medium.
type MemoryAdapter struct {
	*Adapter
	medium CountingMedium
}

// NewMemoryAdapter creates an adapter over an in-process counting medium.
func NewMemoryAdapter(medium CountingMedium, logger *slog.Logger) *MemoryAdapter {
	return &MemoryAdapter{Adapter: NewAdapter(medium, logger), medium: medium}
}

// IsEmpty reports whether the medium holds no root entries.
func (a *MemoryAdapter) IsEmpty() bool {
	return a.medium.Len() == 0
}
