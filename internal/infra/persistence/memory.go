package persistence

import (
	"context"
	"fmt"
	"sync"

	"github.com/nestkv/nestkv/internal/store"
)

// MemoryMedium holds root entries directly in process memory for the
// medium's lifetime. No serialization is involved; values are stored and
// returned as-is. The map is guarded by a mutex so incidental use from
// multiple goroutines does not corrupt it, but no transactional
// guarantees are implied.
type MemoryMedium struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewMemoryMedium creates an empty in-process medium.
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{entries: make(map[string]any)}
}

// Read returns the root entry verbatim.
func (m *MemoryMedium) Read(_ context.Context, root string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[root]
	if !ok {
		return nil, fmt.Errorf("%w: %q", store.ErrEntryNotFound, root)
	}
	return v, nil
}

// Write stores value under root.
func (m *MemoryMedium) Write(_ context.Context, root string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[root] = value
	return nil
}

// Delete removes the root entry. Absent entries are a no-op.
func (m *MemoryMedium) Delete(_ context.Context, root string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, root)
	return nil
}

// Keys returns all root-entry names in map order.
func (m *MemoryMedium) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

// All returns a shallow copy of the entries.
func (m *MemoryMedium) All(_ context.Context) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make(map[string]any, len(m.entries))
	for k, v := range m.entries {
		all[k] = v
	}
	return all, nil
}

// Clear empties the medium.
func (m *MemoryMedium) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]any)
	return nil
}

// Len reports the number of root entries currently held.
func (m *MemoryMedium) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
