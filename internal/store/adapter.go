package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/nestkv/nestkv/internal/dotpath"
)

// Adapter exposes dot-path operations over a Medium.
//
// The exported methods form the total public surface: any internal
// failure is converted to the fallback value or a no-op and logged. The
// unexported counterparts return errors so tests and media can observe
// failure paths.
type Adapter struct {
	medium Medium
	logger *slog.Logger
}

// NewAdapter creates an adapter over the given medium.
func NewAdapter(medium Medium, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{medium: medium, logger: logger}
}

// Get returns the value addressed by key, or fallback when the key does
// not resolve. A single-segment key returns the root entry verbatim;
// longer keys resolve the remaining path without creating intermediate
// levels. Malformed stored data reads as absent.
func (a *Adapter) Get(ctx context.Context, key string, fallback any) any {
	v, err := a.get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrEntryNotFound) && !errors.Is(err, ErrParse) {
			a.logger.Warn("get failed", "key", key, "error", err)
		}
		return fallback
	}
	if v == nil {
		return fallback
	}
	return v
}

// GetAs returns the value at key asserted to T, or fallback when the key
// does not resolve or holds a value of a different dynamic type.
func GetAs[T any](ctx context.Context, a *Adapter, key string, fallback T) T {
	v := a.Get(ctx, key, nil)
	if v == nil {
		return fallback
	}
	t, ok := v.(T)
	if !ok {
		return fallback
	}
	return t
}

// Set writes value at key. A single-segment key overwrites the whole root
// entry. Longer keys load the existing root entry (an empty mapping when
// absent or not itself a mapping), resolve the path with creation
// enabled, assign the slot, and write the whole entry back. Failures are
// logged and swallowed; Set never reports an error.
func (a *Adapter) Set(ctx context.Context, key string, value any) {
	if err := a.set(ctx, key, value); err != nil {
		a.logger.Warn("set failed", "key", key, "error", err)
	}
}

// Remove deletes the value addressed by key. A single-segment key removes
// the whole root entry; longer keys resolve without creation and delete
// the slot from its parent mapping. Unresolvable keys are a no-op.
func (a *Adapter) Remove(ctx context.Context, key string) {
	if err := a.remove(ctx, key); err != nil {
		a.logger.Warn("remove failed", "key", key, "error", err)
	}
}

// Has reports whether Get returns a non-nil value for key. A root slot
// holding a stored null is indistinguishable from an absent key.
func (a *Adapter) Has(ctx context.Context, key string) bool {
	return a.Get(ctx, key, nil) != nil
}

// ClearByPrefix deletes every root entry whose name starts with prefix.
// The match is against root-entry names only, never against dot-path
// segments inside an entry.
func (a *Adapter) ClearByPrefix(ctx context.Context, prefix string) {
	keys, err := a.medium.Keys(ctx)
	if err != nil {
		a.logger.Warn("clear by prefix failed", "prefix", prefix, "error", err)
		return
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if err := a.medium.Delete(ctx, k); err != nil {
			a.logger.Warn("clear by prefix: delete failed", "root", k, "error", err)
		}
	}
}

// Keys returns all current root-entry names in medium order.
func (a *Adapter) Keys(ctx context.Context) []string {
	keys, err := a.medium.Keys(ctx)
	if err != nil {
		a.logger.Warn("keys failed", "error", err)
		return nil
	}
	return keys
}

// All returns a mapping of every root-entry name to its value, as the
// medium reconstructs it.
func (a *Adapter) All(ctx context.Context) map[string]any {
	all, err := a.medium.All(ctx)
	if err != nil {
		a.logger.Warn("all failed", "error", err)
		return map[string]any{}
	}
	return all
}

// Clear empties the entire medium. For shared media this removes entries
// belonging to unrelated consumers as well.
func (a *Adapter) Clear(ctx context.Context) {
	if err := a.medium.Clear(ctx); err != nil {
		a.logger.Warn("clear failed", "error", err)
	}
}

func (a *Adapter) get(ctx context.Context, key string) (any, error) {
	segments := dotpath.Split(key)

	root, err := a.medium.Read(ctx, segments[0])
	if err != nil {
		return nil, err
	}
	if len(segments) == 1 {
		return root, nil
	}

	m, ok := root.(map[string]any)
	if !ok {
		return nil, ErrEntryNotFound
	}
	container, slot, ok := dotpath.Resolve(m, segments[1:], false)
	if !ok {
		return nil, ErrEntryNotFound
	}
	v, ok := container[slot]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return v, nil
}

func (a *Adapter) set(ctx context.Context, key string, value any) error {
	segments := dotpath.Split(key)
	if len(segments) == 1 {
		return a.medium.Write(ctx, segments[0], value)
	}

	root, err := a.medium.Read(ctx, segments[0])
	if err != nil && !errors.Is(err, ErrEntryNotFound) && !errors.Is(err, ErrParse) {
		return err
	}

	m, ok := root.(map[string]any)
	if !ok {
		m = make(map[string]any)
	}
	container, slot, _ := dotpath.Resolve(m, segments[1:], true)
	container[slot] = value

	return a.medium.Write(ctx, segments[0], m)
}

func (a *Adapter) remove(ctx context.Context, key string) error {
	segments := dotpath.Split(key)
	if len(segments) == 1 {
		return a.medium.Delete(ctx, segments[0])
	}

	root, err := a.medium.Read(ctx, segments[0])
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) || errors.Is(err, ErrParse) {
			return nil
		}
		return err
	}

	m, ok := root.(map[string]any)
	if !ok {
		return nil
	}
	container, slot, ok := dotpath.Resolve(m, segments[1:], false)
	if !ok {
		return nil
	}
	if _, exists := container[slot]; !exists {
		return nil
	}
	delete(container, slot)

	return a.medium.Write(ctx, segments[0], m)
}
