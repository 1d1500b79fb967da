package store_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestkv/nestkv/internal/infra/persistence"
	"github.com/nestkv/nestkv/internal/store"
)

func newMemoryAdapter(t *testing.T) (*store.Adapter, *persistence.MemoryMedium) {
	t.Helper()
	m := persistence.NewMemoryMedium()
	return store.NewAdapter(m, slog.Default()), m
}

func TestSetGetRoundTrip(t *testing.T) {
	a, _ := newMemoryAdapter(t)
	ctx := context.Background()

	a.Set(ctx, "theme", "dark")
	assert.Equal(t, "dark", a.Get(ctx, "theme", nil))

	a.Set(ctx, "app.ui.fontSize", 14)
	assert.Equal(t, 14, a.Get(ctx, "app.ui.fontSize", nil))

	a.Set(ctx, "tags", []any{"a", "b"})
	assert.Equal(t, []any{"a", "b"}, a.Get(ctx, "tags", nil))
}

func TestGetFallback(t *testing.T) {
	a, _ := newMemoryAdapter(t)
	ctx := context.Background()

	assert.Equal(t, "fallback", a.Get(ctx, "missing", "fallback"))
	assert.Nil(t, a.Get(ctx, "missing", nil))

	a.Set(ctx, "app.ui.theme", "dark")
	assert.Equal(t, "fb", a.Get(ctx, "app.ui.missing", "fb"))
	assert.Equal(t, "fb", a.Get(ctx, "app.missing.deep", "fb"))

	// Resolving through a scalar intermediate never creates anything.
	a.Set(ctx, "flat", "scalar")
	assert.Equal(t, "fb", a.Get(ctx, "flat.nested", "fb"))
	assert.Equal(t, "scalar", a.Get(ctx, "flat", nil))
}

func TestGetAs(t *testing.T) {
	a, _ := newMemoryAdapter(t)
	ctx := context.Background()

	a.Set(ctx, "app.name", "nestkv")
	assert.Equal(t, "nestkv", store.GetAs(ctx, a, "app.name", "unset"))
	assert.Equal(t, "unset", store.GetAs(ctx, a, "app.missing", "unset"))

	// Wrong dynamic type degrades to the fallback.
	assert.Equal(t, 42, store.GetAs(ctx, a, "app.name", 42))
}

func TestSetCreatesMissingRoot(t *testing.T) {
	a, _ := newMemoryAdapter(t)
	ctx := context.Background()

	a.Set(ctx, "app.ui.theme", "dark")

	assert.Equal(t, "dark", a.Get(ctx, "app.ui.theme", nil))
	assert.Equal(t,
		map[string]any{"ui": map[string]any{"theme": "dark"}},
		a.Get(ctx, "app", nil))
}

func TestSetThroughNonMappingIntermediate(t *testing.T) {
	a, _ := newMemoryAdapter(t)
	ctx := context.Background()

	a.Set(ctx, "app", map[string]any{"ui": "flat"})
	a.Set(ctx, "app.ui.theme", "dark")

	assert.Equal(t,
		map[string]any{"ui": map[string]any{"theme": "dark"}},
		a.Get(ctx, "app", nil))
}

func TestSetOverScalarRoot(t *testing.T) {
	a, _ := newMemoryAdapter(t)
	ctx := context.Background()

	a.Set(ctx, "app", "just a string")
	a.Set(ctx, "app.ui.theme", "dark")

	assert.Equal(t, "dark", a.Get(ctx, "app.ui.theme", nil))
}

func TestSetIdempotent(t *testing.T) {
	a, m := newMemoryAdapter(t)
	ctx := context.Background()

	a.Set(ctx, "app.ui.theme", "dark")
	first, err := m.All(ctx)
	require.NoError(t, err)

	a.Set(ctx, "app.ui.theme", "dark")
	second, err := m.All(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRemove(t *testing.T) {
	a, _ := newMemoryAdapter(t)
	ctx := context.Background()

	a.Set(ctx, "app.ui.theme", "dark")
	a.Set(ctx, "app.ui.fontSize", 14)

	a.Remove(ctx, "app.ui.theme")
	assert.Equal(t, "fb", a.Get(ctx, "app.ui.theme", "fb"))
	assert.Equal(t, 14, a.Get(ctx, "app.ui.fontSize", nil))

	// Whole-root removal.
	a.Remove(ctx, "app")
	assert.Equal(t, "fb", a.Get(ctx, "app", "fb"))

	// Removing what is not there is a no-op.
	a.Remove(ctx, "app")
	a.Remove(ctx, "app.ui.missing")
	a.Remove(ctx, "ghost.deep.path")
}

func TestHas(t *testing.T) {
	a, _ := newMemoryAdapter(t)
	ctx := context.Background()

	assert.False(t, a.Has(ctx, "never.set"))

	a.Set(ctx, "app.ui.theme", "dark")
	assert.True(t, a.Has(ctx, "app.ui.theme"))
	assert.True(t, a.Has(ctx, "app"))

	a.Remove(ctx, "app.ui.theme")
	assert.False(t, a.Has(ctx, "app.ui.theme"))

	// A stored null is indistinguishable from an absent key.
	a.Set(ctx, "app.ui.accent", nil)
	assert.False(t, a.Has(ctx, "app.ui.accent"))
}

func TestClearByPrefix(t *testing.T) {
	a, m := newMemoryAdapter(t)
	ctx := context.Background()

	// Root entries whose names themselves contain dots can exist in a
	// shared medium; the prefix matches names only, never path segments.
	require.NoError(t, m.Write(ctx, "app.theme", 1))
	require.NoError(t, m.Write(ctx, "app.lang", 2))
	require.NoError(t, m.Write(ctx, "other", 3))

	a.ClearByPrefix(ctx, "app")

	keys := a.Keys(ctx)
	assert.ElementsMatch(t, []string{"other"}, keys)
}

func TestClearByPrefixDoesNotMatchNestedPaths(t *testing.T) {
	a, _ := newMemoryAdapter(t)
	ctx := context.Background()

	a.Set(ctx, "app.ui.theme", "dark")

	// "app.ui" is not the name of any root entry, so nothing matches.
	a.ClearByPrefix(ctx, "app.ui")
	assert.True(t, a.Has(ctx, "app.ui.theme"))

	a.ClearByPrefix(ctx, "app")
	assert.False(t, a.Has(ctx, "app.ui.theme"))
}

func TestKeysAndClear(t *testing.T) {
	a, _ := newMemoryAdapter(t)
	ctx := context.Background()

	a.Set(ctx, "a.x", 1)
	a.Set(ctx, "b.y", 2)
	assert.ElementsMatch(t, []string{"a", "b"}, a.Keys(ctx))

	a.Clear(ctx)
	assert.Empty(t, a.Keys(ctx))
	assert.Empty(t, a.All(ctx))
}

// failingMedium rejects every primitive so the total public surface can
// be observed degrading instead of propagating errors.
type failingMedium struct{}

var errBroken = errors.New("medium is broken")

func (failingMedium) Read(context.Context, string) (any, error)    { return nil, errBroken }
func (failingMedium) Write(context.Context, string, any) error     { return errBroken }
func (failingMedium) Delete(context.Context, string) error         { return errBroken }
func (failingMedium) Keys(context.Context) ([]string, error)       { return nil, errBroken }
func (failingMedium) All(context.Context) (map[string]any, error)  { return nil, errBroken }
func (failingMedium) Clear(context.Context) error                  { return errBroken }

func TestOperationsAreTotalOnMediumFailure(t *testing.T) {
	a := store.NewAdapter(failingMedium{}, slog.Default())
	ctx := context.Background()

	assert.Equal(t, "fb", a.Get(ctx, "any.key", "fb"))
	assert.False(t, a.Has(ctx, "any.key"))
	assert.Nil(t, a.Keys(ctx))
	assert.Equal(t, map[string]any{}, a.All(ctx))

	// None of these may panic or surface an error.
	a.Set(ctx, "any.key", 1)
	a.Remove(ctx, "any.key")
	a.Clear(ctx)
	a.ClearByPrefix(ctx, "any")
}
