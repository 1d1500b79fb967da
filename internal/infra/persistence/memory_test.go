package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestkv/nestkv/internal/infra/persistence"
	"github.com/nestkv/nestkv/internal/store"
)

func TestMemoryMediumRoundTrip(t *testing.T) {
	m := persistence.NewMemoryMedium()
	ctx := context.Background()

	// No serialization: values come back as the exact same value.
	value := map[string]any{"nested": []int{1, 2, 3}}
	require.NoError(t, m.Write(ctx, "app", value))

	got, err := m.Read(ctx, "app")
	require.NoError(t, err)
	assert.Equal(t, value, got)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryMediumReadAbsent(t *testing.T) {
	m := persistence.NewMemoryMedium()

	_, err := m.Read(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrEntryNotFound)
}

func TestMemoryMediumDelete(t *testing.T) {
	m := persistence.NewMemoryMedium()
	ctx := context.Background()

	require.NoError(t, m.Write(ctx, "app", 1))
	require.NoError(t, m.Delete(ctx, "app"))
	assert.Equal(t, 0, m.Len())

	// Deleting again is a no-op.
	require.NoError(t, m.Delete(ctx, "app"))
}

func TestMemoryMediumAllIsACopy(t *testing.T) {
	m := persistence.NewMemoryMedium()
	ctx := context.Background()

	require.NoError(t, m.Write(ctx, "a", 1))

	all, err := m.All(ctx)
	require.NoError(t, err)
	all["b"] = 2

	keys, err := m.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a"}, keys)
}

func TestMemoryMediumClear(t *testing.T) {
	m := persistence.NewMemoryMedium()
	ctx := context.Background()

	require.NoError(t, m.Write(ctx, "a", 1))
	require.NoError(t, m.Write(ctx, "b", 2))
	require.NoError(t, m.Clear(ctx))

	assert.Equal(t, 0, m.Len())
	all, err := m.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
