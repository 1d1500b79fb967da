package dotpath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestkv/nestkv/internal/dotpath"
)

func TestSplitJoin(t *testing.T) {
	assert.Equal(t, []string{"app"}, dotpath.Split("app"))
	assert.Equal(t, []string{"app", "ui", "theme"}, dotpath.Split("app.ui.theme"))
	assert.Equal(t, "app.ui.theme", dotpath.Join([]string{"app", "ui", "theme"}))
}

func TestResolveWithoutCreation(t *testing.T) {
	m := map[string]any{
		"ui": map[string]any{
			"theme": "dark",
		},
		"flat": "scalar",
	}

	container, slot, ok := dotpath.Resolve(m, []string{"ui", "theme"}, false)
	require.True(t, ok)
	assert.Equal(t, "theme", slot)
	assert.Equal(t, "dark", container[slot])

	// Absent intermediate reports not-found and leaves the mapping alone.
	_, _, ok = dotpath.Resolve(m, []string{"missing", "theme"}, false)
	assert.False(t, ok)
	assert.NotContains(t, m, "missing")

	// Non-mapping intermediate reports not-found without creation.
	_, _, ok = dotpath.Resolve(m, []string{"flat", "theme"}, false)
	assert.False(t, ok)
	assert.Equal(t, "scalar", m["flat"])
}

func TestResolveWithCreation(t *testing.T) {
	m := map[string]any{"flat": "scalar"}

	container, slot, ok := dotpath.Resolve(m, []string{"ui", "colors", "bg"}, true)
	require.True(t, ok)
	container[slot] = "#000"

	ui, ok := m["ui"].(map[string]any)
	require.True(t, ok)
	colors, ok := ui["colors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "#000", colors["bg"])

	// A non-mapping intermediate is replaced with an empty mapping.
	container, slot, ok = dotpath.Resolve(m, []string{"flat", "nested"}, true)
	require.True(t, ok)
	container[slot] = 1
	flat, ok := m["flat"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, flat["nested"])
}

func TestResolveSingleSegment(t *testing.T) {
	m := map[string]any{"theme": "dark"}

	container, slot, ok := dotpath.Resolve(m, []string{"theme"}, false)
	require.True(t, ok)
	assert.Equal(t, "theme", slot)
	assert.Equal(t, "dark", container[slot])
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name     string
		in       map[string]any
		expected map[string]any
	}{
		{
			name:     "empty",
			in:       map[string]any{},
			expected: map[string]any{},
		},
		{
			name:     "scalars only",
			in:       map[string]any{"a": 1, "b": "x"},
			expected: map[string]any{"a": 1, "b": "x"},
		},
		{
			name: "nested mappings with array leaf",
			in: map[string]any{
				"a": map[string]any{
					"b": 1,
					"c": map[string]any{"d": 2},
				},
				"e": []any{1, 2},
			},
			expected: map[string]any{
				"a.b":   1,
				"a.c.d": 2,
				"e":     []any{1, 2},
			},
		},
		{
			name: "array nested deep is still a leaf",
			in: map[string]any{
				"x": map[string]any{
					"y": []any{map[string]any{"z": 1}},
				},
			},
			expected: map[string]any{
				"x.y": []any{map[string]any{"z": 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, dotpath.Flatten(tt.in))
		})
	}
}
