package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(`
version: 1
exercises:
  - name: "  Push-ups "
    muscle_group: chest
    equipment: bodyweight
  - name: Plank
    muscle_group: core
`))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Push-ups", entries[0].Name)
	assert.Equal(t, "chest", entries[0].MuscleGroup)
	assert.Equal(t, "bodyweight", entries[0].Equipment)
	assert.Equal(t, "Plank", entries[1].Name)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing name", "exercises:\n  - muscle_group: chest\n"},
		{"unknown field", "exercises:\n  - name: Plank\n    muscle: core\n"},
		{"future version", "version: 2\nexercises: []\n"},
		{"not yaml", "exercises: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	entries, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exercises:\n  - name: Burpees\n    muscle_group: full body\n"), 0o600))

	entries, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "full body", entries[0].MuscleGroup)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefault(t *testing.T) {
	entries := Default()
	require.NotEmpty(t, entries)

	seen := map[string]bool{}
	for _, e := range entries {
		assert.NotEmpty(t, e.MuscleGroup, e.Name)
		key := strings.ToLower(e.Name)
		assert.False(t, seen[key], "duplicate %s", e.Name)
		seen[key] = true
	}
	// The fallback plan must resolve exactly against the bundled catalog.
	for _, name := range []string{"push-ups", "bodyweight squats", "plank"} {
		assert.True(t, seen[name], name)
	}
}
