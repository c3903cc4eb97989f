package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandModelPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"browsers.txt", "network.txt", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("A: 1, 2\n"), 0o644))
	}

	t.Run("glob pattern expands to matches", func(t *testing.T) {
		paths, err := expandModelPaths([]string{filepath.Join(dir, "*.txt")})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(dir, "browsers.txt"),
			filepath.Join(dir, "network.txt"),
		}, paths)
	})

	t.Run("literal path is kept even when missing", func(t *testing.T) {
		paths, err := expandModelPaths([]string{filepath.Join(dir, "missing.txt")})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "missing.txt")}, paths)
	})

	t.Run("multiple arguments accumulate", func(t *testing.T) {
		paths, err := expandModelPaths([]string{
			filepath.Join(dir, "*.md"),
			filepath.Join(dir, "browsers.txt"),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "notes.md"),
			filepath.Join(dir, "browsers.txt"),
		}, paths)
	})

	t.Run("malformed pattern is rejected", func(t *testing.T) {
		_, err := expandModelPaths([]string{"models/[broken"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid glob pattern")
	})
}

func TestNewGenerateConfig(t *testing.T) {
	config := NewGenerateConfig()

	assert.Equal(t, "table", config.Format)
	assert.Empty(t, config.Output)
	assert.False(t, config.NoHistory)
	assert.False(t, config.Strict)
}
