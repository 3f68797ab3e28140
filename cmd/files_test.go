package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	mk := func(rel string) string {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		return path
	}

	a := mk("a.ts")
	b := mk("sub/b.tsx")
	mk("sub/readme.md")
	mk("node_modules/dep/index.js")
	mk(".hidden/c.ts")

	files, err := collectFiles([]string{dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, files)

	// a file argument is passed through regardless of extension
	md := filepath.Join(dir, "sub", "readme.md")
	files, err = collectFiles([]string{md})
	require.NoError(t, err)
	assert.Equal(t, []string{md}, files)

	_, err = collectFiles([]string{filepath.Join(dir, "missing")})
	require.Error(t, err)
}
