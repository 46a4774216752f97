package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()

	paths, err := generate([]string{"m-1", "m-2"}, "https://ar.example.com", dir, 256)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	assert.Equal(t, filepath.Join(dir, "marker-m-1.png"), paths[0])
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(raw, pngHeader), "output must be a PNG")
	}
}

func TestGenerateCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "markers")

	_, err := generate([]string{"m-1"}, "https://ar.example.com", dir, 128)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "marker-m-1.png"))
	assert.NoError(t, err)
}
