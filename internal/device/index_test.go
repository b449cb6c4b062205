package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileIndex_Lookup(t *testing.T) {
	index := NewFileIndex([]string{
		"/sdcard/Books/fiction/dune.epub",
		"/sdcard/Books/war.epub",
	})

	path, ok := index.Lookup("dune.epub")
	require.True(t, ok)
	assert.Equal(t, "/sdcard/Books/fiction/dune.epub", path)

	_, ok = index.Lookup("missing.epub")
	assert.False(t, ok)
}

func TestFileIndex_DuplicateBasenameLastWins(t *testing.T) {
	index := NewFileIndex([]string{
		"/sdcard/Books/old/dune.epub",
		"/sdcard/Books/new/dune.epub",
	})

	path, ok := index.Lookup("dune.epub")
	require.True(t, ok)
	assert.Equal(t, "/sdcard/Books/new/dune.epub", path)
	assert.Equal(t, 1, index.Len())
}

func TestBuildFileIndex(t *testing.T) {
	bridge := &fakeBridge{
		findFiles: []string{"/sdcard/Books/a.epub", "/sdcard/Books/b.epub"},
	}

	index, err := BuildFileIndex(bridge, "/sdcard/Books/")
	require.NoError(t, err)
	assert.Equal(t, 2, index.Len())
}
