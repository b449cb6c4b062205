package excerpt

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"collapses space runs", "brown   fox", "brown fox"},
		{"collapses newlines and tabs", "brown\n\t fox", "brown fox"},
		{"trims ends", "  fox  ", "fox"},
		{"empty stays empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.text))
		})
	}
}

func TestMatchInText(t *testing.T) {
	m := NewMatcher(5)

	t.Run("irregular whitespace in target still matches", func(t *testing.T) {
		ex, ok := m.MatchInText("... the quick brown fox jumps ...", Normalize("brown   fox"))

		require.True(t, ok)
		assert.Equal(t, "uick ", ex.Before)
		assert.Equal(t, " jump", ex.After)
		assert.True(t, ex.TruncatedStart)
		assert.True(t, ex.TruncatedEnd)
	})

	t.Run("window clipped at text bounds", func(t *testing.T) {
		ex, ok := m.MatchInText("brown fox ran", "brown fox")

		require.True(t, ok)
		assert.Equal(t, "", ex.Before)
		assert.Equal(t, " ran", ex.After)
		assert.False(t, ex.TruncatedStart)
		assert.False(t, ex.TruncatedEnd)
	})

	t.Run("multibyte text pads by runes", func(t *testing.T) {
		m := NewMatcher(4)
		ex, ok := m.MatchInText("ααα brown fox jumps", "brown fox")

		require.True(t, ok)
		assert.Equal(t, "ααα ", ex.Before)
		assert.Equal(t, " jum", ex.After)
		assert.True(t, utf8.ValidString(ex.Before))
		assert.False(t, ex.TruncatedStart)
		assert.True(t, ex.TruncatedEnd)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := m.MatchInText("something else entirely", "brown fox")
		assert.False(t, ok)
	})
}

func writeBookArchive(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestMatcher_Extract(t *testing.T) {
	m := NewMatcher(5)

	t.Run("finds highlight inside markup entry", func(t *testing.T) {
		book := writeBookArchive(t, map[string]string{
			"ch1.xhtml": "<html><body><p>the quick brown fox jumps over</p></body></html>",
		})

		ex, ok := m.Extract(book, "brown fox")

		require.True(t, ok)
		assert.Contains(t, ex.Before, "uick")
		assert.Contains(t, ex.After, "jump")
	})

	t.Run("skips non-markup entries", func(t *testing.T) {
		book := writeBookArchive(t, map[string]string{
			"cover.jpg": "brown fox",
			"ch1.html":  "<p>nothing here</p>",
		})

		_, ok := m.Extract(book, "brown fox")
		assert.False(t, ok)
	})

	t.Run("raw containment gates full processing", func(t *testing.T) {
		// The literal text is absent (split by a tag), so the entry is
		// filtered out before the normalized search would find it.
		book := writeBookArchive(t, map[string]string{
			"ch1.html": "<p>the quick brown</p><p>fox jumps</p>",
		})

		_, ok := m.Extract(book, "brown fox")
		assert.False(t, ok)
	})

	t.Run("missing file", func(t *testing.T) {
		_, ok := m.Extract(filepath.Join(t.TempDir(), "gone.epub"), "brown fox")
		assert.False(t, ok)
	})

	t.Run("pdf is unsupported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "book.PDF")
		require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))

		_, ok := m.Extract(path, "brown fox")
		assert.False(t, ok)
	})

	t.Run("empty highlight", func(t *testing.T) {
		book := writeBookArchive(t, map[string]string{"ch1.html": "<p>text</p>"})

		_, ok := m.Extract(book, "   \n ")
		assert.False(t, ok)
	})

	t.Run("first matching entry wins", func(t *testing.T) {
		book := writeBookArchive(t, map[string]string{
			"a.html": "<p>first brown fox here</p>",
			"b.html": "<p>second brown fox there</p>",
		})

		ex, ok := m.Extract(book, "brown fox")

		require.True(t, ok)
		// Entry order in the archive decides which context is returned.
		assert.NotEmpty(t, ex.Before+ex.After)
	})
}
