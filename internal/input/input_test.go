package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
)

func TestDecodeBytes(t *testing.T) {
	t.Run("plain utf8", func(t *testing.T) {
		got, err := DecodeBytes([]byte("schön"))
		require.NoError(t, err)
		assert.Equal(t, "schön", got)
	})

	t.Run("utf8 bom stripped", func(t *testing.T) {
		got, err := DecodeBytes(append([]byte{0xEF, 0xBB, 0xBF}, []byte("hallo")...))
		require.NoError(t, err)
		assert.Equal(t, "hallo", got)
	})

	t.Run("utf16 le with bom", func(t *testing.T) {
		enc := xunicode.UTF16(xunicode.LittleEndian, xunicode.ExpectBOM).NewEncoder()
		data, err := enc.Bytes([]byte("Müller"))
		require.NoError(t, err)

		got, err := DecodeBytes(data)
		require.NoError(t, err)
		assert.Equal(t, "Müller", got)
	})

	t.Run("windows-1252", func(t *testing.T) {
		data, err := charmap.Windows1252.NewEncoder().Bytes([]byte("Fähre"))
		require.NoError(t, err)

		got, err := DecodeBytes(data)
		require.NoError(t, err)
		assert.Equal(t, "Fähre", got)
	})

	t.Run("empty", func(t *testing.T) {
		got, err := DecodeBytes(nil)
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})
}

func TestExtractMarkdownText(t *testing.T) {
	source := `---
title: Notizen
lang: de
---

# Der Besuch

Der Hund schläft im Garten.

` + "```go\nfmt.Println(\"skip me\")\n```" + `

- erstens
- zweitens

Die Katze spielt.
`

	got := ExtractMarkdownText(source)

	assert.Contains(t, got, "Der Besuch")
	assert.Contains(t, got, "Der Hund schläft im Garten.")
	assert.Contains(t, got, "Die Katze spielt.")
	assert.Contains(t, got, "erstens")

	// frontmatter 和代码块不进入正文
	assert.NotContains(t, got, "title:")
	assert.NotContains(t, got, "Notizen")
	assert.NotContains(t, got, "skip me")
}

func TestReadText(t *testing.T) {
	t.Run("plain file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "input.txt")
		require.NoError(t, os.WriteFile(path, []byte("der Hund. die Katze"), 0o644))

		got, err := ReadText(path)
		require.NoError(t, err)
		assert.Equal(t, "der Hund. die Katze", got)
	})

	t.Run("markdown file extracts prose", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "input.md")
		require.NoError(t, os.WriteFile(path, []byte("# Titel\n\nEin Satz.\n"), 0o644))

		got, err := ReadText(path)
		require.NoError(t, err)
		assert.Equal(t, "Titel\n\nEin Satz.", got)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadText(filepath.Join(t.TempDir(), "missing.txt"))
		require.Error(t, err)
	})
}
