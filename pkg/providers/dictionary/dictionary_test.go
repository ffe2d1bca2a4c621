package dictionary

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langdec/langdec/pkg/providers"
)

func writeDict(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dict.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newProvider(t *testing.T, content string) *Provider {
	t.Helper()

	config := DefaultConfig()
	config.Path = writeDict(t, content)

	provider, err := New(config)
	require.NoError(t, err)
	return provider
}

func TestNewMissingPath(t *testing.T) {
	_, err := New(DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dictionary path is empty")
}

func TestLoad(t *testing.T) {
	provider := newProvider(t, "Hund\tdog\n# Kommentar\n\nKatze\tcat\nHund\thound\nkaputt\n")

	// 注释、空行、无制表符的行跳过；重复词条保留第一条
	assert.Equal(t, 2, provider.Size())

	translation, ok := provider.Lookup("Hund")
	assert.True(t, ok)
	assert.Equal(t, "dog", translation)
}

func TestLookup(t *testing.T) {
	provider := newProvider(t, "Hund\tdog\n")

	t.Run("case insensitive by default", func(t *testing.T) {
		translation, ok := provider.Lookup("hund")
		assert.True(t, ok)
		assert.Equal(t, "dog", translation)
	})

	t.Run("trailing punctuation stripped", func(t *testing.T) {
		translation, ok := provider.Lookup("Hund.")
		assert.True(t, ok)
		assert.Equal(t, "dog", translation)
	})

	t.Run("missing word", func(t *testing.T) {
		_, ok := provider.Lookup("Pferd")
		assert.False(t, ok)
	})
}

func TestLookupCaseSensitive(t *testing.T) {
	config := DefaultConfig()
	config.Path = writeDict(t, "Hund\tdog\n")
	config.CaseSensitive = true

	provider, err := New(config)
	require.NoError(t, err)

	_, ok := provider.Lookup("hund")
	assert.False(t, ok)

	translation, ok := provider.Lookup("Hund")
	assert.True(t, ok)
	assert.Equal(t, "dog", translation)
}

func TestTranslateWord(t *testing.T) {
	provider := newProvider(t, "Hund\tdog\n")

	resp, err := provider.TranslateWord(context.Background(), &providers.Request{Text: "Hund"})
	require.NoError(t, err)
	assert.Equal(t, "dog", resp.Text)

	_, err = provider.TranslateWord(context.Background(), &providers.Request{Text: "Pferd"})
	require.Error(t, err)

	var provErr *providers.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, providers.ErrCodeWordNotFound, provErr.Code)
}

func TestTranslateTextGlosses(t *testing.T) {
	provider := newProvider(t, "Hund\tdog\nschläft\tsleeps\n")

	resp, err := provider.TranslateText(context.Background(), &providers.Request{Text: "der Hund schläft"})
	require.NoError(t, err)

	// 未收录的词保留原文
	assert.Equal(t, "der dog sleeps", resp.Text)
	assert.Equal(t, 2, resp.Metadata["glossed_tokens"])
}

func TestTranslateWords(t *testing.T) {
	provider := newProvider(t, "Hund\tdog\nKatze\tcat\n")

	resp, err := provider.TranslateWords(context.Background(), &providers.BatchRequest{
		Words: []string{"Hund", "Pferd", "Katze"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"dog", "", "cat"}, resp.Translations)
	assert.Equal(t, []bool{true, false, true}, resp.OK)
}

func TestHealthCheck(t *testing.T) {
	provider := newProvider(t, "Hund\tdog\n")
	assert.NoError(t, provider.HealthCheck(context.Background()))

	empty := newProvider(t, "# nur Kommentare\n")
	assert.Error(t, empty.HealthCheck(context.Background()))
}
