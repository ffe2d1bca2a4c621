package factory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langdec/langdec/internal/config"
	"github.com/langdec/langdec/pkg/providers"
	"github.com/langdec/langdec/pkg/providers/stats"
)

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.UseCache = false
	return cfg
}

func TestCreateProviderRaw(t *testing.T) {
	provider, err := CreateProvider(context.Background(), "raw", testConfig(), Options{})
	require.NoError(t, err)

	resp, err := provider.TranslateWord(context.Background(), &providers.Request{Text: "hallo"})
	require.NoError(t, err)
	assert.Equal(t, "hallo", resp.Text)
}

func TestFactoryReusesProvider(t *testing.T) {
	f := New(Options{})

	first, err := f.CreateProvider(context.Background(), "raw", testConfig())
	require.NoError(t, err)
	second, err := f.CreateProvider(context.Background(), "raw", testConfig())
	require.NoError(t, err)

	// 同名提供商只装配一次
	assert.Same(t, first, second)
	assert.Equal(t, []string{"raw"}, f.Providers())
}

func TestCreateProviderUnknown(t *testing.T) {
	_, err := CreateProvider(context.Background(), "quantum", testConfig(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestCreateProviderSuggestion(t *testing.T) {
	_, err := CreateProvider(context.Background(), "googl", testConfig(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "google"`)
}

func TestCreateProviderDictionary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dict.tsv")
	require.NoError(t, os.WriteFile(path, []byte("cat\tKatze\ndog\tHund\n"), 0o644))

	cfg := testConfig()
	cfg.Providers = map[string]config.ProviderConfig{
		"dictionary": {DictionaryPath: path},
	}

	provider, err := CreateProvider(context.Background(), "dictionary", cfg, Options{})
	require.NoError(t, err)

	resp, err := provider.TranslateWord(context.Background(), &providers.Request{Text: "cat"})
	require.NoError(t, err)
	assert.Equal(t, "Katze", resp.Text)
}

func TestCreateProviderWithCache(t *testing.T) {
	cfg := testConfig()
	cfg.UseCache = true
	cfg.CacheDir = t.TempDir()

	provider, err := CreateProvider(context.Background(), "raw", cfg, Options{})
	require.NoError(t, err)

	// 包装层不改变提供商名称
	assert.Equal(t, "raw", provider.GetName())

	for i := 0; i < 2; i++ {
		resp, err := provider.TranslateWord(context.Background(), &providers.Request{Text: "wort"})
		require.NoError(t, err)
		assert.Equal(t, "wort", resp.Text)
	}
}

func TestCreateProviderWithStats(t *testing.T) {
	manager := stats.NewManager(nil)

	provider, err := CreateProvider(context.Background(), "raw", testConfig(), Options{Stats: manager})
	require.NoError(t, err)

	_, err = provider.TranslateWord(context.Background(), &providers.Request{Text: "eins"})
	require.NoError(t, err)

	snapshot := manager.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, int64(1), snapshot[0].WordRequests)
}

func TestCreateProviderGlossaryLanguageMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glossary.toml")
	content := "source_lang = \"pt\"\ntarget_lang = \"de\"\n\n[words]\ngato = \"Katze\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := testConfig()
	cfg.SourceLang = "en"
	cfg.TargetLang = "de"
	cfg.GlossaryPath = path

	// 语言对不匹配：术语表被忽略，不报错
	provider, err := CreateProvider(context.Background(), "raw", cfg, Options{})
	require.NoError(t, err)

	resp, err := provider.TranslateWord(context.Background(), &providers.Request{Text: "gato"})
	require.NoError(t, err)
	assert.Equal(t, "gato", resp.Text)
}

func TestCreateProviderGlossaryHit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glossary.toml")
	content := "source_lang = \"en\"\ntarget_lang = \"de\"\n\n[words]\ncat = \"Katze\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := testConfig()
	cfg.GlossaryPath = path

	provider, err := CreateProvider(context.Background(), "raw", cfg, Options{})
	require.NoError(t, err)

	resp, err := provider.TranslateWord(context.Background(), &providers.Request{Text: "cat"})
	require.NoError(t, err)
	assert.Equal(t, "Katze", resp.Text)
}

func TestIsLLMProvider(t *testing.T) {
	assert.True(t, IsLLMProvider("openai"))
	assert.True(t, IsLLMProvider("ollama"))
	assert.True(t, IsLLMProvider("anthropic"))
	assert.False(t, IsLLMProvider("google"))
	assert.False(t, IsLLMProvider("dictionary"))
	assert.False(t, IsLLMProvider("raw"))
}

func TestSupportedProviders(t *testing.T) {
	supported := SupportedProviders()
	assert.Contains(t, supported, "google")
	assert.Contains(t, supported, "dictionary")

	for _, name := range supported {
		if name == "gemini" || name == "anthropic" || name == "dictionary" {
			// 这些需要密钥或文件才能构造
			continue
		}
		_, err := CreateProvider(context.Background(), name, testConfig(), Options{})
		assert.NoError(t, err, name)
	}
}
