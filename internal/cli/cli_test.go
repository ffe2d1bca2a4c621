package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestConfig 写一份不访问网络、不落缓存的配置
func writeTestConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `source_lang: en
target_lang: de
provider: raw
max_line_length: 0
use_cache: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute 执行一次命令并捕获输出
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand("test", "none", "today")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandHelp(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "decode")
	assert.Contains(t, out, "translate")
	assert.Contains(t, out, "dict")
}

func TestDecodeCommandInlineText(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "decode", "--config", cfgPath, "--text", "the cat sleeps")
	require.NoError(t, err)

	// raw 提供商原样返回，每个词都在语境里匹配到自己
	assert.Equal(t, "the cat sleeps\nthe cat sleeps\n", out)
}

func TestDecodeCommandFromFile(t *testing.T) {
	cfgPath := writeTestConfig(t)

	inputPath := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(inputPath, []byte("der Hund"), 0o644))

	out, err := execute(t, "decode", "--config", cfgPath, inputPath)
	require.NoError(t, err)
	assert.Equal(t, "der Hund\nder Hund\n", out)
}

func TestDecodeCommandOutputFile(t *testing.T) {
	cfgPath := writeTestConfig(t)
	outputPath := filepath.Join(t.TempDir(), "decoded.txt")

	out, err := execute(t, "decode", "--config", cfgPath, "--text", "hello world", "-o", outputPath)
	require.NoError(t, err)
	assert.Contains(t, out, outputPath)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "hello world\nhello world\n", string(data))
}

func TestDecodeCommandTrace(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "decode", "--config", cfgPath, "--text", "the cat", "--trace")
	require.NoError(t, err)
	assert.Contains(t, out, "the cat\nthe cat\n")
	assert.Contains(t, out, "源词")
	assert.Contains(t, out, "matched-in-context")
}

func TestDecodeCommandStats(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "decode", "--config", cfgPath, "--text", "the cat", "--stats")
	require.NoError(t, err)
	assert.Contains(t, out, "句对")
	assert.Contains(t, out, "raw")
}

func TestDecodeCommandWidthFlag(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "decode", "--config", cfgPath, "--text", "abc abcd abcde", "-w", "10")
	require.NoError(t, err)
	assert.Equal(t, "abc abcd\nabc abcd\n\nabcde\nabcde\n", out)
}

func TestDecodeCommandUnknownProvider(t *testing.T) {
	cfgPath := writeTestConfig(t)

	_, err := execute(t, "decode", "--config", cfgPath, "--text", "hi", "-p", "googl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
	assert.Contains(t, err.Error(), "google")
}

func TestTranslateCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "translate", "--config", cfgPath, "--text", "guten Morgen")
	require.NoError(t, err)
	assert.Equal(t, "guten Morgen\n", out)
}

func TestDictConvertCommand(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "dict.tei")
	outPath := filepath.Join(dir, "dict.tsv")

	tei := `<TEI><text><body>
	  <entry>
	    <form type="lemma"><orth>Hund</orth></form>
	    <cit type="trans"><quote>dog</quote></cit>
	  </entry>
	</body></text></TEI>`
	require.NoError(t, os.WriteFile(inPath, []byte(tei), 0o644))

	out, err := execute(t, "dict", "convert", "-i", inPath, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 1 rows")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "Hund\tdog\n", string(data))
}

func TestDictLookupCommand(t *testing.T) {
	dictPath := filepath.Join(t.TempDir(), "dict.tsv")
	require.NoError(t, os.WriteFile(dictPath, []byte("Hund\tdog\nKatze\tcat\n"), 0o644))

	t.Run("found", func(t *testing.T) {
		out, err := execute(t, "dict", "lookup", "hund", "--dict", dictPath)
		require.NoError(t, err)
		assert.Equal(t, "dog\n", out)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := execute(t, "dict", "lookup", "Pferd", "--dict", dictPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "word not found")
	})
}

func TestListProvidersCommand(t *testing.T) {
	out, err := execute(t, "list", "providers")
	require.NoError(t, err)
	assert.Contains(t, out, "google")
	assert.Contains(t, out, "dictionary")
	assert.Contains(t, out, "llm")
}

func TestListLanguagesCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "list", "languages", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "All Languages")
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "langdec.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = os.Stat(path)
	require.NoError(t, err)

	// 已存在时拒绝覆盖
	_, err = execute(t, "config", "init", "-o", path)
	require.Error(t, err)
}

func TestConfigShowCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "config", "show", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "source_lang")
	assert.Contains(t, out, "raw")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "(not set)", maskSecret(""))
	assert.Equal(t, "***", maskSecret("abc"))
	assert.Equal(t, "****5678", maskSecret("12345678"))
}
