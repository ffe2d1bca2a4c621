package dictconv

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTEI = `<?xml version="1.0" encoding="UTF-8"?>
<TEI xmlns="http://www.tei-c.org/ns/1.0">
  <text><body>
    <entry>
      <form type="lemma"><orth>Hund</orth></form>
      <cit type="trans"><quote>dog</quote></cit>
      <cit type="trans"><quote>hound</quote></cit>
    </entry>
    <entry>
      <form><orth>Katze</orth></form>
      <cit type="trans"><quote>cat</quote></cit>
      <cit type="example"><quote>die Katze schläft</quote></cit>
    </entry>
    <entry>
      <form type="lemma"><orth>leer</orth></form>
    </entry>
    <entry>
      <form type="lemma"><orth>Haus</orth><orth>HAUS</orth></form>
      <cit type="trans"><quote>house</quote></cit>
    </entry>
  </body></text>
</TEI>
`

func TestConvert(t *testing.T) {
	var out bytes.Buffer

	result, err := Convert(strings.NewReader(sampleTEI), &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"Hund\tdog",
		"Hund\thound",
		"Katze\tcat",
		"Haus\thouse",
	}, lines)

	assert.Equal(t, 4, result.Rows)
	// 没有译文的词条被跳过
	assert.Equal(t, 1, result.SkippedEntries)
}

func TestConvertLemmaPreferred(t *testing.T) {
	tei := `<TEI><text><body>
    <entry>
      <form type="lemma"><orth>gehen</orth></form>
      <form type="infl"><orth>ging</orth></form>
      <cit type="trans"><quote>to go</quote></cit>
    </entry>
  </body></text></TEI>`

	var out bytes.Buffer
	result, err := Convert(strings.NewReader(tei), &out)
	require.NoError(t, err)

	// lemma 存在时屈折形式不产出行
	assert.Equal(t, "gehen\tto go\n", out.String())
	assert.Equal(t, 1, result.Rows)
}

func TestConvertOrthFallback(t *testing.T) {
	tei := `<TEI><text><body>
    <entry>
      <orth>Brot</orth>
      <cit type="trans"><quote>bread</quote></cit>
    </entry>
  </body></text></TEI>`

	var out bytes.Buffer
	_, err := Convert(strings.NewReader(tei), &out)
	require.NoError(t, err)
	assert.Equal(t, "Brot\tbread\n", out.String())
}

func TestConvertWhitespaceNormalization(t *testing.T) {
	tei := `<TEI><text><body>
    <entry>
      <form type="lemma"><orth>  zu   Hause </orth></form>
      <cit type="trans"><quote>at
        home , really</quote></cit>
    </entry>
  </body></text></TEI>`

	var out bytes.Buffer
	_, err := Convert(strings.NewReader(tei), &out)
	require.NoError(t, err)
	assert.Equal(t, "zu Hause\tat home, really\n", out.String())
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "dict.tei")
	outPath := filepath.Join(dir, "dict.tsv")
	require.NoError(t, os.WriteFile(inPath, []byte(sampleTEI), 0o644))

	result, err := ConvertFile(inPath, outPath)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Rows)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hund\tdog\n")
}

func TestConvertEmptyDocument(t *testing.T) {
	var out bytes.Buffer
	result, err := Convert(strings.NewReader("<TEI></TEI>"), &out)
	require.NoError(t, err)
	assert.Zero(t, result.Rows)
	assert.Equal(t, "", out.String())
}
