package interlinear

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatColumnsSingleBlock(t *testing.T) {
	pairs := []TokenPair{
		{Source: "hello", Target: "hallo"},
		{Source: "world", Target: "Welt"},
	}

	got := FormatColumns(pairs, 0)

	assert.Equal(t, "hello world\nhallo Welt\n", got)
}

func TestFormatColumnsNoWrapAlwaysTwoRows(t *testing.T) {
	// maxLineLength <= 0 时不论词对多少都是恰好两行
	pairs := make([]TokenPair, 40)
	for i := range pairs {
		pairs[i] = TokenPair{Source: "aaaaaaaa", Target: "bbbb"}
	}

	got := FormatColumns(pairs, -1)

	rows := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, rows, 2)
	assert.NotEmpty(t, rows[0])
	assert.NotEmpty(t, rows[1])
}

func TestFormatColumnsGreedyWrap(t *testing.T) {
	// 宽度 3、4、5，限制 10：第一块装下前两对（4+5=9<=10），
	// 第三对会到 15，换块
	pairs := []TokenPair{
		{Source: "abc", Target: "x"},
		{Source: "abcd", Target: "y"},
		{Source: "abcde", Target: "z"},
	}

	got := FormatColumns(pairs, 10)

	assert.Equal(t, "abc abcd\nx   y\n\nabcde\nz\n", got)
}

func TestFormatColumnsOversizedPairGetsOwnBlock(t *testing.T) {
	// 单个超宽词对不会被丢弃，独占一块
	pairs := []TokenPair{
		{Source: "kurz", Target: "ok"},
		{Source: "Donaudampfschifffahrt", Target: "ship"},
	}

	got := FormatColumns(pairs, 8)

	assert.Equal(t, "kurz\nok\n\nDonaudampfschifffahrt\nship\n", got)
}

func TestFormatColumnsWidthInvariant(t *testing.T) {
	pairs := []TokenPair{
		{Source: "a", Target: "lang"},
		{Source: "mittel", Target: "xy"},
		{Source: Placeholder, Target: "übrig"},
	}

	got := FormatColumns(pairs, 0)
	rows := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, rows, 2)

	// 逐列宽度取决于词对的 Width，两行共用
	offset := 0
	for _, pair := range pairs {
		width := pair.Width()
		assert.Equal(t, width, max(
			runewidth.StringWidth(pair.Source),
			runewidth.StringWidth(pair.Target),
		))
		offset += width + 1
	}
	// 每行总宽不超过各列宽之和
	assert.LessOrEqual(t, runewidth.StringWidth(rows[0]), offset)
	assert.LessOrEqual(t, runewidth.StringWidth(rows[1]), offset)
}

func TestFormatColumnsWideGlyphs(t *testing.T) {
	// CJK 字符按两格计宽，两行的列边界仍然对齐
	pairs := []TokenPair{
		{Source: "cat", Target: "猫"},
		{Source: "dog", Target: "犬"},
	}

	got := FormatColumns(pairs, 0)
	rows := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, rows, 2)

	// "cat" 宽 3，"猫" 宽 2：列宽 3
	assert.Equal(t, "cat dog", rows[0])
	assert.Equal(t, "猫  犬", rows[1])
}

func TestFormatColumnsPlaceholderParticipates(t *testing.T) {
	pairs := []TokenPair{
		{Source: Placeholder, Target: "Restwort"},
		{Source: "ich", Target: Placeholder},
	}

	got := FormatColumns(pairs, 0)

	assert.Equal(t, "---      ich\nRestwort ---\n", got)
}

func TestFormatColumnsEmpty(t *testing.T) {
	assert.Equal(t, "", FormatColumns(nil, 0))
	assert.Equal(t, "", FormatColumns([]TokenPair{}, 42))
}

func TestFormatColumnsTrailingNewline(t *testing.T) {
	pairs := []TokenPair{
		{Source: "eins", Target: "one"},
		{Source: "zwei", Target: "two"},
		{Source: "drei", Target: "three"},
	}

	for _, width := range []int{0, 5, 10, 100} {
		got := FormatColumns(pairs, width)
		assert.True(t, strings.HasSuffix(got, "\n"), "width %d", width)
		assert.False(t, strings.HasSuffix(got, "\n\n"), "width %d", width)
	}
}

func TestFormatColumnsDeterminism(t *testing.T) {
	pairs := []TokenPair{
		{Source: "der", Target: "the"},
		{Source: "Hund", Target: "dog"},
		{Source: "schläft", Target: "sleeps"},
	}

	first := FormatColumns(pairs, 12)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, FormatColumns(pairs, 12))
	}
}
