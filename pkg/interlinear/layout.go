package interlinear

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// FormatColumns 把对齐好的词对渲染成上下两行、逐列对齐的文本。
//
// maxLineLength <= 0 时所有词对排进唯一的一个块；否则从左到右
// 贪心装块：块里已有词对且 running+width+1 会超出限制时，先输出
// 当前块（源行、译行、一个空行分隔）再开新块。每列左对齐补空格
// 到该词对的宽度，列间一个空格，行尾空白去除。输出以恰好一个
// 换行结尾；空词对序列得到空串。
//
// 保证：同一块内第 N 列在两行中的宽度一致。
func FormatColumns(pairs []TokenPair, maxLineLength int) string {
	if len(pairs) == 0 {
		return ""
	}

	var rows []string
	var sourceRow, targetRow strings.Builder
	running := 0
	count := 0

	flush := func() {
		rows = append(rows, strings.TrimRight(sourceRow.String(), " "))
		rows = append(rows, strings.TrimRight(targetRow.String(), " "))
		rows = append(rows, "")
		sourceRow.Reset()
		targetRow.Reset()
		running = 0
		count = 0
	}

	for _, pair := range pairs {
		width := pair.Width()
		if maxLineLength > 0 && count > 0 && running+width+1 > maxLineLength {
			flush()
		}

		sourceRow.WriteString(runewidth.FillRight(pair.Source, width))
		sourceRow.WriteByte(' ')
		targetRow.WriteString(runewidth.FillRight(pair.Target, width))
		targetRow.WriteByte(' ')

		// 列间空格计入行宽限制
		running += width + 1
		count++
	}

	if count > 0 {
		flush()
	}

	// 末尾的空行元素让 Join 正好以一个换行收尾
	return strings.Join(rows, "\n")
}
