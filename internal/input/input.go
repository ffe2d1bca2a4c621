package input

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadText 读取解码输入。path 为 "-" 时读标准输入。
// 非 UTF-8 内容自动检测编码并转换；Markdown 文件额外抽取正文，
// 去掉元数据和标记噪音后再交给解码器。
func ReadText(path string) (string, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
	}

	text, err := DecodeBytes(data)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return ExtractMarkdownText(text), nil
	default:
		return text, nil
	}
}

// DecodeBytes 把任意编码的字节序列转换为 UTF-8 文本。
// 先认 UTF-8 和 BOM，再依次尝试常见编码，取第一个能产出
// 合法 UTF-8 的结果。
func DecodeBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	// UTF-8 BOM
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	if len(data) >= 2 {
		if data[0] == 0xFF && data[1] == 0xFE {
			if text, ok := tryDecode(data[2:], xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM)); ok {
				return text, nil
			}
		} else if data[0] == 0xFE && data[1] == 0xFF {
			if text, ok := tryDecode(data[2:], xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM)); ok {
				return text, nil
			}
		}
	}

	candidates := []encoding.Encoding{
		simplifiedchinese.GBK,
		simplifiedchinese.GB18030,
		traditionalchinese.Big5,
		japanese.ShiftJIS,
		japanese.EUCJP,
		korean.EUCKR,
		charmap.Windows1252,
		charmap.ISO8859_1,
		xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM),
		xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM),
	}

	for _, candidate := range candidates {
		if text, ok := tryDecode(data, candidate); ok {
			return text, nil
		}
	}

	return "", fmt.Errorf("failed to detect text encoding")
}

func tryDecode(data []byte, enc encoding.Encoding) (string, bool) {
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil || !utf8.Valid(decoded) {
		return "", false
	}
	return string(decoded), true
}

// ExtractMarkdownText 抽取 Markdown 文档里的正文文本。
// frontmatter 元数据丢弃，块级节点按文档顺序各占一行，
// 代码块和主题分隔线等非正文内容跳过。
func ExtractMarkdownText(source string) string {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	src := []byte(source)
	reader := gtext.NewReader(src)
	doc := md.Parser().Parse(reader)

	var blocks []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch node.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock, ast.KindThematicBreak:
			continue
		}
		if text := nodeText(node, src); text != "" {
			blocks = append(blocks, text)
		}
	}

	return strings.Join(blocks, "\n\n")
}

// nodeText 收集节点子树里的文本内容，折叠成一行
func nodeText(node ast.Node, src []byte) string {
	var b strings.Builder

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if textNode, ok := n.(*ast.Text); ok {
			b.Write(textNode.Segment.Value(src))
			b.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}
