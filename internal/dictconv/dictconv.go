package dictconv

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Result 转换结果统计
type Result struct {
	// Rows 写出的 headword/translation 行数
	Rows int

	// SkippedEntries 缺少词头或译文而跳过的词条数
	SkippedEntries int
}

var (
	spaceBeforePunct = regexp.MustCompile(`\s+([,.;:!?])`)
	spaceAfterParen  = regexp.MustCompile(`\(\s+`)
)

// Convert 把 FreeDict 的 TEI 词典转换为 TSV，每行一个
// headword<TAB>translation 组合，供离线词典提供商直接加载。
//
// 词头优先取 form[type=lemma] 下的 orth，没有 lemma 时退回词条里
// 任意 orth；译文取 cit[type=trans] 下的 quote。两侧都做保序的
// 大小写不敏感去重。
func Convert(r io.Reader, w io.Writer) (*Result, error) {
	// TEI 源文件不一定是 UTF-8
	decoded, err := charset.NewReader(r, "text/xml")
	if err != nil {
		return nil, fmt.Errorf("failed to detect document charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TEI document: %w", err)
	}

	result := &Result{}
	var writeErr error

	doc.Find("entry").EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		headwords := extractHeadwords(entry)
		translations := extractTranslations(entry)

		if len(headwords) == 0 || len(translations) == 0 {
			result.SkippedEntries++
			return true
		}

		for _, headword := range headwords {
			for _, translation := range translations {
				if _, err := fmt.Fprintf(w, "%s\t%s\n", headword, translation); err != nil {
					writeErr = err
					return false
				}
				result.Rows++
			}
		}
		return true
	})

	if writeErr != nil {
		return nil, fmt.Errorf("failed to write TSV: %w", writeErr)
	}
	return result, nil
}

// ConvertFile 文件到文件的转换
func ConvertFile(inputPath, outputPath string) (*Result, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open TEI file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create TSV file: %w", err)
	}

	result, err := Convert(in, out)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func extractHeadwords(entry *goquery.Selection) []string {
	var headwords []string

	entry.Find("form[type=lemma] orth").Each(func(_ int, orth *goquery.Selection) {
		if text := cleanText(orth.Text()); text != "" {
			headwords = append(headwords, text)
		}
	})

	if len(headwords) == 0 {
		entry.Find("orth").Each(func(_ int, orth *goquery.Selection) {
			if text := cleanText(orth.Text()); text != "" {
				headwords = append(headwords, text)
			}
		})
	}

	return dedupe(headwords)
}

func extractTranslations(entry *goquery.Selection) []string {
	var translations []string

	entry.Find("cit[type=trans] quote").Each(func(_ int, quote *goquery.Selection) {
		if text := cleanText(quote.Text()); text != "" {
			translations = append(translations, text)
		}
	})

	return dedupe(translations)
}

// cleanText 折叠空白并修掉标点前后的多余空格
// （TEI 常把一段文字拆成多个节点）
func cleanText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = spaceAfterParen.ReplaceAllString(text, "(")
	return strings.TrimSpace(text)
}

// dedupe 保序去重，大小写不敏感
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	unique := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(item)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, item)
	}
	return unique
}
